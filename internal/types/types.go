// Package types defines the data structures shared between the revision
// bridge's subsystems: revisions, cache records, tree nodes, locks, and the
// server's own configuration file.
package types

import "time"

// Revision is an immutable record of one SVN-visible commit. Revisions are
// append-only and dense from 0 upward.
type Revision struct {
	ID int64
	// CacheCommit is the side-branch commit this revision is anchored to.
	CacheCommit string
	// GitCommit is the user-visible Git commit this revision maps to. Empty
	// for the synthetic revision 0.
	GitCommit string
	// DateMillis is the commit time in milliseconds since the Unix epoch.
	DateMillis int64
	Author     string
	Message    string
	// Renames maps new path -> previous path, as produced by the rename
	// detector. Empty when rename detection found nothing or is disabled.
	Renames map[string]string
}

// Date returns the revision's commit time as a time.Time.
func (r Revision) Date() time.Time {
	return time.UnixMilli(r.DateMillis).UTC()
}

// FileChangeEntry is one path's before/after state within a cache revision.
// Any of the four fields may be empty: an add leaves Old* empty, a delete
// leaves New* empty.
type FileChangeEntry struct {
	OldBlob string
	NewBlob string
	OldMode string
	NewMode string
}

// IsDelete reports whether this entry represents a path's removal.
func (e FileChangeEntry) IsDelete() bool { return e.NewBlob == "" }

// IsAdd reports whether this entry represents a path's first appearance.
func (e FileChangeEntry) IsAdd() bool { return e.OldBlob == "" }

// RenamePair is one entry of a CacheRevision's rename map: NewPath -> OldPath.
type RenamePair struct {
	NewPath string
	OldPath string
}

// FileChangePair is one entry of a CacheRevision's file-change map: Path -> change.
type FileChangePair struct {
	Path   string
	Change FileChangeEntry
}

// BranchPair is one entry of a CacheRevision's branch map, reserved for
// multi-branch layouts and always empty in the single-branch case
// this bridge implements.
type BranchPair struct {
	Branch    string
	GitCommit string
}

// CacheRevision is the wire/persisted form of a Revision, serialized as
// change.json inside a cache commit's tree. Renames,
// FileChange, and Branches are carried as ordered-pair slices rather than
// Go maps so that internal/core/canonjson.go can emit them in the stable,
// lexicographically-keyed JSON object form the cache layout requires regardless of
// any map's iteration order.
type CacheRevision struct {
	Revision   int64
	GitCommit  string // empty for revision 0
	Renames    []RenamePair
	FileChange []FileChangePair
	Branches   []BranchPair
}

// NodeKind is the SVN-facing kind of a tree entry.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindExecutableFile
	KindDir
	KindSymlink
	KindSubmodule
)

// PropertyMap is an SVN property name -> value map, e.g. "svn:executable" -> "*".
type PropertyMap map[string]string

// Clone returns a shallow copy, safe for a caller to mutate independently.
func (p PropertyMap) Clone() PropertyMap {
	out := make(PropertyMap, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Equal reports whether two property maps have identical key/value pairs,
// the comparison the commit builder's property validation runs.
func (p PropertyMap) Equal(other PropertyMap) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Lock is a single path lock.
type Lock struct {
	Path    string
	Token   string
	Owner   string
	Comment string
	Created time.Time
	// RevisionAtLockTime is the revision the locking client believed was
	// current when the lock was issued; kept for diagnostics only.
	RevisionAtLockTime int64
}

// ProgressTracker reports progress of a long-running operation (the
// revision store's Update(), which may walk and cache many commits on a
// cold start). The bubbletea, text and no-op trackers in internal/tui all
// satisfy it.
type ProgressTracker interface {
	Increment(message string)
	SetTotal(total int)
	Complete()
	Fail(err error)
}

// PushMode selects how the commit builder publishes a new user commit.
type PushMode string

const (
	PushModeSimple PushMode = "simple"
	PushModeNative PushMode = "native"
)

// RenameDetection configures the optional rename detector.
type RenameDetection struct {
	Enabled          bool `yaml:"enabled"`
	ThresholdPercent int  `yaml:"thresholdPercent,omitempty"`
}

// ServerConfig is the bridge's own configuration file (gitassvn.yml),
// loaded through internal/core.YAMLStore[ServerConfig].
type ServerConfig struct {
	Repository string `yaml:"repository"`
	Branch     string `yaml:"branch"`
	// SideBranchRef defaults to "refs/git-as-svn/v1/<branch>" when empty.
	SideBranchRef     string          `yaml:"sideBranchRef,omitempty"`
	PushMode          PushMode        `yaml:"pushMode"`
	RenameDetection   RenameDetection `yaml:"renameDetection,omitempty"`
	PropertyFactories []string        `yaml:"propertyFactories,omitempty"`
}
