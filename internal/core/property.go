package core

import (
	"sync"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// PropertyFragment is one tagged contribution to a node's effective property
// map. Fragments compose by
// concatenation down a path: Apply is called once per fragment, root to
// leaf, folding into a single types.PropertyMap.
type PropertyFragment interface {
	// Apply merges this fragment's contribution into m for the given
	// directory-relative child name. Implementations must be safe to call
	// with the same fragment reused across many children.
	Apply(childName string, m types.PropertyMap)
}

// IgnoreFragment translates a .gitignore-style file's lines into the
// svn:ignore property of the directory it lives in. The lines are passed
// through as-is; no glob is evaluated against the directory's children.
type IgnoreFragment struct {
	Lines []string
}

// Apply sets svn:ignore to the newline-joined pattern list. SVN scopes
// svn:ignore to the directory itself, not per-child, so Apply only ever
// touches the directory node's own property map (childName == "").
func (f IgnoreFragment) Apply(childName string, m types.PropertyMap) {
	if childName != "" || len(f.Lines) == 0 {
		return
	}
	joined := ""
	for i, l := range f.Lines {
		if i > 0 {
			joined += "\n"
		}
		joined += l
	}
	m["svn:ignore"] = joined
}

// AutoPropFragment carries svn:auto-props-style rules (pattern -> prop=value
// pairs) derived from a .tgitconfig-like file. Rules apply only to children
// whose name the pattern matches, using the gitignore-style glob matcher
// in exclude.go.
type AutoPropFragment struct {
	Rules []AutoPropRule
}

// AutoPropRule is one "pattern = prop1=val1;prop2=val2" line.
type AutoPropRule struct {
	Pattern string
	Props   types.PropertyMap
}

func (f AutoPropFragment) Apply(childName string, m types.PropertyMap) {
	if childName == "" {
		return
	}
	for _, rule := range f.Rules {
		if !matchAutoPropPattern(rule.Pattern, childName) {
			continue
		}
		for k, v := range rule.Props {
			m[k] = v
		}
	}
}

func matchAutoPropPattern(pattern, name string) bool {
	return MatchesExclude(name, []string{pattern})
}

// BinaryFlagFragment marks paths (from a .gitattributes "binary" line) as
// svn:mime-type=application/octet-stream.
type BinaryFlagFragment struct {
	Paths []string
}

func (f BinaryFlagFragment) Apply(childName string, m types.PropertyMap) {
	if childName == "" {
		return
	}
	for _, p := range f.Paths {
		if matchAutoPropPattern(p, childName) {
			m["svn:mime-type"] = "application/octet-stream"
			return
		}
	}
}

// PropertyDeriver is the narrow contract the out-of-scope wildcard engine
// satisfies: given a config file's name and contents, produce zero
// or more property fragments. The core never parses config-file syntax
// itself beyond what DefaultIgnoreDeriver implements for standalone use.
type PropertyDeriver interface {
	Derive(name string, content []byte) []PropertyFragment
}

// PropertyFactoryRegistry matches config-file basenames against a
// PropertyDeriver, memoizing each blob's parse result by oid.
type PropertyFactoryRegistry struct {
	names   map[string]bool
	deriver PropertyDeriver

	mu    sync.Mutex
	cache map[string][]PropertyFragment // blob oid -> fragments
}

// NewPropertyFactoryRegistry builds a registry recognizing the given
// basenames and delegating parsing to deriver.
func NewPropertyFactoryRegistry(names []string, deriver PropertyDeriver) *PropertyFactoryRegistry {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &PropertyFactoryRegistry{
		names:   set,
		deriver: deriver,
		cache:   make(map[string][]PropertyFragment),
	}
}

// Recognizes reports whether basename is a registered config-file name.
func (r *PropertyFactoryRegistry) Recognizes(basename string) bool {
	return r.names[basename]
}

// FragmentsFor returns the property fragments a config blob contributes,
// parsing (and memoizing) on first sight of oid.
func (r *PropertyFactoryRegistry) FragmentsFor(name, oid string, content []byte) []PropertyFragment {
	r.mu.Lock()
	if f, ok := r.cache[oid]; ok {
		r.mu.Unlock()
		return f
	}
	r.mu.Unlock()

	fragments := r.deriver.Derive(name, content)

	r.mu.Lock()
	r.cache[oid] = fragments
	r.mu.Unlock()
	return fragments
}

// ModeProperties derives the properties implied by a Git file mode alone:
// svn:executable for the executable bit, svn:special for symlinks. Returns
// nil for plain files and directories.
func ModeProperties(mode string) types.PropertyMap {
	switch mode {
	case git.ModeExec:
		return types.PropertyMap{"svn:executable": "*"}
	case git.ModeSymlink:
		return types.PropertyMap{"svn:special": "*"}
	default:
		return nil
	}
}
