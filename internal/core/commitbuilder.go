package core

import (
	"context"
	"fmt"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// FileDeltaConsumer is the minimal contract SaveFile's caller drives: it
// supplies the final blob oid and the target SVN property map. Real delta
// application (SVN's svndiff windows) belongs to the wire protocol layer;
// this interface is the narrow seam the commit builder needs from it.
type FileDeltaConsumer interface {
	Finish(ctx context.Context) (blobOid string, props types.PropertyMap, err error)
}

// BytesDeltaConsumer is the simplest FileDeltaConsumer: the whole file
// content is already known, so Finish just hashes it into the object
// database.
type BytesDeltaConsumer struct {
	repo    *git.Git
	Content []byte
	Props   types.PropertyMap
}

// NewBytesDeltaConsumer wraps content ready to be committed as-is.
func NewBytesDeltaConsumer(repo *git.Git, content []byte, props types.PropertyMap) *BytesDeltaConsumer {
	return &BytesDeltaConsumer{repo: repo, Content: content, Props: props}
}

func (c *BytesDeltaConsumer) Finish(ctx context.Context) (string, types.PropertyMap, error) {
	if len(c.Content) == 0 && c.Props == nil {
		return "", nil, nil
	}
	oid, err := c.repo.HashObject(ctx, c.Content)
	if err != nil {
		return "", nil, err
	}
	return oid, c.Props, nil
}

// DirFrame is one level of the commit builder's editor-depth stack: a
// directory's working set of
// entries, staged independently of the Git tree it will eventually become.
type DirFrame struct {
	path    string // full repository path; "" for root
	entries map[string]git.TreeEntry
}

type propertyCheck struct {
	path     string
	expected types.PropertyMap
}

// CommitBuilder is the SVN-editor-like commit API. Operations are
// delivered in depth-first order matching SVN's editor drive; the builder
// exclusively owns its tree-update stack and object-inserter handle.
type CommitBuilder struct {
	repo      *git.Git
	store     *FileRevisionStore
	locks     LockManager
	tv        *TreeView
	pusher    Pusher
	pushMutex *PushMutex
	branch    string

	baseRevision types.Revision
	baseRoot     *Node

	stack  []*DirFrame
	checks []propertyCheck
	edited []string
}

// NewCommitBuilder opens a commit builder rooted at store's current latest
// revision, with its root frame pre-populated from that revision's tree;
// OpenDir and CloseDir mutate frames seeded from the existing tree, never
// an empty one, except for AddDir.
func NewCommitBuilder(ctx context.Context, repo *git.Git, store *FileRevisionStore, tv *TreeView, locks LockManager, pusher Pusher, pushMutex *PushMutex, branch string) (*CommitBuilder, error) {
	base := store.Latest()
	root, err := tv.Root(ctx, base.ID)
	if err != nil {
		return nil, err
	}
	rootEntries, err := entriesOf(ctx, root)
	if err != nil {
		return nil, err
	}

	cb := &CommitBuilder{
		repo: repo, store: store, locks: locks, tv: tv,
		pusher: pusher, pushMutex: pushMutex, branch: branch,
		baseRevision: base, baseRoot: root,
	}
	cb.stack = []*DirFrame{{path: "", entries: rootEntries}}
	return cb, nil
}

func entriesOf(ctx context.Context, dir *Node) (map[string]git.TreeEntry, error) {
	children, err := dir.Children(ctx)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]git.TreeEntry, len(children))
	for _, c := range children {
		entries[c.Basename()] = c.entry
	}
	return entries, nil
}

func (cb *CommitBuilder) current() *DirFrame {
	return cb.stack[len(cb.stack)-1]
}

// CheckUpToDate fails with EntryNotFoundError if path does not exist at the
// builder's base revision, or NotUpToDateError if path's last-change is
// newer than rev.
func (cb *CommitBuilder) CheckUpToDate(ctx context.Context, path string, rev int64) error {
	path = NormalizePath(path)
	if _, ok := cb.resolveExisting(ctx, path); !ok {
		return &EntryNotFoundError{Path: path}
	}
	lastChange, ok := cb.store.LastChange(path, cb.baseRevision.ID)
	if ok && lastChange > rev {
		return &NotUpToDateError{Path: path}
	}
	return nil
}

// resolveExisting reports whether path exists in the builder's base
// revision. It intentionally ignores in-progress edits on the stack:
// CheckUpToDate is a precondition check against what the client last saw,
// not against this builder's own pending changes.
func (cb *CommitBuilder) resolveExisting(ctx context.Context, path string) (git.TreeEntry, bool) {
	node, ok, err := cb.navigateBase(ctx, Segments(path))
	if err != nil || !ok {
		return git.TreeEntry{}, false
	}
	return node.entry, true
}

func (cb *CommitBuilder) navigateBase(ctx context.Context, segs []string) (*Node, bool, error) {
	node := cb.baseRoot
	for _, seg := range segs {
		child, ok, err := node.Child(ctx, seg)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		node = child
	}
	return node, true, nil
}

// AddDir adds a new directory named name to the current frame, fails
// AlreadyExistsError on collision. If sourceDir is non-empty, the new
// directory's entries are seeded from that path in the base revision (copy
// semantics); otherwise it starts empty.
func (cb *CommitBuilder) AddDir(ctx context.Context, name, sourceDir string) error {
	frame := cb.current()
	if _, exists := frame.entries[name]; exists {
		return &AlreadyExistsError{Path: JoinPath(frame.path, name)}
	}

	entries := map[string]git.TreeEntry{}
	if sourceDir != "" {
		node, ok, err := cb.navigateBase(ctx, Segments(NormalizePath(sourceDir)))
		if err != nil {
			return err
		}
		if ok {
			entries, err = entriesOf(ctx, node)
			if err != nil {
				return err
			}
		}
	}

	childPath := JoinPath(frame.path, name)
	cb.stack = append(cb.stack, &DirFrame{path: childPath, entries: entries})
	cb.edited = append(cb.edited, childPath)
	return nil
}

// OpenDir removes name from the current frame and pushes a new frame
// populated from its existing tree; fails EntryNotFoundError if
// absent or not a directory.
func (cb *CommitBuilder) OpenDir(ctx context.Context, name string) error {
	frame := cb.current()
	entry, ok := frame.entries[name]
	if !ok || entry.Type != "tree" {
		return &EntryNotFoundError{Path: JoinPath(frame.path, name)}
	}
	delete(frame.entries, name)

	childPath := JoinPath(frame.path, name)
	node, ok, err := cb.navigateBase(ctx, Segments(childPath))
	if err != nil {
		return err
	}
	entries := map[string]git.TreeEntry{}
	if ok {
		entries, err = entriesOf(ctx, node)
		if err != nil {
			return err
		}
	}
	cb.stack = append(cb.stack, &DirFrame{path: childPath, entries: entries})
	return nil
}

// CheckDirProperties records a deferred assertion that the current
// directory's derived properties equal props once the prospective commit
// exists.
func (cb *CommitBuilder) CheckDirProperties(props types.PropertyMap) {
	cb.checks = append(cb.checks, propertyCheck{path: cb.current().path, expected: props})
}

// CloseDir pops the current frame, serializes its tree, and inserts it as
// an entry in the parent; fails CancelledError if the directory is empty
// (Git cannot represent an empty tree as an entry).
func (cb *CommitBuilder) CloseDir(ctx context.Context) error {
	if len(cb.stack) <= 1 {
		return fmt.Errorf("cannot close the root directory directly; call Commit instead")
	}
	return cb.closeTop(ctx)
}

func (cb *CommitBuilder) closeTop(ctx context.Context) error {
	frame := cb.stack[len(cb.stack)-1]
	if len(frame.entries) == 0 {
		return &CancelledError{Path: frame.path}
	}
	treeOid, err := cb.repo.MkTree(ctx, entrySlice(frame.entries))
	if err != nil {
		return fmt.Errorf("close dir %q: %w", frame.path, err)
	}
	cb.stack = cb.stack[:len(cb.stack)-1]
	parent := cb.current()
	parent.entries[Basename(frame.path)] = git.TreeEntry{
		Mode: git.ModeTree, Type: "tree", Oid: treeOid, Name: Basename(frame.path),
	}
	return nil
}

func entrySlice(m map[string]git.TreeEntry) []git.TreeEntry {
	out := make([]git.TreeEntry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}

// SaveFile records a file entry in the current directory. modify=true
// requires name to already exist (else NotUpToDateError); modify=false
// requires it be absent (else NotUpToDateError). IncompleteDataError is
// returned if consumer yields no blob for a newly added file.
func (cb *CommitBuilder) SaveFile(ctx context.Context, name string, consumer FileDeltaConsumer, modify bool) error {
	frame := cb.current()
	_, exists := frame.entries[name]
	if modify && !exists {
		return &NotUpToDateError{Path: JoinPath(frame.path, name)}
	}
	if !modify && exists {
		return &NotUpToDateError{Path: JoinPath(frame.path, name)}
	}

	oid, props, err := consumer.Finish(ctx)
	if err != nil {
		return err
	}
	if oid == "" && !modify {
		return &IncompleteDataError{Path: JoinPath(frame.path, name)}
	}
	if oid == "" {
		// modify with no new content: keep the existing blob, only props changed.
		oid = frame.entries[name].Oid
	}

	frame.entries[name] = git.TreeEntry{Mode: modeForProps(props), Type: "blob", Oid: oid, Name: name}
	filePath := JoinPath(frame.path, name)
	cb.edited = append(cb.edited, filePath)
	if props != nil {
		cb.checks = append(cb.checks, propertyCheck{path: filePath, expected: props})
	}
	return nil
}

func modeForProps(props types.PropertyMap) string {
	switch {
	case props["svn:special"] == "*":
		return git.ModeSymlink
	case props["svn:executable"] != "":
		return git.ModeExec
	default:
		return git.ModeBlob
	}
}

// Delete removes name from the current directory; EntryNotFoundError if absent.
func (cb *CommitBuilder) Delete(name string) error {
	frame := cb.current()
	if _, ok := frame.entries[name]; !ok {
		return &EntryNotFoundError{Path: JoinPath(frame.path, name)}
	}
	delete(frame.entries, name)
	cb.edited = append(cb.edited, JoinPath(frame.path, name))
	return nil
}

// User identifies the committing principal).
type User struct {
	RealName string
	Email    string
}

// CommitResult carries a successfully pushed commit's new revision. Commit
// returns a nil CommitResult and an error satisfying errors.Is(err,
// ErrPushRejected) on a transient push race: the caller is
// expected to open a fresh CommitBuilder against the new latest revision
// and retry, rather than treat it as a hard failure.
type CommitResult struct {
	Revision types.Revision
}

// Commit assembles the root tree, inserts it, runs deferred property
// validation and the lock-token check, synthesizes a commit object, then
// attempts to push.
func (cb *CommitBuilder) Commit(ctx context.Context, user User, message string, suppliedTokens map[string]string, keepLocks bool) (*CommitResult, error) {
	for len(cb.stack) > 1 {
		if err := cb.closeTop(ctx); err != nil {
			return nil, err
		}
	}
	rootTree, err := cb.repo.MkTree(ctx, entrySlice(cb.stack[0].entries))
	if err != nil {
		return nil, fmt.Errorf("assemble root tree: %w", err)
	}

	if err := cb.validateProperties(ctx, rootTree); err != nil {
		return nil, err
	}

	editedPaths := cb.editedPaths()
	if err := cb.locks.ValidateForCommit(editedPaths, suppliedTokens); err != nil {
		return nil, err
	}

	var parents []string
	if cb.baseRevision.GitCommit != "" {
		parents = []string{cb.baseRevision.GitCommit}
	}
	sig := git.Signature{Name: user.RealName, Email: user.Email}
	commitOid, err := cb.repo.CommitTree(ctx, git.CommitOpts{
		Tree: rootTree, Parents: parents, Message: message, Author: sig, Committer: sig,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize commit: %w", err)
	}

	var result *CommitResult
	err = cb.pushMutex.WithPushLock(func() error {
		pushErr := cb.pusher.Push(ctx, cb.branch, commitOid, cb.baseRevision.GitCommit)
		if pushErr != nil {
			return pushErr
		}
		// Locks are consumed only now that the commit has actually landed:
		// consuming them before this point would let a retry after a
		// transient push failure proceed as if already unlocked.
		if err := cb.locks.ConsumeForCommit(editedPaths, suppliedTokens, keepLocks); err != nil {
			return err
		}
		if err := cb.store.Update(ctx); err != nil {
			return fmt.Errorf("extend revision store after push: %w", err)
		}
		rev, err := cb.store.ByGitCommit(commitOid)
		if err != nil {
			return err
		}
		result = &CommitResult{Revision: rev}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateProperties opens the prospective tree through the tree view and
// requires exact equality between every deferred check's expected
// properties and what the tree view derives.
func (cb *CommitBuilder) validateProperties(ctx context.Context, rootTree string) error {
	if len(cb.checks) == 0 {
		return nil
	}
	root := cb.tv.rootAtTree(rootTree)
	for _, check := range cb.checks {
		node := root
		if check.path != "" {
			found, ok, err := cb.navigateNode(ctx, root, Segments(check.path))
			if err != nil {
				return err
			}
			if !ok {
				return &EntryNotFoundError{Path: check.path}
			}
			node = found
		}
		actual, err := node.Properties(ctx, false)
		if err != nil {
			return err
		}
		if !actual.Equal(check.expected) {
			return &ReposHookFailureError{Path: check.path, Expected: check.expected, Actual: actual}
		}
	}
	return nil
}

func (cb *CommitBuilder) navigateNode(ctx context.Context, root *Node, segs []string) (*Node, bool, error) {
	node := root
	for _, seg := range segs {
		child, ok, err := node.Child(ctx, seg)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		node = child
	}
	return node, true, nil
}

// editedPaths returns every path this builder touched, file or directory,
// for the lock manager's commit-precondition check: every
// AddDir, SaveFile, and Delete target, plus any path with a deferred
// property check.
func (cb *CommitBuilder) editedPaths() []string {
	seen := make(map[string]bool)
	for _, p := range cb.edited {
		if p != "" {
			seen[p] = true
		}
	}
	for _, check := range cb.checks {
		if check.path != "" {
			seen[check.path] = true
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	return paths
}
