package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// TreeView is the read-only projection of a Git tree as SVN nodes. It is
// rooted once per revision; each Node caches its entries map
// and object loader lazily, on first descent.
type TreeView struct {
	repo     *git.Git
	registry *PropertyFactoryRegistry
	cache    *ContentCache
	store    RevisionStore
	uuid     string
	// linked lists repositories holding commits a submodule entry might
	// point at, consulted in order.
	linked []*git.Git
}

// NewTreeView builds a TreeView over repo, using registry to recognize and
// parse config files and store to answer last-change queries for the
// includeInternal svn:entry:* properties.
func NewTreeView(repo *git.Git, registry *PropertyFactoryRegistry, cache *ContentCache, store RevisionStore, repoUUID string, linked []*git.Git) *TreeView {
	return &TreeView{repo: repo, registry: registry, cache: cache, store: store, uuid: repoUUID, linked: linked}
}

// Root returns the root Node of the tree at the given revision. Revision 0
// has no Git commit and is represented as
// an empty directory.
func (tv *TreeView) Root(ctx context.Context, revisionID int64) (*Node, error) {
	rev, err := tv.store.ByID(revisionID)
	if err != nil {
		return nil, err
	}
	treeOid := ""
	if rev.GitCommit != "" {
		treeOid, err = tv.repo.ResolveTree(ctx, rev.GitCommit)
		if err != nil {
			return nil, fmt.Errorf("resolve root tree: %w", err)
		}
	}
	return &Node{
		tv:         tv,
		fullPath:   "",
		entry:      git.TreeEntry{Mode: git.ModeTree, Type: "tree", Oid: treeOid, Name: ""},
		revisionID: revisionID,
	}, nil
}

// rootAtTree roots a Node directly at an already-written tree object,
// bypassing the revision store; used by the commit builder to validate
// properties on a prospective commit that has no revision number yet.
// Only Properties(ctx, includeInternal=false) is safe to call on the
// result: includeInternal needs a real revision to look up svn:entry:* from.
func (tv *TreeView) rootAtTree(treeOid string) *Node {
	return &Node{
		tv:         tv,
		fullPath:   "",
		entry:      git.TreeEntry{Mode: git.ModeTree, Type: "tree", Oid: treeOid, Name: ""},
		revisionID: -1,
	}
}

// Node wraps one Git tree entry as an SVN node. Zero value is not
// usable; construct via TreeView.Root/Child.
type Node struct {
	tv         *TreeView
	fullPath   string
	entry      git.TreeEntry
	revisionID int64
	// ancestorFragments accumulates, in root-to-leaf order, every property
	// fragment contributed by an ancestor directory's own config files.
	ancestorFragments []PropertyFragment
	// submoduleRepo/submoduleTree are set when this node's subtree lives in
	// a linked repository rather than tv.repo.
	submoduleRepo *git.Git
	submoduleTree string

	mu            sync.Mutex
	childrenLoad  bool
	children      []git.TreeEntry
	ownFragments  []PropertyFragment
}

// Path returns the node's repository-absolute path.
func (n *Node) Path() string { return n.fullPath }

// Kind derives the SVN-facing kind from the Git file mode.
func (n *Node) Kind() types.NodeKind {
	switch n.entry.Mode {
	case git.ModeExec:
		return types.KindExecutableFile
	case git.ModeSymlink:
		return types.KindSymlink
	case git.ModeTree:
		return types.KindDir
	case git.ModeGitlink:
		return types.KindSubmodule
	default:
		return types.KindFile
	}
}

// IsDir reports whether the node behaves as a directory for traversal
// purposes: true for both plain directories and submodules.
func (n *Node) IsDir() bool {
	return n.entry.Mode == git.ModeTree || n.entry.Mode == git.ModeGitlink
}

func (n *Node) repo() *git.Git {
	if n.submoduleRepo != nil {
		return n.submoduleRepo
	}
	return n.tv.repo
}

// loadChildren lazily lists this directory's immediate entries and scans
// them for registered config file names, building ownFragments from any
// matches. Submodule resolution uses first-hit semantics across
// tv.linked.
func (n *Node) loadChildren(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.childrenLoad {
		return nil
	}
	n.childrenLoad = true

	if !n.IsDir() || n.entry.Oid == "" {
		return nil
	}

	repo := n.repo()
	treeOid := n.entry.Oid
	if n.entry.Mode == git.ModeGitlink && n.submoduleRepo == nil {
		found, linkedRepo, linkedTree := n.resolveSubmodule(ctx)
		if !found {
			return nil // no linked repository has this commit: empty directory
		}
		n.submoduleRepo = linkedRepo
		n.submoduleTree = linkedTree
		repo = linkedRepo
		treeOid = linkedTree
	}

	entries, err := repo.ReadTree(ctx, treeOid)
	if err != nil {
		return fmt.Errorf("read tree at %q: %w", n.fullPath, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	n.children = entries

	for _, e := range entries {
		if e.Type != "blob" || !n.tv.registry.Recognizes(e.Name) {
			continue
		}
		content, err := repo.ReadBlob(ctx, e.Oid)
		if err != nil {
			continue // a malformed config blob degrades to "no fragments", not a hard failure
		}
		n.ownFragments = append(n.ownFragments, n.tv.registry.FragmentsFor(e.Name, e.Oid, content)...)
	}
	return nil
}

// resolveSubmodule finds the first linked repository containing entry.Oid
// as a commit. Ordering of tv.linked is a configuration concern.
func (n *Node) resolveSubmodule(ctx context.Context) (found bool, repo *git.Git, treeOid string) {
	for _, candidate := range n.tv.linked {
		typ, err := candidate.ObjectType(ctx, n.entry.Oid)
		if err != nil || typ != "commit" {
			continue
		}
		tree, err := candidate.ResolveTree(ctx, n.entry.Oid)
		if err != nil {
			continue
		}
		return true, candidate, tree
	}
	return false, nil, ""
}

// childFragments returns the fragment list a child of this directory
// inherits: everything this node inherited, plus whatever this node's own
// config files contributed.
func (n *Node) childFragments() []PropertyFragment {
	combined := make([]PropertyFragment, 0, len(n.ancestorFragments)+len(n.ownFragments))
	combined = append(combined, n.ancestorFragments...)
	combined = append(combined, n.ownFragments...)
	return combined
}

// Children returns the node's immediate child nodes in name order.
func (n *Node) Children(ctx context.Context) ([]*Node, error) {
	if err := n.loadChildren(ctx); err != nil {
		return nil, err
	}
	n.mu.Lock()
	entries := n.children
	n.mu.Unlock()

	frags := n.childFragments()
	nodes := make([]*Node, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, n.newChild(e, frags))
	}
	return nodes, nil
}

// Child looks up one immediate child by name.
func (n *Node) Child(ctx context.Context, name string) (*Node, bool, error) {
	if err := n.loadChildren(ctx); err != nil {
		return nil, false, err
	}
	n.mu.Lock()
	entries := n.children
	n.mu.Unlock()

	for _, e := range entries {
		if e.Name == name {
			return n.newChild(e, n.childFragments()), true, nil
		}
	}
	return nil, false, nil
}

func (n *Node) newChild(e git.TreeEntry, frags []PropertyFragment) *Node {
	child := &Node{
		tv:                n.tv,
		fullPath:          JoinPath(n.fullPath, e.Name),
		entry:             e,
		revisionID:        n.revisionID,
		ancestorFragments: frags,
	}
	if n.submoduleRepo != nil {
		child.submoduleRepo = n.submoduleRepo
	}
	return child
}

// Basename returns the node's own name within its parent directory.
func (n *Node) Basename() string {
	return Basename(n.fullPath)
}

// Properties computes the node's effective SVN property map:
// ancestor fragments folded in root-to-leaf order, mode-derived properties,
// and, when includeInternal is set, the svn:entry:* metadata properties
// taken from the node's last-change revision.
func (n *Node) Properties(ctx context.Context, includeInternal bool) (types.PropertyMap, error) {
	m := types.PropertyMap{}
	for _, f := range n.ancestorFragments {
		f.Apply(n.Basename(), m)
	}
	if n.IsDir() {
		if err := n.loadChildren(ctx); err != nil {
			return nil, err
		}
		n.mu.Lock()
		own := n.ownFragments
		n.mu.Unlock()
		for _, f := range own {
			f.Apply("", m)
		}
	}
	for k, v := range ModeProperties(n.entry.Mode) {
		m[k] = v
	}
	if includeInternal {
		if err := n.applyInternalProperties(ctx, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (n *Node) applyInternalProperties(ctx context.Context, m types.PropertyMap) error {
	m["svn:entry:uuid"] = n.tv.uuid
	rev, ok := n.tv.store.LastChange(n.fullPath, n.revisionID)
	if !ok {
		rev = 0
	}
	info, err := n.tv.store.ByID(rev)
	if err != nil {
		return err
	}
	m["svn:entry:committed-rev"] = fmt.Sprintf("%d", info.ID)
	m["svn:entry:committed-date"] = info.Date().Format("2006-01-02T15:04:05.000000Z")
	m["svn:entry:last-author"] = info.Author
	return nil
}

// Size returns the node's content length, including the "link " prefix for
// symlinks.
func (n *Node) Size(ctx context.Context) (int64, error) {
	if n.Kind() == types.KindSymlink {
		target, err := n.symlinkTarget(ctx)
		if err != nil {
			return 0, err
		}
		return int64(len("link " + target)), nil
	}
	content, err := n.repo().ReadBlob(ctx, n.entry.Oid)
	if err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

// MD5 returns the MD5 of the node's raw content: for symlinks, of the
// synthetic "link "+target bytes.
func (n *Node) MD5(ctx context.Context) ([16]byte, error) {
	if n.Kind() == types.KindSymlink {
		target, err := n.symlinkTarget(ctx)
		if err != nil {
			return [16]byte{}, err
		}
		return MD5Bytes([]byte("link " + target)), nil
	}
	return n.tv.cache.MD5(ctx, n.entry.Oid)
}

// Open returns a reader over the node's content, symlink-wrapped when
// applicable.
func (n *Node) Open(ctx context.Context) (io.ReadCloser, error) {
	if n.Kind() == types.KindSymlink {
		target, err := n.symlinkTarget(ctx)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader([]byte("link " + target))), nil
	}
	content, err := n.repo().ReadBlob(ctx, n.entry.Oid)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (n *Node) symlinkTarget(ctx context.Context) (string, error) {
	content, err := n.repo().ReadBlob(ctx, n.entry.Oid)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
