package core

import (
	"context"
	"fmt"
	"time"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// Bridge is the top-level object wiring together the revision store, lock
// manager, tree view, and commit-builder factory for one repository.
type Bridge struct {
	repo   *git.Git
	config types.ServerConfig

	store    *FileRevisionStore
	locks    LockManager
	tv       *TreeView
	registry *PropertyFactoryRegistry
	cache    *ContentCache

	pusher    Pusher
	pushMutex *PushMutex

	log *Logger
}

// NewBridge opens the repository named in cfg.Repository and wires every
// subsystem the bridge needs. On a brand-new repository this bootstraps
// revision 0; on an existing one it replays the side branch into memory.
func NewBridge(ctx context.Context, cfg types.ServerConfig, progress types.ProgressTracker) (*Bridge, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("server config: repository is required")
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.PushMode == "" {
		cfg.PushMode = types.PushModeSimple
	}
	factoryNames := cfg.PropertyFactories
	if len(factoryNames) == 0 {
		factoryNames = DefaultPropertyFactories
	}

	repo := git.New(cfg.Repository)
	registry := NewPropertyFactoryRegistry(factoryNames, DefaultIgnoreDeriver{})
	cache := NewContentCache(repo)

	store, err := NewFileRevisionStore(ctx, RevisionStoreConfig{
		Repo:             repo,
		Branch:           cfg.Branch,
		SideBranchRef:    cfg.SideBranchRef,
		RenameDetection:  cfg.RenameDetection.Enabled,
		ThresholdPercent: thresholdOrDefault(cfg.RenameDetection.ThresholdPercent),
		Progress:         progress,
	})
	if err != nil {
		return nil, fmt.Errorf("open revision store: %w", err)
	}

	tv := NewTreeView(repo, registry, cache, store, store.RepositoryUUID(), nil)
	locks := NewInMemoryLockManager(store, &treeViewExistsChecker{tv: tv})
	pusher := PusherFor(cfg.PushMode, repo, "origin")

	b := &Bridge{
		repo:      repo,
		config:    cfg,
		store:     store,
		locks:     locks,
		tv:        tv,
		registry:  registry,
		cache:     cache,
		pusher:    pusher,
		pushMutex: &PushMutex{},
		log:       NewLogger(nil, "bridge"),
	}
	return b, nil
}

func thresholdOrDefault(pct int) int {
	if pct <= 0 {
		return DefaultRenameThresholdPercent
	}
	return pct
}

// treeViewExistsChecker adapts TreeView to lockmanager's pathExistsChecker,
// answering existence/kind queries against the latest revision.
type treeViewExistsChecker struct {
	tv *TreeView
}

func (c *treeViewExistsChecker) Exists(path string, revisionID int64) (bool, bool, error) {
	ctx := context.Background()
	root, err := c.tv.Root(ctx, revisionID)
	if err != nil {
		return false, false, err
	}
	node := root
	for _, seg := range Segments(path) {
		child, ok, err := node.Child(ctx, seg)
		if err != nil {
			return false, false, err
		}
		if !ok {
			return false, false, nil
		}
		node = child
	}
	return true, node.IsDir(), nil
}

// Latest returns the most recent mapped revision.
func (b *Bridge) Latest() types.Revision { return b.store.Latest() }

// ByID looks up a revision by id.
func (b *Bridge) ByID(id int64) (types.Revision, error) { return b.store.ByID(id) }

// ByDate finds the revision current as of t.
func (b *Bridge) ByDate(t time.Time) types.Revision { return b.store.ByDate(t) }

// ByGitCommit looks up the revision mapped to a Git commit.
func (b *Bridge) ByGitCommit(oid string) (types.Revision, error) { return b.store.ByGitCommit(oid) }

// LastChange returns path's last-change revision at or before beforeRev.
func (b *Bridge) LastChange(path string, beforeRev int64) (int64, bool) {
	return b.store.LastChange(path, beforeRev)
}

// RepositoryUUID returns the bridge's stable repository identity.
func (b *Bridge) RepositoryUUID() string { return b.store.RepositoryUUID() }

// Root opens the tree view at revisionID.
func (b *Bridge) Root(ctx context.Context, revisionID int64) (*Node, error) {
	return b.tv.Root(ctx, revisionID)
}

// Lock attempts to acquire locks on paths.
func (b *Bridge) Lock(paths map[string]int64, comment string, force bool, user string) map[string]LockResult {
	return b.locks.Lock(paths, comment, force, user)
}

// Unlock releases locks by token, or forcibly with breakLock.
func (b *Bridge) Unlock(tokens map[string]string, breakLock bool, user string) map[string]error {
	return b.locks.Unlock(tokens, breakLock, user)
}

// GetLock returns path's current lock, if any.
func (b *Bridge) GetLock(path string) (types.Lock, bool) { return b.locks.GetLock(path) }

// GetLocks returns every lock at or beneath prefix.
func (b *Bridge) GetLocks(prefix string) []types.Lock { return b.locks.GetLocks(prefix) }

// NewCommitBuilder opens a commit builder rooted at the current latest
// revision.
func (b *Bridge) NewCommitBuilder(ctx context.Context) (*CommitBuilder, error) {
	return NewCommitBuilder(ctx, b.repo, b.store, b.tv, b.locks, b.pusher, b.pushMutex, b.config.Branch)
}

// Update extends the revision store with any new commits on the user branch
//. Safe to call repeatedly; a no-op when nothing is new.
func (b *Bridge) Update(ctx context.Context) error {
	return b.store.Update(ctx)
}

// Config returns the server configuration the bridge was opened with.
func (b *Bridge) Config() types.ServerConfig { return b.config }
