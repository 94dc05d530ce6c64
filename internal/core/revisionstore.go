package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// RevisionStore maps SVN revision numbers onto Git commits and answers
// revision-history queries.
type RevisionStore interface {
	Latest() types.Revision
	ByID(id int64) (types.Revision, error)
	ByDate(t time.Time) types.Revision
	ByGitCommit(oid string) (types.Revision, error)
	// LastChange returns the largest revision <= beforeRev in which path was
	// modified. ok is false if path does not exist at beforeRev (never
	// changed, or its most recent change before beforeRev was a delete).
	LastChange(path string, beforeRev int64) (rev int64, ok bool)
	Update(ctx context.Context) error
}

type lastChangeEntry struct {
	Rev     int64
	Deleted bool
}

type dateEntry struct {
	dateMillis int64
	id         int64
}

// FileRevisionStore is the sole RevisionStore implementation: a persistent,
// append-only cache of SVN revisions anchored to cache commits on a
// side-branch ref. It owns the revisions vector and its
// auxiliary indexes exclusively; readers take the
// shared lock, Update takes the exclusive lock only for the index-mutation
// phase.
type FileRevisionStore struct {
	repo          *git.Git
	branch        string
	sideBranchRef string
	collector     *ChangeCollector
	renamer       Renamer
	progress      types.ProgressTracker

	mu         sync.RWMutex
	revisions  []types.Revision
	byDate     []dateEntry
	byHash     map[string]int64
	repoUUID   string

	lastChangeMu sync.Mutex
	lastChange   map[string]*atomic.Pointer[[]lastChangeEntry]
}

// RevisionStoreConfig configures NewFileRevisionStore.
type RevisionStoreConfig struct {
	Repo             *git.Git
	Branch           string
	SideBranchRef    string
	RenameDetection  bool
	ThresholdPercent int
	Progress         types.ProgressTracker
}

// NewFileRevisionStore opens (or bootstraps) the revision store for cfg. On
// a brand new repository this creates the synthetic revision 0 cache
// commit; on an existing one it replays the side-branch chain into memory.
func NewFileRevisionStore(ctx context.Context, cfg RevisionStoreConfig) (*FileRevisionStore, error) {
	if cfg.SideBranchRef == "" {
		cfg.SideBranchRef = DefaultSideBranchRef(cfg.Branch)
	}
	progress := cfg.Progress
	if progress == nil {
		progress = noopProgressTracker{}
	}
	var renamer Renamer = NoopRenameDetector{}
	if cfg.RenameDetection {
		renamer = NewRenameDetector(cfg.Repo, cfg.ThresholdPercent)
	}

	s := &FileRevisionStore{
		repo:          cfg.Repo,
		branch:        cfg.Branch,
		sideBranchRef: cfg.SideBranchRef,
		collector:     NewChangeCollector(cfg.Repo),
		renamer:       renamer,
		progress:      progress,
		byHash:        make(map[string]int64),
		lastChange:    make(map[string]*atomic.Pointer[[]lastChangeEntry]),
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// load replays the existing side-branch chain, or bootstraps revision 0 if
// the side branch does not exist yet.
func (s *FileRevisionStore) load(ctx context.Context) error {
	tip, err := s.repo.ResolveRef(ctx, s.sideBranchRef)
	if err != nil {
		return s.bootstrapRevisionZero(ctx)
	}

	metas, err := s.repo.WalkFirstParent(ctx, tip, "")
	if err != nil {
		return fmt.Errorf("load side branch: %w", err)
	}
	for _, m := range metas {
		if err := s.appendFromCacheCommit(ctx, m.Hash, m.Tree); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileRevisionStore) bootstrapRevisionZero(ctx context.Context) error {
	changeBlob, err := s.repo.HashObject(ctx, EncodeCacheRevision(types.CacheRevision{Revision: 0}))
	if err != nil {
		return fmt.Errorf("bootstrap revision 0: %w", err)
	}
	refBlob, err := s.repo.HashObject(ctx, nil)
	if err != nil {
		return fmt.Errorf("bootstrap revision 0: %w", err)
	}
	s.repoUUID = uuid.New().String()
	uuidBlob, err := s.repo.HashObject(ctx, []byte(s.repoUUID))
	if err != nil {
		return fmt.Errorf("bootstrap revision 0: %w", err)
	}

	tree, err := s.repo.MkTree(ctx, []git.TreeEntry{
		{Mode: git.ModeBlob, Type: "blob", Oid: refBlob, Name: CacheEntryCommitRef},
		{Mode: git.ModeBlob, Type: "blob", Oid: changeBlob, Name: CacheEntryChange},
		{Mode: git.ModeBlob, Type: "blob", Oid: uuidBlob, Name: CacheEntryUUID},
	})
	if err != nil {
		return fmt.Errorf("bootstrap revision 0: %w", err)
	}

	sig := git.Signature{Name: CacheCommitAuthorName, Email: CacheCommitAuthorMail, When: time.Unix(0, 0).UTC()}
	commitOid, err := s.repo.CommitTree(ctx, git.CommitOpts{Tree: tree, Author: sig, Committer: sig, Message: "revision 0"})
	if err != nil {
		return fmt.Errorf("bootstrap revision 0: %w", err)
	}
	if err := s.repo.UpdateRef(ctx, s.sideBranchRef, commitOid); err != nil {
		return fmt.Errorf("bootstrap revision 0: %w", err)
	}

	s.appendRevision(types.Revision{ID: 0, CacheCommit: commitOid}, true)
	return nil
}

// appendFromCacheCommit parses one cache commit's tree into a Revision and
// appends it, used both by load (replay) and Update (after extension).
func (s *FileRevisionStore) appendFromCacheCommit(ctx context.Context, cacheCommit, tree string) error {
	entries, err := s.repo.ReadTree(ctx, tree)
	if err != nil {
		return fmt.Errorf("read cache commit tree: %w", err)
	}
	var changeBlob, uuidBlob string
	for _, e := range entries {
		switch e.Name {
		case CacheEntryChange:
			changeBlob = e.Oid
		case CacheEntryUUID:
			uuidBlob = e.Oid
		}
	}
	if changeBlob == "" {
		return fmt.Errorf("cache commit %s missing %s", cacheCommit, CacheEntryChange)
	}
	raw, err := s.repo.ReadBlob(ctx, changeBlob)
	if err != nil {
		return fmt.Errorf("read change.json: %w", err)
	}
	cr, err := DecodeCacheRevision(raw)
	if err != nil {
		return err
	}
	if uuidBlob != "" {
		u, err := s.repo.ReadBlob(ctx, uuidBlob)
		if err == nil {
			s.repoUUID = string(u)
		}
	}

	var author, message string
	var dateMillis int64
	monotone := true
	if cr.GitCommit != "" {
		meta, err := s.readCommitMetaCached(ctx, cr.GitCommit)
		if err != nil {
			return err
		}
		author = meta.AuthorName
		message = meta.Message
		dateMillis = meta.AuthorDate.UnixMilli()
		s.mu.RLock()
		if len(s.revisions) > 0 && dateMillis < s.revisions[len(s.revisions)-1].DateMillis {
			monotone = false
		}
		s.mu.RUnlock()
	}

	renames := make(map[string]string, len(cr.Renames))
	for _, p := range cr.Renames {
		renames[p.NewPath] = p.OldPath
	}

	rev := types.Revision{
		ID:          cr.Revision,
		CacheCommit: cacheCommit,
		GitCommit:   cr.GitCommit,
		DateMillis:  dateMillis,
		Author:      author,
		Message:     message,
		Renames:     renames,
	}
	s.appendRevision(rev, monotone)

	for _, fc := range cr.FileChange {
		s.recordLastChange(fc.Path, rev.ID, fc.Change.IsDelete())
	}
	if cr.GitCommit != "" {
		s.mu.Lock()
		s.byHash[cr.GitCommit] = rev.ID
		s.mu.Unlock()
	}
	return nil
}

func (s *FileRevisionStore) readCommitMetaCached(ctx context.Context, hash string) (git.CommitMeta, error) {
	return s.repo.CommitMeta(ctx, hash)
}

func (s *FileRevisionStore) appendRevision(rev types.Revision, monotoneDate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions = append(s.revisions, rev)
	// Date index invariant: a revision whose commit time is
	// older than the current maximum is still appended to the sequence but
	// skipped from the date index, so byDate stays monotone.
	if monotoneDate {
		s.byDate = append(s.byDate, dateEntry{dateMillis: rev.DateMillis, id: rev.ID})
	}
}

// recordLastChange appends rev to path's last-change list using a
// compute-and-replace primitive: the slice pointer is swapped via
// atomic.Pointer so concurrent readers see either the pre- or post-append
// list, never a torn one.
func (s *FileRevisionStore) recordLastChange(path string, rev int64, deleted bool) {
	s.lastChangeMu.Lock()
	p, ok := s.lastChange[path]
	if !ok {
		p = &atomic.Pointer[[]lastChangeEntry]{}
		s.lastChange[path] = p
	}
	s.lastChangeMu.Unlock()

	for {
		old := p.Load()
		var next []lastChangeEntry
		if old != nil {
			next = make([]lastChangeEntry, len(*old), len(*old)+1)
			copy(next, *old)
		}
		next = append(next, lastChangeEntry{Rev: rev, Deleted: deleted})
		if p.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Latest never fails; revision 0 is guaranteed to exist.
func (s *FileRevisionStore) Latest() types.Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisions[len(s.revisions)-1]
}

// ByID fails with NoSuchRevisionError if n is outside [0, latest.id].
func (s *FileRevisionStore) ByID(n int64) (types.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 || int(n) >= len(s.revisions) {
		return types.Revision{}, &NoSuchRevisionError{Requested: fmt.Sprintf("%d", n)}
	}
	return s.revisions[n], nil
}

// ByDate returns the largest id with date <= t, falling back to revision 0.
func (s *FileRevisionStore) ByDate(t time.Time) types.Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target := t.UnixMilli()
	idx := sort.Search(len(s.byDate), func(i int) bool { return s.byDate[i].dateMillis > target })
	if idx == 0 {
		return s.revisions[0]
	}
	return s.revisions[s.byDate[idx-1].id]
}

// ByGitCommit fails with NoSuchRevisionError if oid is not mapped.
func (s *FileRevisionStore) ByGitCommit(oid string) (types.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[oid]
	if !ok {
		return types.Revision{}, &NoSuchRevisionError{Requested: oid}
	}
	return s.revisions[id], nil
}

// LastChange implements the contract documented on the RevisionStore interface.
func (s *FileRevisionStore) LastChange(path string, beforeRev int64) (int64, bool) {
	s.lastChangeMu.Lock()
	p, ok := s.lastChange[path]
	s.lastChangeMu.Unlock()
	if !ok {
		return 0, false
	}
	list := p.Load()
	if list == nil {
		return 0, false
	}
	entries := *list
	idx := sort.Search(len(entries), func(i int) bool { return entries[i].Rev > beforeRev })
	if idx == 0 {
		return 0, false
	}
	last := entries[idx-1]
	if last.Deleted {
		return 0, false
	}
	return last.Rev, true
}

// RepositoryUUID returns the stable repository id minted at revision 0.
func (s *FileRevisionStore) RepositoryUUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repoUUID
}

// Update runs the cache extension algorithm: walk the new
// first-parent commits on the user branch, build a cache revision for each,
// and append it to the side branch before folding the results into the
// in-memory indexes.
func (s *FileRevisionStore) Update(ctx context.Context) error {
	head, err := s.repo.ResolveRef(ctx, "refs/heads/"+s.branch)
	if err != nil {
		return fmt.Errorf("resolve branch %s: %w", s.branch, err)
	}

	latest := s.Latest()
	stopAt := latest.GitCommit

	metas, err := s.repo.WalkFirstParent(ctx, head, stopAt)
	if err != nil {
		return fmt.Errorf("walk new commits: %w", err)
	}
	if len(metas) == 0 {
		return nil
	}
	s.progress.SetTotal(len(metas))

	cacheTip := latest.CacheCommit
	parentTree := ""
	if latest.GitCommit != "" {
		parentTree, err = s.repo.ResolveTree(ctx, latest.GitCommit)
		if err != nil {
			return fmt.Errorf("resolve parent tree: %w", err)
		}
	}

	for _, m := range metas {
		changes, err := s.collector.Collect(ctx, parentTree, m.Tree)
		if err != nil {
			s.progress.Fail(err)
			return err
		}
		renames, err := s.renamer.Detect(ctx, parentTree, m.Tree)
		if err != nil {
			s.progress.Fail(err)
			return err
		}

		nextID := s.Latest().ID + 1
		cr := types.CacheRevision{Revision: nextID, GitCommit: m.Hash, Renames: renames, FileChange: changes}

		changeBlob, err := s.repo.HashObject(ctx, EncodeCacheRevision(cr))
		if err != nil {
			return err
		}
		refBlob, err := s.repo.HashObject(ctx, []byte(m.Hash))
		if err != nil {
			return err
		}
		tree, err := s.repo.MkTree(ctx, []git.TreeEntry{
			{Mode: git.ModeBlob, Type: "blob", Oid: refBlob, Name: CacheEntryCommitRef},
			{Mode: git.ModeBlob, Type: "blob", Oid: changeBlob, Name: CacheEntryChange},
		})
		if err != nil {
			return err
		}

		sig := git.Signature{Name: CacheCommitAuthorName, Email: CacheCommitAuthorMail, When: m.AuthorDate}
		cacheCommit, err := s.repo.CommitTree(ctx, git.CommitOpts{
			Tree: tree, Parents: []string{cacheTip}, Author: sig, Committer: sig,
			Message: fmt.Sprintf("r%d", nextID),
		})
		if err != nil {
			return err
		}
		if err := s.repo.UpdateRefCAS(ctx, s.sideBranchRef, cacheCommit, cacheTip); err != nil {
			s.progress.Fail(err)
			return fmt.Errorf("fast-forward side branch: %w", err)
		}

		if err := s.appendFromCacheCommit(ctx, cacheCommit, tree); err != nil {
			return err
		}

		cacheTip = cacheCommit
		parentTree = m.Tree
		s.progress.Increment(fmt.Sprintf("r%d <- %s", nextID, m.Hash[:minInt(8, len(m.Hash))]))
	}

	s.progress.Complete()
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

type noopProgressTracker struct{}

func (noopProgressTracker) Increment(string) {}
func (noopProgressTracker) SetTotal(int)     {}
func (noopProgressTracker) Complete()        {}
func (noopProgressTracker) Fail(error)       {}
