package core

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/git-as-svn/bridge/internal/types"
)

// LockManager issues, validates, and releases SVN path locks.
type LockManager interface {
	Lock(paths map[string]int64, comment string, force bool, user string) map[string]LockResult
	Unlock(tokens map[string]string, breakLock bool, user string) map[string]error
	GetLock(path string) (types.Lock, bool)
	GetLocks(prefix string) []types.Lock
	// ValidateForCommit checks every edited path's lock against
	// suppliedTokens without mutating lock state. Run before a commit is
	// built and pushed, so a bad token never results in a pushed commit.
	ValidateForCommit(editedPaths []string, suppliedTokens map[string]string) error
	// ConsumeForCommit re-validates editedPaths against suppliedTokens and,
	// on success, consumes (removes, unless keepLocks) the locks of paths
	// the commit actually touched. Call only after the commit has been
	// durably pushed; consuming a lock for a commit that never landed
	// would let a concurrent writer race in on retry.
	ConsumeForCommit(editedPaths []string, suppliedTokens map[string]string, keepLocks bool) error
}

// LockResult is one path's outcome from a Lock call.
type LockResult struct {
	Lock types.Lock
	Err  error
}

// revisionLookup is the subset of RevisionStore the lock manager needs:
// existence and last-change checks against latest, without a dependency
// cycle on the full interface.
type revisionLookup interface {
	Latest() types.Revision
	LastChange(path string, beforeRev int64) (int64, bool)
}

// pathExistsChecker reports whether path exists at the latest revision and,
// if so, whether it is a directory. The tree view supplies this for the
// NotFile/OutOfDate lock preconditions.
type pathExistsChecker interface {
	Exists(path string, revisionID int64) (exists bool, isDir bool, err error)
}

// InMemoryLockManager is the sole LockManager implementation: a lock table
// guarded by one mutex.
type InMemoryLockManager struct {
	revisions revisionLookup
	paths     pathExistsChecker

	mu    sync.Mutex
	table map[string]types.Lock
}

// NewInMemoryLockManager builds a LockManager consulting revisions for
// last-change/existence checks.
func NewInMemoryLockManager(revisions revisionLookup, paths pathExistsChecker) *InMemoryLockManager {
	return &InMemoryLockManager{
		revisions: revisions,
		paths:     paths,
		table:     make(map[string]types.Lock),
	}
}

// Lock attempts to acquire a lock on each path.
func (m *InMemoryLockManager) Lock(paths map[string]int64, comment string, force bool, user string) map[string]LockResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make(map[string]LockResult, len(paths))
	latest := m.revisions.Latest()
	for path, revision := range paths {
		path = NormalizePath(path)
		exists, isDir, err := m.paths.Exists(path, latest.ID)
		if err != nil {
			results[path] = LockResult{Err: err}
			continue
		}
		if !exists {
			results[path] = LockResult{Err: &OutOfDateError{Path: path, PathMissing: true}}
			continue
		}
		if isDir {
			results[path] = LockResult{Err: &NotFileError{Path: path}}
			continue
		}
		lastChange, _ := m.revisions.LastChange(path, latest.ID)
		if revision < lastChange {
			results[path] = LockResult{Err: &OutOfDateError{Path: path, RequestedRev: revision, LastChangeRev: lastChange}}
			continue
		}
		if existing, ok := m.table[path]; ok && !force {
			results[path] = LockResult{Err: &PathAlreadyLockedError{Path: path, Owner: existing.Owner}}
			continue
		}

		lock := types.Lock{
			Path:               path,
			Token:              uuid.New().String(),
			Owner:              user,
			Comment:            comment,
			Created:            time.Now().UTC(),
			RevisionAtLockTime: revision,
		}
		m.table[path] = lock
		results[path] = LockResult{Lock: lock}
	}
	return results
}

// Unlock releases locks, requiring a matching token unless breakLock is set.
func (m *InMemoryLockManager) Unlock(tokens map[string]string, breakLock bool, user string) map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make(map[string]error, len(tokens))
	for path, token := range tokens {
		path = NormalizePath(path)
		existing, ok := m.table[path]
		if !ok {
			results[path] = &NoSuchLockError{Path: path}
			continue
		}
		if !breakLock && existing.Token != token {
			results[path] = &NoSuchLockError{Path: path}
			continue
		}
		delete(m.table, path)
		results[path] = nil
	}
	_ = user // retained for audit logging at the call site; not used for authorization here
	return results
}

// GetLock returns the current lock on path, if any.
func (m *InMemoryLockManager) GetLock(path string) (types.Lock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.table[NormalizePath(path)]
	return lock, ok
}

// GetLocks returns every lock whose path is prefix or beneath it.
func (m *InMemoryLockManager) GetLocks(prefix string) []types.Lock {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix = NormalizePath(prefix)
	var out []types.Lock
	for path, lock := range m.table {
		if IsDescendant(prefix, path) {
			out = append(out, lock)
		}
	}
	return out
}

// checkLocked walks every edited path plus its locked descendants and
// verifies suppliedTokens covers each one, returning the set of paths that
// are actually locked (and thus would be consumed). Caller holds m.mu.
func (m *InMemoryLockManager) checkLocked(editedPaths []string, suppliedTokens map[string]string) (map[string]bool, error) {
	locked := make(map[string]bool)
	for _, edited := range editedPaths {
		edited = NormalizePath(edited)
		for path, lock := range m.table {
			if path != edited && !strings.HasPrefix(path, edited+"/") {
				continue
			}
			token, supplied := suppliedTokens[path]
			if !supplied || token != lock.Token {
				return nil, &BadLockTokenError{Path: path}
			}
			locked[path] = true
		}
	}
	return locked, nil
}

// ValidateForCommit enforces the commit precondition: every edited
// path that is currently locked must have its token supplied, and deleting a
// directory requires every locked descendant's token too. Lock state is left
// untouched; call ConsumeForCommit after the commit is durably pushed.
func (m *InMemoryLockManager) ValidateForCommit(editedPaths []string, suppliedTokens map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.checkLocked(editedPaths, suppliedTokens)
	return err
}

// ConsumeForCommit re-checks editedPaths against suppliedTokens and, on
// success, removes the consumed locks unless keepLocks is true. Callers must
// only invoke this once the commit it validates has actually been pushed;
// consuming a lock before that lets a retried push proceed unlocked.
func (m *InMemoryLockManager) ConsumeForCommit(editedPaths []string, suppliedTokens map[string]string, keepLocks bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	consumed, err := m.checkLocked(editedPaths, suppliedTokens)
	if err != nil {
		return err
	}
	if !keepLocks {
		for path := range consumed {
			delete(m.table, path)
		}
	}
	return nil
}
