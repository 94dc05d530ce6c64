package core

import (
	"context"
	"strings"
	"testing"

	"github.com/git-as-svn/bridge/internal/types"
	"github.com/git-as-svn/bridge/pkg/gitobj/testutil"
)

func testUser() User {
	return User{RealName: "Test User", Email: "test@example.com"}
}

// A new file added and committed with no asserted properties round-trips:
// the commit succeeds and the new revision's tree contains the file.
func TestCommitBuilder_SaveFileRoundTrip(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("hello"), nil)
	if err := cb.SaveFile(context.Background(), "new.txt", consumer, false); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	result, err := cb.Commit(context.Background(), testUser(), "add new.txt", nil, false)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.Revision.ID != bridge.Latest().ID {
		t.Fatalf("commit result revision %d does not match bridge latest %d", result.Revision.ID, bridge.Latest().ID)
	}

	root, err := bridge.Root(context.Background(), result.Revision.ID)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	child, ok, err := root.Child(context.Background(), "new.txt")
	if err != nil || !ok {
		t.Fatalf("new.txt missing from committed tree: ok=%v err=%v", ok, err)
	}
	if child.IsDir() {
		t.Fatal("new.txt should not be a directory")
	}
}

// CheckDirProperties asserts the directory's derived properties match once
// the prospective tree exists; a plain directory with no ignore fragments
// derives an empty property map, so asserting {} succeeds.
func TestCommitBuilder_CheckDirPropertiesMatch(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.AddDir(context.Background(), "newdir", ""); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("x"), nil)
	if err := cb.SaveFile(context.Background(), "inside.txt", consumer, false); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	cb.CheckDirProperties(types.PropertyMap{})
	if err := cb.CloseDir(context.Background()); err != nil {
		t.Fatalf("CloseDir: %v", err)
	}

	if _, err := cb.Commit(context.Background(), testUser(), "add newdir", nil, false); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

// A property assertion that disagrees with the tree view's derived
// properties fails the commit with ReposHookFailureError, and the push
// never happens (latest revision is unchanged).
func TestCommitBuilder_PropertyMismatchRejectsCommit(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)
	before := bridge.Latest()

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	// svn:mime-type is not derivable from any ancestor fragment or blob mode,
	// so asserting it here can never match what the tree view derives.
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("hi"), types.PropertyMap{"svn:mime-type": "text/plain"})
	if err := cb.SaveFile(context.Background(), "typed.txt", consumer, false); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	_, err = cb.Commit(context.Background(), testUser(), "bad props", nil, false)
	if !IsReposHookFailure(err) {
		t.Fatalf("Commit with mismatched properties = %v, want ReposHookFailureError", err)
	}
	if bridge.Latest().ID != before.ID {
		t.Fatalf("latest revision advanced despite rejected commit: %d -> %d", before.ID, bridge.Latest().ID)
	}
}

// Commit requires the token for every path it edits, including paths
// touched only via Delete, the lock-validation integration this package
// relies on editedPaths() to drive correctly.
func TestCommitBuilder_CommitRequiresLockTokenForDeletedPath(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)
	latest := bridge.Latest().ID

	locked := bridge.Lock(map[string]int64{"file1.txt": latest}, "", false, "alice")
	if locked["file1.txt"].Err != nil {
		t.Fatalf("lock: %v", locked["file1.txt"].Err)
	}
	token := locked["file1.txt"].Lock.Token

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.Delete("file1.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := cb.Commit(context.Background(), testUser(), "delete locked file", nil, false); !IsBadLockToken(err) {
		t.Fatalf("Commit without token for deleted locked path = %v, want BadLockTokenError", err)
	}

	cb2, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder (retry): %v", err)
	}
	if err := cb2.Delete("file1.txt"); err != nil {
		t.Fatalf("Delete (retry): %v", err)
	}
	if _, err := cb2.Commit(context.Background(), testUser(), "delete locked file", map[string]string{"file1.txt": token}, false); err != nil {
		t.Fatalf("Commit with token: %v", err)
	}
}

// Deleting an entry that does not exist in the current directory frame
// fails with EntryNotFoundError.
func TestCommitBuilder_DeleteMissingEntry(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.Delete("does-not-exist.txt"); !IsEntryNotFound(err) {
		t.Fatalf("Delete(missing) = %v, want EntryNotFoundError", err)
	}
}

// AddDir colliding with an existing name fails with AlreadyExistsError.
func TestCommitBuilder_AddDirCollision(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.AddDir(context.Background(), "file1.txt", ""); !IsAlreadyExists(err) {
		t.Fatalf("AddDir(colliding name) = %v, want AlreadyExistsError", err)
	}
}

// CloseDir on an empty directory frame fails: Git cannot represent an empty
// tree as an entry.
func TestCommitBuilder_CloseDirEmptyFails(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.AddDir(context.Background(), "empty", ""); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if err := cb.CloseDir(context.Background()); !IsCancelled(err) {
		t.Fatalf("CloseDir(empty) = %v, want CancelledError", err)
	}
}

// CheckUpToDate distinguishes a missing path from a stale one.
func TestCommitBuilder_CheckUpToDate(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.Commit("add a", map[string]string{"a.txt": "1"})
	repo.Commit("edit a", map[string]string{"a.txt": "2"})
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.CheckUpToDate(context.Background(), "missing.txt", 2); !IsEntryNotFound(err) {
		t.Fatalf("CheckUpToDate(missing) = %v, want EntryNotFoundError", err)
	}
	if err := cb.CheckUpToDate(context.Background(), "a.txt", 1); !IsNotUpToDate(err) {
		t.Fatalf("CheckUpToDate(stale) = %v, want NotUpToDateError", err)
	}
	if err := cb.CheckUpToDate(context.Background(), "a.txt", 2); err != nil {
		t.Fatalf("CheckUpToDate(current) = %v, want nil", err)
	}
}

// SaveFile's modify flag must agree with whether the name already exists.
func TestCommitBuilder_SaveFileModifyFlagMismatch(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("x"), nil)
	if err := cb.SaveFile(context.Background(), "file1.txt", consumer, false); !IsNotUpToDate(err) {
		t.Fatalf("SaveFile(add over existing) = %v, want NotUpToDateError", err)
	}
	if err := cb.SaveFile(context.Background(), "missing.txt", consumer, true); !IsNotUpToDate(err) {
		t.Fatalf("SaveFile(modify missing) = %v, want NotUpToDateError", err)
	}
}

// An added file whose delta consumer yields no content fails with
// IncompleteDataError before anything reaches the object database.
func TestCommitBuilder_SaveFileWithoutContent(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	empty := NewBytesDeltaConsumer(bridge.repo, nil, nil)
	if err := cb.SaveFile(context.Background(), "new.txt", empty, false); !IsIncompleteData(err) {
		t.Fatalf("SaveFile(no content) = %v, want IncompleteDataError", err)
	}
}

// Asserting empty properties on a directory whose .gitignore derives
// svn:ignore rejects the commit, and the failure names both the property
// and the config file so the client knows what to reconcile.
func TestCommitBuilder_IgnoreMismatchNamesPropertyAndConfigFile(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.Commit("seed", map[string]string{".gitignore": "*.log\n", "a.txt": "1"})
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	cb.CheckDirProperties(types.PropertyMap{})
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("x"), nil)
	if err := cb.SaveFile(context.Background(), "b.txt", consumer, false); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	_, err = cb.Commit(context.Background(), testUser(), "mismatched root props", nil, false)
	if !IsReposHookFailure(err) {
		t.Fatalf("Commit = %v, want ReposHookFailureError", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "svn:ignore") {
		t.Errorf("error message does not mention svn:ignore: %s", msg)
	}
	if !strings.Contains(msg, ".gitignore") {
		t.Errorf("error message does not mention .gitignore: %s", msg)
	}
}

// When the asserted properties match what the tree view derives, the commit
// lands, and reading the new revision back reports exactly the properties
// the builder checked.
func TestCommitBuilder_PropertyRoundTrip(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.Commit("seed", map[string]string{".gitignore": "*.log\n", "a.txt": "1"})
	bridge := openBridge(t, repo)

	expected := types.PropertyMap{"svn:ignore": "*.log"}

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	cb.CheckDirProperties(expected)
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("x"), nil)
	if err := cb.SaveFile(context.Background(), "b.txt", consumer, false); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	result, err := cb.Commit(context.Background(), testUser(), "matching root props", nil, false)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	root, err := bridge.Root(context.Background(), result.Revision.ID)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	actual, err := root.Properties(context.Background(), false)
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if !actual.Equal(expected) {
		t.Fatalf("post-commit properties = %v, want %v", actual, expected)
	}
}

// A commit that edits a locked file with keepLocks=true leaves the lock and
// its token in place; a second commit with keepLocks=false consumes it.
func TestCommitBuilder_CommitKeepLocks(t *testing.T) {
	repo := testutil.LinearHistory(t, 1)
	bridge := openBridge(t, repo)
	latest := bridge.Latest().ID

	locked := bridge.Lock(map[string]int64{"file1.txt": latest}, "", false, "alice")
	if locked["file1.txt"].Err != nil {
		t.Fatalf("lock: %v", locked["file1.txt"].Err)
	}
	token := locked["file1.txt"].Lock.Token
	tokens := map[string]string{"file1.txt": token}

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("edit 1"), nil)
	if err := cb.SaveFile(context.Background(), "file1.txt", consumer, true); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if _, err := cb.Commit(context.Background(), testUser(), "keep the lock", tokens, true); err != nil {
		t.Fatalf("Commit(keepLocks=true): %v", err)
	}
	held, ok := bridge.GetLock("file1.txt")
	if !ok || held.Token != token {
		t.Fatalf("lock after keepLocks=true commit = (%+v, %v), want original token held", held, ok)
	}

	cb2, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder (second): %v", err)
	}
	consumer = NewBytesDeltaConsumer(bridge.repo, []byte("edit 2"), nil)
	if err := cb2.SaveFile(context.Background(), "file1.txt", consumer, true); err != nil {
		t.Fatalf("SaveFile (second): %v", err)
	}
	if _, err := cb2.Commit(context.Background(), testUser(), "consume the lock", tokens, false); err != nil {
		t.Fatalf("Commit(keepLocks=false): %v", err)
	}
	if _, ok := bridge.GetLock("file1.txt"); ok {
		t.Fatal("lock should be consumed by a keepLocks=false commit")
	}
}

// OpenDir descends into an existing directory; edits inside it surface at
// the right nested path in the committed tree.
func TestCommitBuilder_NestedEdit(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.Commit("seed", map[string]string{"dir/existing.txt": "1"})
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.OpenDir(context.Background(), "missing"); !IsEntryNotFound(err) {
		t.Fatalf("OpenDir(missing) = %v, want EntryNotFoundError", err)
	}
	if err := cb.OpenDir(context.Background(), "dir"); err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	consumer := NewBytesDeltaConsumer(bridge.repo, []byte("nested"), nil)
	if err := cb.SaveFile(context.Background(), "added.txt", consumer, false); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if err := cb.CloseDir(context.Background()); err != nil {
		t.Fatalf("CloseDir: %v", err)
	}

	result, err := cb.Commit(context.Background(), testUser(), "nested add", nil, false)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	node := childOf(t, bridge, result.Revision.ID, "dir/added.txt")
	if node.IsDir() {
		t.Fatal("dir/added.txt should be a file")
	}
}

// AddDir with a source directory seeds the new directory from the existing
// tree (copy semantics).
func TestCommitBuilder_AddDirWithSource(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.Commit("seed", map[string]string{"src/a.txt": "1", "src/b.txt": "2"})
	bridge := openBridge(t, repo)

	cb, err := bridge.NewCommitBuilder(context.Background())
	if err != nil {
		t.Fatalf("NewCommitBuilder: %v", err)
	}
	if err := cb.AddDir(context.Background(), "copy", "src"); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	if err := cb.CloseDir(context.Background()); err != nil {
		t.Fatalf("CloseDir: %v", err)
	}
	result, err := cb.Commit(context.Background(), testUser(), "copy src", nil, false)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for _, p := range []string{"copy/a.txt", "copy/b.txt", "src/a.txt"} {
		childOf(t, bridge, result.Revision.ID, p)
	}
}
