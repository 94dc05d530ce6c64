package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	git "github.com/git-as-svn/bridge/pkg/gitobj"
	"github.com/git-as-svn/bridge/pkg/gitobj/testutil"
)

// Collect classifies adds, modifies, and deletes between two trees, sorted
// by path, with the absent side of an add/delete left empty.
func TestChangeCollector_AddModifyDelete(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	c1 := repo.Commit("seed", map[string]string{"a.txt": "1", "b.txt": "1"})
	if err := os.Remove(filepath.Join(repo.Dir, "b.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	repo.WriteFile("a.txt", "2")
	repo.WriteFile("c.txt", "1")
	repo.StageFile(".")
	c2 := repo.Commit("churn", nil)

	g := git.New(repo.Dir)
	ctx := context.Background()
	tree1, err := g.ResolveTree(ctx, c1)
	if err != nil {
		t.Fatalf("ResolveTree(c1): %v", err)
	}
	tree2, err := g.ResolveTree(ctx, c2)
	if err != nil {
		t.Fatalf("ResolveTree(c2): %v", err)
	}

	pairs, err := NewChangeCollector(g).Collect(ctx, tree1, tree2)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d changes, want 3: %+v", len(pairs), pairs)
	}

	// sorted: a.txt (modify), b.txt (delete), c.txt (add)
	if pairs[0].Path != "a.txt" || pairs[0].Change.IsAdd() || pairs[0].Change.IsDelete() {
		t.Fatalf("pairs[0] = %+v, want modify of a.txt", pairs[0])
	}
	if pairs[1].Path != "b.txt" || !pairs[1].Change.IsDelete() {
		t.Fatalf("pairs[1] = %+v, want delete of b.txt", pairs[1])
	}
	if pairs[2].Path != "c.txt" || !pairs[2].Change.IsAdd() {
		t.Fatalf("pairs[2] = %+v, want add of c.txt", pairs[2])
	}
}

// Diffing against an empty old tree (the repository's first commit) reports
// every path as an add, recursively.
func TestChangeCollector_FirstCommitDiffsAgainstEmptyTree(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	c1 := repo.Commit("seed", map[string]string{"top.txt": "1", "dir/nested.txt": "1"})

	g := git.New(repo.Dir)
	ctx := context.Background()
	tree1, err := g.ResolveTree(ctx, c1)
	if err != nil {
		t.Fatalf("ResolveTree: %v", err)
	}

	pairs, err := NewChangeCollector(g).Collect(ctx, "", tree1)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d changes, want 2: %+v", len(pairs), pairs)
	}
	for _, p := range pairs {
		if !p.Change.IsAdd() {
			t.Fatalf("%s should be an add: %+v", p.Path, p.Change)
		}
	}
	if pairs[0].Path != "dir/nested.txt" || pairs[1].Path != "top.txt" {
		t.Fatalf("paths = %s, %s; want dir/nested.txt, top.txt", pairs[0].Path, pairs[1].Path)
	}
}

// Deleting a directory expands to deletes of every descendant file.
func TestChangeCollector_DirectoryDeleteExpandsToDescendants(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	c1 := repo.Commit("seed", map[string]string{
		"d/a.txt":     "1",
		"d/sub/b.txt": "1",
		"keep.txt":    "1",
	})
	if err := os.RemoveAll(filepath.Join(repo.Dir, "d")); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	repo.StageFile(".")
	c2 := repo.Commit("drop d", nil)

	g := git.New(repo.Dir)
	ctx := context.Background()
	tree1, _ := g.ResolveTree(ctx, c1)
	tree2, _ := g.ResolveTree(ctx, c2)

	pairs, err := NewChangeCollector(g).Collect(ctx, tree1, tree2)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := map[string]bool{"d/a.txt": true, "d/sub/b.txt": true}
	if len(pairs) != len(want) {
		t.Fatalf("got %d changes, want %d: %+v", len(pairs), len(want), pairs)
	}
	for _, p := range pairs {
		if !want[p.Path] || !p.Change.IsDelete() {
			t.Fatalf("unexpected change %+v", p)
		}
	}
}
