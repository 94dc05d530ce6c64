package testutil

import (
	"fmt"
	"testing"
)

// LinearHistory creates a repo with n sequential commits on the default branch.
// Exercises the revision store's plain append path: each new first-parent
// commit becomes exactly one new revision.
func LinearHistory(t *testing.T, n int) *TestRepo {
	t.Helper()
	repo := NewTestRepo(t)
	for i := 1; i <= n; i++ {
		repo.Commit(
			fmt.Sprintf("commit %d", i),
			map[string]string{
				fmt.Sprintf("file%d.txt", i): fmt.Sprintf("content %d", i),
			},
		)
	}
	return repo
}

// DiamondMerge creates a repo with a feature branch merged back to the
// default branch. The merge commit's second parent (the feature branch) must
// never surface as its own revision: only the first-parent chain maps to SVN
// history.
func DiamondMerge(t *testing.T) *TestRepo {
	t.Helper()
	repo := NewTestRepo(t)
	repo.Commit("initial", map[string]string{"README.md": "init"})
	mainBranch := repo.CurrentBranch()
	repo.Branch("feature")
	repo.Commit("feature work", map[string]string{"feature.txt": "work"})
	repo.Checkout(mainBranch)
	repo.Merge("feature")
	return repo
}

// RenameHistory creates a repo where a file is renamed with no content
// change, then edited in place under its new name, giving the rename
// detector a 100%-similarity pair and a content-only change.
func RenameHistory(t *testing.T) *TestRepo {
	t.Helper()
	repo := NewTestRepo(t)
	repo.Commit("add original", map[string]string{
		"src/old_name.go": "package main\n\nfunc main() {}\n",
	})
	repo.StageFile(".")
	removeAndWrite(t, repo, "src/old_name.go", "src/new_name.go",
		"package main\n\nfunc main() {}\n")
	repo.Commit("pure rename", nil)
	removeAndWrite(t, repo, "src/new_name.go", "src/new_name.go",
		"package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	repo.Commit("edit after rename", nil)
	return repo
}

// removeAndWrite simulates a rename by deleting the old path and writing the
// new one in the same working tree snapshot, ahead of the next Commit call.
func removeAndWrite(t *testing.T, repo *TestRepo, oldPath, newPath, content string) {
	t.Helper()
	run(t, repo.Dir, "rm", "-f", oldPath)
	repo.WriteFile(newPath, content)
	repo.StageFile(newPath)
}
