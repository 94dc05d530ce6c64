package git

import (
	"fmt"
	"strings"
	"time"

	"context"
)

// Object modes as they appear in tree entries and mktree/ls-tree output.
const (
	ModeBlob    = "100644"
	ModeExec    = "100755"
	ModeSymlink = "120000"
	ModeTree    = "040000"
	ModeGitlink = "160000"
)

// EmptyTree is the SHA-1 of the empty tree object, present in every git
// object database without needing to be written. Diffing against it is how
// the change collector handles a repository's very first commit.
const EmptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// TreeEntry is one line of a git tree object.
type TreeEntry struct {
	Mode string
	Type string // "blob", "tree", or "commit" (submodule)
	Oid  string
	Name string
}

// HashObject writes data to the object database as a blob and returns its oid.
func (g *Git) HashObject(ctx context.Context, data []byte) (string, error) {
	return g.RunWithInput(ctx, data, "hash-object", "-w", "--stdin")
}

// ReadBlob returns the raw content of a blob object.
func (g *Git) ReadBlob(ctx context.Context, oid string) ([]byte, error) {
	return g.RunRaw(ctx, "cat-file", "-p", oid)
}

// ObjectType returns the type of an object ("blob", "tree", "commit", "tag").
func (g *Git) ObjectType(ctx context.Context, oid string) (string, error) {
	return g.Run(ctx, "cat-file", "-t", oid)
}

// MkTree writes a tree object from a flat list of entries (one directory
// level; callers assemble nested trees bottom-up, innermost first) and
// returns its oid. Entries need not be pre-sorted; mktree sorts them.
func (g *Git) MkTree(ctx context.Context, entries []TreeEntry) (string, error) {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s %s\t%s\n", e.Mode, e.Type, e.Oid, e.Name)
	}
	return g.RunWithInput(ctx, []byte(b.String()), "mktree")
}

// ReadTree lists the immediate entries of a tree object, non-recursively.
func (g *Git) ReadTree(ctx context.Context, treeOid string) ([]TreeEntry, error) {
	out, err := g.Run(ctx, "ls-tree", treeOid)
	if err != nil {
		return nil, fmt.Errorf("git ls-tree %s: %w", treeOid, err)
	}
	if out == "" {
		return nil, nil
	}
	var entries []TreeEntry
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		fields := strings.Fields(parts[0])
		if len(fields) != 3 {
			continue
		}
		entries = append(entries, TreeEntry{
			Mode: fields[0],
			Type: fields[1],
			Oid:  fields[2],
			Name: parts[1],
		})
	}
	return entries, nil
}

// Signature is an author or committer identity and timestamp for a new commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitOpts configures CommitTree.
type CommitOpts struct {
	Tree      string
	Parents   []string
	Message   string
	Author    Signature
	Committer Signature
}

// CommitTree writes a commit object from an already-written tree and returns
// its oid. This is the only way the bridge creates commits: there is never a
// working tree or index involved, only object-database plumbing, per the
// commit builder's design.
func (g *Git) CommitTree(ctx context.Context, opts CommitOpts) (string, error) {
	args := []string{"commit-tree", opts.Tree}
	for _, p := range opts.Parents {
		args = append(args, "-p", p)
	}
	args = append(args, "-m", opts.Message)

	out, err := g.runWithExtraEnv(ctx, commitEnv(opts.Author, opts.Committer), args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func commitEnv(author, committer Signature) []string {
	var env []string
	if author.Name != "" {
		env = append(env,
			"GIT_AUTHOR_NAME="+author.Name,
			"GIT_AUTHOR_EMAIL="+author.Email,
		)
		if !author.When.IsZero() {
			env = append(env, "GIT_AUTHOR_DATE="+author.When.Format(time.RFC3339))
		}
	}
	if committer.Name != "" {
		env = append(env,
			"GIT_COMMITTER_NAME="+committer.Name,
			"GIT_COMMITTER_EMAIL="+committer.Email,
		)
		if !committer.When.IsZero() {
			env = append(env, "GIT_COMMITTER_DATE="+committer.When.Format(time.RFC3339))
		}
	}
	return env
}
