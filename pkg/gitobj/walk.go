package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CommitMeta is the subset of a commit object the revision store needs to
// mint a cache revision: its tree, first parent, and the metadata carried
// into the SVN-facing revision properties.
type CommitMeta struct {
	Hash         string
	Tree         string
	FirstParent  string // "" for a root commit
	AuthorName   string
	AuthorEmail  string
	AuthorDate   time.Time
	Message      string
}

// WalkFirstParent returns every commit reachable from head by following only
// first parents, down to (but not including) stopAt, oldest first. Passing
// an empty stopAt walks to the root commit. This mirrors the revision store's
// cache-extension algorithm: SVN has one linear history per
// branch, so only the first-parent chain is ever mapped to a revision.
func (g *Git) WalkFirstParent(ctx context.Context, head, stopAt string) ([]CommitMeta, error) {
	args := []string{"rev-list", "--first-parent"}
	if stopAt != "" {
		args = append(args, stopAt+".."+head)
	} else {
		args = append(args, head)
	}
	hashes, err := g.RunLines(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git rev-list --first-parent: %w", err)
	}
	// rev-list prints newest first; the cache extends oldest first.
	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}

	metas := make([]CommitMeta, 0, len(hashes))
	for _, h := range hashes {
		m, err := g.readCommitMeta(ctx, h)
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, nil
}

// CommitMeta reads a single commit's metadata, for callers (like the
// revision store replaying an existing side branch) that already know the
// exact hash and don't need a first-parent walk to find it.
func (g *Git) CommitMeta(ctx context.Context, hash string) (CommitMeta, error) {
	return g.readCommitMeta(ctx, hash)
}

// fieldSep is unlikely to appear in commit metadata; the format string asks
// git to emit it through its %x00 pretty-format placeholder, so no NUL byte
// ever has to travel through the command's arguments.
const (
	fieldSep = "\x00"
)

func (g *Git) readCommitMeta(ctx context.Context, hash string) (CommitMeta, error) {
	format := strings.Join([]string{"%H", "%T", "%P", "%an", "%ae", "%ad", "%B"}, "%x00")
	out, err := g.Run(ctx, "show", "-s", "--date=unix", "--format="+format, hash)
	if err != nil {
		return CommitMeta{}, fmt.Errorf("git show %s: %w", hash, err)
	}
	parts := strings.SplitN(out, fieldSep, 7)
	if len(parts) != 7 {
		return CommitMeta{}, fmt.Errorf("unexpected commit metadata for %s", hash)
	}
	parents := strings.Fields(parts[2])
	firstParent := ""
	if len(parents) > 0 {
		firstParent = parents[0]
	}
	unixSec, _ := strconv.ParseInt(strings.TrimSpace(parts[5]), 10, 64)
	return CommitMeta{
		Hash:        parts[0],
		Tree:        parts[1],
		FirstParent: firstParent,
		AuthorName:  parts[3],
		AuthorEmail: parts[4],
		AuthorDate:  time.Unix(unixSec, 0).UTC(),
		Message:     strings.TrimRight(parts[6], "\n"),
	}, nil
}
