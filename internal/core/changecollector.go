package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// ChangeCollector recursively diffs two trees into an ordered
// path -> {old?, new?} map. It operates directly on tree
// objects through pkg/gitobj's diff-tree plumbing, so the revision store
// never needs to materialize a temporary commit to diff against.
type ChangeCollector struct {
	repo *git.Git
}

// NewChangeCollector builds a ChangeCollector over repo.
func NewChangeCollector(repo *git.Git) *ChangeCollector {
	return &ChangeCollector{repo: repo}
}

// Collect returns the file-level changes between oldTree and newTree, keyed
// by path, sorted for deterministic iteration (and so EncodeCacheRevision's
// own sort is redundant-but-safe rather than order-dependent). oldTree may
// be empty to diff against the empty tree (the repository's first commit).
func (c *ChangeCollector) Collect(ctx context.Context, oldTree, newTree string) ([]types.FileChangePair, error) {
	raw, err := c.repo.DiffTreeRaw(ctx, oldTree, newTree)
	if err != nil {
		return nil, fmt.Errorf("collect changes: %w", err)
	}

	pairs := make([]types.FileChangePair, 0, len(raw))
	for _, rc := range raw {
		// diff-tree --raw never reports renames unless asked (-M), so every
		// entry here is a plain add/modify/delete/typechange; renames are
		// the rename detector's job (changecollector.go vs
		// renamedetector.go).
		entry := types.FileChangeEntry{
			OldMode: modeOrEmpty(rc.OldMode),
			NewMode: modeOrEmpty(rc.NewMode),
			OldBlob: oidOrEmpty(rc.OldOid),
			NewBlob: oidOrEmpty(rc.NewOid),
		}
		switch rc.Status {
		case git.StatusAdded:
			entry.OldMode, entry.OldBlob = "", ""
		case git.StatusDeleted:
			entry.NewMode, entry.NewBlob = "", ""
		}
		pairs = append(pairs, types.FileChangePair{Path: rc.Path, Change: entry})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Path < pairs[j].Path })
	return pairs, nil
}

// modeOrEmpty/oidOrEmpty normalize diff-tree's all-zero placeholders (used
// for the missing side of an add/delete) to the empty string CacheRevision
// expects for "absent".
func modeOrEmpty(mode string) string {
	if mode == "" || mode == "000000" {
		return ""
	}
	return mode
}

func oidOrEmpty(oid string) string {
	if oid == "" || isAllZero(oid) {
		return ""
	}
	return oid
}

func isAllZero(s string) bool {
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return len(s) > 0
}
