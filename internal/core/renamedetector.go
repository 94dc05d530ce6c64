package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// RenameDetector runs git's own similarity-based rename heuristic between
// two trees and reports newPath -> oldPath pairs meeting a similarity
// threshold. It is enabled per revision-store configuration; when disabled,
// Detect is never called and the revision's Renames map stays empty.
type RenameDetector struct {
	repo             *git.Git
	thresholdPercent int
}

// NewRenameDetector builds a RenameDetector using thresholdPercent as the
// similarity cutoff.
func NewRenameDetector(repo *git.Git, thresholdPercent int) *RenameDetector {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultRenameThresholdPercent
	}
	return &RenameDetector{repo: repo, thresholdPercent: thresholdPercent}
}

// Detect returns the rename pairs between oldTree and newTree whose
// similarity score meets the detector's threshold, sorted by new path.
func (d *RenameDetector) Detect(ctx context.Context, oldTree, newTree string) ([]types.RenamePair, error) {
	raw, err := d.repo.DetectRenames(ctx, oldTree, newTree, d.thresholdPercent)
	if err != nil {
		return nil, fmt.Errorf("detect renames: %w", err)
	}

	var pairs []types.RenamePair
	for _, rc := range raw {
		if rc.Status != git.StatusRenamed {
			continue
		}
		pairs = append(pairs, types.RenamePair{NewPath: rc.NewPath, OldPath: rc.Path})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].NewPath < pairs[j].NewPath })
	return pairs, nil
}

// NoopRenameDetector satisfies the same role as RenameDetector when rename
// detection is disabled in server config, always returning an empty map
// rather than leaving callers to nil-check a *RenameDetector.
type NoopRenameDetector struct{}

func (NoopRenameDetector) Detect(context.Context, string, string) ([]types.RenamePair, error) {
	return nil, nil
}

// Renamer is the interface the revision store's extension algorithm
// consumes, satisfied by both *RenameDetector and NoopRenameDetector.
type Renamer interface {
	Detect(ctx context.Context, oldTree, newTree string) ([]types.RenamePair, error)
}
