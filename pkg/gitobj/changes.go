package git

import (
	"context"
	"fmt"
	"strings"
)

// ChangeStatus is the single-letter status git diff-tree reports for a path.
type ChangeStatus byte

const (
	StatusAdded      ChangeStatus = 'A'
	StatusDeleted    ChangeStatus = 'D'
	StatusModified   ChangeStatus = 'M'
	StatusTypeChange ChangeStatus = 'T'
	StatusRenamed    ChangeStatus = 'R'
)

// RawChange is one entry from "git diff-tree --raw", identifying a path whose
// blob changed between two trees.
type RawChange struct {
	OldMode string
	NewMode string
	OldOid  string
	NewOid  string
	Status  ChangeStatus
	Path    string
	// NewPath is set only when Status is StatusRenamed; Path then holds the
	// old path and NewPath the new one.
	NewPath string
}

// DiffTreeRaw reports the blob-level changes between two tree objects,
// without rename detection. Operating directly on tree objects means the
// change collector never has to materialize a temporary commit.
func (g *Git) DiffTreeRaw(ctx context.Context, oldTree, newTree string) ([]RawChange, error) {
	if oldTree == "" {
		oldTree = EmptyTree
	}
	out, err := g.Run(ctx, "diff-tree", "-r", "--raw", "-z", oldTree, newTree)
	if err != nil {
		return nil, fmt.Errorf("git diff-tree: %w", err)
	}
	return parseRawDiff(out), nil
}

// DetectRenames reports the same change set as DiffTreeRaw but with rename
// pairs collapsed into single StatusRenamed entries when git's similarity
// heuristic exceeds thresholdPercent.
func (g *Git) DetectRenames(ctx context.Context, oldTree, newTree string, thresholdPercent int) ([]RawChange, error) {
	if oldTree == "" {
		oldTree = EmptyTree
	}
	if thresholdPercent <= 0 {
		thresholdPercent = 50
	}
	out, err := g.Run(ctx, "diff-tree", "-r", "--raw", "-z",
		fmt.Sprintf("-M%d%%", thresholdPercent), oldTree, newTree)
	if err != nil {
		return nil, fmt.Errorf("git diff-tree -M: %w", err)
	}
	return parseRawDiff(out), nil
}

// parseRawDiff parses NUL-delimited "git diff-tree --raw -z" output.
// Each non-rename record is a single NUL-terminated field:
//
//	:oldmode newmode oldsha newsha status\0path\0
//
// Rename/copy records carry an extra path field:
//
//	:oldmode newmode oldsha newsha R100\0oldpath\0newpath\0
func parseRawDiff(out string) []RawChange {
	fields := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	var changes []RawChange
	for i := 0; i < len(fields); {
		header := fields[i]
		if !strings.HasPrefix(header, ":") {
			i++
			continue
		}
		parts := strings.Fields(header)
		if len(parts) != 5 {
			i++
			continue
		}
		statusField := parts[4]
		status := ChangeStatus(statusField[0])
		change := RawChange{
			OldMode: strings.TrimPrefix(parts[0], ":"),
			NewMode: parts[1],
			OldOid:  parts[2],
			NewOid:  parts[3],
			Status:  status,
		}
		i++
		if status == StatusRenamed && i+1 < len(fields) {
			change.Path = fields[i]
			change.NewPath = fields[i+1]
			i += 2
		} else if i < len(fields) {
			change.Path = fields[i]
			i++
		}
		changes = append(changes, change)
	}
	return changes
}
