package core

import (
	"bytes"
	"testing"

	"github.com/git-as-svn/bridge/internal/types"
)

// The canonical encoding sorts the keys of the renames, fileChange and
// branches objects lexicographically, so
// two encodings of the same logical record are byte-identical no matter
// what order the pairs arrive in.
func TestEncodeCacheRevision_ByteStableAcrossPairOrder(t *testing.T) {
	a := types.CacheRevision{
		Revision:  3,
		GitCommit: "abc123",
		Renames: []types.RenamePair{
			{NewPath: "z/new.go", OldPath: "z/old.go"},
			{NewPath: "a/new.go", OldPath: "a/old.go"},
		},
		FileChange: []types.FileChangePair{
			{Path: "b.txt", Change: types.FileChangeEntry{NewMode: "100644", NewBlob: "b1"}},
			{Path: "a.txt", Change: types.FileChangeEntry{OldMode: "100644", OldBlob: "a0", NewMode: "100644", NewBlob: "a1"}},
		},
	}
	b := types.CacheRevision{
		Revision:  3,
		GitCommit: "abc123",
		Renames: []types.RenamePair{
			{NewPath: "a/new.go", OldPath: "a/old.go"},
			{NewPath: "z/new.go", OldPath: "z/old.go"},
		},
		FileChange: []types.FileChangePair{
			{Path: "a.txt", Change: types.FileChangeEntry{OldMode: "100644", OldBlob: "a0", NewMode: "100644", NewBlob: "a1"}},
			{Path: "b.txt", Change: types.FileChangeEntry{NewMode: "100644", NewBlob: "b1"}},
		},
	}
	if !bytes.Equal(EncodeCacheRevision(a), EncodeCacheRevision(b)) {
		t.Fatalf("encodings differ:\n%s\n%s", EncodeCacheRevision(a), EncodeCacheRevision(b))
	}
}

// Revision 0's record pins the exact serialized form the side branch is
// bootstrapped with.
func TestEncodeCacheRevision_RevisionZeroForm(t *testing.T) {
	got := string(EncodeCacheRevision(types.CacheRevision{Revision: 0}))
	want := `{"revision":0,"gitCommit":null,"renames":{},"fileChange":{},"branches":{}}`
	if got != want {
		t.Fatalf("revision 0 encoding = %s, want %s", got, want)
	}
}

// Decoding an encoded record reproduces it, with pair slices in sorted
// key order.
func TestCacheRevision_EncodeDecodeRoundTrip(t *testing.T) {
	in := types.CacheRevision{
		Revision:  7,
		GitCommit: "deadbeef",
		Renames: []types.RenamePair{
			{NewPath: "moved.txt", OldPath: "orig.txt"},
		},
		FileChange: []types.FileChangePair{
			{Path: "deleted.txt", Change: types.FileChangeEntry{OldMode: "100644", OldBlob: "d0"}},
			{Path: "moved.txt", Change: types.FileChangeEntry{OldMode: "100644", OldBlob: "m0", NewMode: "100755", NewBlob: "m1"}},
		},
	}
	out, err := DecodeCacheRevision(EncodeCacheRevision(in))
	if err != nil {
		t.Fatalf("DecodeCacheRevision: %v", err)
	}
	if out.Revision != in.Revision || out.GitCommit != in.GitCommit {
		t.Fatalf("header mismatch: %+v", out)
	}
	if len(out.Renames) != 1 || out.Renames[0] != in.Renames[0] {
		t.Fatalf("renames mismatch: %+v", out.Renames)
	}
	if len(out.FileChange) != 2 {
		t.Fatalf("fileChange length = %d, want 2", len(out.FileChange))
	}
	if out.FileChange[0].Path != "deleted.txt" || !out.FileChange[0].Change.IsDelete() {
		t.Fatalf("first change = %+v, want delete of deleted.txt", out.FileChange[0])
	}
	if out.FileChange[1].Change.NewMode != "100755" {
		t.Fatalf("mode change lost: %+v", out.FileChange[1])
	}
}

// A null gitCommit decodes to the empty string, the revision-0 case.
func TestDecodeCacheRevision_NullGitCommit(t *testing.T) {
	out, err := DecodeCacheRevision([]byte(`{"revision":0,"gitCommit":null,"renames":{},"fileChange":{},"branches":{}}`))
	if err != nil {
		t.Fatalf("DecodeCacheRevision: %v", err)
	}
	if out.Revision != 0 || out.GitCommit != "" {
		t.Fatalf("decoded = %+v, want revision 0 with empty gitCommit", out)
	}
}
