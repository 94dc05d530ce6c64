package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/git-as-svn/bridge/internal/types"
)

// EncodeCacheRevision serializes a CacheRevision to the canonical JSON form
// change.json is pinned to: lexicographically key-ordered
// objects for renames/fileChange/branches, so two bridges processing the
// same history write byte-identical blobs and Git dedups them. encoding/json
// would sort Go map keys for us, but CacheRevision carries ordered-pair
// slices, so
// this hand-writes the object bodies instead of round-tripping through maps
// whose iteration order Go deliberately randomizes.
func EncodeCacheRevision(r types.CacheRevision) []byte {
	var b bytes.Buffer
	b.WriteByte('{')

	b.WriteString(`"revision":`)
	fmt.Fprintf(&b, "%d", r.Revision)

	b.WriteString(`,"gitCommit":`)
	if r.GitCommit == "" {
		b.WriteString("null")
	} else {
		writeJSONString(&b, r.GitCommit)
	}

	b.WriteString(`,"renames":{`)
	renames := append([]types.RenamePair(nil), r.Renames...)
	sort.Slice(renames, func(i, j int) bool { return renames[i].NewPath < renames[j].NewPath })
	for i, p := range renames {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(&b, p.NewPath)
		b.WriteByte(':')
		writeJSONString(&b, p.OldPath)
	}
	b.WriteByte('}')

	b.WriteString(`,"fileChange":{`)
	changes := append([]types.FileChangePair(nil), r.FileChange...)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	for i, c := range changes {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(&b, c.Path)
		b.WriteByte(':')
		writeFileChangeEntry(&b, c.Change)
	}
	b.WriteByte('}')

	b.WriteString(`,"branches":{`)
	branches := append([]types.BranchPair(nil), r.Branches...)
	sort.Slice(branches, func(i, j int) bool { return branches[i].Branch < branches[j].Branch })
	for i, p := range branches {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(&b, p.Branch)
		b.WriteByte(':')
		writeJSONString(&b, p.GitCommit)
	}
	b.WriteByte('}')

	b.WriteByte('}')
	return b.Bytes()
}

func writeFileChangeEntry(b *bytes.Buffer, e types.FileChangeEntry) {
	b.WriteByte('{')
	b.WriteString(`"oldMode":`)
	writeOptionalString(b, e.OldMode)
	b.WriteString(`,"oldBlob":`)
	writeOptionalString(b, e.OldBlob)
	b.WriteString(`,"newMode":`)
	writeOptionalString(b, e.NewMode)
	b.WriteString(`,"newBlob":`)
	writeOptionalString(b, e.NewBlob)
	b.WriteByte('}')
}

func writeOptionalString(b *bytes.Buffer, s string) {
	if s == "" {
		b.WriteString("null")
		return
	}
	writeJSONString(b, s)
}

// writeJSONString delegates to encoding/json for correct escaping; the
// byte-stability this file guarantees is about key ORDER, not about
// reimplementing string escaping.
func writeJSONString(b *bytes.Buffer, s string) {
	enc, _ := json.Marshal(s)
	b.Write(enc)
}

// DecodeCacheRevision parses a change.json blob back into a CacheRevision.
// Since the canonical form is plain JSON, decoding can use encoding/json
// directly through an intermediate shape that mirrors the ordered-object
// encoding.
func DecodeCacheRevision(data []byte) (types.CacheRevision, error) {
	var raw struct {
		Revision   int64                       `json:"revision"`
		GitCommit  *string                     `json:"gitCommit"`
		Renames    map[string]string           `json:"renames"`
		FileChange map[string]rawFileChange    `json:"fileChange"`
		Branches   map[string]string           `json:"branches"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.CacheRevision{}, fmt.Errorf("decode cache revision: %w", err)
	}

	out := types.CacheRevision{Revision: raw.Revision}
	if raw.GitCommit != nil {
		out.GitCommit = *raw.GitCommit
	}

	renameKeys := sortedKeys(raw.Renames)
	for _, k := range renameKeys {
		out.Renames = append(out.Renames, types.RenamePair{NewPath: k, OldPath: raw.Renames[k]})
	}

	fcKeys := sortedKeysFC(raw.FileChange)
	for _, k := range fcKeys {
		fc := raw.FileChange[k]
		out.FileChange = append(out.FileChange, types.FileChangePair{
			Path: k,
			Change: types.FileChangeEntry{
				OldBlob: strOrEmpty(fc.OldBlob),
				NewBlob: strOrEmpty(fc.NewBlob),
				OldMode: strOrEmpty(fc.OldMode),
				NewMode: strOrEmpty(fc.NewMode),
			},
		})
	}

	branchKeys := sortedKeys(raw.Branches)
	for _, k := range branchKeys {
		out.Branches = append(out.Branches, types.BranchPair{Branch: k, GitCommit: raw.Branches[k]})
	}

	return out, nil
}

type rawFileChange struct {
	OldMode *string `json:"oldMode"`
	OldBlob *string `json:"oldBlob"`
	NewMode *string `json:"newMode"`
	NewBlob *string `json:"newBlob"`
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysFC(m map[string]rawFileChange) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
