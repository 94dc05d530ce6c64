package core

import (
	"context"
	"crypto/md5"
	"sync"

	"golang.org/x/sync/singleflight"

	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// ContentCache memoizes per-blob MD5 digests. Parsed config-file fragments
// are memoized separately, by PropertyFactoryRegistry.
// Concurrent compute-if-absent calls for the same oid collapse into one
// computation via singleflight, rather than racing duplicate work: racing
// recomputation would be harmless (same oid, same digest), but a blob's
// content can be large enough that deduplicating the read is worth the
// extra dependency.
type ContentCache struct {
	repo *git.Git

	group singleflight.Group
	mu    sync.RWMutex
	md5   map[string][16]byte
}

// NewContentCache builds a ContentCache reading blobs through repo.
func NewContentCache(repo *git.Git) *ContentCache {
	return &ContentCache{
		repo: repo,
		md5:  make(map[string][16]byte),
	}
}

// MD5 returns the MD5 digest of blob oid's raw content, computing and
// caching it on first request. Symlink callers pass the synthetic
// "link "+target bytes through MD5Bytes instead, since that content never
// has a git object of its own.
func (c *ContentCache) MD5(ctx context.Context, oid string) ([16]byte, error) {
	c.mu.RLock()
	if sum, ok := c.md5[oid]; ok {
		c.mu.RUnlock()
		return sum, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(oid, func() (interface{}, error) {
		content, err := c.repo.ReadBlob(ctx, oid)
		if err != nil {
			return nil, err
		}
		sum := md5.Sum(content)
		c.mu.Lock()
		c.md5[oid] = sum
		c.mu.Unlock()
		return sum, nil
	})
	if err != nil {
		return [16]byte{}, err
	}
	return v.([16]byte), nil
}

// MD5Bytes computes (without caching; there is no oid) the MD5 of
// content directly, for synthetic symlink bytes.
func MD5Bytes(content []byte) [16]byte {
	return md5.Sum(content)
}
