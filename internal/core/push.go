package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/git-as-svn/bridge/internal/types"
	git "github.com/git-as-svn/bridge/pkg/gitobj"
)

// ErrPushRejected is the transient-error sentinel for a non-fast-forward
// push; the request handler re-reads the latest revision and restarts the
// editor drive.
var ErrPushRejected = errors.New("push rejected: ref advanced concurrently")

// Pusher publishes a newly-built commit onto the user branch. Both push
// modes are invoked under Bridge's single process-wide push mutex.
type Pusher interface {
	Push(ctx context.Context, branch, newCommit, expectedOld string) error
}

// SimplePusher performs an atomic compare-and-swap on the branch ref. It
// never shells out to a server-side push and so
// never runs server hooks; property validation is the only gate.
type SimplePusher struct {
	repo *git.Git
}

// NewSimplePusher builds a SimplePusher over repo.
func NewSimplePusher(repo *git.Git) *SimplePusher {
	return &SimplePusher{repo: repo}
}

func (p *SimplePusher) Push(ctx context.Context, branch, newCommit, expectedOld string) error {
	err := p.repo.UpdateRefCAS(ctx, "refs/heads/"+branch, newCommit, expectedOld)
	if errors.Is(err, git.ErrRefChanged) {
		return ErrPushRejected
	}
	return err
}

// NativePusher shells out to `git push`, honoring server-side hooks on
// the receiving repository.
type NativePusher struct {
	repo   *git.Git
	remote string
}

// NewNativePusher builds a NativePusher targeting remote (e.g. "origin").
func NewNativePusher(repo *git.Git, remote string) *NativePusher {
	if remote == "" {
		remote = "origin"
	}
	return &NativePusher{repo: repo, remote: remote}
}

func (p *NativePusher) Push(ctx context.Context, branch, newCommit, expectedOld string) error {
	refspec := fmt.Sprintf("%s:refs/heads/%s", newCommit, branch)
	err := p.repo.RunSilent(ctx, "push", p.remote, refspec)
	if err != nil {
		var gitErr *git.GitError
		if errors.As(err, &gitErr) {
			return fmt.Errorf("%w: %s", ErrPushRejected, gitErr.Stderr)
		}
		return err
	}
	return nil
}

// PusherFor selects a Pusher by server config's push mode.
func PusherFor(mode types.PushMode, repo *git.Git, remote string) Pusher {
	if mode == types.PushModeNative {
		return NewNativePusher(repo, remote)
	}
	return NewSimplePusher(repo)
}

// PushMutex is the process-wide mutex serializing the publish step of a
// commit: the ref update, lock consumption, and the revision store's
// extension. CommitBuilder.Commit assembles the tree, validates properties
// and synthesizes the commit before taking it; a ref that moved in the
// meantime fails the push's compare-and-swap. A failed push releases the
// mutex and returns ErrPushRejected to signal the caller should restart
// from the new latest revision.
type PushMutex struct {
	mu sync.Mutex
}

// WithPushLock runs fn holding the mutex for its entire duration.
func (p *PushMutex) WithPushLock(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn()
}
