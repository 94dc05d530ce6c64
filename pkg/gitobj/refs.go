package git

import "context"

// HEAD returns the full SHA of the current HEAD commit.
func (g *Git) HEAD(ctx context.Context) (string, error) {
	return g.Run(ctx, "rev-parse", "HEAD")
}

// ResolveRef resolves a ref name (branch, tag, or side-branch ref) to its
// full commit SHA.
func (g *Git) ResolveRef(ctx context.Context, ref string) (string, error) {
	out, err := g.Run(ctx, "rev-parse", ref)
	if err != nil {
		return "", ErrRefNotFound
	}
	return out, nil
}

// ResolveTree resolves a commit-ish to the SHA of the tree it points at.
func (g *Git) ResolveTree(ctx context.Context, commitish string) (string, error) {
	out, err := g.Run(ctx, "rev-parse", commitish+"^{tree}")
	if err != nil {
		return "", ErrRefNotFound
	}
	return out, nil
}
