package core

// ConfigName is the bridge's own configuration filename.
const ConfigName = "gitassvn.yml"

// SideBranchSchema is the current cache-commit layout version, embedded in
// the default side-branch ref name so an incompatible future layout can
// coexist during a migration.
const SideBranchSchema = 1

// DefaultSideBranchRef returns the default side-branch ref name for branch.
func DefaultSideBranchRef(branch string) string {
	return "refs/git-as-svn/v1/" + branch
}

// Pinned tree entries inside every cache commit.
const (
	CacheEntryCommitRef = "commit.ref"
	CacheEntryChange    = "change.json"
	CacheEntryUUID      = "uuid"
)

// DefaultRenameThresholdPercent is the similarity threshold used when a
// server config doesn't specify one.
const DefaultRenameThresholdPercent = 60

// DefaultPropertyFactories lists the config-file basenames the bridge
// recognizes out of the box.
var DefaultPropertyFactories = []string{".gitignore", ".gitattributes", ".tgitconfig"}

// CacheCommitAuthorName and CacheCommitAuthorMail identify the fixed author the
// revision store uses when synthesizing a cache commit.
const (
	CacheCommitAuthorName = "git-as-svn bridge"
	CacheCommitAuthorMail = "git-as-svn@localhost"
)
