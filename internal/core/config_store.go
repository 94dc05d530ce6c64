package core

import (
	"github.com/git-as-svn/bridge/internal/types"
)

// ConfigStore handles gitassvn.yml I/O.
type ConfigStore interface {
	Load() (types.ServerConfig, error)
	Save(cfg types.ServerConfig) error
	Path() string
}

// FileConfigStore implements ConfigStore on top of YAMLStore.
type FileConfigStore struct {
	store *YAMLStore[types.ServerConfig]
}

// NewFileConfigStore creates a FileConfigStore reading/writing
// filepath.Join(rootDir, ConfigName).
func NewFileConfigStore(rootDir string) *FileConfigStore {
	return &FileConfigStore{
		store: NewYAMLStore[types.ServerConfig](rootDir, ConfigName, true),
	}
}

// Path returns the config file path.
func (s *FileConfigStore) Path() string {
	return s.store.Path()
}

// Load reads and parses gitassvn.yml.
func (s *FileConfigStore) Load() (types.ServerConfig, error) {
	return s.store.Load()
}

// Save writes gitassvn.yml.
func (s *FileConfigStore) Save(cfg types.ServerConfig) error {
	return s.store.Save(cfg)
}
