package simsession

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store persists the simulated permission state.
type Store interface {
	// Load returns the stored record. A missing record is StateNotDetermined.
	Load() (Record, error)
	// Save replaces the stored record.
	Save(rec Record) error
}

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     DefaultPath(),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// DefaultPath returns the default location of the state file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".micbridge", "permissions.yaml")
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the state file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the file permissions for the state file.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the permissions for the state file's directory.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore persists the permission state as YAML.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load reads the state file. A missing file is StateNotDetermined.
func (s *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return Record{Microphone: StateNotDetermined}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read permission state: %w", err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse permission state: %w", err)
	}
	state, err := ParseState(string(rec.Microphone))
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse permission state %s: %w", s.config.path, err)
	}
	rec.Microphone = state
	return rec, nil
}

// Save writes the state file, creating its directory if needed.
func (s *FileStore) Save(rec Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal permission state: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create permission state directory: %w", err)
	}

	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write permission state: %w", err)
	}
	return nil
}

// Path returns the path to the backing file.
func (s *FileStore) Path() string {
	return s.config.path
}

// MemoryStore keeps the permission state in memory.
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
}

// NewMemoryStore returns a MemoryStore starting in state.
func NewMemoryStore(state State) *MemoryStore {
	return &MemoryStore{rec: Record{Microphone: state}}
}

// Load returns the current record.
func (s *MemoryStore) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.rec
	if rec.Microphone == "" {
		rec.Microphone = StateNotDetermined
	}
	return rec, nil
}

// Save replaces the current record.
func (s *MemoryStore) Save(rec Record) error {
	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
	return nil
}
