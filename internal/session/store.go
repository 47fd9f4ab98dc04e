package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CredentialStore persists the single credential across process runs.
type CredentialStore interface {
	// Load returns the stored credential, or "" when none is stored.
	Load() (string, error)
	Save(token string) error
	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear() error
	Location() string
}

// FileStore keeps the credential in a JSON file readable only by its owner.
type FileStore struct {
	path string
}

type fileState struct {
	SavedAt     time.Time `json:"saved_at"`
	AccessToken string    `json:"access_token"`
}

// NewFileStore creates a store backed by path. The parent directory is created on save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Location returns the file path.
func (s *FileStore) Location() string {
	return s.path
}

// Load reads the credential file.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}
	return state.AccessToken, nil
}

// Save writes the credential file with 0600 permissions.
func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(fileState{AccessToken: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear deletes the credential file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential in memory only.
type MemoryStore struct {
	token string
	mu    sync.Mutex
}

// NewMemoryStore creates a store preloaded with token ("" for empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Location describes the store.
func (s *MemoryStore) Location() string {
	return "memory"
}

// Load returns the held credential.
func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save replaces the held credential.
func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear drops the held credential.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
