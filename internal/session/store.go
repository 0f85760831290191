// Package session persists the bearer credential issued by the backend
// across restarts. At most one credential is active at a time; its absence
// means the user has to authenticate again.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCredential is returned by Load when no credential has been saved.
// Storage failures are reported as distinct errors, never as absence.
var ErrNoCredential = errors.New("no stored credential")

const tokenFile = "access_token"

// Store reads and writes the credential file under dir.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, tokenFile)
}

// Save persists the token, overwriting any prior value.
func (s *Store) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("refusing to save empty credential")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Load returns the persisted token, or ErrNoCredential when none exists.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// Clear removes the credential. Clearing an absent credential is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
