package credstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/repairdesk/repairdesk-api/internal/models"
)

// Store holds the static credential list loaded once at process start.
// The backing file is read-only for the application; there is no hot reload.
type Store struct {
	byUsername map[string]models.Credential
}

// Load reads the credential file and builds the lookup index.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	var entries []models.Credential
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}

	return New(entries)
}

// New builds a store from an in-memory credential list.
func New(entries []models.Credential) (*Store, error) {
	byUsername := make(map[string]models.Credential, len(entries))
	for _, entry := range entries {
		if entry.Username == "" {
			return nil, fmt.Errorf("credential entry missing username")
		}
		if !entry.Role.Valid() {
			return nil, fmt.Errorf("credential entry %q has unknown role %q", entry.Username, entry.Role)
		}
		if _, exists := byUsername[entry.Username]; exists {
			return nil, fmt.Errorf("duplicate credential entry %q", entry.Username)
		}
		byUsername[entry.Username] = entry
	}
	return &Store{byUsername: byUsername}, nil
}

// Find returns the credential for a username. Lookups are case-sensitive.
func (s *Store) Find(username string) (*models.Credential, bool) {
	cred, ok := s.byUsername[username]
	if !ok {
		return nil, false
	}
	return &cred, true
}

// Len returns the number of loaded credentials.
func (s *Store) Len() int {
	return len(s.byUsername)
}
