package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	credFileName = "credentials.json"
	envToken     = "TADA_TOKEN"
)

// TokenInfo is the bearer token sent to the todo server, when it wants one.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional
}

// Store keeps credentials under Dir (normally the config dir).
type Store struct {
	Dir string
}

func (s Store) path() string { return filepath.Join(s.Dir, credFileName) }

// Get returns the active token: $TADA_TOKEN first, then the credentials file.
// It returns nil, nil when no token is configured.
func (s Store) Get() (*TokenInfo, error) {
	if env := strings.TrimSpace(os.Getenv(envToken)); env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: "env"}, nil
	}

	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// Set stores token in the credentials file with owner-only permissions.
func (s Store) Set(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the credentials file; a missing file is not an error.
func (s Store) Delete() error {
	if err := os.Remove(s.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Bearer returns the token to send, or "" if none is configured or readable.
func (s Store) Bearer() string {
	ti, err := s.Get()
	if err != nil || ti == nil {
		return ""
	}
	if ti.ExpiresAt != nil && time.Now().After(*ti.ExpiresAt) {
		return ""
	}
	return ti.Token
}

func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "bearer") {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
