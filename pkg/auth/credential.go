package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credential is the persisted OAuth2 token pair. ExpiresAt is a unix
// timestamp in seconds; zero means the expiry is unknown and the access
// token is treated as stale.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// ExpiresWithin reports whether the access token expires within margin of
// now. Unknown expiry counts as expired.
func (c *Credential) ExpiresWithin(now time.Time, margin time.Duration) bool {
	if c.ExpiresAt == 0 {
		return true
	}
	return now.Add(margin).Unix() >= c.ExpiresAt
}

// loadCredential reads a credential from a JSON file. A missing file
// yields (nil, nil).
func loadCredential(path string) (*Credential, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	cred := &Credential{}
	if err := json.NewDecoder(f).Decode(cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential file %s: %w", path, err)
	}
	return cred, nil
}

// saveCredential writes the credential to a JSON file readable only by
// the owner, creating the parent directory if needed.
func saveCredential(path string, cred *Credential) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open credential file for writing: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cred)
}
