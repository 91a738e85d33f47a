// Package session keeps per-viewer browsing state: the page a viewer is on
// and the commit they highlighted.
//
// Two stores are provided:
//   - [MemoryStore]: in-process, used by the HTTP server (one session per
//     browser, identified by a cookie)
//   - [FileStore]: JSON files, used by the CLI to resume browsing a history
//     where it was left
//
// # Usage
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    sess = session.New(id, session.DefaultTTL)
//	}
//	sess.Page, sess.Highlight = 2, "4c1f0e2"
//	err = store.Set(ctx, sess)
//
// Expired sessions are treated as absent; Get never returns one.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session is the browsing state of one viewer.
type Session struct {
	ID        string    `json:"id"`
	Page      int       `json:"page"`
	Highlight string    `json:"highlight,omitempty"` // hash of the highlighted commit
	SceneHash string    `json:"scene_hash,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired at t.
func (s *Session) IsExpired(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// Touch extends the session by ttl from t.
func (s *Session) Touch(t time.Time, ttl time.Duration) {
	s.ExpiresAt = t.Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session on the first page that expires after ttl.
func New(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
