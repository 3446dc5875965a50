package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// ErrUnavailable is returned when no Redis backend is configured. Cookie
// sessions, and with them impersonation binding, are disabled in that mode.
var ErrUnavailable = errors.New("session store unavailable")

// Impersonation is the support-session state bound to a tenant session
// after a successful impersonation handoff.
type Impersonation struct {
	SessionID      uuid.UUID `json:"session_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Mode           string    `json:"mode"` // read | write
	Scopes         []string  `json:"scopes,omitempty"`
	BoundAt        time.Time `json:"bound_at"`
}

// Data is the server-side state referenced by an opaque session ID.
type Data struct {
	UserID        uuid.UUID      `json:"user_id"`
	Email         string         `json:"email"`
	CreatedAt     time.Time      `json:"created_at"`
	Impersonation *Impersonation `json:"impersonation,omitempty"`
}

// Store keeps session state in Redis keyed by an opaque random identifier.
// Clients only ever hold the identifier, never the state.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore creates a session store with the given TTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, prefix: "sess", ttl: ttl}
}

func (s *Store) key(id string) string {
	return s.prefix + ":" + id
}

// newID returns a 256-bit random session identifier.
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create stores data under a fresh identifier and returns it.
func (s *Store) Create(ctx context.Context, data *Data) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	if err := s.write(ctx, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the session data for id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Data, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Save overwrites the session data for an existing id.
func (s *Store) Save(ctx context.Context, id string, data *Data) error {
	return s.write(ctx, id, data)
}

// Regenerate moves data to a fresh identifier and deletes the old one.
// Used at impersonation bind time to defeat session fixation.
func (s *Store) Regenerate(ctx context.Context, oldID string, data *Data) (string, error) {
	newID, err := s.Create(ctx, data)
	if err != nil {
		return "", err
	}
	if err := s.client.Del(ctx, s.key(oldID)).Err(); err != nil {
		return "", err
	}
	return newID, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.client == nil {
		return ErrUnavailable
	}
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *Store) write(ctx context.Context, id string, data *Data) error {
	if s.client == nil {
		return ErrUnavailable
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(id), raw, s.ttl).Err()
}
