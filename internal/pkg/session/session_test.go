package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour)
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := &Data{UserID: uuid.New(), Email: "user@example.com", CreatedAt: time.Now()}
	id, err := store.Create(ctx, data)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(id) != 64 {
		t.Errorf("session id length = %d, want 64 hex chars", len(id))
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != data.UserID || got.Email != data.Email {
		t.Error("stored data does not round-trip")
	}
}

func TestStore_GetUnknownID(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get(context.Background(), "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want %v", err, ErrNotFound)
	}
}

func TestStore_RegenerateInvalidatesOldID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data := &Data{UserID: uuid.New(), CreatedAt: time.Now()}
	oldID, err := store.Create(ctx, data)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	data.Impersonation = &Impersonation{
		SessionID:      uuid.New(),
		OrganizationID: uuid.New(),
		Mode:           "read",
		BoundAt:        time.Now(),
	}
	newID, err := store.Regenerate(ctx, oldID, data)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if newID == oldID {
		t.Fatal("regenerated id must differ")
	}

	if _, err := store.Get(ctx, oldID); !errors.Is(err, ErrNotFound) {
		t.Error("old id must be invalidated")
	}

	got, err := store.Get(ctx, newID)
	if err != nil {
		t.Fatalf("get new id: %v", err)
	}
	if got.Impersonation == nil || got.Impersonation.Mode != "read" {
		t.Error("impersonation state must ride along to the new id")
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &Data{UserID: uuid.New(), CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Error("deleted session must not resolve")
	}
}

func TestStore_NilClientUnavailable(t *testing.T) {
	store := NewStore(nil, time.Hour)
	ctx := context.Background()

	if _, err := store.Create(ctx, &Data{UserID: uuid.New()}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("create: err = %v, want ErrUnavailable", err)
	}
	if _, err := store.Get(ctx, "deadbeef"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("get: err = %v, want ErrUnavailable", err)
	}
	if err := store.Delete(ctx, "deadbeef"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("delete: err = %v, want ErrUnavailable", err)
	}
}
