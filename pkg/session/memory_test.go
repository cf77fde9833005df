package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("id-1", "token-1", time.Now().Add(time.Hour))
	sess.SetValue("theme", "dark")

	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := store.Get(ctx, "token-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != "id-1" {
		t.Errorf("ID = %q, want %q", got.ID, "id-1")
	}
	if v, _ := got.GetValue("theme"); v != "dark" {
		t.Errorf("theme = %v, want %q", v, "dark")
	}

	_, err = store.Get(ctx, "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nonexistent) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_GetExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("id-1", "token-1", time.Now().Add(-time.Minute))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	_, err := store.Get(ctx, "token-1")
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Get(expired) error = %v, want ErrExpired", err)
	}
}

func TestMemoryStore_UpdateTokenRotation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("id-1", "old-token", time.Now().Add(time.Hour))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	sess.Token = "new-token"
	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if _, err := store.Get(ctx, "old-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(old token) error = %v, want ErrNotFound", err)
	}

	got, err := store.Get(ctx, "new-token")
	if err != nil {
		t.Fatalf("Get(new token) error: %v", err)
	}
	if got.ID != "id-1" {
		t.Errorf("ID = %q, want %q", got.ID, "id-1")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("id-1", "token-1", time.Now().Add(time.Hour))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := store.Delete(ctx, "id-1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := store.Get(ctx, "token-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}

	// Deleting a missing session is a no-op.
	if err := store.Delete(ctx, "id-1"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestMemoryStore_DeleteByUserID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	userID := "user-1"

	for i, token := range []string{"t1", "t2"} {
		sess := New("id-"+token, token, time.Now().Add(time.Hour))
		sess.UserID = &userID
		if err := store.Create(ctx, sess); err != nil {
			t.Fatalf("Create(%d) error: %v", i, err)
		}
	}
	other := New("id-other", "t3", time.Now().Add(time.Hour))
	if err := store.Create(ctx, other); err != nil {
		t.Fatalf("Create(other) error: %v", err)
	}

	if err := store.DeleteByUserID(ctx, userID); err != nil {
		t.Fatalf("DeleteByUserID() error: %v", err)
	}

	for _, token := range []string{"t1", "t2"} {
		if _, err := store.Get(ctx, token); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%s) error = %v, want ErrNotFound", token, err)
		}
	}
	if _, err := store.Get(ctx, "t3"); err != nil {
		t.Errorf("anonymous session should survive, got error: %v", err)
	}
}

func TestMemoryStore_Touch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("id-1", "token-1", time.Now().Add(time.Hour))
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	at := time.Now().Add(10 * time.Minute)
	if err := store.Touch(ctx, "id-1", at); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}

	got, err := store.Get(ctx, "token-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !got.LastActiveAt.Equal(at) {
		t.Errorf("LastActiveAt = %v, want %v", got.LastActiveAt, at)
	}

	if err := store.Touch(ctx, "missing", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("Touch(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	live := New("id-live", "t-live", time.Now().Add(time.Hour))
	dead := New("id-dead", "t-dead", time.Now().Add(-time.Hour))
	if err := store.Create(ctx, live); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, dead); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired() error: %v", err)
	}

	if n := store.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
	if _, err := store.Get(ctx, "t-live"); err != nil {
		t.Errorf("live session gone: %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := New("id-1", "token-1", time.Now().Add(time.Hour))
	sess.SetValue("count", 1)
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	first, _ := store.Get(ctx, "token-1")
	first.SetValue("count", 2)

	// Mutation without Update must not leak into the store.
	second, _ := store.Get(ctx, "token-1")
	if v, _ := second.GetValue("count"); v != 1 {
		t.Errorf("count = %v, want 1", v)
	}
}
