package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quiz-outcome-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)

	if _, ok, _ := store.Load(ctx, "s1"); ok {
		t.Fatalf("expected no session before save")
	}
	if err := store.Save(ctx, "s1", domain.Session{Admin: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	sess, ok, err := store.Load(ctx, "s1")
	if err != nil || !ok || !sess.Admin {
		t.Fatalf("expected admin session, got %+v ok=%v err=%v", sess, ok, err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "s1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)
	store.clock = func() time.Time { return now }

	_ = store.Save(ctx, "s1", domain.Session{Admin: true})

	now = now.Add(59 * time.Second)
	if _, ok, _ := store.Load(ctx, "s1"); !ok {
		t.Fatalf("expected session alive before ttl")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := store.Load(ctx, "s1"); ok {
		t.Fatalf("expected session expired after ttl")
	}
}

func TestSessionStoreSweepsExpiredOnSave(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(10 * time.Millisecond)
	store.clock = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		_ = store.Save(ctx, fmt.Sprintf("anon-%d", i), domain.Session{Flashes: []domain.Flash{{Category: "error", Message: "log in"}}})
	}
	if len(store.sessions) != 1000 {
		t.Fatalf("expected 1000 live sessions, got %d", len(store.sessions))
	}

	now = now.Add(50 * time.Millisecond)
	_ = store.Save(ctx, "fresh", domain.Session{})
	if len(store.sessions) != 1 {
		t.Fatalf("expected expired sessions swept on save, %d remain", len(store.sessions))
	}
}

func TestSessionStoreJanitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewSessionStore(10 * time.Millisecond)
	for i := 0; i < 100; i++ {
		_ = store.Save(ctx, fmt.Sprintf("anon-%d", i), domain.Session{})
	}

	done := make(chan struct{})
	go func() {
		store.Janitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		store.mu.Lock()
		n := len(store.sessions)
		store.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("janitor left %d expired sessions", n)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor did not stop after cancel")
	}
}
