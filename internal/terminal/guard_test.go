package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

type stubDedupStore struct {
	seen    map[string]bool
	deleted []string
	err     error
}

func newStubDedupStore() *stubDedupStore {
	return &stubDedupStore{seen: map[string]bool{}}
}

func (s *stubDedupStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubDedupStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.seen, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func (s *stubDedupStore) DedupKey(scope, id string) string {
	return "balcao:dedup:" + scope + ":" + id
}

func TestResultGuard_CheckAndMark(t *testing.T) {
	t.Parallel()

	store := newStubDedupStore()
	guard := NewResultGuard(store, time.Hour, "terminal")

	duplicate, err := guard.CheckAndMark(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if duplicate {
		t.Fatal("first delivery flagged as duplicate")
	}

	duplicate, err = guard.CheckAndMark(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !duplicate {
		t.Fatal("replayed delivery not flagged as duplicate")
	}
}

func TestResultGuard_CheckAndMark_EmptyID(t *testing.T) {
	t.Parallel()

	guard := NewResultGuard(newStubDedupStore(), time.Hour, "terminal")
	_, err := guard.CheckAndMark(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResultGuard_CheckAndMark_StoreError(t *testing.T) {
	t.Parallel()

	store := newStubDedupStore()
	store.err = errors.New("connection refused")
	guard := NewResultGuard(store, time.Hour, "terminal")

	_, err := guard.CheckAndMark(context.Background(), "delivery-2")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestResultGuard_Forget(t *testing.T) {
	t.Parallel()

	store := newStubDedupStore()
	guard := NewResultGuard(store, time.Hour, "terminal")

	if _, err := guard.CheckAndMark(context.Background(), "delivery-3"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := guard.Forget(context.Background(), "delivery-3"); err != nil {
		t.Fatalf("forget: %v", err)
	}

	duplicate, err := guard.CheckAndMark(context.Background(), "delivery-3")
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if duplicate {
		t.Fatal("forgotten delivery still flagged as duplicate")
	}
}
