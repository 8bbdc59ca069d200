package terminal

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
)

// DedupStore is the slice of the redis client the guard needs.
type DedupStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DedupKey(scope, id string) string
}

// ResultGuard keeps a short-lived record of terminal result deliveries so
// webhook retries can be answered without re-entering the apply path. It is
// advisory only: the compare-and-transition on the intent row is what makes
// duplicate results harmless, the guard just saves the round trip.
type ResultGuard struct {
	store DedupStore
	ttl   time.Duration
	scope string
}

// NewResultGuard builds a guard for the given delivery scope, e.g. "terminal".
func NewResultGuard(store DedupStore, ttl time.Duration, scope string) *ResultGuard {
	return &ResultGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}
}

// CheckAndMark returns true when the delivery was already seen. The first
// caller for a delivery id marks it and gets false.
func (g *ResultGuard) CheckAndMark(ctx context.Context, deliveryID string) (bool, error) {
	if g == nil || g.store == nil {
		return false, nil
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "delivery id is required")
	}

	key := g.store.DedupKey(g.scope, deliveryID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking terminal result dedup key")
	}
	return !set, nil
}

// Forget drops the dedup record so a delivery can be replayed, used when the
// apply path failed and the terminal should retry.
func (g *ResultGuard) Forget(ctx context.Context, deliveryID string) error {
	if g == nil || g.store == nil {
		return nil
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return nil
	}
	return g.store.Del(ctx, g.store.DedupKey(g.scope, deliveryID))
}
