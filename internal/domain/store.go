package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// MarketStore persists market metadata and prices.
type MarketStore interface {
	Upsert(ctx context.Context, market Market) error
	GetByID(ctx context.Context, id int64) (Market, error)
	ListActive(ctx context.Context, category string, opts ListOpts) ([]Market, error)
	UpdatePrices(ctx context.Context, id int64, yesTicks, noTicks int64) error
	AddVolume(ctx context.Context, id int64, amountMicros int64) error
	Count(ctx context.Context) (int64, error)
}

// PositionStore persists positions keyed by (user, market, side).
type PositionStore interface {
	Upsert(ctx context.Context, pos Position) error
	GetByKey(ctx context.Context, userID string, marketID int64, side Side) (Position, error)
	ListByUser(ctx context.Context, userID string) ([]Position, error)
}

// TransactionStore persists the append-only transaction log.
type TransactionStore interface {
	Append(ctx context.Context, tx Transaction) error
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Transaction, error)
}

// UserStore persists demo user accounts.
type UserStore interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	UpdateBalance(ctx context.Context, id string, balanceMicros int64) error
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}

// SessionStore holds the current demo user between requests. Current returns
// ErrNoSession when no user has been persisted or the session was cleared.
type SessionStore interface {
	Current(ctx context.Context) (User, error)
	Persist(ctx context.Context, user User) error
	Clear(ctx context.Context) error
}
