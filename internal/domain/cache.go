package domain

import (
	"context"
	"time"
)

// PricePair is the cached YES/NO price pair for a market.
type PricePair struct {
	YesTicks  int64
	NoTicks   int64
	UpdatedAt time.Time
}

// PriceCache provides fast access to the latest price pair per market.
type PriceCache interface {
	SetPair(ctx context.Context, marketID int64, pair PricePair) error
	GetPair(ctx context.Context, marketID int64) (PricePair, error)
}

// SignalBus provides fire-and-forget pub/sub for domain events. Publishers
// never depend on a subscriber existing; a publish with no listeners is not
// an error.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
