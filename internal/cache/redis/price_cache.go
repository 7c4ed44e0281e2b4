package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/patrickmak/papertrader/internal/domain"
)

// PriceCache implements domain.PriceCache using Redis hashes. Each market's
// pair is stored at key "price:{marketID}" with fields "yes", "no", and "ts"
// (Unix nanosecond timestamp).
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Underlying()}
}

func priceKey(marketID int64) string {
	return "price:" + strconv.FormatInt(marketID, 10)
}

// SetPair stores the latest YES/NO pair for a market.
func (pc *PriceCache) SetPair(ctx context.Context, marketID int64, pair domain.PricePair) error {
	fields := map[string]interface{}{
		"yes": strconv.FormatInt(pair.YesTicks, 10),
		"no":  strconv.FormatInt(pair.NoTicks, 10),
		"ts":  strconv.FormatInt(pair.UpdatedAt.UnixNano(), 10),
	}
	if err := pc.rdb.HSet(ctx, priceKey(marketID), fields).Err(); err != nil {
		return fmt.Errorf("redis: set price pair %d: %w", marketID, err)
	}
	return nil
}

// GetPair retrieves the latest pair for a market. It returns
// domain.ErrNotFound when the key does not exist.
func (pc *PriceCache) GetPair(ctx context.Context, marketID int64) (domain.PricePair, error) {
	vals, err := pc.rdb.HGetAll(ctx, priceKey(marketID)).Result()
	if err != nil {
		return domain.PricePair{}, fmt.Errorf("redis: get price pair %d: %w", marketID, err)
	}
	if len(vals) == 0 {
		return domain.PricePair{}, domain.ErrNotFound
	}

	yes, err := strconv.ParseInt(vals["yes"], 10, 64)
	if err != nil {
		return domain.PricePair{}, fmt.Errorf("redis: parse yes ticks for %d: %w", marketID, err)
	}
	no, err := strconv.ParseInt(vals["no"], 10, 64)
	if err != nil {
		return domain.PricePair{}, fmt.Errorf("redis: parse no ticks for %d: %w", marketID, err)
	}
	tsNano, err := strconv.ParseInt(vals["ts"], 10, 64)
	if err != nil {
		return domain.PricePair{}, fmt.Errorf("redis: parse ts for %d: %w", marketID, err)
	}

	return domain.PricePair{
		YesTicks:  yes,
		NoTicks:   no,
		UpdatedAt: time.Unix(0, tsNano),
	}, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
