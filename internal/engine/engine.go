// Package engine executes trades and balance movements for the demo account.
// Pricing math lives in ComputeTrade, a pure function; ExecuteTrade wraps it
// with validation and mutation so a failed trade never touches the balance,
// the position ledger, or the transaction log.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/ledger"
)

// ComputeTrade determines how many shares an investment buys at the given
// price. Shares are truncated to two decimal places, never rounded up, which
// guarantees the actual cost never exceeds the investment. An investment
// that truncates to zero shares is rejected.
func ComputeTrade(priceTicks, investmentMicros int64) (domain.TradePlan, error) {
	if investmentMicros <= 0 {
		return domain.TradePlan{}, domain.ErrInvalidAmount
	}
	if priceTicks <= 0 {
		return domain.TradePlan{}, fmt.Errorf("engine: non-positive price %d ticks", priceTicks)
	}

	// investment/price in hundredths of a share, truncated.
	centiShares := investmentMicros * 100 / priceTicks
	if centiShares == 0 {
		return domain.TradePlan{}, domain.ErrInvalidAmount
	}

	sizeUnits := centiShares * (domain.ShareScale / 100)
	costMicros := sizeUnits / domain.ShareScale * priceTicks
	if rem := sizeUnits % domain.ShareScale; rem != 0 {
		costMicros += rem * priceTicks / domain.ShareScale
	}

	return domain.TradePlan{
		PriceTicks: priceTicks,
		SizeUnits:  sizeUnits,
		CostMicros: costMicros,
	}, nil
}

// Engine validates and applies trades, deposits, and withdrawals. All
// operations on the same Engine are serialized so no two executions can
// interleave a balance read with its write.
type Engine struct {
	mu      sync.Mutex
	markets domain.MarketStore
	users   domain.UserStore
	txs     domain.TransactionStore
	ledger  *ledger.Ledger
	bus     domain.SignalBus
	audit   domain.AuditStore
	logger  *slog.Logger
}

// New creates an Engine with all required dependencies.
func New(
	markets domain.MarketStore,
	users domain.UserStore,
	txs domain.TransactionStore,
	ledger *ledger.Ledger,
	bus domain.SignalBus,
	audit domain.AuditStore,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		markets: markets,
		users:   users,
		txs:     txs,
		ledger:  ledger,
		bus:     bus,
		audit:   audit,
		logger:  logger.With(slog.String("component", "engine")),
	}
}

// ExecuteTrade buys shares on one side of a market with the given
// investment. Every precondition is checked before the first mutation:
// the side must be valid, the market must exist and be active, the
// investment must be positive, buy at least 0.01 shares, and not exceed the
// user's balance. On success the position is merged, a trade transaction is
// appended, the balance is deducted, and market volume is bumped.
func (e *Engine) ExecuteTrade(
	ctx context.Context,
	userID string,
	marketID int64,
	side domain.Side,
	investmentMicros int64,
) (domain.TradeResult, error) {
	if !side.Valid() {
		return domain.TradeResult{}, domain.ErrInvalidSide
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	mkt, err := e.markets.GetByID(ctx, marketID)
	if err != nil {
		return domain.TradeResult{}, domain.ErrMarketNotFound
	}
	if !mkt.Tradable() {
		return domain.TradeResult{}, domain.ErrMarketInactive
	}

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return domain.TradeResult{}, fmt.Errorf("engine: get user %q: %w", userID, err)
	}

	plan, err := ComputeTrade(mkt.PriceTicks(side), investmentMicros)
	if err != nil {
		return domain.TradeResult{}, err
	}
	if investmentMicros > user.BalanceMicros {
		return domain.TradeResult{}, domain.ErrInsufficientBalance
	}

	// Validation complete; apply.
	now := time.Now().UTC()
	newBalance := user.BalanceMicros - plan.CostMicros

	pos, err := e.ledger.Upsert(ctx, userID, marketID, side, plan.SizeUnits, plan.CostMicros, now)
	if err != nil {
		return domain.TradeResult{}, fmt.Errorf("engine: upsert position: %w", err)
	}

	tx := domain.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         domain.TransactionTypeTrade,
		AmountMicros: -plan.CostMicros,
		Details: fmt.Sprintf("bought %.2f %s shares @ %.2f on market %d",
			plan.Shares(), side, plan.Price(), marketID),
		CreatedAt: now,
	}
	if err := e.txs.Append(ctx, tx); err != nil {
		return domain.TradeResult{}, fmt.Errorf("engine: append transaction: %w", err)
	}

	if err := e.users.UpdateBalance(ctx, userID, newBalance); err != nil {
		return domain.TradeResult{}, fmt.Errorf("engine: update balance: %w", err)
	}

	if volErr := e.markets.AddVolume(ctx, marketID, plan.CostMicros); volErr != nil {
		e.logger.WarnContext(ctx, "volume update failed",
			slog.Int64("market_id", marketID),
			slog.String("error", volErr.Error()),
		)
	}

	result := domain.TradeResult{
		TransactionID:    tx.ID,
		PositionID:       pos.ID,
		MarketID:         marketID,
		Side:             side,
		PriceTicks:       plan.PriceTicks,
		SizeUnits:        plan.SizeUnits,
		CostMicros:       plan.CostMicros,
		NewBalanceMicros: newBalance,
	}

	e.publish(ctx, domain.ChannelTrades, map[string]any{
		"event":       domain.EventTradeCompleted,
		"market_id":   marketID,
		"side":        string(side),
		"shares":      result.Shares(),
		"cost":        result.Cost(),
		"price":       result.Price(),
		"new_balance": result.NewBalance(),
		"timestamp":   now.Format(time.RFC3339),
	})
	e.publish(ctx, domain.ChannelBalance, map[string]any{
		"event":   domain.EventBalanceUpdated,
		"user_id": userID,
		"balance": result.NewBalance(),
	})
	e.auditLog(ctx, domain.EventTradeCompleted, map[string]any{
		"transaction_id": tx.ID,
		"market_id":      marketID,
		"side":           string(side),
		"shares":         result.Shares(),
		"cost":           result.Cost(),
	})

	e.logger.InfoContext(ctx, "trade executed",
		slog.String("user_id", userID),
		slog.Int64("market_id", marketID),
		slog.String("side", string(side)),
		slog.Float64("shares", result.Shares()),
		slog.Float64("cost", result.Cost()),
		slog.Float64("new_balance", result.NewBalance()),
	)
	return result, nil
}

// Deposit credits the balance and appends a deposit transaction.
func (e *Engine) Deposit(ctx context.Context, userID string, amountMicros int64) (int64, error) {
	if amountMicros <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("engine: get user %q: %w", userID, err)
	}

	now := time.Now().UTC()
	newBalance := user.BalanceMicros + amountMicros

	tx := domain.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         domain.TransactionTypeDeposit,
		AmountMicros: amountMicros,
		Details:      fmt.Sprintf("deposited $%.2f", domain.DollarsFromMicros(amountMicros)),
		CreatedAt:    now,
	}
	if err := e.txs.Append(ctx, tx); err != nil {
		return 0, fmt.Errorf("engine: append deposit transaction: %w", err)
	}
	if err := e.users.UpdateBalance(ctx, userID, newBalance); err != nil {
		return 0, fmt.Errorf("engine: update balance: %w", err)
	}

	e.publish(ctx, domain.ChannelBalance, map[string]any{
		"event":   domain.EventDepositCompleted,
		"user_id": userID,
		"amount":  domain.DollarsFromMicros(amountMicros),
		"balance": domain.DollarsFromMicros(newBalance),
	})
	e.auditLog(ctx, domain.EventDepositCompleted, map[string]any{
		"transaction_id": tx.ID,
		"amount":         domain.DollarsFromMicros(amountMicros),
	})

	e.logger.InfoContext(ctx, "deposit completed",
		slog.String("user_id", userID),
		slog.Float64("amount", domain.DollarsFromMicros(amountMicros)),
	)
	return newBalance, nil
}

// Withdraw debits the balance and appends a withdrawal transaction. The
// balance can never go negative.
func (e *Engine) Withdraw(ctx context.Context, userID string, amountMicros int64) (int64, error) {
	if amountMicros <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("engine: get user %q: %w", userID, err)
	}
	if amountMicros > user.BalanceMicros {
		return 0, domain.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	newBalance := user.BalanceMicros - amountMicros

	tx := domain.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         domain.TransactionTypeWithdrawal,
		AmountMicros: -amountMicros,
		Details:      fmt.Sprintf("withdrew $%.2f", domain.DollarsFromMicros(amountMicros)),
		CreatedAt:    now,
	}
	if err := e.txs.Append(ctx, tx); err != nil {
		return 0, fmt.Errorf("engine: append withdrawal transaction: %w", err)
	}
	if err := e.users.UpdateBalance(ctx, userID, newBalance); err != nil {
		return 0, fmt.Errorf("engine: update balance: %w", err)
	}

	e.publish(ctx, domain.ChannelBalance, map[string]any{
		"event":   domain.EventBalanceUpdated,
		"user_id": userID,
		"balance": domain.DollarsFromMicros(newBalance),
	})

	e.logger.InfoContext(ctx, "withdrawal completed",
		slog.String("user_id", userID),
		slog.Float64("amount", domain.DollarsFromMicros(amountMicros)),
	)
	return newBalance, nil
}

// publish sends an event on the signal bus; failures are logged, never
// surfaced to the caller.
func (e *Engine) publish(ctx context.Context, channel string, payload map[string]any) {
	evt, _ := json.Marshal(payload)
	if err := e.bus.Publish(ctx, channel, evt); err != nil {
		e.logger.WarnContext(ctx, "event publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

// auditLog writes an audit entry; failures are logged, never surfaced.
func (e *Engine) auditLog(ctx context.Context, event string, detail map[string]any) {
	if err := e.audit.Log(ctx, event, detail); err != nil {
		e.logger.WarnContext(ctx, "audit log failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
