package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/engine"
	"github.com/patrickmak/papertrader/internal/ledger"
	"github.com/patrickmak/papertrader/internal/pricing"
	"github.com/patrickmak/papertrader/internal/seed"
	"github.com/patrickmak/papertrader/internal/server"
	"github.com/patrickmak/papertrader/internal/server/handler"
	"github.com/patrickmak/papertrader/internal/server/ws"
	"github.com/patrickmak/papertrader/internal/service"
)

// shutdownTimeout bounds graceful HTTP shutdown after the context is
// cancelled.
const shutdownTimeout = 10 * time.Second

// serve assembles the trading stack on top of the wired dependencies, seeds
// the demo dataset, and runs the price model, WebSocket hub, and HTTP API
// until the context is cancelled.
func (a *App) serve(ctx context.Context, deps *Dependencies, mode string) error {
	logger := a.logger

	// Seed markets and the demo account before anything starts trading.
	seeder := seed.New(deps.MarketStore, deps.UserStore, deps.SessionStore, logger)
	if err := seeder.Run(ctx, a.cfg.Seed.UserName); err != nil {
		return fmt.Errorf("app: seed: %w", err)
	}

	posLedger := ledger.New(deps.PositionStore, logger)
	eng := engine.New(
		deps.MarketStore,
		deps.UserStore,
		deps.TransactionStore,
		posLedger,
		deps.SignalBus,
		deps.AuditStore,
		logger,
	)

	model := pricing.NewModel(
		deps.MarketStore,
		deps.PriceCache,
		deps.SignalBus,
		pricing.Config{
			MaxStepTicks: domain.TicksFromPrice(a.cfg.Pricing.MaxStep),
			MinTicks:     domain.TicksFromPrice(a.cfg.Pricing.MinPrice),
			MaxTicks:     domain.TicksFromPrice(a.cfg.Pricing.MaxPrice),
		},
		logger,
	)

	marketSvc := service.NewMarketService(deps.MarketStore, deps.PriceCache, logger)
	accountSvc := service.NewAccountService(deps.UserStore, deps.SessionStore, eng, logger)
	portfolioSvc := service.NewPortfolioService(deps.PositionStore, deps.MarketStore, logger)

	hub := ws.NewHub(deps.SignalBus, logger, mode)

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
		},
		server.Handlers{
			Health:       handler.NewHealthHandler(marketSvc),
			Markets:      handler.NewMarketHandler(marketSvc),
			Trades:       handler.NewTradeHandler(eng, accountSvc),
			Transactions: handler.NewTransactionHandler(deps.TransactionStore, accountSvc),
			Portfolio:    handler.NewPortfolioHandler(portfolioSvc, accountSvc),
			Account:      handler.NewAccountHandler(accountSvc),
		},
		hub,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := model.Run(gctx, a.cfg.Pricing.Interval.Duration)
		if err != nil && gctx.Err() == nil {
			return fmt.Errorf("app: price model: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := hub.Run(gctx)
		if err != nil && gctx.Err() == nil {
			return fmt.Errorf("app: ws hub: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.forwardTradeNotifications(gctx, deps)
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.InfoContext(ctx, "application running",
		slog.String("mode", mode),
		slog.Int("port", a.cfg.Server.Port),
	)

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// forwardTradeNotifications mirrors trade events from the signal bus to the
// configured notification channels. Failures are logged and never interrupt
// trading.
func (a *App) forwardTradeNotifications(ctx context.Context, deps *Dependencies) error {
	msgs, err := deps.SignalBus.Subscribe(ctx, domain.ChannelTrades)
	if err != nil {
		a.logger.WarnContext(ctx, "trade notification subscribe failed",
			slog.String("error", err.Error()),
		)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-msgs:
			if !ok {
				return nil
			}

			var event struct {
				Event    string  `json:"event"`
				MarketID int64   `json:"market_id"`
				Side     string  `json:"side"`
				Shares   float64 `json:"shares"`
				Price    float64 `json:"price"`
				Cost     float64 `json:"cost"`
			}
			if err := json.Unmarshal(data, &event); err != nil || event.Event != domain.EventTradeCompleted {
				continue
			}

			msg := fmt.Sprintf("Bought %.2f %s shares @ %.2f on market %d for $%.2f",
				event.Shares,
				event.Side,
				event.Price,
				event.MarketID,
				event.Cost,
			)
			if err := deps.Notifier.Notify(ctx, domain.EventTradeCompleted, "Trade executed", msg); err != nil {
				a.logger.WarnContext(ctx, "trade notification failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
