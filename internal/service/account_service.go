package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/engine"
)

// AccountService resolves the current demo user and applies balance
// movements through the trade engine, keeping the session snapshot in sync.
type AccountService struct {
	users   domain.UserStore
	session domain.SessionStore
	engine  *engine.Engine
	logger  *slog.Logger
}

// NewAccountService creates an AccountService with all required dependencies.
func NewAccountService(
	users domain.UserStore,
	session domain.SessionStore,
	eng *engine.Engine,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:   users,
		session: session,
		engine:  eng,
		logger:  logger,
	}
}

// Current returns the session's user with a fresh balance from the user
// store. It returns domain.ErrNoSession when no session exists.
func (s *AccountService) Current(ctx context.Context) (domain.User, error) {
	sess, err := s.session.Current(ctx)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByID(ctx, sess.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("account_service: get user %q: %w", sess.ID, err)
	}
	return user, nil
}

// Deposit credits the user's balance and refreshes the session snapshot.
func (s *AccountService) Deposit(ctx context.Context, userID string, amountMicros int64) (domain.User, error) {
	if _, err := s.engine.Deposit(ctx, userID, amountMicros); err != nil {
		return domain.User{}, err
	}
	return s.refreshSession(ctx, userID)
}

// Withdraw debits the user's balance and refreshes the session snapshot.
func (s *AccountService) Withdraw(ctx context.Context, userID string, amountMicros int64) (domain.User, error) {
	if _, err := s.engine.Withdraw(ctx, userID, amountMicros); err != nil {
		return domain.User{}, err
	}
	return s.refreshSession(ctx, userID)
}

// SyncSession re-persists the stored user into the session. Called after any
// operation that moves the balance outside this service (e.g. trades).
func (s *AccountService) SyncSession(ctx context.Context, userID string) {
	if _, err := s.refreshSession(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "account_service: session sync failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *AccountService) refreshSession(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("account_service: get user %q: %w", userID, err)
	}
	if err := s.session.Persist(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("account_service: persist session: %w", err)
	}
	return user, nil
}
