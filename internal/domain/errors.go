package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrMarketNotFound      = errors.New("market not found")
	ErrMarketInactive      = errors.New("market is not active")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidSide         = errors.New("invalid side")
	ErrNoSession           = errors.New("no active session")
)
