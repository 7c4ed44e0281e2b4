package domain

import "time"

// TransactionType classifies a balance movement.
type TransactionType string

const (
	TransactionTypeTrade      TransactionType = "trade"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// Transaction is an immutable, append-only record of a balance movement.
// AmountMicros is signed: negative for trades and withdrawals, positive for
// deposits. Transactions are never mutated or deleted after creation.
type Transaction struct {
	ID           string
	UserID       string
	Type         TransactionType
	AmountMicros int64
	Details      string
	CreatedAt    time.Time
}

// Amount returns the signed display dollar amount.
func (t Transaction) Amount() float64 {
	return DollarsFromMicros(t.AmountMicros)
}
