package domain

import "time"

// User holds the demo account. BalanceMicros is the single source of truth
// for spendable funds and never goes negative; trade and withdrawal
// validation enforce that before any mutation.
type User struct {
	ID            string
	Name          string
	BalanceMicros int64
	CreatedAt     time.Time
}

// Balance returns the display dollar balance.
func (u User) Balance() float64 {
	return DollarsFromMicros(u.BalanceMicros)
}
