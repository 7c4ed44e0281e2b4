package domain

// Signal bus channels used across the application. The WebSocket hub
// re-broadcasts every one of them to connected front-end clients.
const (
	ChannelPrices  = "prices"
	ChannelTrades  = "trades"
	ChannelBalance = "balance"
)

// Event names carried in published payloads.
const (
	EventPriceUpdated     = "price_updated"
	EventTradeCompleted   = "trade_completed"
	EventBalanceUpdated   = "balance_updated"
	EventDepositCompleted = "deposit_completed"
)
