// Package ui provides the Bubble Tea dashboard for the trading bot.
package ui

import "time"

// DecisionMsg is sent for every trade decision.
type DecisionMsg struct {
	Time     time.Time
	OfferID  string
	Partner  string
	Category string
	Units    int
	Gems     int64
	Profit   int64
	Outcome  string
	Reason   string
}

// LedgerRow is one category's counters.
type LedgerRow struct {
	Category string
	Lifetime int64
	Weekly   int64
	Daily    int64
}

// LedgerMsg is sent after every ledger mutation.
type LedgerMsg struct {
	Rows []LedgerRow
}

// RatesMsg carries the configured rate sheet.
type RatesMsg struct {
	KeyBuy          int64
	KeySell         int64
	CollectibleBuy  int64
	CollectibleSell int64
	MaxBuy          int
	MaxSell         int
}

// ConnectionStatusMsg is sent when connection status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // config, storage, trading, bridge
	Status  string // "connecting", "connected", "done", "failed"
	Message string
}
