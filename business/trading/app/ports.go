// Package app contains the trading services: the inventory reader, the offer
// reconciler, command-initiated offer construction, the autogem sweep and the
// status publisher.
package app

import (
	"context"
	"time"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Notifier delivers chat replies. Failures are handled by the implementation.
type Notifier interface {
	Send(ctx context.Context, to platform.SteamID, text string)
}

// ProfitRecorder books profit per category.
type ProfitRecorder interface {
	Record(ctx context.Context, category ledger.Category, delta int64) error
}

// BlockChecker reports blocked parties.
type BlockChecker interface {
	IsBlocked(id platform.SteamID) bool
}

// Outcome is what the bot did with a trade.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeDeclined Outcome = "declined"
	OutcomeSent     Outcome = "sent"
	OutcomeSettled  Outcome = "settled"
	OutcomeFailed   Outcome = "failed"
	OutcomeIgnored  Outcome = "ignored"
)

// Decision is one trade event shown on the dashboard.
type Decision struct {
	Time     time.Time
	OfferID  string
	Partner  platform.SteamID
	Shape    string
	Category ledger.Category
	Units    int
	Gems     int64
	Profit   int64
	Outcome  Outcome
	Reason   string
}

// Reporter defines the interface for reporting trade activity.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report records one trade decision.
	Report(d Decision)

	// UpdateLedger refreshes the profit display.
	UpdateLedger(l ledger.Ledger)

	// UpdateConnectionStatus updates a connection status display.
	UpdateConnectionStatus(name string, connected bool)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Start(context.Context) error         { return nil }
func (NopReporter) Report(Decision)                     {}
func (NopReporter) UpdateLedger(ledger.Ledger)          {}
func (NopReporter) UpdateConnectionStatus(string, bool) {}
func (NopReporter) Stop() error                         { return nil }
