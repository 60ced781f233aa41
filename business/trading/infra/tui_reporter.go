package infra

import (
	"context"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/pkg/ui"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
)

// TUIReporter implements Reporter by forwarding to the Bubble Tea dashboard.
type TUIReporter struct {
	send func(msg any)
}

// NewTUIReporter creates a TUIReporter bound to the running dashboard.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{send: func(msg any) { ui.Send(msg) }}
}

// Start marks the trading step ready on the startup screen.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.StartupMsg{Step: "trading", Status: "done"})
	return nil
}

// Report sends one trade decision to the activity feed.
func (r *TUIReporter) Report(d app.Decision) {
	r.send(ui.DecisionMsg{
		Time:     d.Time,
		OfferID:  d.OfferID,
		Partner:  d.Partner.String(),
		Category: string(d.Category),
		Units:    d.Units,
		Gems:     d.Gems,
		Profit:   d.Profit,
		Outcome:  string(d.Outcome),
		Reason:   d.Reason,
	})
}

// UpdateLedger sends the profit counters.
func (r *TUIReporter) UpdateLedger(l ledger.Ledger) {
	msg := ui.LedgerMsg{Rows: make([]ui.LedgerRow, 0, len(ledger.Categories()))}
	for _, c := range ledger.Categories() {
		counters := l[c]
		msg.Rows = append(msg.Rows, ui.LedgerRow{
			Category: string(c),
			Lifetime: counters.Lifetime,
			Weekly:   counters.Weekly,
			Daily:    counters.Daily,
		})
	}
	r.send(msg)
}

// UpdateConnectionStatus sends a connection status change.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool) {
	r.send(ui.ConnectionStatusMsg{Name: name, Connected: connected})
}

// Stop is a no-op; the dashboard owns its own lifecycle.
func (r *TUIReporter) Stop() error {
	return nil
}
