// Package infra contains infrastructure adapters for the trading context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/app"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Start prints the banner.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "Gem/Key Trading Bot Started")
	fmt.Fprintln(r.out, "===========================")
	return nil
}

// Report prints one trade decision. Ignored offers are not printed.
func (r *ConsoleReporter) Report(d app.Decision) {
	if d.Outcome == app.OutcomeIgnored {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("[%s] %-8s", stamp(d.Time), d.Outcome)
	if d.OfferID != "" {
		line += " offer=" + d.OfferID
	}
	line += " partner=" + d.Partner.String()
	if d.Category != "" {
		line += fmt.Sprintf(" %s x%d", d.Category, d.Units)
	}
	if d.Gems > 0 {
		line += fmt.Sprintf(" gems=%d", d.Gems)
	}
	if d.Profit != 0 {
		line += fmt.Sprintf(" profit=%+d", d.Profit)
	}
	if d.Reason != "" {
		line += " (" + d.Reason + ")"
	}
	fmt.Fprintln(r.out, line)
}

// UpdateLedger prints the lifetime, weekly and daily totals.
func (r *ConsoleReporter) UpdateLedger(l ledger.Ledger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "[%s] profit  lifetime=%d weekly=%d daily=%d\n",
		stamp(time.Now()),
		l.Total(ledger.Lifetime),
		l.Total(ledger.Weekly),
		l.Total(ledger.Daily),
	)
}

// UpdateConnectionStatus prints connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool) {
	status := "disconnected"
	if connected {
		status = "connected"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "[%s] %s: %s\n", stamp(time.Now()), name, status)
}

// Stop prints the farewell line.
func (r *ConsoleReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Gem/Key Trading Bot Stopped")
	return nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("15:04:05")
}
