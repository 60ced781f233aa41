package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// LedgerRow is one category's profit counters.
type LedgerRow struct {
	Category string
	Lifetime int64
	Weekly   int64
	Daily    int64
}

// Rates is the rate sheet shown under the ledger.
type Rates struct {
	KeyBuy          int64
	KeySell         int64
	CollectibleBuy  int64
	CollectibleSell int64
	MaxBuy          int
	MaxSell         int
}

// LedgerComponent renders the profit ledger and the rate sheet.
type LedgerComponent struct {
	rows  []LedgerRow
	rates *Rates
}

// NewLedgerComponent creates an empty ledger view.
func NewLedgerComponent() *LedgerComponent {
	return &LedgerComponent{}
}

// Update replaces the counters.
func (l *LedgerComponent) Update(rows []LedgerRow) {
	l.rows = rows
}

// SetRates sets the rate sheet.
func (l *LedgerComponent) SetRates(r Rates) {
	l.rates = &r
}

// Totals sums every window.
func (l *LedgerComponent) Totals() LedgerRow {
	t := LedgerRow{Category: "total"}
	for _, r := range l.rows {
		t.Lifetime += r.Lifetime
		t.Weekly += r.Weekly
		t.Daily += r.Daily
	}
	return t
}

// View renders the ledger.
func (l *LedgerComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	totalStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("PROFIT (Gems)"))
	b.WriteString("\n\n")

	if len(l.rows) == 0 {
		b.WriteString(mutedStyle.Render("Loading ledger..."))
		return b.String()
	}

	fmt.Fprintf(&b, "%-18s %10s %10s %10s\n", "Category", "Lifetime", "Weekly", "Daily")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", 51)))
	b.WriteString("\n")
	for _, r := range l.rows {
		fmt.Fprintf(&b, "%-18s %10s %10s %10s\n", r.Category, signed(r.Lifetime), signed(r.Weekly), signed(r.Daily))
	}
	t := l.Totals()
	b.WriteString(mutedStyle.Render(strings.Repeat("─", 51)))
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("%-18s %10s %10s %10s", t.Category, signed(t.Lifetime), signed(t.Weekly), signed(t.Daily))))

	if l.rates == nil {
		return b.String()
	}

	if l.rates.KeyBuy > 0 {
		keys := decimal.NewFromInt(t.Lifetime).Div(decimal.NewFromInt(l.rates.KeyBuy))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("≈ %s TF2 Keys lifetime", keys.StringFixed(2))))
	}

	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render("RATES"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Key:         buy %d  │  sell %d\n", l.rates.KeyBuy, l.rates.KeySell)
	fmt.Fprintf(&b, "Collectible: buy %d  │  sell %d\n", l.rates.CollectibleBuy, l.rates.CollectibleSell)
	fmt.Fprintf(&b, "Limits:      buy %s  │  sell %s", limit(l.rates.MaxBuy), limit(l.rates.MaxSell))
	return b.String()
}

func signed(v int64) string {
	if v > 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render(fmt.Sprintf("%+d", v))
	}
	if v < 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render(fmt.Sprintf("%d", v))
	}
	return "0"
}

func limit(n int) string {
	switch {
	case n < 0:
		return "unlimited"
	case n == 0:
		return "off"
	default:
		return fmt.Sprintf("%d", n)
	}
}
