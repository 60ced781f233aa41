// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DecisionRow is one trade decision in the feed.
type DecisionRow struct {
	Time     string
	OfferID  string
	Partner  string
	Category string
	Units    int
	Gems     int64
	Profit   int64
	Outcome  string
	Reason   string
}

// DecisionsComponent renders the most recent trade decisions, newest first.
type DecisionsComponent struct {
	rows    []DecisionRow
	maxRows int
	offset  int
	visible int
}

// NewDecisionsComponent keeps up to maxRows decisions and shows visible of
// them at a time.
func NewDecisionsComponent(maxRows, visible int) *DecisionsComponent {
	return &DecisionsComponent{maxRows: maxRows, visible: visible}
}

// Add prepends a decision.
func (d *DecisionsComponent) Add(row DecisionRow) {
	d.rows = append([]DecisionRow{row}, d.rows...)
	if len(d.rows) > d.maxRows {
		d.rows = d.rows[:d.maxRows]
	}
	d.offset = 0
}

// Clear drops every decision.
func (d *DecisionsComponent) Clear() {
	d.rows = nil
	d.offset = 0
}

// Len returns the number of stored decisions.
func (d *DecisionsComponent) Len() int {
	return len(d.rows)
}

func (d *DecisionsComponent) ScrollUp() {
	if d.offset > 0 {
		d.offset--
	}
}

func (d *DecisionsComponent) ScrollDown() {
	if d.offset < len(d.rows)-d.visible {
		d.offset++
	}
}

// View renders the decision table.
func (d *DecisionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("TRADES (last %d)", d.maxRows)))
	b.WriteString("\n")

	if len(d.rows) == 0 {
		b.WriteString(mutedStyle.Render("No trade offers yet..."))
		return b.String()
	}

	b.WriteString("┌──────────┬────────────┬──────────────────┬───────┬────────┬────────┐\n")
	b.WriteString("│   Time   │  Outcome   │ Category         │ Units │  Gems  │ Profit │\n")
	b.WriteString("├──────────┼────────────┼──────────────────┼───────┼────────┼────────┤\n")

	end := min(d.offset+d.visible, len(d.rows))
	for _, row := range d.rows[d.offset:end] {
		category := row.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(&b, "│ %8s │ %s │ %-16s │%6d │%7d │%7d │\n",
			row.Time,
			outcomeStyle(row.Outcome).Render(fmt.Sprintf("%-10s", row.Outcome)),
			category,
			row.Units,
			row.Gems,
			row.Profit,
		)
		if row.Reason != "" {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("│   └ %s", truncate(row.Reason, 62))))
			b.WriteString("\n")
		}
	}
	b.WriteString("└──────────┴────────────┴──────────────────┴───────┴────────┴────────┘")

	if len(d.rows) > d.visible {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("showing %d-%d of %d", d.offset+1, end, len(d.rows))))
	}
	return b.String()
}

func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "accepted", "settled", "sent":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	case "declined", "failed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
