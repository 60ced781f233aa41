package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Stats counts decisions by outcome.
type Stats struct {
	Accepted int64
	Declined int64
	Sent     int64
	Settled  int64
	Failed   int64
	Ignored  int64
	Errors   int64
}

// Count adds one decision with the given outcome.
func (s *Stats) Count(outcome string) {
	switch outcome {
	case "accepted":
		s.Accepted++
	case "declined":
		s.Declined++
	case "sent":
		s.Sent++
	case "settled":
		s.Settled++
	case "failed":
		s.Failed++
	case "ignored":
		s.Ignored++
	}
}

// StatsComponent renders the outcome counters.
type StatsComponent struct {
	stats Stats
}

func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// View renders the stats line.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	acceptRate := float64(0)
	if offers := s.stats.Accepted + s.stats.Declined; offers > 0 {
		acceptRate = float64(s.stats.Accepted) / float64(offers) * 100
	}

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Accepted: %s  │  Declined: %s (%.1f%% accepted)  │  Ignored: %s\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Accepted)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Declined)),
			acceptRate,
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Ignored)),
		) +
		fmt.Sprintf("Sent: %s  │  Settled: %s  │  Failed: %s  │  Errors: %s",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Sent)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Settled)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Failed)),
			errorsDisplay,
		)
}
