package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ConnectionStatus is one remote link's state.
type ConnectionStatus struct {
	Name       string
	Connected  bool
	LastChange time.Time
}

// StatusComponent renders connection states in insertion order.
type StatusComponent struct {
	connections []ConnectionStatus
}

func NewStatusComponent() *StatusComponent {
	return &StatusComponent{}
}

// Update upserts a connection's status.
func (s *StatusComponent) Update(status ConnectionStatus) {
	for i, conn := range s.connections {
		if conn.Name == status.Name {
			s.connections[i] = status
			return
		}
	}
	s.connections = append(s.connections, status)
}

// Connected reports the state of name.
func (s *StatusComponent) Connected(name string) bool {
	for _, conn := range s.connections {
		if conn.Name == name {
			return conn.Connected
		}
	}
	return false
}

// View renders one segment per connection.
func (s *StatusComponent) View() string {
	if len(s.connections) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render("○ no connections")
	}

	parts := make([]string, 0, len(s.connections))
	for _, conn := range s.connections {
		if conn.Connected {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
			parts = append(parts, style.Render("● "+conn.Name))
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
		label := "○ " + conn.Name + " (disconnected"
		if !conn.LastChange.IsZero() {
			label += fmt.Sprintf(" %s", time.Since(conn.LastChange).Round(time.Second))
		}
		parts = append(parts, style.Render(label+")"))
	}
	return strings.Join(parts, "  │  ")
}
