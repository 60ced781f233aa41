package app

import (
	"context"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// StatusSetter publishes the bot's status line.
type StatusSetter interface {
	SetStatus(ctx context.Context, text string) error
}

// StatusPublisher keeps the bot's status in line with its gem stock.
type StatusPublisher struct {
	setter StatusSetter
	inv    *InventoryReader
	bot    platform.SteamID
	log    logger.LoggerInterface
}

// NewStatusPublisher creates a StatusPublisher.
func NewStatusPublisher(setter StatusSetter, inv *InventoryReader, bot platform.SteamID, log logger.LoggerInterface) *StatusPublisher {
	return &StatusPublisher{setter: setter, inv: inv, bot: bot, log: log}
}

// Refresh reads the bot's gem balance and publishes it. Best effort.
func (s *StatusPublisher) Refresh(ctx context.Context) {
	gems := s.inv.Balance(ctx, s.bot)
	if err := s.setter.SetStatus(ctx, domain.StatusText(gems)); err != nil {
		s.log.Warn(ctx, "status update failed", "error", err)
	}
}
