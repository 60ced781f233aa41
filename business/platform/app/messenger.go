package app

import (
	"context"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// Messenger sends chat replies fire-and-forget: failures are logged here and
// never reach the caller.
type Messenger struct {
	chat Chat
	log  logger.LoggerInterface
}

// NewMessenger creates a Messenger.
func NewMessenger(chat Chat, log logger.LoggerInterface) *Messenger {
	return &Messenger{chat: chat, log: log}
}

// Send delivers text to the party.
func (m *Messenger) Send(ctx context.Context, to domain.SteamID, text string) {
	if text == "" {
		return
	}
	if err := m.chat.SendMessage(ctx, to, text); err != nil {
		m.log.Warn(ctx, "chat message failed",
			"to", to,
			"correlation_id", CorrelationID(ctx),
			"error", err,
		)
	}
}
