// Package chat implements the chat bounded context: the command protocol,
// spam control, friend list upkeep and admin broadcasts.
package chat

import (
	"context"
	"sync/atomic"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/chat/app"
	chatDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/chat/di"

	ledgerDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/di"
	platformDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/di"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading"
	tradingDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/config"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/monolith"
)

// Module implements the chat bounded context.
type Module struct{}

// RegisterServices registers all chat services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, chatDI.Spam, func(sr di.ServiceRegistry) *app.SpamFilter {
		cfg := sr.Get("config").(*config.Config)
		return app.NewSpamFilter(cfg.Chat.MaxMsgPerSec, cfg.Chat.SpamWindow)
	})

	di.RegisterToken(c, chatDI.Broadcaster, func(sr di.ServiceRegistry) *app.Broadcaster {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewBroadcaster(platformDI.GetPlatform(sr), platformDI.GetMessenger(sr), cfg.Chat.BroadcastDelay, log)
	})

	di.RegisterToken(c, chatDI.Friends, func(sr di.ServiceRegistry) *app.FriendHandler {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewFriendHandler(platformDI.GetPlatform(sr), platformDI.GetMessenger(sr),
			ledgerDI.GetBlockService(sr), cfg.Chat.InviteGroupID, cfg.Messages.Welcome, log)
	})

	di.RegisterToken(c, chatDI.Dispatcher, func(sr di.ServiceRegistry) *app.Dispatcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		owners := make([]platform.SteamID, 0, len(cfg.Bot.Owners))
		for _, o := range cfg.Bot.Owners {
			owners = append(owners, platform.SteamID(o))
		}

		deps := app.Deps{
			Notifier:    platformDI.GetMessenger(sr),
			Friends:     platformDI.GetPlatform(sr),
			Trader:      tradingDI.GetConstructor(sr),
			Holdings:    tradingDI.GetInventory(sr),
			Blocks:      ledgerDI.GetBlockService(sr),
			Profit:      ledgerDI.GetProfitLedger(sr),
			Broadcaster: chatDI.GetBroadcaster(sr),
			Spam:        chatDI.GetSpam(sr),
			IsKey:       tradingDI.GetPolicy(sr).IsKey,
			Log:         log,
		}
		settings := app.Settings{
			Bot:    platform.SteamID(cfg.Bot.SteamID),
			Owners: owners,
			Rates:  trading.Settings(cfg).Rates,
			Limits: trading.Settings(cfg).Limits,
			Texts: app.Texts{
				Help:      cfg.Messages.Help,
				AdminHelp: cfg.Messages.AdminHelp,
				Info:      cfg.Messages.Info,
			},
			IsAdmin: cfg.IsOwner,
		}
		return app.NewDispatcher(deps, settings)
	})

	return nil
}

// Startup subscribes to chat and friend events. It must run before the
// platform module opens the event stream.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	router := platformDI.GetRouter(sr)
	router.OnChatMessage(chatDI.GetDispatcher(sr).HandleChat)

	friends := chatDI.GetFriends(sr)
	router.OnFriendRelationship(friends.HandleRelationship)

	go chatDI.GetBroadcaster(sr).Run(ctx)

	// Pending requests wait for the bridge; the first connect triggers the
	// sweep.
	var swept atomic.Bool
	router.OnConnectionChange(func(connected bool) {
		if !connected || !swept.CompareAndSwap(false, true) {
			return
		}
		go func() {
			n, err := friends.AcceptPending(ctx)
			if err != nil {
				log.Warn(ctx, "accepting pending friend requests failed", "error", err)
				return
			}
			log.Info(ctx, "pending friend requests accepted", "count", n)
		}()
	})

	log.Info(ctx, "chat module started",
		"max_msg_per_sec", mono.Config().Chat.MaxMsgPerSec,
		"ignored", len(mono.Config().Chat.IgnoreList))
	return nil
}
