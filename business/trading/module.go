// Package trading implements the trading bounded context: offer
// classification and reconciliation, key offers requested over chat, and the
// autogem sweep.
package trading

import (
	"context"
	"net/http"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/app"
	tradingDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"

	ledgerDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/di"
	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platformDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/di"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/config"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/health"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/monolith"
)

const pruneInterval = time.Hour

// Module implements the trading bounded context.
type Module struct{}

// Settings maps the configuration onto the trading parameters.
func Settings(cfg *config.Config) app.Settings {
	return app.Settings{
		BotID: platform.SteamID(cfg.Bot.SteamID),
		Rates: domain.Rates{
			KeyBuy:          cfg.Rates.KeyBuy,
			KeySell:         cfg.Rates.KeySell,
			CollectibleBuy:  cfg.Rates.CollectibleBuy,
			CollectibleSell: cfg.Rates.CollectibleSell,
		},
		Limits: domain.Limits{
			MaxBuy:  cfg.Limits.MaxBuy,
			MaxSell: cfg.Limits.MaxSell,
		},
		Comment: cfg.Messages.CommentAfterTrade,
	}
}

// RegisterServices registers all trading services with the DI container. A
// reporter registered under "reporter" before this call receives trade
// activity; otherwise activity is only logged.
func (m *Module) RegisterServices(c di.Container) error {
	var reporter app.Reporter = app.NopReporter{}
	if c.Has("reporter") {
		reporter = c.Get("reporter").(app.Reporter)
	}
	di.RegisterToken(c, tradingDI.Reporter, func(di.ServiceRegistry) app.Reporter {
		return reporter
	})

	di.RegisterToken(c, tradingDI.Policy, func(sr di.ServiceRegistry) domain.ItemPolicy {
		cfg := sr.Get("config").(*config.Config)
		return domain.NewItemPolicy(cfg.Trading.KeyNames, cfg.Trading.ItemsNotForTrade)
	})

	di.RegisterToken(c, tradingDI.Settlements, func(sr di.ServiceRegistry) *app.SettlementBook {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewSettlementBook(ledgerDI.GetStore(sr), ledgerDI.GetProfitLedger(sr),
			Settings(cfg).Rates, cfg.Trading.SettlementTTL, log)
	})

	di.RegisterToken(c, tradingDI.Inventory, func(sr di.ServiceRegistry) *app.InventoryReader {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewInventoryReader(platformDI.GetPlatform(sr), log)
	})

	di.RegisterToken(c, tradingDI.Status, func(sr di.ServiceRegistry) *app.StatusPublisher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewStatusPublisher(platformDI.GetPlatform(sr), tradingDI.GetInventory(sr), platform.SteamID(cfg.Bot.SteamID), log)
	})

	di.RegisterToken(c, tradingDI.Reconciler, func(sr di.ServiceRegistry) *app.Reconciler {
		cfg := sr.Get("config").(*config.Config)
		classifier := domain.Classifier{
			Policy:      tradingDI.GetPolicy(sr),
			IsAdmin:     cfg.IsOwner,
			MixedPolicy: cfg.Trading.MixedOfferPolicy,
		}
		return app.NewReconciler(deps(sr), Settings(cfg), classifier,
			tradingDI.GetInventory(sr), tradingDI.GetStatus(sr), tradingDI.GetSettlements(sr))
	})

	di.RegisterToken(c, tradingDI.Constructor, func(sr di.ServiceRegistry) *app.Constructor {
		cfg := sr.Get("config").(*config.Config)
		return app.NewConstructor(deps(sr), Settings(cfg), tradingDI.GetPolicy(sr),
			tradingDI.GetInventory(sr), tradingDI.GetSettlements(sr))
	})

	di.RegisterToken(c, tradingDI.AutoGem, func(sr di.ServiceRegistry) *app.AutoGem {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewAutoGem(platformDI.GetPlatform(sr), tradingDI.GetInventory(sr), tradingDI.GetPolicy(sr),
			platform.SteamID(cfg.Bot.SteamID),
			app.AutoGemConfig{
				Threshold:    cfg.Limits.ConvertToGems,
				Interval:     cfg.AutoGem.Interval,
				Throttle:     cfg.AutoGem.Throttle,
				RunOnStartup: cfg.AutoGem.RunOnStartup,
			}, log)
	})

	return nil
}

func deps(sr di.ServiceRegistry) app.Deps {
	return app.Deps{
		Platform: platformDI.GetPlatform(sr),
		Notifier: platformDI.GetMessenger(sr),
		Ledger:   ledgerDI.GetProfitLedger(sr),
		Blocks:   ledgerDI.GetBlockService(sr),
		Reporter: tradingDI.GetReporter(sr),
		Log:      sr.Get("logger").(logger.LoggerInterface),
	}
}

// Startup subscribes to offer events and starts the background jobs. It must
// run before the platform module opens the event stream.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()
	cfg := mono.Config()

	reporter := tradingDI.GetReporter(sr)
	if err := reporter.Start(ctx); err != nil {
		return err
	}
	mono.OnClose(reporter.Stop)

	profit := ledgerDI.GetProfitLedger(sr)
	profit.OnChange(reporter.UpdateLedger)
	reporter.UpdateLedger(profit.Snapshot())

	book := tradingDI.GetSettlements(sr)
	restored, err := book.Load(ctx)
	if err != nil {
		return err
	}

	reconciler := tradingDI.GetReconciler(sr)
	router := platformDI.GetRouter(sr)
	router.OnNewOffer(reconciler.HandleNewOffer)
	router.OnOfferChanged(reconciler.HandleOfferChanged)
	router.OnConnectionChange(func(connected bool) {
		reporter.UpdateConnectionStatus("Steam bridge", connected)
	})

	mono.Health().Handle("/trading", func(w http.ResponseWriter, r *http.Request) {
		health.WriteJSON(w, http.StatusOK, map[string]any{
			"pending_settlements": reconciler.Pending(),
			"profit_lifetime":     profit.Snapshot().Total(ledger.Lifetime),
		})
	})

	go tradingDI.GetStatus(sr).Refresh(ctx)
	go prune(ctx, book)

	if cfg.AutoGem.Enabled {
		go tradingDI.GetAutoGem(sr).Run(ctx)
	}

	log.Info(ctx, "trading module started",
		"mixed_offer_policy", cfg.Trading.MixedOfferPolicy,
		"max_buy", cfg.Limits.MaxBuy,
		"max_sell", cfg.Limits.MaxSell,
		"autogem", cfg.AutoGem.Enabled,
		"pending_settlements", restored)
	return nil
}

func prune(ctx context.Context, book *app.SettlementBook) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			book.Prune(ctx)
		}
	}
}
