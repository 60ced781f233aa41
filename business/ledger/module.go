// Package ledger implements the ledger bounded context: profit counters per
// trade category and the persisted block list.
package ledger

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/app"
	ledgerDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/infra/jsonstore"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/infra/redisstore"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/infra/sqlitestore"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/config"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/health"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/monolith"
)

const openTimeout = 10 * time.Second

// Module implements the ledger bounded context.
type Module struct{}

// OpenStore creates the configured store driver.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (app.Store, error) {
	switch cfg.Driver {
	case "", config.StorageJSON:
		return jsonstore.New(cfg.Dir)
	case config.StorageSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Dir, "tradebot.db")
		}
		return sqlitestore.New(ctx, path)
	case config.StorageRedis:
		return redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// RegisterServices opens the store eagerly: a store that cannot be created
// aborts startup.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("ledger: open %s store: %w", cfg.Storage.Driver, err)
	}

	di.RegisterToken(c, ledgerDI.Store, func(di.ServiceRegistry) app.Store {
		return store
	})

	di.RegisterToken(c, ledgerDI.ProfitLedger, func(sr di.ServiceRegistry) *app.ProfitLedger {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewProfitLedger(ledgerDI.GetStore(sr), log)
	})

	di.RegisterToken(c, ledgerDI.BlockService, func(sr di.ServiceRegistry) *app.BlockService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ignore := make([]platform.SteamID, 0, len(cfg.Chat.IgnoreList))
		for _, id := range cfg.Chat.IgnoreList {
			ignore = append(ignore, platform.SteamID(id))
		}
		return app.NewBlockService(ledgerDI.GetStore(sr), cfg.IsOwner, ignore, log)
	})

	di.RegisterToken(c, ledgerDI.Scheduler, func(sr di.ServiceRegistry) *app.WindowScheduler {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewWindowScheduler(ledgerDI.GetProfitLedger(sr), log)
	})

	return nil
}

// Startup loads persisted state and starts the window scheduler.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	profit := ledgerDI.GetProfitLedger(sr)
	if err := profit.Load(ctx); err != nil {
		return err
	}
	blocks := ledgerDI.GetBlockService(sr)
	if err := blocks.Load(ctx); err != nil {
		return err
	}

	mono.OnClose(ledgerDI.GetStore(sr).Close)

	mono.Health().Handle("/ledger", func(w http.ResponseWriter, r *http.Request) {
		health.WriteJSON(w, http.StatusOK, profit.Snapshot())
	})

	go ledgerDI.GetScheduler(sr).Run(ctx)

	log.Info(ctx, "ledger module started",
		"driver", mono.Config().Storage.Driver,
		"blocked", len(blocks.List()))
	return nil
}
