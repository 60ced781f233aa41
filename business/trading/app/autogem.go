package app

import (
	"context"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"

	platformapp "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/app"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/ratelimit"
)

// AutoGemConfig controls the sweep.
type AutoGemConfig struct {
	Threshold    int64
	Interval     time.Duration
	Throttle     time.Duration
	RunOnStartup bool
}

// AutoGem grinds the bot's gemmable collectibles worth more than the
// threshold, one item per throttle interval.
type AutoGem struct {
	grinder platformapp.Grinder
	inv     *InventoryReader
	policy  domain.ItemPolicy
	bot     platform.SteamID
	cfg     AutoGemConfig
	log     logger.LoggerInterface
}

// NewAutoGem creates an AutoGem.
func NewAutoGem(grinder platformapp.Grinder, inv *InventoryReader, policy domain.ItemPolicy, bot platform.SteamID, cfg AutoGemConfig, log logger.LoggerInterface) *AutoGem {
	if cfg.Throttle <= 0 {
		cfg.Throttle = time.Second
	}
	return &AutoGem{grinder: grinder, inv: inv, policy: policy, bot: bot, cfg: cfg, log: log}
}

// Sweep runs one pass. Failures on single items are logged and skipped; the
// returned count is the number of items ground.
func (a *AutoGem) Sweep(ctx context.Context) (int, error) {
	items, err := a.inv.QualifyingItems(ctx, a.bot, platform.GemNamespace, func(it platform.Item) bool {
		return a.policy.Grindable(it, a.cfg.Threshold)
	})
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	a.log.Info(ctx, "autogem sweep started", "items", len(items))

	ground := 0
	var gained int64
	_, err = ratelimit.Pace(ctx, ratelimit.Every(a.cfg.Throttle), items, func(ctx context.Context, it platform.Item) error {
		gems, err := a.grinder.GrindIntoGems(ctx, it)
		if err != nil {
			a.log.Warn(ctx, "autogem item failed", "asset_id", it.AssetID, "name", it.Name, "error", err)
			return nil
		}
		ground++
		gained += gems
		return nil
	})

	a.log.Info(ctx, "autogem sweep finished", "ground", ground, "gems", gained)
	return ground, err
}

// Run sweeps on startup, if configured, and then every interval until ctx
// is cancelled.
func (a *AutoGem) Run(ctx context.Context) {
	if a.cfg.RunOnStartup {
		a.sweep(ctx)
	}
	if a.cfg.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(ctx)
		}
	}
}

func (a *AutoGem) sweep(ctx context.Context) {
	if _, err := a.Sweep(ctx); err != nil && ctx.Err() == nil {
		a.log.Error(ctx, "autogem sweep failed", "error", err)
	}
}
