package app

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	platformapp "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/app"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// fetchTimeout bounds a shared inventory fetch.
const fetchTimeout = time.Minute

// InventoryReader reads live inventories. Concurrent reads of the same
// inventory share one remote call; nothing is cached past it.
type InventoryReader struct {
	inv   platformapp.Inventory
	log   logger.LoggerInterface
	group singleflight.Group
}

// NewInventoryReader creates an InventoryReader.
func NewInventoryReader(inv platformapp.Inventory, log logger.LoggerInterface) *InventoryReader {
	return &InventoryReader{inv: inv, log: log}
}

// Items returns the party's tradable items in ns.
func (r *InventoryReader) Items(ctx context.Context, party platform.SteamID, ns platform.Namespace) ([]platform.Item, error) {
	key := party.String() + "|" + ns.String()
	v, err, _ := r.group.Do(key, func() (any, error) {
		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return r.inv.FetchInventory(fetchCtx, party, ns, true)
	})
	if err != nil {
		return nil, err
	}
	// Callers may filter in place; shared results must not alias.
	items := v.([]platform.Item)
	out := make([]platform.Item, len(items))
	copy(out, items)
	return out, nil
}

// GemBalance sums the party's gem stacks.
func (r *InventoryReader) GemBalance(ctx context.Context, party platform.SteamID) (int64, error) {
	stacks, err := r.GemStacks(ctx, party)
	if err != nil {
		return 0, err
	}
	return sumGems(stacks), nil
}

// Balance is GemBalance that logs failures and reports 0.
func (r *InventoryReader) Balance(ctx context.Context, party platform.SteamID) int64 {
	n, err := r.GemBalance(ctx, party)
	if err != nil {
		r.log.Warn(ctx, "gem balance unavailable", "party", party, "error", err)
		return 0
	}
	return n
}

// GemStacks returns the party's gem stacks.
func (r *InventoryReader) GemStacks(ctx context.Context, party platform.SteamID) ([]platform.Item, error) {
	return r.QualifyingItems(ctx, party, platform.GemNamespace, platform.Item.IsGemStack)
}

// QualifyingItems returns the party's items in ns accepted by keep, in
// inventory order.
func (r *InventoryReader) QualifyingItems(ctx context.Context, party platform.SteamID, ns platform.Namespace, keep func(platform.Item) bool) ([]platform.Item, error) {
	items, err := r.Items(ctx, party, ns)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, nil
}
