// Package app contains the profit ledger, the block list service and the
// window scheduler.
package app

import (
	"context"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Store persists the ledger, the block list and the settlements still
// waiting for completion. Loads of missing state return the default shape,
// never an error.
type Store interface {
	LoadLedger(ctx context.Context) (domain.Ledger, error)
	SaveLedger(ctx context.Context, l domain.Ledger) error
	LoadBlockList(ctx context.Context) ([]platform.SteamID, error)
	SaveBlockList(ctx context.Context, ids []platform.SteamID) error
	LoadPending(ctx context.Context) ([]domain.Settlement, error)
	SavePending(ctx context.Context, pending []domain.Settlement) error
	Close() error
}
