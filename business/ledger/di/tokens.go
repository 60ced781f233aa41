// Package di contains dependency injection tokens for the ledger context.
package di

import (
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ProfitLedger = di.NewToken[*app.ProfitLedger]("ledger.ProfitLedger")
	BlockService = di.NewToken[*app.BlockService]("ledger.BlockService")
	Store        = di.NewToken[app.Store]("ledger.Store")
)

// Private dependency tokens - internal to ledger module
var (
	Scheduler = di.NewToken[*app.WindowScheduler]("ledger:scheduler")
)

func GetProfitLedger(c di.ServiceRegistry) *app.ProfitLedger {
	return di.GetToken(c, ProfitLedger)
}

func GetBlockService(c di.ServiceRegistry) *app.BlockService {
	return di.GetToken(c, BlockService)
}

func GetStore(c di.ServiceRegistry) app.Store {
	return di.GetToken(c, Store)
}

func GetScheduler(c di.ServiceRegistry) *app.WindowScheduler {
	return di.GetToken(c, Scheduler)
}
