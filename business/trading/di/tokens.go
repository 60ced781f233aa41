// Package di contains dependency injection tokens for the trading context.
package di

import (
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Reconciler  = di.NewToken[*app.Reconciler]("trading.Reconciler")
	Constructor = di.NewToken[*app.Constructor]("trading.Constructor")
	Inventory   = di.NewToken[*app.InventoryReader]("trading.Inventory")
	Status      = di.NewToken[*app.StatusPublisher]("trading.Status")
	Reporter    = di.NewToken[app.Reporter]("trading.Reporter")
	Policy      = di.NewToken[domain.ItemPolicy]("trading.Policy")
)

// Private dependency tokens - internal to trading module
var (
	Settlements = di.NewToken[*app.SettlementBook]("trading:settlements")
	AutoGem     = di.NewToken[*app.AutoGem]("trading:autogem")
)

func GetReconciler(c di.ServiceRegistry) *app.Reconciler {
	return di.GetToken(c, Reconciler)
}

func GetConstructor(c di.ServiceRegistry) *app.Constructor {
	return di.GetToken(c, Constructor)
}

func GetInventory(c di.ServiceRegistry) *app.InventoryReader {
	return di.GetToken(c, Inventory)
}

func GetStatus(c di.ServiceRegistry) *app.StatusPublisher {
	return di.GetToken(c, Status)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetPolicy(c di.ServiceRegistry) domain.ItemPolicy {
	return di.GetToken(c, Policy)
}

func GetSettlements(c di.ServiceRegistry) *app.SettlementBook {
	return di.GetToken(c, Settlements)
}

func GetAutoGem(c di.ServiceRegistry) *app.AutoGem {
	return di.GetToken(c, AutoGem)
}
