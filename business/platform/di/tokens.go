// Package di contains dependency injection tokens for the platform context.
package di

import (
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/infra/bridge"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Platform  = di.NewToken[app.Platform]("platform.Platform")
	Messenger = di.NewToken[*app.Messenger]("platform.Messenger")
	Router    = di.NewToken[*app.Router]("platform.Router")
)

// Private dependency tokens - internal to platform module
var (
	Bridge = di.NewToken[*bridge.Client]("platform:bridge")
	Events = di.NewToken[app.EventStream]("platform:events")
)

func GetPlatform(c di.ServiceRegistry) app.Platform {
	return di.GetToken(c, Platform)
}

func GetMessenger(c di.ServiceRegistry) *app.Messenger {
	return di.GetToken(c, Messenger)
}

func GetRouter(c di.ServiceRegistry) *app.Router {
	return di.GetToken(c, Router)
}

func GetBridge(c di.ServiceRegistry) *bridge.Client {
	return di.GetToken(c, Bridge)
}

func GetEvents(c di.ServiceRegistry) app.EventStream {
	return di.GetToken(c, Events)
}
