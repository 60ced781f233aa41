// Package di contains dependency injection tokens for the chat context.
package di

import (
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/chat/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Dispatcher  = di.NewToken[*app.Dispatcher]("chat.Dispatcher")
	Broadcaster = di.NewToken[*app.Broadcaster]("chat.Broadcaster")
)

// Private dependency tokens - internal to chat module
var (
	Spam    = di.NewToken[*app.SpamFilter]("chat:spam")
	Friends = di.NewToken[*app.FriendHandler]("chat:friends")
)

func GetDispatcher(c di.ServiceRegistry) *app.Dispatcher {
	return di.GetToken(c, Dispatcher)
}

func GetBroadcaster(c di.ServiceRegistry) *app.Broadcaster {
	return di.GetToken(c, Broadcaster)
}

func GetSpam(c di.ServiceRegistry) *app.SpamFilter {
	return di.GetToken(c, Spam)
}

func GetFriends(c di.ServiceRegistry) *app.FriendHandler {
	return di.GetToken(c, Friends)
}
