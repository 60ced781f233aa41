// Package app holds the chat use cases: command dispatch, the spam filter,
// friend list upkeep and broadcasts.
package app

import (
	"context"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Notifier sends a reply. Delivery failures are the notifier's concern.
type Notifier interface {
	Send(ctx context.Context, to platform.SteamID, text string)
}

// FriendList reads and edits the bot's friend list.
type FriendList interface {
	Friends(ctx context.Context) ([]platform.Friend, error)
	AddFriend(ctx context.Context, id platform.SteamID) error
	RemoveFriend(ctx context.Context, id platform.SteamID) error
	InviteToGroup(ctx context.Context, groupID string, id platform.SteamID) error
}

// KeyTrader opens key offers on a partner's request.
type KeyTrader interface {
	SellKeys(ctx context.Context, partner platform.SteamID, n int) (string, error)
	BuyKeys(ctx context.Context, partner platform.SteamID, n int) (string, error)
}

// Holdings reads live balances.
type Holdings interface {
	GemBalance(ctx context.Context, party platform.SteamID) (int64, error)
	QualifyingItems(ctx context.Context, party platform.SteamID, ns platform.Namespace, keep func(platform.Item) bool) ([]platform.Item, error)
}

// BlockList is the persisted set of silenced parties.
type BlockList interface {
	IsBlocked(id platform.SteamID) bool
	Block(ctx context.Context, id platform.SteamID) error
	Unblock(ctx context.Context, id platform.SteamID) error
}

// ProfitReader exposes the ledger counters.
type ProfitReader interface {
	Snapshot() ledger.Ledger
}
