// Package app contains the platform ports, the retry decorator, the outbound
// messenger and the inbound event router.
package app

import (
	"context"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Inventory reads a party's inventory in one namespace.
type Inventory interface {
	FetchInventory(ctx context.Context, owner domain.SteamID, ns domain.Namespace, tradableOnly bool) ([]domain.Item, error)
}

// Offers submits and resolves trade offers.
type Offers interface {
	SubmitOffer(ctx context.Context, draft domain.OfferDraft) (domain.Offer, error)
	AcceptOffer(ctx context.Context, offerID string) error
	DeclineOffer(ctx context.Context, offerID string) error
	// EscrowStatus reports the trade hold a new offer to partner would get.
	EscrowStatus(ctx context.Context, partner domain.SteamID) (domain.Escrow, error)
}

// Chat sends direct messages.
type Chat interface {
	SendMessage(ctx context.Context, to domain.SteamID, text string) error
}

// Community covers profile, friend list and group operations.
type Community interface {
	PostComment(ctx context.Context, profile domain.SteamID, text string) error
	Friends(ctx context.Context) ([]domain.Friend, error)
	AddFriend(ctx context.Context, id domain.SteamID) error
	RemoveFriend(ctx context.Context, id domain.SteamID) error
	InviteToGroup(ctx context.Context, groupID string, id domain.SteamID) error
	SetStatus(ctx context.Context, text string) error
}

// Grinder turns an item into gems.
type Grinder interface {
	GrindIntoGems(ctx context.Context, item domain.Item) (int64, error)
}

// Platform is every remote capability the bot consumes.
type Platform interface {
	Inventory
	Offers
	Chat
	Community
	Grinder
}

// EventStream delivers raw event envelopes to a sink.
type EventStream interface {
	Start(ctx context.Context, sink func(ctx context.Context, raw []byte)) error
	OnConnectionChange(fn func(connected bool))
	Connected() bool
	Close() error
}
