package app

import (
	"context"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// FriendHandler accepts friend requests and greets new friends.
type FriendHandler struct {
	friends  FriendList
	notifier Notifier
	blocks   BlockList
	groupID  string
	welcome  string
	log      logger.LoggerInterface
}

// NewFriendHandler creates a FriendHandler. An empty groupID skips the group
// invite.
func NewFriendHandler(friends FriendList, notifier Notifier, blocks BlockList, groupID, welcome string, log logger.LoggerInterface) *FriendHandler {
	return &FriendHandler{
		friends:  friends,
		notifier: notifier,
		blocks:   blocks,
		groupID:  groupID,
		welcome:  welcome,
		log:      log,
	}
}

// HandleRelationship reacts to a relationship change.
func (h *FriendHandler) HandleRelationship(ctx context.Context, ev platform.FriendRelationship) {
	if h.blocks.IsBlocked(ev.SteamID) {
		h.log.Debug(ctx, "ignoring relationship change from blocked party", "steam_id", ev.SteamID)
		return
	}

	switch ev.Relationship {
	case platform.RelationshipRequestRecipient:
		if err := h.friends.AddFriend(ctx, ev.SteamID); err != nil {
			h.log.Warn(ctx, "accepting friend request failed", "steam_id", ev.SteamID, "error", err)
			return
		}
		h.log.Info(ctx, "friend request accepted", "steam_id", ev.SteamID)

	case platform.RelationshipFriend:
		if h.groupID != "" {
			if err := h.friends.InviteToGroup(ctx, h.groupID, ev.SteamID); err != nil {
				h.log.Warn(ctx, "group invite failed", "steam_id", ev.SteamID, "group", h.groupID, "error", err)
			}
		}
		h.notifier.Send(ctx, ev.SteamID, h.welcome)
	}
}

// AcceptPending accepts every request that arrived while the bot was
// offline. It returns how many were accepted.
func (h *FriendHandler) AcceptPending(ctx context.Context) (int, error) {
	friends, err := h.friends.Friends(ctx)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for _, f := range friends {
		if f.Relationship != platform.RelationshipRequestRecipient || h.blocks.IsBlocked(f.SteamID) {
			continue
		}
		if err := h.friends.AddFriend(ctx, f.SteamID); err != nil {
			h.log.Warn(ctx, "accepting pending friend request failed", "steam_id", f.SteamID, "error", err)
			continue
		}
		accepted++
	}
	return accepted, nil
}
