package app

import (
	"context"
	"time"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/ratelimit"
)

const broadcastQueue = 8

type broadcast struct {
	to   []platform.SteamID
	text string
}

// Broadcaster fans a message out to every full friend. Delivery runs on the
// Run loop, one message per delay, so the admin's command returns at once.
type Broadcaster struct {
	friends  FriendList
	notifier Notifier
	limiter  *ratelimit.Limiter
	log      logger.LoggerInterface

	jobs chan broadcast
}

// NewBroadcaster creates a Broadcaster pacing messages delay apart.
func NewBroadcaster(friends FriendList, notifier Notifier, delay time.Duration, log logger.LoggerInterface) *Broadcaster {
	return &Broadcaster{
		friends:  friends,
		notifier: notifier,
		limiter:  ratelimit.Every(delay),
		log:      log,
		jobs:     make(chan broadcast, broadcastQueue),
	}
}

// Broadcast queues text for every full friend and returns how many will
// receive it.
func (b *Broadcaster) Broadcast(ctx context.Context, text string) (int, error) {
	friends, err := b.friends.Friends(ctx)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodePlatformRequestFailed, "friend list")
	}

	var to []platform.SteamID
	for _, f := range friends {
		if f.Relationship == platform.RelationshipFriend {
			to = append(to, f.SteamID)
		}
	}
	if len(to) == 0 {
		return 0, nil
	}

	select {
	case b.jobs <- broadcast{to: to, text: text}:
		return len(to), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Run delivers queued broadcasts until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-b.jobs:
			sent, err := ratelimit.Pace(ctx, b.limiter, job.to, func(ctx context.Context, id platform.SteamID) error {
				b.notifier.Send(ctx, id, job.text)
				return nil
			})
			if err != nil {
				b.log.Warn(ctx, "broadcast interrupted", "sent", sent, "total", len(job.to), "error", err)
				continue
			}
			b.log.Info(ctx, "broadcast delivered", "recipients", sent)
		}
	}
}
