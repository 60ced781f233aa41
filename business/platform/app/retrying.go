package app

import (
	"context"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/retry"
)

// Retrying decorates a Platform with retry policies so call sites never loop
// themselves. Reads use the read policy, offer and grind mutations the
// smaller submit policy. Messages, comments and status updates go out once.
type Retrying struct {
	next   Platform
	reads  *retry.Executor
	writes *retry.Executor
}

var _ Platform = (*Retrying)(nil)

// NewRetrying wraps next. reads and writes are usually retry.New() and
// retry.New(retry.WithAttempts(retry.SubmitAttempts)).
func NewRetrying(next Platform, reads, writes *retry.Executor) *Retrying {
	return &Retrying{next: next, reads: reads, writes: writes}
}

// classify stops retries on client errors: a 4xx will not get better.
func classify(err error) error {
	if err != nil && apperror.IsClientError(err) {
		return retry.Permanent(err)
	}
	return err
}

func (r *Retrying) FetchInventory(ctx context.Context, owner domain.SteamID, ns domain.Namespace, tradableOnly bool) ([]domain.Item, error) {
	return retry.Do(ctx, r.reads, func(ctx context.Context) ([]domain.Item, error) {
		items, err := r.next.FetchInventory(ctx, owner, ns, tradableOnly)
		return items, classify(err)
	})
}

func (r *Retrying) SubmitOffer(ctx context.Context, draft domain.OfferDraft) (domain.Offer, error) {
	return retry.Do(ctx, r.writes, func(ctx context.Context) (domain.Offer, error) {
		o, err := r.next.SubmitOffer(ctx, draft)
		return o, classify(err)
	})
}

func (r *Retrying) AcceptOffer(ctx context.Context, offerID string) error {
	return r.writes.Run(ctx, func(ctx context.Context) error {
		return classify(r.next.AcceptOffer(ctx, offerID))
	})
}

func (r *Retrying) DeclineOffer(ctx context.Context, offerID string) error {
	return r.writes.Run(ctx, func(ctx context.Context) error {
		return classify(r.next.DeclineOffer(ctx, offerID))
	})
}

func (r *Retrying) EscrowStatus(ctx context.Context, partner domain.SteamID) (domain.Escrow, error) {
	return retry.Do(ctx, r.reads, func(ctx context.Context) (domain.Escrow, error) {
		e, err := r.next.EscrowStatus(ctx, partner)
		return e, classify(err)
	})
}

func (r *Retrying) Friends(ctx context.Context) ([]domain.Friend, error) {
	return retry.Do(ctx, r.reads, func(ctx context.Context) ([]domain.Friend, error) {
		f, err := r.next.Friends(ctx)
		return f, classify(err)
	})
}

func (r *Retrying) GrindIntoGems(ctx context.Context, item domain.Item) (int64, error) {
	return retry.Do(ctx, r.writes, func(ctx context.Context) (int64, error) {
		n, err := r.next.GrindIntoGems(ctx, item)
		return n, classify(err)
	})
}

func (r *Retrying) SendMessage(ctx context.Context, to domain.SteamID, text string) error {
	return r.next.SendMessage(ctx, to, text)
}

func (r *Retrying) PostComment(ctx context.Context, profile domain.SteamID, text string) error {
	return r.next.PostComment(ctx, profile, text)
}

func (r *Retrying) AddFriend(ctx context.Context, id domain.SteamID) error {
	return r.next.AddFriend(ctx, id)
}

func (r *Retrying) RemoveFriend(ctx context.Context, id domain.SteamID) error {
	return r.next.RemoveFriend(ctx, id)
}

func (r *Retrying) InviteToGroup(ctx context.Context, groupID string, id domain.SteamID) error {
	return r.next.InviteToGroup(ctx, groupID, id)
}

func (r *Retrying) SetStatus(ctx context.Context, text string) error {
	return r.next.SetStatus(ctx, text)
}
