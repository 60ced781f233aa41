package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/retry"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelDebug, "test", nil)
}

func noSleep(context.Context, time.Duration) error { return nil }

// flakyPlatform fails the first failures calls of every method with err.
type flakyPlatform struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    map[string]int
	sent     []string
}

func (f *flakyPlatform) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	if f.calls[name] <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyPlatform) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *flakyPlatform) FetchInventory(ctx context.Context, owner domain.SteamID, ns domain.Namespace, tradableOnly bool) ([]domain.Item, error) {
	if err := f.hit("inventory"); err != nil {
		return nil, err
	}
	return []domain.Item{{AssetID: "1"}}, nil
}

func (f *flakyPlatform) SubmitOffer(ctx context.Context, d domain.OfferDraft) (domain.Offer, error) {
	if err := f.hit("submit"); err != nil {
		return domain.Offer{}, err
	}
	return domain.Offer{ID: "o1", State: domain.OfferActive}, nil
}

func (f *flakyPlatform) AcceptOffer(ctx context.Context, id string) error  { return f.hit("accept") }
func (f *flakyPlatform) DeclineOffer(ctx context.Context, id string) error { return f.hit("decline") }
func (f *flakyPlatform) EscrowStatus(ctx context.Context, p domain.SteamID) (domain.Escrow, error) {
	return domain.Escrow{}, f.hit("escrow")
}
func (f *flakyPlatform) SendMessage(ctx context.Context, to domain.SteamID, text string) error {
	if err := f.hit("chat"); err != nil {
		return err
	}
	f.mu.Lock()
	f.sent = append(f.sent, text)
	f.mu.Unlock()
	return nil
}
func (f *flakyPlatform) PostComment(ctx context.Context, p domain.SteamID, text string) error {
	return f.hit("comment")
}
func (f *flakyPlatform) Friends(ctx context.Context) ([]domain.Friend, error) {
	return nil, f.hit("friends")
}
func (f *flakyPlatform) AddFriend(ctx context.Context, id domain.SteamID) error { return f.hit("add") }
func (f *flakyPlatform) RemoveFriend(ctx context.Context, id domain.SteamID) error {
	return f.hit("remove")
}
func (f *flakyPlatform) InviteToGroup(ctx context.Context, g string, id domain.SteamID) error {
	return f.hit("invite")
}
func (f *flakyPlatform) SetStatus(ctx context.Context, text string) error { return f.hit("status") }
func (f *flakyPlatform) GrindIntoGems(ctx context.Context, item domain.Item) (int64, error) {
	return 0, f.hit("grind")
}

func newRetrying(p Platform) *Retrying {
	return NewRetrying(p,
		retry.New(retry.WithSleep(noSleep)),
		retry.New(retry.WithAttempts(retry.SubmitAttempts), retry.WithSleep(noSleep)),
	)
}

func TestRetrying_Budgets(t *testing.T) {
	transient := apperror.External(apperror.CodePlatformRequestFailed, "502", errors.New("bad gateway"))

	tests := []struct {
		name      string
		call      func(*Retrying) error
		key       string
		failures  int
		wantCalls int
		wantErr   bool
	}{
		{
			name: "inventory_recovers_on_fifth_attempt",
			call: func(r *Retrying) error {
				_, err := r.FetchInventory(context.Background(), "x", domain.GemNamespace, true)
				return err
			},
			key:       "inventory",
			failures:  4,
			wantCalls: 5,
		},
		{
			name: "inventory_gives_up_after_five",
			call: func(r *Retrying) error {
				_, err := r.FetchInventory(context.Background(), "x", domain.GemNamespace, true)
				return err
			},
			key:       "inventory",
			failures:  10,
			wantCalls: 5,
			wantErr:   true,
		},
		{
			name: "submit_gives_up_after_three",
			call: func(r *Retrying) error {
				_, err := r.SubmitOffer(context.Background(), domain.OfferDraft{})
				return err
			},
			key:       "submit",
			failures:  10,
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "accept_gives_up_after_three",
			call:      func(r *Retrying) error { return r.AcceptOffer(context.Background(), "o1") },
			key:       "accept",
			failures:  10,
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "chat_is_sent_once",
			call:      func(r *Retrying) error { return r.SendMessage(context.Background(), "x", "hi") },
			key:       "chat",
			failures:  10,
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &flakyPlatform{failures: tt.failures, err: transient}
			err := tt.call(newRetrying(f))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := f.count(tt.key); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRetrying_ClientErrorIsNotRetried(t *testing.T) {
	f := &flakyPlatform{
		failures: 10,
		err:      apperror.Validation(apperror.CodeInvalidInput, "400"),
	}
	_, err := newRetrying(f).FetchInventory(context.Background(), "x", domain.KeyNamespace, true)
	if !apperror.HasCode(err, apperror.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if f.count("inventory") != 1 {
		t.Errorf("calls = %d, want 1", f.count("inventory"))
	}
}

func TestMessenger_SwallowsFailures(t *testing.T) {
	f := &flakyPlatform{failures: 1, err: errors.New("offline")}
	m := NewMessenger(f, testLogger())

	m.Send(context.Background(), "x", "first")
	m.Send(context.Background(), "x", "second")
	m.Send(context.Background(), "x", "")

	if len(f.sent) != 1 || f.sent[0] != "second" {
		t.Errorf("sent = %v", f.sent)
	}
}

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter(testLogger())

	var (
		mu      sync.Mutex
		chats   []domain.ChatMessage
		offers  []domain.NewOffer
		changes []domain.OfferChanged
		rels    []domain.FriendRelationship
		ids     []string
	)
	r.OnChatMessage(func(ctx context.Context, m domain.ChatMessage) {
		mu.Lock()
		chats = append(chats, m)
		ids = append(ids, CorrelationID(ctx))
		mu.Unlock()
	})
	r.OnNewOffer(func(ctx context.Context, o domain.NewOffer) {
		mu.Lock()
		offers = append(offers, o)
		mu.Unlock()
	})
	r.OnOfferChanged(func(ctx context.Context, c domain.OfferChanged) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	r.OnFriendRelationship(func(ctx context.Context, f domain.FriendRelationship) {
		mu.Lock()
		rels = append(rels, f)
		mu.Unlock()
	})

	ctx := context.Background()
	r.Dispatch(ctx, []byte(`{"type":"chat_message","data":{"from":"76561198000000001","text":"!prices"}}`))
	r.Dispatch(ctx, []byte(`{"type":"new_offer","data":{"offer":{"id":"11","partner":"76561198000000001","state":"active"}}}`))
	r.Dispatch(ctx, []byte(`{"type":"offer_changed","data":{"offer":{"id":"11","state":"completed"},"old_state":"accepted"}}`))
	r.Dispatch(ctx, []byte(`{"type":"friend_relationship","data":{"steam_id":"76561198000000001","relationship":2}}`))
	r.Dispatch(ctx, []byte(`{"type":"unknown","data":{}}`))
	r.Dispatch(ctx, []byte(`not json`))
	r.Dispatch(ctx, []byte(`{"type":"chat_message","data":"wrong shape"}`))
	r.Wait()

	mu.Lock()
	defer mu.Unlock()

	if len(chats) != 1 || chats[0].Text != "!prices" {
		t.Errorf("chats = %+v", chats)
	}
	if len(ids) != 1 || ids[0] == "" {
		t.Errorf("expected a correlation id, got %v", ids)
	}
	if len(offers) != 1 || offers[0].Offer.ID != "11" {
		t.Errorf("offers = %+v", offers)
	}
	if len(changes) != 1 || changes[0].Offer.State != domain.OfferCompleted || changes[0].OldState != domain.OfferAccepted {
		t.Errorf("changes = %+v", changes)
	}
	if len(rels) != 1 || rels[0].Relationship != domain.RelationshipRequestRecipient {
		t.Errorf("relationships = %+v", rels)
	}
}

func TestRouter_HandlerPanicIsContained(t *testing.T) {
	r := NewRouter(testLogger())
	r.OnChatMessage(func(context.Context, domain.ChatMessage) { panic("boom") })

	r.Dispatch(context.Background(), []byte(`{"type":"chat_message","data":{"from":"1","text":"x"}}`))
	r.Wait()
}
