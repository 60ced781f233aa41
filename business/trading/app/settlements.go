package app

import (
	"context"
	"sync"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/cache"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// earlyTTL bounds how long a completion without a registered settlement is
// remembered.
const earlyTTL = 10 * time.Minute

// PendingStore persists settlements awaiting completion.
type PendingStore interface {
	LoadPending(ctx context.Context) ([]ledger.Settlement, error)
	SavePending(ctx context.Context, pending []ledger.Settlement) error
}

// SettlementBook books profit for accepted and sent offers exactly once, when
// the platform reports them completed. Events are delivered concurrently, so
// a completion can overtake the registration of its offer; such completions
// are held and booked when the offer is registered.
type SettlementBook struct {
	store  PendingStore
	ledger ProfitRecorder
	rates  domain.Rates
	ttl    time.Duration
	log    logger.LoggerInterface
	now    func() time.Time

	mu      sync.Mutex
	pending *cache.Cache[string, ledger.Settlement]
	early   *cache.Cache[string, struct{}]
}

// NewSettlementBook creates an empty book. Unsettled entries are dropped
// after ttl; ttl <= 0 keeps them until they resolve.
func NewSettlementBook(store PendingStore, recorder ProfitRecorder, rates domain.Rates, ttl time.Duration, log logger.LoggerInterface) *SettlementBook {
	return &SettlementBook{
		store:   store,
		ledger:  recorder,
		rates:   rates,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		pending: cache.New[string, ledger.Settlement](ttl),
		early:   cache.New[string, struct{}](earlyTTL),
	}
}

// Load restores persisted settlements, skipping those past their ttl.
func (b *SettlementBook) Load(ctx context.Context) (int, error) {
	list, err := b.store.LoadPending(ctx)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeStorageError, "load pending settlements")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	restored := 0
	for _, s := range list {
		var deadline time.Time
		if b.ttl > 0 {
			deadline = s.Created.Add(b.ttl)
			if now.After(deadline) {
				continue
			}
		}
		b.pending.SetExpiring(ctx, s.OfferID, s, deadline)
		restored++
	}
	if restored != len(list) {
		b.persist(ctx)
	}
	return restored, nil
}

// Expect registers s. When its completion already arrived, the profit is
// booked now and the settled decision is returned.
func (b *SettlementBook) Expect(ctx context.Context, s ledger.Settlement) (Decision, bool) {
	if s.Created.IsZero() {
		s.Created = b.now()
	}

	b.mu.Lock()
	if _, done := b.early.Take(ctx, s.OfferID); done {
		b.mu.Unlock()
		return b.book(ctx, s), true
	}
	b.pending.Set(ctx, s.OfferID, s)
	b.persist(ctx)
	b.mu.Unlock()
	return Decision{}, false
}

// Withdraw forgets the settlement for offerID, reporting whether one existed.
func (b *SettlementBook) Withdraw(ctx context.Context, offerID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pending.Take(ctx, offerID); !ok {
		return false
	}
	b.persist(ctx)
	return true
}

// Settle books the profit of a completed offer. An offer not registered yet
// is remembered so Expect books it.
func (b *SettlementBook) Settle(ctx context.Context, offerID string) (Decision, bool) {
	b.mu.Lock()
	s, ok := b.pending.Take(ctx, offerID)
	if !ok {
		b.early.Set(ctx, offerID, struct{}{})
		b.mu.Unlock()
		return Decision{}, false
	}
	b.persist(ctx)
	b.mu.Unlock()

	return b.book(ctx, s), true
}

// Len reports how many settlements are outstanding.
func (b *SettlementBook) Len() int {
	return b.pending.Len()
}

// Prune evicts expired entries and returns how many settlements were dropped.
func (b *SettlementBook) Prune(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.early.Prune()
	n := b.pending.Prune()
	if n > 0 {
		b.persist(ctx)
		b.log.Warn(ctx, "unsettled offers expired", "count", n)
	}
	return n
}

func (b *SettlementBook) book(ctx context.Context, s ledger.Settlement) Decision {
	profit := b.rates.Profit(s.Category, s.Units)
	if err := b.ledger.Record(ctx, s.Category, profit); err != nil {
		b.log.Error(ctx, "profit not persisted", "offer_id", s.OfferID, "category", s.Category, "error", err)
	}
	b.log.Info(ctx, "trade settled",
		"offer_id", s.OfferID,
		"partner", s.Partner,
		"category", s.Category,
		"units", s.Units,
		"profit", profit,
	)
	return Decision{
		Time:     b.now(),
		OfferID:  s.OfferID,
		Partner:  s.Partner,
		Category: s.Category,
		Units:    s.Units,
		Profit:   profit,
		Outcome:  OutcomeSettled,
	}
}

// persist writes the outstanding settlements; b.mu must be held. Memory stays
// authoritative when the write fails.
func (b *SettlementBook) persist(ctx context.Context) {
	list := b.pending.Values()
	ledger.SortSettlements(list)
	if err := b.store.SavePending(ctx, list); err != nil {
		b.log.Error(ctx, "pending settlements not persisted", "count", len(list), "error", err)
	}
}
