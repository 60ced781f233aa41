package app

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// ProfitLedger accumulates profit per category. Memory is authoritative;
// every mutation is persisted before it returns, and a failed write is
// logged and returned without rolling back.
type ProfitLedger struct {
	store Store
	log   logger.LoggerInterface

	mu     sync.Mutex
	ledger domain.Ledger

	listenersMu sync.RWMutex
	listeners   []func(domain.Ledger)

	profit metric.Int64Counter
}

// NewProfitLedger creates an empty ledger backed by store. Call Load to read
// persisted counters.
func NewProfitLedger(store Store, log logger.LoggerInterface) *ProfitLedger {
	profit, _ := otel.Meter("ledger").Int64Counter(
		"ledger_profit_gems_total",
		metric.WithDescription("Profit booked per trade category, in gems"),
	)
	return &ProfitLedger{
		store:  store,
		log:    log,
		ledger: domain.NewLedger(),
		profit: profit,
	}
}

// Load replaces the in-memory counters with the persisted ones.
func (p *ProfitLedger) Load(ctx context.Context) error {
	l, err := p.store.LoadLedger(ctx)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "load ledger")
	}

	p.mu.Lock()
	p.ledger = l.Normalize()
	p.mu.Unlock()
	return nil
}

// OnChange registers fn to receive a snapshot after every mutation.
func (p *ProfitLedger) OnChange(fn func(domain.Ledger)) {
	p.listenersMu.Lock()
	p.listeners = append(p.listeners, fn)
	p.listenersMu.Unlock()
}

// Record adds delta to every window of category.
func (p *ProfitLedger) Record(ctx context.Context, category domain.Category, delta int64) error {
	if !category.Valid() {
		return apperror.Validation(apperror.CodeInvalidInput, "ledger category "+string(category))
	}

	snap, err := p.mutate(ctx, func(l domain.Ledger) {
		c := l[category]
		c.Add(delta)
		l[category] = c
	})

	if p.profit != nil {
		p.profit.Add(ctx, delta, metric.WithAttributes(attribute.String("category", string(category))))
	}
	p.log.Info(ctx, "profit recorded",
		"category", category,
		"delta", delta,
		"lifetime", snap[category].Lifetime)

	return err
}

// ResetWindow zeroes one window of one category.
func (p *ProfitLedger) ResetWindow(ctx context.Context, category domain.Category, window domain.Window) error {
	if err := domain.ValidateEntry(category, window); err != nil {
		return err
	}

	_, err := p.mutate(ctx, func(l domain.Ledger) {
		c := l[category]
		c.Reset(window)
		l[category] = c
	})
	return err
}

// ResetAll zeroes one window across every category with a single write.
func (p *ProfitLedger) ResetAll(ctx context.Context, window domain.Window) error {
	if !window.Valid() {
		return apperror.Validation(apperror.CodeInvalidInput, "ledger window "+string(window))
	}

	_, err := p.mutate(ctx, func(l domain.Ledger) {
		for cat, c := range l {
			c.Reset(window)
			l[cat] = c
		}
	})
	if err == nil {
		p.log.Info(ctx, "ledger window reset", "window", window)
	}
	return err
}

// Snapshot returns a copy of the counters.
func (p *ProfitLedger) Snapshot() domain.Ledger {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Clone()
}

// mutate applies fn and persists under the lock so writes land in order.
func (p *ProfitLedger) mutate(ctx context.Context, fn func(domain.Ledger)) (domain.Ledger, error) {
	p.mu.Lock()
	fn(p.ledger)
	snap := p.ledger.Clone()
	err := p.store.SaveLedger(ctx, snap)
	p.mu.Unlock()

	if err != nil {
		err = apperror.Wrap(err, apperror.CodeStorageError, "save ledger")
		p.log.Error(ctx, "ledger persistence failed", "error", err)
	}

	p.listenersMu.RLock()
	for _, fn := range p.listeners {
		fn(snap.Clone())
	}
	p.listenersMu.RUnlock()

	return snap, err
}
