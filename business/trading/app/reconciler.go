package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platformapp "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/app"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apm"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// Settings are the trading parameters shared by the reconciler and the
// constructor.
type Settings struct {
	BotID   platform.SteamID
	Rates   domain.Rates
	Limits  domain.Limits
	Comment string
}

// Deps groups the collaborators of the trading services.
type Deps struct {
	Platform platformapp.Platform
	Notifier Notifier
	Ledger   ProfitRecorder
	Blocks   BlockChecker
	Reporter Reporter
	Log      logger.LoggerInterface
}

// Reconciler decides incoming offers and books profit when offers settle.
type Reconciler struct {
	deps       Deps
	settings   Settings
	classifier domain.Classifier
	pricer     domain.Pricer
	inv        *InventoryReader
	status     *StatusPublisher
	book       *SettlementBook
	tracer     apm.Tracer
	offers     metric.Int64Counter
}

// NewReconciler creates a Reconciler. book is shared with the Constructor so
// offers the bot sends are booked the same way.
func NewReconciler(deps Deps, settings Settings, classifier domain.Classifier, inv *InventoryReader, status *StatusPublisher, book *SettlementBook) *Reconciler {
	offers, _ := otel.Meter("trading").Int64Counter(
		"trading_offers_total",
		metric.WithDescription("Trade offers handled, by shape and outcome"),
	)
	if deps.Reporter == nil {
		deps.Reporter = NopReporter{}
	}
	return &Reconciler{
		deps:       deps,
		settings:   settings,
		classifier: classifier,
		pricer: domain.Pricer{
			Policy: classifier.Policy,
			Rates:  settings.Rates,
			Limits: settings.Limits,
		},
		inv:    inv,
		status: status,
		book:   book,
		tracer: apm.NewTracer("trading"),
		offers: offers,
	}
}

// HandleNewOffer decides an incoming offer.
func (r *Reconciler) HandleNewOffer(ctx context.Context, ev platform.NewOffer) {
	o := ev.Offer
	if o.IsOurOffer {
		return
	}
	if r.deps.Blocks.IsBlocked(o.Partner) {
		r.deps.Log.Info(ctx, "ignoring offer from blocked party", "offer_id", o.ID, "partner", o.Partner)
		r.report(ctx, Decision{OfferID: o.ID, Partner: o.Partner, Outcome: OutcomeIgnored, Reason: "blocked"})
		return
	}

	ctx, span := r.tracer.StartSpanFromContext(ctx, "trading.HandleNewOffer")
	defer span.End()

	cl := r.classifier.Classify(o)
	span.SetAttributes(
		attribute.String("offer.id", o.ID),
		attribute.String("offer.shape", cl.Shape.String()),
	)
	r.deps.Log.Info(ctx, "offer received",
		"offer_id", o.ID,
		"partner", o.Partner,
		"shape", cl.Shape.String(),
		"direction", cl.Direction.String(),
	)

	d := Decision{OfferID: o.ID, Partner: o.Partner, Shape: cl.Shape.String()}

	switch cl.Shape {
	case domain.ShapeAdminOverride:
		r.accept(ctx, o, d)
	case domain.ShapeDonation:
		if r.accept(ctx, o, d) {
			r.deps.Notifier.Send(ctx, o.Partner, domain.ReplyDonation)
		}
	case domain.ShapeInvalid:
		reply := domain.ReplyUnsupported
		if cl.Reason == domain.ReasonMixed {
			reply = domain.ReplyMixed
		}
		d.Reason = cl.Reason
		r.decline(ctx, o, d, reply)
	default:
		r.trade(ctx, o, cl, d)
	}
}

func (r *Reconciler) trade(ctx context.Context, o platform.Offer, cl domain.Classification, d Decision) {
	q, rej := r.pricer.Price(o, cl)
	if rej != nil {
		d.Reason = string(rej.Code)
		r.decline(ctx, o, d, rej.Reply)
		return
	}
	d.Category, d.Units, d.Gems = q.Category, q.Units, q.Required

	payer := q.Payer(r.settings.BotID, o.Partner)
	balance, err := r.inv.GemBalance(ctx, payer)
	if err != nil {
		r.deps.Log.Error(ctx, "balance check failed", "offer_id", o.ID, "payer", payer, "error", err)
		d.Reason = "balance check failed"
		r.decline(ctx, o, d, q.BalanceErrorReply())
		return
	}
	if balance < q.Required {
		d.Reason = "insufficient gems"
		r.decline(ctx, o, d, q.LowStockReply())
		return
	}

	// Registered before accepting: the completion may arrive before
	// AcceptOffer returns.
	if settled, ok := r.book.Expect(ctx, ledger.Settlement{OfferID: o.ID, Partner: o.Partner, Category: q.Category, Units: q.Units}); ok {
		r.report(ctx, settled)
	}
	if !r.accept(ctx, o, d) {
		r.book.Withdraw(ctx, o.ID)
		r.deps.Notifier.Send(ctx, o.Partner, domain.ReplyAcceptFailed)
		return
	}

	if r.settings.Comment != "" {
		if err := r.deps.Platform.PostComment(ctx, o.Partner, r.settings.Comment); err != nil {
			r.deps.Log.Warn(ctx, "profile comment failed", "partner", o.Partner, "error", err)
		}
	}
	r.status.Refresh(ctx)
}

func (r *Reconciler) accept(ctx context.Context, o platform.Offer, d Decision) bool {
	if err := r.deps.Platform.AcceptOffer(ctx, o.ID); err != nil {
		r.deps.Log.Error(ctx, "accept failed", "offer_id", o.ID, "partner", o.Partner, "error", err)
		d.Outcome, d.Reason = OutcomeFailed, err.Error()
		r.report(ctx, d)
		return false
	}
	r.deps.Log.Info(ctx, "offer accepted", "offer_id", o.ID, "partner", o.Partner, "shape", d.Shape)
	d.Outcome = OutcomeAccepted
	r.report(ctx, d)
	return true
}

func (r *Reconciler) decline(ctx context.Context, o platform.Offer, d Decision, reply string) {
	if err := r.deps.Platform.DeclineOffer(ctx, o.ID); err != nil {
		r.deps.Log.Error(ctx, "decline failed", "offer_id", o.ID, "error", err)
	}
	r.deps.Log.Info(ctx, "offer declined", "offer_id", o.ID, "partner", o.Partner, "reason", d.Reason)
	r.deps.Notifier.Send(ctx, o.Partner, reply)
	d.Outcome = OutcomeDeclined
	r.report(ctx, d)
}

// HandleOfferChanged books profit once an offer completes and forgets offers
// that ended without a swap.
func (r *Reconciler) HandleOfferChanged(ctx context.Context, ev platform.OfferChanged) {
	o := ev.Offer
	switch {
	case o.State.Settled():
		if d, ok := r.book.Settle(ctx, o.ID); ok {
			r.report(ctx, d)
		}
	case o.State.Failed():
		if r.book.Withdraw(ctx, o.ID) {
			r.deps.Log.Info(ctx, "pending trade dropped", "offer_id", o.ID, "state", o.State)
		}
	}
}

// Pending reports how many offers await settlement.
func (r *Reconciler) Pending() int {
	return r.book.Len()
}

func (r *Reconciler) report(ctx context.Context, d Decision) {
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	if r.offers != nil {
		r.offers.Add(ctx, 1, metric.WithAttributes(
			attribute.String("shape", d.Shape),
			attribute.String("outcome", string(d.Outcome)),
		))
	}
	r.deps.Reporter.Report(d)
}
