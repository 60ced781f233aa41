package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apm"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
)

// Constructor builds and sends key offers requested over chat. Every method
// returns the reply for the partner; the error, when set, says why no offer
// went out.
type Constructor struct {
	deps     Deps
	settings Settings
	policy   domain.ItemPolicy
	inv      *InventoryReader
	book     *SettlementBook
	tracer   apm.Tracer

	mu       sync.Mutex
	inFlight map[platform.SteamID]struct{}
}

// NewConstructor creates a Constructor.
func NewConstructor(deps Deps, settings Settings, policy domain.ItemPolicy, inv *InventoryReader, book *SettlementBook) *Constructor {
	if deps.Reporter == nil {
		deps.Reporter = NopReporter{}
	}
	return &Constructor{
		deps:     deps,
		settings: settings,
		policy:   policy,
		inv:      inv,
		book:     book,
		tracer:   apm.NewTracer("trading"),
		inFlight: make(map[platform.SteamID]struct{}),
	}
}

// SellKeys sends partner an offer buying n of their keys for the bot's gems.
func (c *Constructor) SellKeys(ctx context.Context, partner platform.SteamID, n int) (reply string, err error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "trading.SellKeys")
	span.SetAttributes(attribute.Int("keys", n))
	defer span.Finish(&err)

	limit := c.settings.Limits.MaxSell
	release, reply, err := c.admit(partner, n, limit, domain.ReplySellUsage, domain.ReplyNotBuyingKeys, domain.SellLimitReply)
	if err != nil {
		return reply, err
	}
	defer release()

	if reply, err := c.checkEscrow(ctx, partner); err != nil {
		return reply, err
	}

	rate := c.settings.Rates.KeySell
	required := c.settings.Rates.QuoteKeySell(n)

	stacks, err := c.inv.GemStacks(ctx, c.settings.BotID)
	if err != nil {
		return domain.ReplyUnexpected, apperror.Wrap(err, apperror.CodeInventoryFetchFailed, "bot gems")
	}
	have := sumGems(stacks)
	if have < required {
		return domain.BotGemsShortReply(have, required, domain.CapToLimit(domain.AffordableCount(have, rate), limit)),
			apperror.Rule(apperror.CodeInsufficientBalance, "bot gems")
	}

	keys, err := c.inv.QualifyingItems(ctx, partner, platform.KeyNamespace, c.policy.IsKey)
	if err != nil {
		return domain.ReplyUnexpected, apperror.Wrap(err, apperror.CodeInventoryFetchFailed, "partner keys")
	}
	if len(keys) < n {
		return domain.PartnerKeysShortReply(len(keys), n), apperror.Rule(apperror.CodeInsufficientItems, "partner keys")
	}

	gems, ok := domain.TakeGems(stacks, required)
	if !ok {
		return domain.ReplyUnexpected, apperror.Rule(apperror.CodeInsufficientBalance, "bot gem stacks")
	}

	return c.send(ctx, ledger.KeySell, n, required, platform.OfferDraft{
		Partner:        partner,
		ItemsToGive:    gems,
		ItemsToReceive: keys[:n],
		Message:        domain.SellOfferMessage(n, required),
	})
}

// BuyKeys sends partner an offer selling n of the bot's keys for their gems.
func (c *Constructor) BuyKeys(ctx context.Context, partner platform.SteamID, n int) (reply string, err error) {
	ctx, span := c.tracer.StartSpanFromContext(ctx, "trading.BuyKeys")
	span.SetAttributes(attribute.Int("keys", n))
	defer span.Finish(&err)

	limit := c.settings.Limits.MaxBuy
	release, reply, err := c.admit(partner, n, limit, domain.ReplyBuyUsage, domain.ReplyNotSellingKeys, domain.BuyLimitReply)
	if err != nil {
		return reply, err
	}
	defer release()

	if reply, err := c.checkEscrow(ctx, partner); err != nil {
		return reply, err
	}

	rate := c.settings.Rates.KeyBuy
	required := c.settings.Rates.QuoteKeyBuy(n)

	keys, err := c.inv.QualifyingItems(ctx, c.settings.BotID, platform.KeyNamespace, c.policy.IsKey)
	if err != nil {
		return domain.ReplyUnexpected, apperror.Wrap(err, apperror.CodeInventoryFetchFailed, "bot keys")
	}
	if len(keys) < n {
		return domain.BotKeysShortReply(len(keys), n), apperror.Rule(apperror.CodeInsufficientItems, "bot keys")
	}

	stacks, err := c.inv.GemStacks(ctx, partner)
	if err != nil {
		return domain.ReplyUnexpected, apperror.Wrap(err, apperror.CodeInventoryFetchFailed, "partner gems")
	}
	have := sumGems(stacks)
	if have < required {
		return domain.PartnerGemsShortReply(have, required, domain.CapToLimit(domain.AffordableCount(have, rate), limit)),
			apperror.Rule(apperror.CodeInsufficientBalance, "partner gems")
	}

	gems, ok := domain.TakeGems(stacks, required)
	if !ok {
		return domain.ReplyGemsUnverified, apperror.Rule(apperror.CodeInsufficientBalance, "partner gem stacks")
	}

	return c.send(ctx, ledger.KeyBuy, n, required, platform.OfferDraft{
		Partner:        partner,
		ItemsToGive:    keys[:n],
		ItemsToReceive: gems,
		Message:        domain.BuyOfferMessage(n, required),
	})
}

// admit validates the quantity against the limit before any remote call and
// takes the partner's in-flight slot.
func (c *Constructor) admit(partner platform.SteamID, n, limit int, usage, disabled string, overLimit func(int) string) (func(), string, error) {
	if n <= 0 {
		return nil, usage, apperror.Validation(apperror.CodeInvalidQuantity, "keys")
	}
	if limit == 0 {
		return nil, disabled, apperror.Rule(apperror.CodeLimitExceeded, "direction disabled")
	}
	if !domain.WithinLimit(n, limit) {
		return nil, overLimit(limit), apperror.Rule(apperror.CodeLimitExceeded, "keys")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[partner]; busy {
		return nil, domain.ReplyInFlight, apperror.Rule(apperror.CodeRequestInFlight, partner.String())
	}
	c.inFlight[partner] = struct{}{}

	return func() {
		c.mu.Lock()
		delete(c.inFlight, partner)
		c.mu.Unlock()
	}, "", nil
}

func (c *Constructor) checkEscrow(ctx context.Context, partner platform.SteamID) (string, error) {
	escrow, err := c.deps.Platform.EscrowStatus(ctx, partner)
	if err != nil {
		return domain.ReplyEscrowFailed, apperror.Wrap(err, apperror.CodeEscrowCheckFailed, partner.String())
	}
	if escrow.Held() {
		return domain.ReplyTradeHold, apperror.Rule(apperror.CodeTradeHold, partner.String())
	}
	return "", nil
}

func (c *Constructor) send(ctx context.Context, category ledger.Category, n int, gems int64, draft platform.OfferDraft) (string, error) {
	offer, err := c.deps.Platform.SubmitOffer(ctx, draft)
	if err != nil {
		c.deps.Reporter.Report(Decision{Time: time.Now(), Partner: draft.Partner, Category: category, Units: n, Gems: gems, Outcome: OutcomeFailed, Reason: err.Error()})
		return domain.ReplyUnexpected, apperror.Wrap(err, apperror.CodeOfferSubmitFailed, draft.Partner.String())
	}

	settled, booked := c.book.Expect(ctx, ledger.Settlement{OfferID: offer.ID, Partner: draft.Partner, Category: category, Units: n})
	c.deps.Log.Info(ctx, "offer sent",
		"offer_id", offer.ID,
		"partner", draft.Partner,
		"category", category,
		"keys", n,
		"gems", gems,
	)
	c.deps.Reporter.Report(Decision{Time: time.Now(), OfferID: offer.ID, Partner: draft.Partner, Category: category, Units: n, Gems: gems, Outcome: OutcomeSent})
	if booked {
		c.deps.Reporter.Report(settled)
	}
	return domain.ReplyOfferSent, nil
}

func sumGems(stacks []platform.Item) int64 {
	var total int64
	for _, s := range stacks {
		total += s.Amount
	}
	return total
}
