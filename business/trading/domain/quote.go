package domain

import (
	"cmp"
	"slices"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Quote is a priced trade: Units items of Category at Rate gems each.
type Quote struct {
	Category  ledger.Category
	Direction Direction
	Units     int
	Rate      int64
	Required  int64
}

// Payer is the party whose gems settle the trade.
func (q Quote) Payer(bot, partner platform.SteamID) platform.SteamID {
	if q.Direction == BotBuys {
		return bot
	}
	return partner
}

// Rejection is a refused trade and the reply owed to the counterpart.
type Rejection struct {
	Code  apperror.Code
	Reply string
}

func (r *Rejection) Error() string {
	return string(r.Code) + ": " + r.Reply
}

func reject(code apperror.Code, reply string) *Rejection {
	return &Rejection{Code: code, Reply: reply}
}

// Pricer checks incoming key and collectible offers against the rates.
type Pricer struct {
	Policy ItemPolicy
	Rates  Rates
	Limits Limits
}

// Price validates the contents of a classified key or collectible offer and
// returns its quote. The balance check is left to the caller.
func (p Pricer) Price(o platform.Offer, cl Classification) (Quote, *Rejection) {
	category, ok := cl.Category()
	if !ok {
		return Quote{}, reject(apperror.CodeOfferMalformed, ReplyUnsupported)
	}

	items, currency := o.ItemsToReceive, o.ItemsToGive
	if cl.Direction == BotSells {
		items, currency = o.ItemsToGive, o.ItemsToReceive
	}

	qualifies := p.Policy.IsCollectible
	if category.IsKey() {
		qualifies = p.Policy.IsKey
	}

	units := 0
	for _, it := range items {
		if qualifies(it) {
			units++
		}
	}
	if units == 0 {
		return Quote{}, reject(apperror.CodeInsufficientItems, noItemsReply(category.IsKey(), cl.Direction))
	}

	malformed := ReplyOnlyGems
	if cl.Direction == BotBuys && !category.IsKey() {
		malformed = ReplyOnlyGemsFromBot
	}
	if units != len(items) || len(currency) != 1 || !currency[0].IsGemStack() {
		return Quote{}, reject(apperror.CodeOfferMalformed, malformed)
	}

	if category.IsKey() {
		limit := p.Limits.MaxBuy
		if cl.Direction == BotBuys {
			limit = p.Limits.MaxSell
		}
		if limit == 0 {
			return Quote{}, reject(apperror.CodeLimitExceeded, disabledReply(cl.Direction))
		}
		if !WithinLimit(units, limit) {
			return Quote{}, reject(apperror.CodeLimitExceeded, overLimitReply(cl.Direction, limit))
		}
	}

	q := Quote{
		Category:  category,
		Direction: cl.Direction,
		Units:     units,
		Rate:      p.Rates.Rate(category),
	}
	q.Required = int64(units) * q.Rate

	if offered := currency[0].Amount; offered != q.Required {
		return Quote{}, reject(apperror.CodeAmountMismatch, mismatchReply(q, offered))
	}
	return q, nil
}

// LowStockReply is sent when the paying side no longer holds the gems.
func (q Quote) LowStockReply() string {
	if q.Direction == BotBuys {
		return ReplyBotLowStock
	}
	return ReplyPartnerLowStock
}

// BalanceErrorReply is sent when the paying side's balance cannot be read.
func (q Quote) BalanceErrorReply() string {
	if q.Direction == BotBuys {
		return ReplyStockFailed
	}
	return ReplyBalanceFailed
}

func noItemsReply(key bool, d Direction) string {
	switch {
	case key && d == BotBuys:
		return ReplyNoKeysToBuy
	case key:
		return ReplyNoKeysToSell
	case d == BotBuys:
		return ReplyNoCollectiblesToBuy
	default:
		return ReplyNoCollectiblesToSell
	}
}

func disabledReply(d Direction) string {
	if d == BotBuys {
		return ReplyNotBuyingKeys
	}
	return ReplyNotSellingKeys
}

// TakeGems picks gem stacks covering exactly n gems, largest stacks first.
// The last stack taken is trimmed to the remainder.
func TakeGems(stacks []platform.Item, n int64) ([]platform.Item, bool) {
	if n <= 0 {
		return nil, false
	}
	sorted := make([]platform.Item, 0, len(stacks))
	for _, s := range stacks {
		if s.IsGemStack() && s.Amount > 0 {
			sorted = append(sorted, s)
		}
	}
	slices.SortStableFunc(sorted, func(a, b platform.Item) int {
		return cmp.Compare(b.Amount, a.Amount)
	})

	var out []platform.Item
	remaining := n
	for _, s := range sorted {
		if remaining == 0 {
			break
		}
		take := min(s.Amount, remaining)
		out = append(out, s.WithAmount(take))
		remaining -= take
	}
	if remaining > 0 {
		return nil, false
	}
	return out, true
}
