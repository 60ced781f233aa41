// Package domain contains the trading rules: exchange rates, limits, item
// qualification and offer classification. Everything here is pure.
package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Unlimited disables a per-trade key limit. A limit of 0 disables the
// direction altogether.
const Unlimited = -1

// worthMarker prefixes the gem value line in a collectible's description.
const worthMarker = "This item is worth:"

var gemValuePattern = regexp.MustCompile(`(?i)(\d+)\s*Gems?`)

// Rates are gem prices per unit. Key rates are seen from the counterpart:
// KeyBuy is what they pay for one of our keys, KeySell what we pay for one of
// theirs. Collectible rates are seen from the bot.
type Rates struct {
	KeyBuy          int64
	KeySell         int64
	CollectibleBuy  int64
	CollectibleSell int64
}

// Limits bound the keys per trade in each direction.
type Limits struct {
	MaxBuy  int
	MaxSell int
}

func (r Rates) QuoteKeySell(n int) int64 { return int64(n) * r.KeySell }

func (r Rates) QuoteKeyBuy(n int) int64 { return int64(n) * r.KeyBuy }

func (r Rates) QuoteCollectibleBuy(n int) int64 { return int64(n) * r.CollectibleBuy }

func (r Rates) QuoteCollectibleSell(n int) int64 { return int64(n) * r.CollectibleSell }

// Rate returns the per-unit rate that applies to category.
func (r Rates) Rate(c ledger.Category) int64 {
	switch c {
	case ledger.KeyBuy:
		return r.KeyBuy
	case ledger.KeySell:
		return r.KeySell
	case ledger.CollectibleBuy:
		return r.CollectibleBuy
	case ledger.CollectibleSell:
		return r.CollectibleSell
	}
	return 0
}

// Quote returns the gems n units of category cost.
func (r Rates) Quote(c ledger.Category, n int) int64 {
	return int64(n) * r.Rate(c)
}

// Profit is the spread earned on n units of category. Key categories earn
// the key spread, collectible categories the collectible spread, whichever
// leg of the round trip the trade is.
func (r Rates) Profit(c ledger.Category, n int) int64 {
	switch c {
	case ledger.KeyBuy, ledger.KeySell:
		return int64(n) * (r.KeyBuy - r.KeySell)
	case ledger.CollectibleBuy, ledger.CollectibleSell:
		return int64(n) * (r.CollectibleSell - r.CollectibleBuy)
	}
	return 0
}

// KeysEquivalent expresses gems in keys at the key buy rate.
func (r Rates) KeysEquivalent(gems int64) decimal.Decimal {
	if r.KeyBuy <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(gems).Div(decimal.NewFromInt(r.KeyBuy))
}

// WithinLimit reports whether n keys may be traded under limit.
func WithinLimit(n, limit int) bool {
	if n <= 0 || limit == 0 {
		return false
	}
	return limit == Unlimited || n <= limit
}

// CapToLimit clamps n to limit; a disabled direction (limit 0) caps to 0.
func CapToLimit(n int64, limit int) int64 {
	if limit != Unlimited && n > int64(limit) {
		return int64(limit)
	}
	return n
}

// AffordableCount is floor(balance / rate).
func AffordableCount(balance, rate int64) int64 {
	if rate <= 0 || balance <= 0 {
		return 0
	}
	return balance / rate
}

// CollectibleGemValue reads the gem value from the item's description. Items
// without one are worth 0.
func CollectibleGemValue(item platform.Item) int64 {
	for _, line := range item.Descriptions {
		if !strings.Contains(line, worthMarker) {
			continue
		}
		m := gemValuePattern.FindStringSubmatch(line)
		if m == nil {
			return 0
		}
		var n int64
		for _, d := range m[1] {
			n = n*10 + int64(d-'0')
		}
		return n
	}
	return 0
}
