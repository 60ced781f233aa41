// Package domain holds the profit ledger and block list value types.
package domain

import (
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
)

// Category is a trade category profit is booked under.
type Category string

const (
	KeyBuy          Category = "key-buy"
	KeySell         Category = "key-sell"
	CollectibleBuy  Category = "collectible-buy"
	CollectibleSell Category = "collectible-sell"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{KeyBuy, KeySell, CollectibleBuy, CollectibleSell}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case KeyBuy, KeySell, CollectibleBuy, CollectibleSell:
		return true
	}
	return false
}

// IsKey reports whether c is one of the key categories.
func (c Category) IsKey() bool {
	return c == KeyBuy || c == KeySell
}

// Window is a counter horizon.
type Window string

const (
	Lifetime Window = "lifetime"
	Weekly   Window = "weekly"
	Daily    Window = "daily"
)

// Valid reports whether w is a known window.
func (w Window) Valid() bool {
	switch w {
	case Lifetime, Weekly, Daily:
		return true
	}
	return false
}

// Counters are the running gem totals for one category.
type Counters struct {
	Lifetime int64 `json:"lifetime"`
	Weekly   int64 `json:"weekly"`
	Daily    int64 `json:"daily"`
}

// Add books delta in every window.
func (c *Counters) Add(delta int64) {
	c.Lifetime += delta
	c.Weekly += delta
	c.Daily += delta
}

// Reset zeroes one window.
func (c *Counters) Reset(w Window) {
	switch w {
	case Lifetime:
		c.Lifetime = 0
	case Weekly:
		c.Weekly = 0
	case Daily:
		c.Daily = 0
	}
}

// Get returns the value of one window.
func (c Counters) Get(w Window) int64 {
	switch w {
	case Weekly:
		return c.Weekly
	case Daily:
		return c.Daily
	default:
		return c.Lifetime
	}
}

// Ledger maps every category to its counters.
type Ledger map[Category]Counters

// NewLedger returns a ledger with every category present and zeroed.
func NewLedger() Ledger {
	l := make(Ledger, 4)
	for _, c := range Categories() {
		l[c] = Counters{}
	}
	return l
}

// Normalize fills in missing categories and drops unknown ones.
func (l Ledger) Normalize() Ledger {
	out := NewLedger()
	for c, v := range l {
		if c.Valid() {
			out[c] = v
		}
	}
	return out
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for c, v := range l {
		out[c] = v
	}
	return out
}

// Total sums one window across categories.
func (l Ledger) Total(w Window) int64 {
	var sum int64
	for _, v := range l {
		sum += v.Get(w)
	}
	return sum
}

// ValidateEntry checks a (category, window) pair.
func ValidateEntry(c Category, w Window) error {
	if !c.Valid() {
		return apperror.Validation(apperror.CodeInvalidInput, "ledger category "+string(c))
	}
	if !w.Valid() {
		return apperror.Validation(apperror.CodeInvalidInput, "ledger window "+string(w))
	}
	return nil
}
