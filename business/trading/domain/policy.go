package domain

import (
	"strings"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// AssetClass groups items for mixed-offer detection.
type AssetClass int

const (
	ClassOther AssetClass = iota
	ClassKey
	ClassCollectible
	ClassGems
)

func (c AssetClass) String() string {
	switch c {
	case ClassKey:
		return "key"
	case ClassCollectible:
		return "collectible"
	case ClassGems:
		return "gems"
	default:
		return "other"
	}
}

// ItemPolicy decides which items the bot trades.
type ItemPolicy struct {
	keyNames map[string]bool
	denied   map[string]bool
}

// NewItemPolicy builds a policy from the key allow-list and the deny-list.
func NewItemPolicy(keyNames, notForTrade []string) ItemPolicy {
	p := ItemPolicy{
		keyNames: make(map[string]bool, len(keyNames)),
		denied:   make(map[string]bool, len(notForTrade)),
	}
	for _, n := range keyNames {
		p.keyNames[n] = true
	}
	for _, n := range notForTrade {
		p.denied[n] = true
	}
	return p
}

// Denied reports whether the item is on the deny-list by name or market hash
// name.
func (p ItemPolicy) Denied(item platform.Item) bool {
	return p.denied[item.Name] || p.denied[item.MarketHashName]
}

// IsKey reports whether item is a tradable key.
func (p ItemPolicy) IsKey(item platform.Item) bool {
	return item.In(platform.KeyNamespace) && p.keyNames[item.MarketHashName] && !p.Denied(item)
}

// IsCollectibleType reports whether item carries a background or emoticon
// type tag.
func IsCollectibleType(item platform.Item) bool {
	t := strings.ToLower(item.Type)
	return strings.Contains(t, "profile background") || strings.Contains(t, "emoticon")
}

// IsCollectible reports whether item is a collectible the bot trades: the
// right type, not deny-listed and gemmable.
func (p ItemPolicy) IsCollectible(item platform.Item) bool {
	return IsCollectibleType(item) && !p.Denied(item) && CollectibleGemValue(item) > 0
}

// Class assigns item its asset class.
func (p ItemPolicy) Class(item platform.Item) AssetClass {
	switch {
	case item.IsGemStack():
		return ClassGems
	case p.IsKey(item):
		return ClassKey
	case p.IsCollectible(item):
		return ClassCollectible
	default:
		return ClassOther
	}
}

// Grindable reports whether the autogem sweep should turn item into gems:
// a gemmable collectible worth more than threshold that is not a card,
// booster or gem item.
func (p ItemPolicy) Grindable(item platform.Item, threshold int64) bool {
	if item.IsGemStack() || p.Denied(item) || !item.In(platform.GemNamespace) {
		return false
	}
	t := strings.ToLower(item.Type)
	name := strings.ToLower(item.MarketHashName)
	if name == "" {
		name = strings.ToLower(item.Name)
	}
	if strings.Contains(t, "trading card") || strings.Contains(name, "booster") || strings.Contains(name, "gems") {
		return false
	}
	return IsCollectibleType(item) && CollectibleGemValue(item) > threshold
}
