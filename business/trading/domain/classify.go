package domain

import (
	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Shape is the kind of trade an offer represents.
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapeAdminOverride
	ShapeDonation
	ShapeKeyTrade
	ShapeCollectibleTrade
)

func (s Shape) String() string {
	switch s {
	case ShapeAdminOverride:
		return "admin_override"
	case ShapeDonation:
		return "donation"
	case ShapeKeyTrade:
		return "key_trade"
	case ShapeCollectibleTrade:
		return "collectible_trade"
	default:
		return "invalid"
	}
}

// Direction says which side holds the items being priced.
type Direction int

const (
	// BotBuys: the counterpart gives the items, the bot pays gems.
	BotBuys Direction = iota + 1
	// BotSells: the bot gives the items, the counterpart pays gems.
	BotSells
)

func (d Direction) String() string {
	switch d {
	case BotBuys:
		return "bot_buys"
	case BotSells:
		return "bot_sells"
	default:
		return "none"
	}
}

// Mixed-offer policies.
const (
	MixedReject    = "reject"
	MixedFirstItem = "first_item"
)

// ReasonMixed marks offers rejected for mixing asset classes on one side.
const ReasonMixed = "mixed offer"

// Classification is the classifier's verdict.
type Classification struct {
	Shape     Shape
	Direction Direction
	Reason    string
}

// Category maps a priced trade to its ledger category.
func (c Classification) Category() (ledger.Category, bool) {
	switch {
	case c.Shape == ShapeKeyTrade && c.Direction == BotBuys:
		return ledger.KeySell, true
	case c.Shape == ShapeKeyTrade && c.Direction == BotSells:
		return ledger.KeyBuy, true
	case c.Shape == ShapeCollectibleTrade && c.Direction == BotBuys:
		return ledger.CollectibleBuy, true
	case c.Shape == ShapeCollectibleTrade && c.Direction == BotSells:
		return ledger.CollectibleSell, true
	}
	return "", false
}

// Classifier sorts offers into shapes.
type Classifier struct {
	Policy      ItemPolicy
	IsAdmin     func(id string) bool
	MixedPolicy string
}

// Classify applies the rules in order; the first match wins.
func (c Classifier) Classify(o platform.Offer) Classification {
	if c.IsAdmin != nil && c.IsAdmin(o.Partner.String()) {
		return Classification{Shape: ShapeAdminOverride}
	}
	if len(o.ItemsToGive) == 0 {
		return Classification{Shape: ShapeDonation}
	}
	if len(o.ItemsToReceive) == 0 {
		return Classification{Shape: ShapeInvalid, Reason: "nothing offered in return"}
	}

	if c.MixedPolicy != MixedFirstItem {
		if c.mixed(o.ItemsToGive) || c.mixed(o.ItemsToReceive) {
			return Classification{Shape: ShapeInvalid, Reason: ReasonMixed}
		}
	}

	give, recv := o.ItemsToGive[0], o.ItemsToReceive[0]
	switch {
	case give.In(platform.KeyNamespace):
		return Classification{Shape: ShapeKeyTrade, Direction: BotSells}
	case recv.In(platform.KeyNamespace):
		return Classification{Shape: ShapeKeyTrade, Direction: BotBuys}
	case IsCollectibleType(give):
		return Classification{Shape: ShapeCollectibleTrade, Direction: BotSells}
	case IsCollectibleType(recv):
		return Classification{Shape: ShapeCollectibleTrade, Direction: BotBuys}
	}
	return Classification{Shape: ShapeInvalid, Reason: "unsupported items"}
}

func (c Classifier) mixed(items []platform.Item) bool {
	if len(items) < 2 {
		return false
	}
	first := c.Policy.Class(items[0])
	for _, it := range items[1:] {
		if c.Policy.Class(it) != first {
			return true
		}
	}
	return false
}
