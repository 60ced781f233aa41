package domain

import (
	"testing"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

var testRates = Rates{KeyBuy: 4200, KeySell: 3900, CollectibleBuy: 10, CollectibleSell: 25}

const keyName = "Mann Co. Supply Crate Key"

func key(id string) platform.Item {
	return platform.Item{AssetID: id, AppID: 440, ContextID: 2, Name: keyName, MarketHashName: keyName, Type: "Level 5 Tool", Amount: 1, Tradable: true}
}

func gems(n int64) platform.Item {
	return platform.Item{AssetID: "g1", AppID: 753, ContextID: 6, Name: platform.GemsName, MarketHashName: "753-Gems", Type: "Steam Gems", Amount: n, Tradable: true}
}

func background(id, name string, worth string) platform.Item {
	it := platform.Item{AssetID: id, AppID: 753, ContextID: 6, Name: name, MarketHashName: "1234-" + name, Type: "Some Game Profile Background", Amount: 1, Tradable: true}
	if worth != "" {
		it.Descriptions = []string{"Level 1", "This item is worth: " + worth}
	}
	return it
}

func emote(id, name string) platform.Item {
	return platform.Item{AssetID: id, AppID: 753, ContextID: 6, Name: name, MarketHashName: name, Type: "Some Game Emoticon", Amount: 1, Tradable: true,
		Descriptions: []string{"This item is worth: 20 Gems"}}
}

func TestRates_Quotes(t *testing.T) {
	for n := 0; n <= 60; n++ {
		if got := testRates.QuoteKeySell(n); got != int64(n)*3900 {
			t.Fatalf("QuoteKeySell(%d) = %d", n, got)
		}
		if got := testRates.QuoteKeyBuy(n); got != int64(n)*4200 {
			t.Fatalf("QuoteKeyBuy(%d) = %d", n, got)
		}
		if testRates.QuoteKeySell(n) > testRates.QuoteKeyBuy(n) {
			t.Fatalf("sell quote above buy quote at n=%d", n)
		}
		if testRates.QuoteCollectibleBuy(n) > testRates.QuoteCollectibleSell(n) {
			t.Fatalf("collectible buy above sell at n=%d", n)
		}
	}
}

func TestRates_Profit(t *testing.T) {
	tests := []struct {
		name     string
		category ledger.Category
		n        int
		want     int64
	}{
		{name: "key_sell", category: ledger.KeySell, n: 1, want: 300},
		{name: "key_buy", category: ledger.KeyBuy, n: 3, want: 900},
		{name: "collectible_buy", category: ledger.CollectibleBuy, n: 4, want: 60},
		{name: "collectible_sell", category: ledger.CollectibleSell, n: 1, want: 15},
		{name: "unknown", category: "other", n: 5, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testRates.Profit(tt.category, tt.n); got != tt.want {
				t.Errorf("Profit = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRates_KeysEquivalent(t *testing.T) {
	if got := testRates.KeysEquivalent(6300).StringFixed(2); got != "1.50" {
		t.Errorf("KeysEquivalent = %s", got)
	}
	if !(Rates{}).KeysEquivalent(100).IsZero() {
		t.Error("zero rate should give zero")
	}
}

func TestWithinLimit(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		limit int
		want  bool
	}{
		{name: "under", n: 5, limit: 50, want: true},
		{name: "at", n: 50, limit: 50, want: true},
		{name: "over", n: 51, limit: 50, want: false},
		{name: "zero_quantity", n: 0, limit: 50, want: false},
		{name: "negative_quantity", n: -3, limit: Unlimited, want: false},
		{name: "unlimited", n: 10000, limit: Unlimited, want: true},
		{name: "disabled", n: 1, limit: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinLimit(tt.n, tt.limit); got != tt.want {
				t.Errorf("WithinLimit(%d, %d) = %v", tt.n, tt.limit, got)
			}
		})
	}
}

func TestCapToLimit(t *testing.T) {
	tests := []struct {
		name  string
		n     int64
		limit int
		want  int64
	}{
		{name: "under", n: 3, limit: 50, want: 3},
		{name: "over", n: 80, limit: 50, want: 50},
		{name: "disabled", n: 80, limit: 0, want: 0},
		{name: "unlimited", n: 80, limit: Unlimited, want: 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapToLimit(tt.n, tt.limit); got != tt.want {
				t.Errorf("CapToLimit(%d, %d) = %d", tt.n, tt.limit, got)
			}
		})
	}
}

func TestAffordableCount(t *testing.T) {
	tests := []struct {
		name          string
		balance, rate int64
		want          int64
	}{
		{name: "exact", balance: 7800, rate: 3900, want: 2},
		{name: "floor", balance: 7799, rate: 3900, want: 1},
		{name: "zero_balance", balance: 0, rate: 3900, want: 0},
		{name: "zero_rate", balance: 100, rate: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AffordableCount(tt.balance, tt.rate); got != tt.want {
				t.Errorf("AffordableCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCollectibleGemValue(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  int64
	}{
		{name: "plural", lines: []string{"This item is worth: 40 Gems"}, want: 40},
		{name: "singular_lowercase", lines: []string{"This item is worth: 1 gem"}, want: 1},
		{name: "later_line", lines: []string{"Level 3", "x", "This item is worth: 250 Gems"}, want: 250},
		{name: "absent", lines: []string{"Level 3"}, want: 0},
		{name: "marker_without_number", lines: []string{"This item is worth: lots"}, want: 0},
		{name: "empty", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := platform.Item{Descriptions: tt.lines}
			if got := CollectibleGemValue(it); got != tt.want {
				t.Errorf("CollectibleGemValue = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestItemPolicy(t *testing.T) {
	p := NewItemPolicy([]string{keyName}, []string{":cleancake:", "A Clean Garage"})

	tests := []struct {
		name  string
		item  platform.Item
		class AssetClass
	}{
		{name: "key", item: key("k1"), class: ClassKey},
		{name: "gems", item: gems(100), class: ClassGems},
		{name: "gemmable_background", item: background("b1", "Sunset", "40 Gems"), class: ClassCollectible},
		{name: "ungemmable_background", item: background("b2", "Sunset", ""), class: ClassOther},
		{name: "denied_by_name", item: background("b3", "A Clean Garage", "40 Gems"), class: ClassOther},
		{name: "denied_emote", item: emote("e1", ":cleancake:"), class: ClassOther},
		{name: "other_key_name", item: func() platform.Item { k := key("k2"); k.MarketHashName = "Other Key"; return k }(), class: ClassOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Class(tt.item); got != tt.class {
				t.Errorf("Class = %v, want %v", got, tt.class)
			}
		})
	}
}

func TestItemPolicy_Grindable(t *testing.T) {
	p := NewItemPolicy([]string{keyName}, []string{"A Clean Garage"})
	card := background("c1", "Card", "40 Gems")
	card.Type = "Some Game Trading Card"
	booster := background("c2", "Booster", "400 Gems")
	booster.MarketHashName = "Some Booster Pack"

	tests := []struct {
		name string
		item platform.Item
		want bool
	}{
		{name: "above_threshold", item: background("b1", "Sunset", "40 Gems"), want: true},
		{name: "at_threshold", item: background("b2", "Dawn", "20 Gems"), want: false},
		{name: "gems", item: gems(500), want: false},
		{name: "denied", item: background("b3", "A Clean Garage", "40 Gems"), want: false},
		{name: "card", item: card, want: false},
		{name: "booster", item: booster, want: false},
		{name: "key", item: key("k1"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Grindable(tt.item, 20); got != tt.want {
				t.Errorf("Grindable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	admin := platform.SteamID("76561198000000001")
	user := platform.SteamID("76561198000000002")
	c := Classifier{
		Policy:      NewItemPolicy([]string{keyName}, nil),
		IsAdmin:     func(id string) bool { return id == admin.String() },
		MixedPolicy: MixedReject,
	}

	tests := []struct {
		name      string
		offer     platform.Offer
		policy    string
		shape     Shape
		direction Direction
		category  ledger.Category
	}{
		{
			name:  "admin_override",
			offer: platform.Offer{Partner: admin, ItemsToGive: []platform.Item{key("k1")}},
			shape: ShapeAdminOverride,
		},
		{
			name:  "donation",
			offer: platform.Offer{Partner: user, ItemsToReceive: []platform.Item{key("k1")}},
			shape: ShapeDonation,
		},
		{
			name:  "nothing_in_return",
			offer: platform.Offer{Partner: user, ItemsToGive: []platform.Item{gems(10)}},
			shape: ShapeInvalid,
		},
		{
			name:      "bot_buys_keys",
			offer:     platform.Offer{Partner: user, ItemsToGive: []platform.Item{gems(3900)}, ItemsToReceive: []platform.Item{key("k1")}},
			shape:     ShapeKeyTrade,
			direction: BotBuys,
			category:  ledger.KeySell,
		},
		{
			name:      "bot_sells_keys",
			offer:     platform.Offer{Partner: user, ItemsToGive: []platform.Item{key("k1")}, ItemsToReceive: []platform.Item{gems(4200)}},
			shape:     ShapeKeyTrade,
			direction: BotSells,
			category:  ledger.KeyBuy,
		},
		{
			name:      "bot_buys_collectibles",
			offer:     platform.Offer{Partner: user, ItemsToGive: []platform.Item{gems(20)}, ItemsToReceive: []platform.Item{background("b1", "A", "40 Gems"), emote("e1", ":a:")}},
			shape:     ShapeCollectibleTrade,
			direction: BotBuys,
			category:  ledger.CollectibleBuy,
		},
		{
			name:      "bot_sells_collectibles",
			offer:     platform.Offer{Partner: user, ItemsToGive: []platform.Item{background("b1", "A", "40 Gems")}, ItemsToReceive: []platform.Item{gems(25)}},
			shape:     ShapeCollectibleTrade,
			direction: BotSells,
			category:  ledger.CollectibleSell,
		},
		{
			name:  "mixed_rejected",
			offer: platform.Offer{Partner: user, ItemsToGive: []platform.Item{gems(20)}, ItemsToReceive: []platform.Item{key("k1"), background("b1", "A", "40 Gems")}},
			shape: ShapeInvalid,
		},
		{
			name:      "mixed_first_item",
			offer:     platform.Offer{Partner: user, ItemsToGive: []platform.Item{gems(20)}, ItemsToReceive: []platform.Item{key("k1"), background("b1", "A", "40 Gems")}},
			policy:    MixedFirstItem,
			shape:     ShapeKeyTrade,
			direction: BotBuys,
			category:  ledger.KeySell,
		},
		{
			name:  "unsupported",
			offer: platform.Offer{Partner: user, ItemsToGive: []platform.Item{gems(20)}, ItemsToReceive: []platform.Item{gems(10)}},
			shape: ShapeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := c
			if tt.policy != "" {
				cl.MixedPolicy = tt.policy
			}
			first := cl.Classify(tt.offer)
			second := cl.Classify(tt.offer)
			if first != second {
				t.Fatalf("classification not stable: %+v vs %+v", first, second)
			}
			if first.Shape != tt.shape {
				t.Fatalf("shape = %v, want %v (%s)", first.Shape, tt.shape, first.Reason)
			}
			if first.Direction != tt.direction {
				t.Errorf("direction = %v, want %v", first.Direction, tt.direction)
			}
			cat, ok := first.Category()
			if tt.category != "" && (!ok || cat != tt.category) {
				t.Errorf("category = %q, want %q", cat, tt.category)
			}
			if tt.category == "" && ok {
				t.Errorf("unexpected category %q", cat)
			}
		})
	}
}
