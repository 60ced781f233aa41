package domain

import (
	"fmt"
	"strings"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	trading "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"
)

const (
	ReplySpam            = "Sorry but we do not like spamming. You've been removed!"
	ReplyAdminBlock      = "An admin cannot be blocked."
	ReplyBlockUsage      = "Invalid SteamID64 format. Use !Block [SteamID64]"
	ReplyUnblockUsage    = "Invalid SteamID64 format. Use !Unblock [SteamID64]"
	ReplyBroadcastUsage  = "Please provide a message. Use !Broadcast [Message]"
	ReplyBroadcastFailed = "Could not load the friend list. Broadcast not sent."
	ReplyCheckFailed     = "I couldn't load your inventory right now. Please try again."
	ReplyProfitLoading   = "Calculating profit... (loading inventories)"
	ReplyStockFailed     = "Could not load the bot inventory."
)

func SpamNotice(id string) string {
	return fmt.Sprintf("Steam #%s has been removed for spamming", id)
}

func AlreadyBlockedReply(id string) string {
	return fmt.Sprintf("User %s is already blocked.", id)
}

func BlockedReply(id string) string {
	return fmt.Sprintf("User %s has been blocked.", id)
}

func NotBlockedReply(id string) string {
	return fmt.Sprintf("User %s was not found in the block list.", id)
}

func UnblockedReply(id string) string {
	return fmt.Sprintf("User %s has been unblocked.", id)
}

// UnsavedReply reports a block list change that holds in memory but failed
// to persist.
func UnsavedReply(id string) string {
	return fmt.Sprintf("Block list updated for %s, but it could not be saved. The change is lost on restart.", id)
}

func BroadcastReply(n int) string {
	return fmt.Sprintf("Broadcast sent to %d friends.", n)
}

// PricesText renders the public rate sheet.
func PricesText(r trading.Rates) string {
	return fmt.Sprintf("Sell Your: \n1 TF2 Key for Our %d Gems\n\n"+
		"Buy Our: \n1 TF2 Key for Your %d Gems\n\n"+
		"We're also:\n"+
		"Buying Your Backgrounds & emotes for %d Gems (Send offer & add correct number of my gems for auto accept.)\n"+
		"Selling any of OUR Backgrounds & emotes for %d Gems (Send offer & add correct number of my gems for auto accept.)",
		r.KeySell, r.KeyBuy, r.CollectibleBuy, r.CollectibleSell)
}

// CheckText renders a partner's holdings with the trades they could open,
// capped to the per-trade limits.
func CheckText(r trading.Rates, l trading.Limits, keys int, gems int64) string {
	var keysLine, gemsLine string
	if n := int(trading.CapToLimit(int64(keys), l.MaxSell)); n > 0 {
		keysLine = fmt.Sprintf("- I can give you %d Gems for them (Use !SellTF %d)", r.QuoteKeySell(n), n)
	}
	if k := trading.CapToLimit(trading.AffordableCount(gems, r.KeyBuy), l.MaxBuy); k > 0 {
		gemsLine = fmt.Sprintf("- I can give you %d TF2 Keys for Your %d Gems (Use !BuyTF %d)", k, k*r.KeyBuy, k)
	}
	return fmt.Sprintf("You have:\n\n%d TF2 Keys\n%s\nYou have:\n\n%d Gems %s", keys, keysLine, gems, gemsLine)
}

// ProfitText renders every category and window, the lifetime total in keys
// at the key-buy rate, and the bot's stock.
func ProfitText(l ledger.Ledger, r trading.Rates, stockGems int64, stockKeys int) string {
	var b strings.Builder
	b.WriteString("Profit (Gems):\n")
	for _, c := range ledger.Categories() {
		v := l[c]
		fmt.Fprintf(&b, "- %s: lifetime %d | weekly %d | daily %d\n", c, v.Lifetime, v.Weekly, v.Daily)
	}

	lifetime := l.Total(ledger.Lifetime)
	fmt.Fprintf(&b, "- total: lifetime %d | weekly %d | daily %d\n",
		lifetime, l.Total(ledger.Weekly), l.Total(ledger.Daily))
	if r.KeyBuy > 0 {
		fmt.Fprintf(&b, "  (~%s TF2 Keys lifetime)\n", r.KeysEquivalent(lifetime).StringFixed(2))
	}

	fmt.Fprintf(&b, "\nCurrent stock:\n- Gems: %d\n- TF2 Keys: %d", stockGems, stockKeys)
	return b.String()
}
