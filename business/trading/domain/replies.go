package domain

import "fmt"

// Replies sent to counterparts.
const (
	ReplyDonation       = "Your donation is appreciated!"
	ReplyOfferSent      = "Trade Offer Sent! Please check your Steam Mobile App to accept it."
	ReplyTradeHold      = "Make sure you do not have any Trade Holds."
	ReplyEscrowFailed   = "An error occurred while getting your trade holds. Please Enable your Steam Guard!"
	ReplyUnexpected     = "An unexpected error occurred while processing your request. Please try again or check my inventory status."
	ReplyInFlight       = "Your previous request is still being processed, please wait."
	ReplyUnsupported    = "Trade declined. I only trade TF2 Keys, Backgrounds and Emotes for Gems."
	ReplyMixed          = "Trade declined. Please don't mix TF2 Keys, Backgrounds, Emotes and other items in one offer."
	ReplyAcceptFailed   = "An error occurred while accepting the trade. Please try again."
	ReplyBalanceFailed  = "An error occurred while checking your inventory. Please try again."
	ReplyStockFailed    = "An error occurred while checking my inventory. Please try again."
	ReplyGemsUnverified = "I couldn't verify you have the required Gems right now. Please try again."

	ReplyOnlyGems        = "Trade declined. Please offer ONLY the correct amount of Gems."
	ReplyOnlyGemsFromBot = "Trade declined. Please offer ONLY the correct amount of Gems from my inventory (The bot gives Gems, you give items)."

	ReplyNoCollectiblesToBuy  = "Trade declined. You must include valid Backgrounds or Emotes for me to buy."
	ReplyNoCollectiblesToSell = "Trade declined. I must include valid Backgrounds or Emotes for you to buy from me."
	ReplyNoKeysToBuy          = "Trade declined. You must include TF2 Keys for me to buy."
	ReplyNoKeysToSell         = "Trade declined. I must include TF2 Keys for you to buy from me."

	ReplyBotLowStock     = "Trade declined. I do not have enough Gems in my inventory right now. Please try again later."
	ReplyPartnerLowStock = "Trade declined. You do not have enough Gems in your inventory right now. Please try again later."

	ReplyNotBuyingKeys  = "Sorry, I'm not buying TF2 Keys right now."
	ReplyNotSellingKeys = "Sorry, I'm not selling TF2 Keys right now."

	ReplySellUsage = "Please provide a valid amount of Keys -> !SellTF [Number of Keys]"
	ReplyBuyUsage  = "Please provide a valid amount of Keys -> !BuyTF [Number of Keys]"
)

// SellLimitReply answers a !SellTF above the limit.
func SellLimitReply(limit int) string {
	return fmt.Sprintf("You can only Sell up to %d TF2 Keys to me at a time!", limit)
}

// BuyLimitReply answers a !BuyTF above the limit.
func BuyLimitReply(limit int) string {
	return fmt.Sprintf("You can only Buy up to %d TF2 Keys from me at a time!", limit)
}

// BotGemsShortReply answers a !SellTF the bot cannot pay for.
func BotGemsShortReply(have, need, suggest int64) string {
	if suggest > 0 {
		return fmt.Sprintf("Sorry, I don't have enough Gems: %d / %d. Tip: Try using !SellTF %d", have, need, suggest)
	}
	return fmt.Sprintf("Sorry, I don't have enough Gems: %d / %d. I'll restock soon!", have, need)
}

// PartnerKeysShortReply answers a !SellTF for more keys than the partner holds.
func PartnerKeysShortReply(have, need int) string {
	if have > 0 {
		return fmt.Sprintf("You don't have enough TF2 keys: %d / %d. Tip: Try using !SellTF %d", have, need, have)
	}
	return fmt.Sprintf("You don't have enough TF2 keys: %d / %d", have, need)
}

// BotKeysShortReply answers a !BuyTF for more keys than the bot holds.
func BotKeysShortReply(have, need int) string {
	if have > 0 {
		return fmt.Sprintf("Sorry, I don't have enough TF2 keys: %d / %d. Tip: Try using !BuyTF %d", have, need, have)
	}
	return fmt.Sprintf("Sorry, I don't have enough TF2 keys: %d / %d. I'll restock soon!", have, need)
}

// PartnerGemsShortReply answers a !BuyTF the partner cannot pay for.
func PartnerGemsShortReply(have, need, suggest int64) string {
	if suggest > 0 {
		return fmt.Sprintf("You don't have enough Gems: %d / %d. Tip: Try using !BuyTF %d", have, need, suggest)
	}
	return fmt.Sprintf("You don't have enough Gems: %d / %d", have, need)
}

// SellOfferMessage is the note on an offer built for !SellTF.
func SellOfferMessage(n int, gems int64) string {
	return fmt.Sprintf("Selling %d TF2 Keys for %d Gems. Thanks for trading!", n, gems)
}

// BuyOfferMessage is the note on an offer built for !BuyTF.
func BuyOfferMessage(n int, gems int64) string {
	return fmt.Sprintf("Buying %d TF2 Keys for %d Gems. Thanks for trading!", n, gems)
}

func mismatchReply(q Quote, offered int64) string {
	unit, per := "items", "item"
	if q.Category.IsKey() {
		unit, per = "TF2 Keys", "key"
	}
	who := "You"
	if q.Direction == BotBuys {
		who = "I"
	}
	return fmt.Sprintf("Trade declined. %s offered %d Gems, but %d %s are worth %d Gems at my flat rate of %d Gems/%s.",
		who, offered, q.Units, unit, q.Required, q.Rate, per)
}

func overLimitReply(d Direction, limit int) string {
	if d == BotBuys {
		return fmt.Sprintf("Trade declined. I can only buy up to %d TF2 Keys per trade.", limit)
	}
	return fmt.Sprintf("Trade declined. I can only sell up to %d TF2 Keys per trade.", limit)
}

// StatusText is the bot's published status line.
func StatusText(gems int64) string {
	return fmt.Sprintf("%d Gems > Buy/Sell Gems (!prices)", gems)
}
