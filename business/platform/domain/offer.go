package domain

// OfferState is the platform's trade offer state.
type OfferState string

const (
	OfferActive       OfferState = "active"
	OfferAccepted     OfferState = "accepted"
	OfferDeclined     OfferState = "declined"
	OfferExpired      OfferState = "expired"
	OfferCanceled     OfferState = "canceled"
	OfferInvalidItems OfferState = "invalid_items"
	OfferInEscrow     OfferState = "in_escrow"
	OfferCompleted    OfferState = "completed"
)

// Settled reports whether the swap went through.
func (s OfferState) Settled() bool {
	return s == OfferCompleted
}

// Failed reports whether the offer ended without a swap.
func (s OfferState) Failed() bool {
	switch s {
	case OfferDeclined, OfferExpired, OfferCanceled, OfferInvalidItems:
		return true
	}
	return false
}

// Offer is a bilateral trade proposal. ItemsToGive is the bot's side.
type Offer struct {
	ID             string     `json:"id"`
	Partner        SteamID    `json:"partner"`
	ItemsToGive    []Item     `json:"items_to_give"`
	ItemsToReceive []Item     `json:"items_to_receive"`
	Message        string     `json:"message,omitempty"`
	State          OfferState `json:"state"`
	IsOurOffer     bool       `json:"is_our_offer"`
}

// OfferDraft is an offer the bot is about to send.
type OfferDraft struct {
	Partner        SteamID `json:"partner"`
	ItemsToGive    []Item  `json:"items_to_give"`
	ItemsToReceive []Item  `json:"items_to_receive"`
	Message        string  `json:"message"`
}

// Escrow is the trade hold, in days, for each side of a prospective trade.
type Escrow struct {
	SelfDays    int `json:"self_days"`
	PartnerDays int `json:"partner_days"`
}

// Held reports whether either side has a trade hold.
func (e Escrow) Held() bool {
	return e.SelfDays != 0 || e.PartnerDays != 0
}
