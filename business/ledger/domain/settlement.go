package domain

import (
	"sort"
	"time"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// Settlement is an accepted or sent offer whose profit is booked once the
// platform reports it completed.
type Settlement struct {
	OfferID  string           `json:"offer_id"`
	Partner  platform.SteamID `json:"partner"`
	Category Category         `json:"category"`
	Units    int              `json:"units"`
	Created  time.Time        `json:"created"`
}

// SortSettlements orders s by offer id so stored documents are stable.
func SortSettlements(s []Settlement) {
	sort.Slice(s, func(i, j int) bool { return s[i].OfferID < s[j].OfferID })
}
