package domain

import "fmt"

// Namespace is an (appID, contextID) inventory pair.
type Namespace struct {
	AppID     int
	ContextID int
}

// Inventories the bot trades in.
var (
	// KeyNamespace holds TF2 keys.
	KeyNamespace = Namespace{AppID: 440, ContextID: 2}
	// GemNamespace holds gems, backgrounds and emoticons.
	GemNamespace = Namespace{AppID: 753, ContextID: 6}
)

func (n Namespace) String() string {
	return fmt.Sprintf("%d/%d", n.AppID, n.ContextID)
}

// GemsName is the display name of the gem stack.
const GemsName = "Gems"

// Item is one inventory entry. Stackable items carry their stack size in
// Amount; everything else has Amount 1.
type Item struct {
	AssetID        string   `json:"assetid"`
	ClassID        string   `json:"classid,omitempty"`
	AppID          int      `json:"appid"`
	ContextID      int      `json:"contextid"`
	Name           string   `json:"name"`
	MarketHashName string   `json:"market_hash_name"`
	Type           string   `json:"type"`
	Amount         int64    `json:"amount"`
	Tradable       bool     `json:"tradable"`
	Descriptions   []string `json:"descriptions,omitempty"`
}

// Namespace returns the inventory the item lives in.
func (i Item) Namespace() Namespace {
	return Namespace{AppID: i.AppID, ContextID: i.ContextID}
}

// In reports whether the item lives in ns.
func (i Item) In(ns Namespace) bool {
	return i.AppID == ns.AppID && i.ContextID == ns.ContextID
}

// IsGemStack reports whether the item is a stack of gems.
func (i Item) IsGemStack() bool {
	return i.In(GemNamespace) && i.Name == GemsName
}

// WithAmount returns a copy of the item carrying n units. Offers use it to
// put an exact slice of a gem stack on the table.
func (i Item) WithAmount(n int64) Item {
	i.Amount = n
	return i
}
