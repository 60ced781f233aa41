package domain

// Relationship mirrors the platform's friend relationship codes.
type Relationship int

const (
	RelationshipNone             Relationship = 0
	RelationshipRequestRecipient Relationship = 2
	RelationshipFriend           Relationship = 3
)

// Friend is one entry of the bot's friend list.
type Friend struct {
	SteamID      SteamID      `json:"steam_id"`
	Relationship Relationship `json:"relationship"`
}

// EventType names a bridge event envelope.
type EventType string

const (
	EventChatMessage        EventType = "chat_message"
	EventNewOffer           EventType = "new_offer"
	EventOfferChanged       EventType = "offer_changed"
	EventFriendRelationship EventType = "friend_relationship"
)

// ChatMessage is a direct message to the bot.
type ChatMessage struct {
	From SteamID `json:"from"`
	Text string  `json:"text"`
}

// NewOffer announces an incoming trade offer.
type NewOffer struct {
	Offer Offer `json:"offer"`
}

// OfferChanged reports a state transition of any offer.
type OfferChanged struct {
	Offer    Offer      `json:"offer"`
	OldState OfferState `json:"old_state"`
}

// FriendRelationship reports a change in a friend relationship.
type FriendRelationship struct {
	SteamID      SteamID      `json:"steam_id"`
	Relationship Relationship `json:"relationship"`
}
