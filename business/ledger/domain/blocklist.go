package domain

import (
	"sort"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

// BlockList is a set of parties whose messages and offers are ignored.
type BlockList map[platform.SteamID]struct{}

// NewBlockList builds a set from ids.
func NewBlockList(ids []platform.SteamID) BlockList {
	b := make(BlockList, len(ids))
	for _, id := range ids {
		b[id] = struct{}{}
	}
	return b
}

// Has reports membership.
func (b BlockList) Has(id platform.SteamID) bool {
	_, ok := b[id]
	return ok
}

// IDs returns the members in sorted order.
func (b BlockList) IDs() []platform.SteamID {
	out := make([]platform.SteamID, 0, len(b))
	for id := range b {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
