// Package domain holds the trading platform's value types: parties, items,
// offers and the events the session bridge delivers.
package domain

import (
	"regexp"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
)

var steamIDPattern = regexp.MustCompile(`^[0-9]{17}$`)

// SteamID is a 17-digit SteamID64.
type SteamID string

// ParseSteamID validates s as a SteamID64.
func ParseSteamID(s string) (SteamID, error) {
	if !steamIDPattern.MatchString(s) {
		return "", apperror.Validation(apperror.CodeInvalidSteamID, s)
	}
	return SteamID(s), nil
}

func (id SteamID) String() string {
	return string(id)
}

// Valid reports whether id has the SteamID64 shape.
func (id SteamID) Valid() bool {
	return steamIDPattern.MatchString(string(id))
}
