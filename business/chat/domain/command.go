// Package domain holds the chat command grammar and the reply texts that
// do not depend on live inventory.
package domain

import (
	"strconv"
	"strings"
)

// Name identifies a chat command.
type Name string

const (
	Help      Name = "help"
	Prices    Name = "prices"
	Info      Name = "info"
	Check     Name = "check"
	SellTF    Name = "selltf"
	BuyTF     Name = "buytf"
	Admin     Name = "admin"
	Profit    Name = "profit"
	Block     Name = "block"
	Unblock   Name = "unblock"
	Broadcast Name = "broadcast"
)

var aliases = map[string]Name{
	"price": Prices,
	"rate":  Prices,
	"rates": Prices,
}

var adminOnly = map[Name]bool{
	Admin:     true,
	Profit:    true,
	Block:     true,
	Unblock:   true,
	Broadcast: true,
}

var known = map[Name]bool{
	Help: true, Prices: true, Info: true, Check: true, SellTF: true, BuyTF: true,
	Admin: true, Profit: true, Block: true, Unblock: true, Broadcast: true,
}

// Command is one parsed chat command. Args keeps the original spacing and
// case of everything after the command word.
type Command struct {
	Name Name
	Args string
}

// Parse reads text as a command. It reports false for plain chatter and for
// unknown commands.
func Parse(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "!") {
		return Command{}, false
	}

	word, rest, _ := strings.Cut(text[1:], " ")
	word = strings.ToLower(word)

	name := Name(word)
	if alias, ok := aliases[word]; ok {
		name = alias
	}
	if !known[name] {
		return Command{}, false
	}
	return Command{Name: name, Args: strings.TrimSpace(rest)}, true
}

// AdminOnly reports whether the command is restricted to owners.
func (c Command) AdminOnly() bool {
	return adminOnly[c.Name]
}

// Quantity reads Args as a key count. Anything that is not a positive
// integer yields 0, which the trade flows answer with their usage text.
func (c Command) Quantity() int {
	field, _, _ := strings.Cut(c.Args, " ")
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
