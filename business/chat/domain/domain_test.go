package domain

import (
	"strings"
	"testing"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	trading "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"
)

var rates = trading.Rates{KeyBuy: 4200, KeySell: 3900, CollectibleBuy: 10, CollectibleSell: 25}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantOK   bool
		wantName Name
		wantArgs string
	}{
		{name: "plain_text", text: "hello there", wantOK: false},
		{name: "unknown_command", text: "!selltff 3", wantOK: false},
		{name: "bare_bang", text: "!", wantOK: false},
		{name: "help", text: "!help", wantOK: true, wantName: Help},
		{name: "mixed_case", text: "!SellTF 5", wantOK: true, wantName: SellTF, wantArgs: "5"},
		{name: "alias_rate", text: "!rate", wantOK: true, wantName: Prices},
		{name: "alias_price_upper", text: "!PRICE", wantOK: true, wantName: Prices},
		{name: "surrounding_space", text: "  !buytf   2  ", wantOK: true, wantName: BuyTF, wantArgs: "2"},
		{name: "broadcast_keeps_case", text: "!Broadcast Hello World", wantOK: true, wantName: Broadcast, wantArgs: "Hello World"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := Parse(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if cmd.Name != tt.wantName || cmd.Args != tt.wantArgs {
				t.Errorf("got %+v, want %s %q", cmd, tt.wantName, tt.wantArgs)
			}
		})
	}
}

func TestCommand_AdminOnly(t *testing.T) {
	for _, n := range []Name{Admin, Profit, Block, Unblock, Broadcast} {
		if !(Command{Name: n}).AdminOnly() {
			t.Errorf("%s should be admin only", n)
		}
	}
	for _, n := range []Name{Help, Prices, Info, Check, SellTF, BuyTF} {
		if (Command{Name: n}).AdminOnly() {
			t.Errorf("%s should be public", n)
		}
	}
}

func TestCommand_Quantity(t *testing.T) {
	tests := []struct {
		args string
		want int
	}{
		{"5", 5},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
		{"2.5", 0},
		{"7 please", 7},
	}
	for _, tt := range tests {
		t.Run("args_"+tt.args, func(t *testing.T) {
			if got := (Command{Name: SellTF, Args: tt.args}).Quantity(); got != tt.want {
				t.Errorf("Quantity(%q) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestCheckText(t *testing.T) {
	limits := trading.Limits{MaxBuy: 50, MaxSell: 50}
	got := CheckText(rates, limits, 2, 9000)
	for _, want := range []string{
		"2 TF2 Keys",
		"I can give you 7800 Gems for them (Use !SellTF 2)",
		"9000 Gems",
		"I can give you 2 TF2 Keys for Your 8400 Gems (Use !BuyTF 2)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	empty := CheckText(rates, limits, 0, 100)
	if strings.Contains(empty, "Use !") {
		t.Errorf("no suggestion expected:\n%s", empty)
	}

	capped := CheckText(rates, limits, 80, 4200*80)
	for _, want := range []string{
		"80 TF2 Keys",
		"I can give you 195000 Gems for them (Use !SellTF 50)",
		"I can give you 50 TF2 Keys for Your 210000 Gems (Use !BuyTF 50)",
	} {
		if !strings.Contains(capped, want) {
			t.Errorf("missing %q in:\n%s", want, capped)
		}
	}

	disabled := CheckText(rates, trading.Limits{}, 2, 9000)
	if strings.Contains(disabled, "Use !") {
		t.Errorf("disabled directions must not be suggested:\n%s", disabled)
	}
}

func TestPricesText(t *testing.T) {
	got := PricesText(rates)
	for _, want := range []string{"Our 3900 Gems", "Your 4200 Gems", "emotes for 10 Gems", "emotes for 25 Gems"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestProfitText(t *testing.T) {
	l := ledger.NewLedger()
	l[ledger.KeySell] = ledger.Counters{Lifetime: 6000, Weekly: 600, Daily: 300}
	l[ledger.CollectibleBuy] = ledger.Counters{Lifetime: 300, Weekly: 30, Daily: 0}

	got := ProfitText(l, rates, 12000, 4)
	for _, want := range []string{
		"- key-sell: lifetime 6000 | weekly 600 | daily 300",
		"- collectible-buy: lifetime 300 | weekly 30 | daily 0",
		"- total: lifetime 6300 | weekly 630 | daily 300",
		"~1.50 TF2 Keys lifetime",
		"- Gems: 12000",
		"- TF2 Keys: 4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}
