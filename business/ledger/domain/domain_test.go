package domain

import (
	"testing"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
)

func TestCounters_AddAndReset(t *testing.T) {
	var c Counters
	c.Add(300)
	c.Add(30)

	if c.Lifetime != 330 || c.Weekly != 330 || c.Daily != 330 {
		t.Fatalf("after add = %+v", c)
	}

	c.Reset(Daily)
	if c.Daily != 0 || c.Weekly != 330 || c.Lifetime != 330 {
		t.Errorf("after daily reset = %+v", c)
	}

	c.Reset(Weekly)
	if c.Weekly != 0 || c.Lifetime != 330 {
		t.Errorf("after weekly reset = %+v", c)
	}
}

func TestLedger_Normalize(t *testing.T) {
	l := Ledger{
		KeySell:           {Lifetime: 5},
		Category("bogus"): {Lifetime: 99},
	}.Normalize()

	if len(l) != 4 {
		t.Fatalf("categories = %d, want 4", len(l))
	}
	if l[KeySell].Lifetime != 5 {
		t.Errorf("key-sell = %+v", l[KeySell])
	}
	if _, ok := l[Category("bogus")]; ok {
		t.Error("unknown category kept")
	}
	if l.Total(Lifetime) != 5 {
		t.Errorf("total = %d", l.Total(Lifetime))
	}
}

func TestLedger_CloneIsIndependent(t *testing.T) {
	l := NewLedger()
	cp := l.Clone()

	c := cp[KeyBuy]
	c.Add(10)
	cp[KeyBuy] = c

	if l[KeyBuy].Lifetime != 0 {
		t.Error("clone shares storage")
	}
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		cat     Category
		win     Window
		wantErr bool
	}{
		{name: "valid", cat: KeyBuy, win: Daily},
		{name: "bad_category", cat: "gems", win: Daily, wantErr: true},
		{name: "bad_window", cat: KeyBuy, win: "monthly", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateEntry(tt.cat, tt.win); (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlockList_IDsSorted(t *testing.T) {
	b := NewBlockList([]platform.SteamID{"76561198000000003", "76561198000000001"})
	ids := b.IDs()
	if len(ids) != 2 || ids[0] != "76561198000000001" {
		t.Errorf("ids = %v", ids)
	}
	if !b.Has("76561198000000003") || b.Has("76561198000000002") {
		t.Error("membership wrong")
	}
}
