package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/chat/domain"

	ledger "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	trading "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

const (
	botID      = platform.SteamID("76561198000000000")
	adminID    = platform.SteamID("76561198000000001")
	userID     = platform.SteamID("76561198000000002")
	otherID    = platform.SteamID("76561198000000003")
	strangerID = platform.SteamID("76561198000000004")
)

var (
	testRates  = trading.Rates{KeyBuy: 4200, KeySell: 3900, CollectibleBuy: 10, CollectibleSell: 25}
	testLimits = trading.Limits{MaxBuy: 50, MaxSell: 50}
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelDebug, "test", nil)
}

type notifier struct {
	mu   sync.Mutex
	sent map[platform.SteamID][]string
}

func (n *notifier) Send(_ context.Context, to platform.SteamID, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[platform.SteamID][]string)
	}
	n.sent[to] = append(n.sent[to], text)
}

func (n *notifier) all(to platform.SteamID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent[to]...)
}

func (n *notifier) last(to platform.SteamID) string {
	msgs := n.all(to)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (n *notifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.sent {
		c += len(m)
	}
	return c
}

type friendList struct {
	mu       sync.Mutex
	friends  []platform.Friend
	listErr  error
	added    []platform.SteamID
	removed  []platform.SteamID
	invited  []platform.SteamID
	addFails map[platform.SteamID]bool
}

func (f *friendList) Friends(context.Context) ([]platform.Friend, error) {
	return f.friends, f.listErr
}

func (f *friendList) AddFriend(_ context.Context, id platform.SteamID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addFails[id] {
		return errors.New("add failed")
	}
	f.added = append(f.added, id)
	return nil
}

func (f *friendList) RemoveFriend(_ context.Context, id platform.SteamID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func (f *friendList) InviteToGroup(_ context.Context, _ string, id platform.SteamID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invited = append(f.invited, id)
	return nil
}

type trader struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (t *trader) SellKeys(_ context.Context, p platform.SteamID, n int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "sell")
	return "sell " + p.String() + " " + string(rune('0'+n)), t.err
}

func (t *trader) BuyKeys(_ context.Context, p platform.SteamID, n int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "buy")
	return "buy " + p.String() + " " + string(rune('0'+n)), t.err
}

type holdings struct {
	keys map[platform.SteamID]int
	gems map[platform.SteamID]int64
	err  error
}

func (h holdings) GemBalance(_ context.Context, p platform.SteamID) (int64, error) {
	if h.err != nil {
		return 0, h.err
	}
	return h.gems[p], nil
}

func (h holdings) QualifyingItems(_ context.Context, p platform.SteamID, _ platform.Namespace, keep func(platform.Item) bool) ([]platform.Item, error) {
	if h.err != nil {
		return nil, h.err
	}
	var out []platform.Item
	for i := 0; i < h.keys[p]; i++ {
		it := platform.Item{AssetID: "k", Name: "key"}
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

type blockList struct {
	mu      sync.Mutex
	ids     map[platform.SteamID]bool
	saveErr error
}

func (b *blockList) IsBlocked(id platform.SteamID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ids[id]
}

func (b *blockList) Block(_ context.Context, id platform.SteamID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == adminID {
		return apperror.Rule(apperror.CodeAdminProtected, id.String())
	}
	if b.ids[id] {
		return apperror.Rule(apperror.CodeAlreadyBlocked, id.String())
	}
	b.ids[id] = true
	return b.saveErr
}

func (b *blockList) Unblock(_ context.Context, id platform.SteamID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ids[id] {
		return apperror.NotFound(apperror.CodeNotBlocked, id.String())
	}
	delete(b.ids, id)
	return b.saveErr
}

type profit ledger.Ledger

func (p profit) Snapshot() ledger.Ledger { return ledger.Ledger(p).Clone() }

type fixture struct {
	notifier   *notifier
	friends    *friendList
	trader     *trader
	blocks     *blockList
	dispatcher *Dispatcher
	spam       *SpamFilter
}

func newFixture(h holdings) *fixture {
	n := &notifier{}
	fl := &friendList{}
	tr := &trader{}
	bl := &blockList{ids: map[platform.SteamID]bool{}}
	log := testLogger()
	spam := NewSpamFilter(3, time.Second)

	l := ledger.NewLedger()
	l[ledger.KeySell] = ledger.Counters{Lifetime: 8400, Weekly: 4200, Daily: 300}

	d := NewDispatcher(Deps{
		Notifier:    n,
		Friends:     fl,
		Trader:      tr,
		Holdings:    h,
		Blocks:      bl,
		Profit:      profit(l),
		Broadcaster: NewBroadcaster(fl, n, time.Millisecond, log),
		Spam:        spam,
		IsKey:       func(platform.Item) bool { return true },
		Log:         log,
	}, Settings{
		Bot:     botID,
		Owners:  []platform.SteamID{adminID},
		Rates:   testRates,
		Limits:  testLimits,
		Texts:   Texts{Help: "help text", AdminHelp: "admin text", Info: "info text"},
		IsAdmin: func(id string) bool { return id == adminID.String() },
	})

	return &fixture{notifier: n, friends: fl, trader: tr, blocks: bl, dispatcher: d, spam: spam}
}

func (f *fixture) say(from platform.SteamID, text string) {
	f.dispatcher.HandleChat(context.Background(), platform.ChatMessage{From: from, Text: text})
}

func TestDispatcher_StaticReplies(t *testing.T) {
	tests := []struct {
		name string
		from platform.SteamID
		text string
		want string
	}{
		{name: "help", from: userID, text: "!help", want: "help text"},
		{name: "info", from: userID, text: "!INFO", want: "info text"},
		{name: "prices_alias", from: userID, text: "!rates", want: domain.PricesText(testRates)},
		{name: "admin_help", from: adminID, text: "!admin", want: "admin text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(holdings{})
			f.say(tt.from, tt.text)
			if got := f.notifier.last(tt.from); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatcher_Silence(t *testing.T) {
	tests := []struct {
		name  string
		from  platform.SteamID
		text  string
		setup func(f *fixture)
	}{
		{name: "unknown_command", from: userID, text: "!selltff 2"},
		{name: "plain_chatter", from: userID, text: "hi bot"},
		{name: "admin_command_from_user", from: userID, text: "!profit"},
		{
			name:  "blocked_sender",
			from:  otherID,
			text:  "!selltf 2",
			setup: func(f *fixture) { f.blocks.ids[otherID] = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(holdings{})
			if tt.setup != nil {
				tt.setup(f)
			}
			f.say(tt.from, tt.text)
			if n := f.notifier.total(); n != 0 {
				t.Errorf("sent %d messages, want none", n)
			}
			if len(f.trader.calls) != 0 {
				t.Errorf("trader called: %v", f.trader.calls)
			}
		})
	}
}

func TestDispatcher_KeyCommands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"!selltf 5", "sell " + userID.String() + " 5"},
		{"!BuyTF 3", "buy " + userID.String() + " 3"},
		{"!selltf", "sell " + userID.String() + " 0"},
		{"!buytf lots", "buy " + userID.String() + " 0"},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.text, " ", "_"), func(t *testing.T) {
			f := newFixture(holdings{})
			f.say(userID, tt.text)
			if got := f.notifier.last(userID); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatcher_KeyCommandErrorStillReplies(t *testing.T) {
	f := newFixture(holdings{})
	f.trader.err = apperror.Rule(apperror.CodeLimitExceeded, "keys")

	f.say(userID, "!selltf 9")

	if got := f.notifier.last(userID); got != "sell "+userID.String()+" 9" {
		t.Errorf("reply = %q", got)
	}
}

func TestDispatcher_Check(t *testing.T) {
	t.Run("concurrent_fetch", func(t *testing.T) {
		f := newFixture(holdings{
			keys: map[platform.SteamID]int{userID: 2},
			gems: map[platform.SteamID]int64{userID: 9000},
		})
		f.say(userID, "!check")
		if got, want := f.notifier.last(userID), domain.CheckText(testRates, testLimits, 2, 9000); got != want {
			t.Errorf("reply = %q, want %q", got, want)
		}
	})

	t.Run("fetch_error", func(t *testing.T) {
		f := newFixture(holdings{err: errors.New("inventory private")})
		f.say(userID, "!check")
		if got := f.notifier.last(userID); got != domain.ReplyCheckFailed {
			t.Errorf("reply = %q", got)
		}
	})
}

func TestDispatcher_Profit(t *testing.T) {
	f := newFixture(holdings{
		keys: map[platform.SteamID]int{botID: 7},
		gems: map[platform.SteamID]int64{botID: 50000},
	})

	f.say(adminID, "!profit")

	msgs := f.notifier.all(adminID)
	if len(msgs) != 2 || msgs[0] != domain.ReplyProfitLoading {
		t.Fatalf("messages = %q", msgs)
	}
	for _, want := range []string{"key-sell: lifetime 8400", "~2.00 TF2 Keys", "- Gems: 50000", "- TF2 Keys: 7"} {
		if !strings.Contains(msgs[1], want) {
			t.Errorf("missing %q in:\n%s", want, msgs[1])
		}
	}
}

func TestDispatcher_BlockCommands(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		setup   func(f *fixture)
		want    string
		blocked bool
	}{
		{name: "block", text: "!block " + otherID.String(), want: domain.BlockedReply(otherID.String()), blocked: true},
		{name: "block_admin", text: "!block " + adminID.String(), want: domain.ReplyAdminBlock},
		{name: "block_bad_id", text: "!block 123", want: domain.ReplyBlockUsage},
		{name: "block_missing_id", text: "!block", want: domain.ReplyBlockUsage},
		{
			name:    "block_twice",
			text:    "!block " + otherID.String(),
			setup:   func(f *fixture) { f.blocks.ids[otherID] = true },
			want:    domain.AlreadyBlockedReply(otherID.String()),
			blocked: true,
		},
		{
			name:    "block_unsaved",
			text:    "!block " + otherID.String(),
			setup:   func(f *fixture) { f.blocks.saveErr = apperror.New(apperror.CodeStorageError) },
			want:    domain.UnsavedReply(otherID.String()),
			blocked: true,
		},
		{
			name:  "unblock",
			text:  "!unblock " + otherID.String(),
			setup: func(f *fixture) { f.blocks.ids[otherID] = true },
			want:  domain.UnblockedReply(otherID.String()),
		},
		{name: "unblock_unknown", text: "!unblock " + otherID.String(), want: domain.NotBlockedReply(otherID.String())},
		{name: "unblock_bad_id", text: "!unblock abc", want: domain.ReplyUnblockUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(holdings{})
			if tt.setup != nil {
				tt.setup(f)
			}
			f.say(adminID, tt.text)
			if got := f.notifier.last(adminID); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
			if got := f.blocks.IsBlocked(otherID); got != tt.blocked {
				t.Errorf("blocked = %v, want %v", got, tt.blocked)
			}
		})
	}
}

func TestDispatcher_Broadcast(t *testing.T) {
	f := newFixture(holdings{})
	f.friends.friends = []platform.Friend{
		{SteamID: userID, Relationship: platform.RelationshipFriend},
		{SteamID: otherID, Relationship: platform.RelationshipFriend},
		{SteamID: strangerID, Relationship: platform.RelationshipRequestRecipient},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.dispatcher.deps.Broadcaster.Run(ctx)

	f.say(adminID, "!broadcast  ")
	if got := f.notifier.last(adminID); got != domain.ReplyBroadcastUsage {
		t.Fatalf("empty broadcast reply = %q", got)
	}

	f.say(adminID, "!Broadcast Sale today")
	if got := f.notifier.last(adminID); got != domain.BroadcastReply(2) {
		t.Fatalf("reply = %q", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.notifier.last(otherID) == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.notifier.last(userID) != "Sale today" || f.notifier.last(otherID) != "Sale today" {
		t.Errorf("delivered: user=%q other=%q", f.notifier.last(userID), f.notifier.last(otherID))
	}
	if len(f.notifier.all(strangerID)) != 0 {
		t.Error("pending request received the broadcast")
	}
}

func TestDispatcher_BroadcastFriendListError(t *testing.T) {
	f := newFixture(holdings{})
	f.friends.listErr = errors.New("bridge down")

	f.say(adminID, "!broadcast hi")

	if got := f.notifier.last(adminID); got != domain.ReplyBroadcastFailed {
		t.Errorf("reply = %q", got)
	}
}

func TestDispatcher_SpamRemoval(t *testing.T) {
	f := newFixture(holdings{})
	now := time.Unix(1000, 0)
	f.spam.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		f.say(userID, "!help")
	}
	if len(f.friends.removed) != 0 {
		t.Fatal("removed at the limit")
	}

	f.say(userID, "!help")
	f.say(userID, "!help")

	if len(f.friends.removed) != 1 || f.friends.removed[0] != userID {
		t.Fatalf("removed = %v", f.friends.removed)
	}
	msgs := f.notifier.all(userID)
	if msgs[3] != domain.ReplySpam {
		t.Errorf("4th reply = %q", msgs[3])
	}
	if got := f.notifier.last(adminID); got != domain.SpamNotice(userID.String()) {
		t.Errorf("owner notice = %q", got)
	}
}

func TestDispatcher_AdminsAreNotSpamChecked(t *testing.T) {
	f := newFixture(holdings{})
	f.spam.now = func() time.Time { return time.Unix(1000, 0) }

	for i := 0; i < 10; i++ {
		f.say(adminID, "!admin")
	}
	if len(f.friends.removed) != 0 {
		t.Errorf("admin removed: %v", f.friends.removed)
	}
}

func TestSpamFilter_WindowReset(t *testing.T) {
	f := NewSpamFilter(2, time.Second)
	now := time.Unix(1000, 0)
	f.now = func() time.Time { return now }

	hits := []bool{f.Hit(userID), f.Hit(userID), f.Hit(userID), f.Hit(userID)}
	want := []bool{false, false, true, false}
	for i := range hits {
		if hits[i] != want[i] {
			t.Errorf("hit %d = %v, want %v", i, hits[i], want[i])
		}
	}
	if f.Hit(otherID) {
		t.Error("counters are per party")
	}

	now = now.Add(time.Second)
	if f.Hit(userID) || f.Hit(userID) {
		t.Error("counter not reset after the window")
	}
	if !f.Hit(userID) {
		t.Error("limit not enforced in the new window")
	}
}

func TestSpamFilter_Disabled(t *testing.T) {
	f := NewSpamFilter(0, time.Second)
	for i := 0; i < 100; i++ {
		if f.Hit(userID) {
			t.Fatal("disabled filter fired")
		}
	}
}

func TestFriendHandler(t *testing.T) {
	t.Run("request_accepted", func(t *testing.T) {
		fl, n := &friendList{}, &notifier{}
		h := NewFriendHandler(fl, n, &blockList{ids: map[platform.SteamID]bool{}}, "group", "welcome!", testLogger())

		h.HandleRelationship(context.Background(), platform.FriendRelationship{SteamID: userID, Relationship: platform.RelationshipRequestRecipient})

		if len(fl.added) != 1 || fl.added[0] != userID {
			t.Errorf("added = %v", fl.added)
		}
		if n.total() != 0 {
			t.Error("welcome sent before friendship")
		}
	})

	t.Run("friend_invited_and_welcomed", func(t *testing.T) {
		fl, n := &friendList{}, &notifier{}
		h := NewFriendHandler(fl, n, &blockList{ids: map[platform.SteamID]bool{}}, "group", "welcome!", testLogger())

		h.HandleRelationship(context.Background(), platform.FriendRelationship{SteamID: userID, Relationship: platform.RelationshipFriend})

		if len(fl.invited) != 1 {
			t.Errorf("invited = %v", fl.invited)
		}
		if n.last(userID) != "welcome!" {
			t.Errorf("welcome = %q", n.last(userID))
		}
	})

	t.Run("no_group_configured", func(t *testing.T) {
		fl, n := &friendList{}, &notifier{}
		h := NewFriendHandler(fl, n, &blockList{ids: map[platform.SteamID]bool{}}, "", "welcome!", testLogger())

		h.HandleRelationship(context.Background(), platform.FriendRelationship{SteamID: userID, Relationship: platform.RelationshipFriend})

		if len(fl.invited) != 0 {
			t.Errorf("invited = %v", fl.invited)
		}
		if n.last(userID) != "welcome!" {
			t.Errorf("welcome = %q", n.last(userID))
		}
	})

	t.Run("blocked_party_ignored", func(t *testing.T) {
		fl, n := &friendList{}, &notifier{}
		h := NewFriendHandler(fl, n, &blockList{ids: map[platform.SteamID]bool{userID: true}}, "group", "welcome!", testLogger())

		h.HandleRelationship(context.Background(), platform.FriendRelationship{SteamID: userID, Relationship: platform.RelationshipRequestRecipient})

		if len(fl.added) != 0 {
			t.Errorf("added = %v", fl.added)
		}
	})
}

func TestFriendHandler_AcceptPending(t *testing.T) {
	fl := &friendList{
		friends: []platform.Friend{
			{SteamID: userID, Relationship: platform.RelationshipRequestRecipient},
			{SteamID: otherID, Relationship: platform.RelationshipFriend},
			{SteamID: strangerID, Relationship: platform.RelationshipRequestRecipient},
			{SteamID: botID, Relationship: platform.RelationshipRequestRecipient},
		},
		addFails: map[platform.SteamID]bool{strangerID: true},
	}
	h := NewFriendHandler(fl, &notifier{}, &blockList{ids: map[platform.SteamID]bool{botID: true}}, "", "", testLogger())

	n, err := h.AcceptPending(context.Background())
	if err != nil {
		t.Fatalf("AcceptPending: %v", err)
	}
	if n != 1 || len(fl.added) != 1 || fl.added[0] != userID {
		t.Errorf("accepted %d, added = %v", n, fl.added)
	}
}
