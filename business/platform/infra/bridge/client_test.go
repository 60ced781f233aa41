package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

const testKey = "secret-key"

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelDebug, "test", nil)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: testKey, RequestsPerMinute: 6000}, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}, testLogger()); err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_FetchInventory(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("tradable_only")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"assetid":"1","name":"Gems","amount":500},{"assetid":"2","appid":753,"contextid":6,"name":"Sunset","type":"Profile Background"}]}`))
	})

	items, err := c.FetchInventory(context.Background(), "76561198000000001", domain.GemNamespace, true)
	if err != nil {
		t.Fatalf("FetchInventory: %v", err)
	}

	if gotPath != "/inventory/76561198000000001/753/6" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "true" {
		t.Errorf("tradable_only = %q", gotQuery)
	}
	if gotAuth != "Bearer "+testKey {
		t.Errorf("authorization = %q", gotAuth)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	if !items[0].IsGemStack() || items[0].Amount != 500 {
		t.Errorf("first item = %+v", items[0])
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantCode   apperror.Code
		wantClient bool
	}{
		{name: "bad_request_is_client_error", status: http.StatusBadRequest, wantCode: apperror.CodeOfferSubmitFailed, wantClient: true},
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: apperror.CodePlatformUnauthorized, wantClient: true},
		{name: "too_many_requests_is_retryable", status: http.StatusTooManyRequests, wantCode: apperror.CodeOfferSubmitFailed, wantClient: false},
		{name: "server_error_is_retryable", status: http.StatusBadGateway, wantCode: apperror.CodeOfferSubmitFailed, wantClient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			_, err := c.SubmitOffer(context.Background(), domain.OfferDraft{Partner: "76561198000000001"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperror.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
			if got := apperror.IsClientError(err); got != tt.wantClient {
				t.Errorf("IsClientError = %v, want %v", got, tt.wantClient)
			}
		})
	}
}

func TestClient_SubmitOffer(t *testing.T) {
	var got domain.OfferDraft
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/offers" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"id":"4242","state":"active"}`))
	})

	draft := domain.OfferDraft{
		Partner:        "76561198000000001",
		ItemsToGive:    []domain.Item{{AssetID: "g", Name: "Gems", Amount: 3900}},
		ItemsToReceive: []domain.Item{{AssetID: "k"}},
		Message:        "Buying 1 TF2 Keys for 3900 Gems. Thanks for trading!",
	}
	offer, err := c.SubmitOffer(context.Background(), draft)
	if err != nil {
		t.Fatalf("SubmitOffer: %v", err)
	}

	if offer.ID != "4242" || offer.State != domain.OfferActive || !offer.IsOurOffer {
		t.Errorf("offer = %+v", offer)
	}
	if got.Message != draft.Message || len(got.ItemsToGive) != 1 || got.ItemsToGive[0].Amount != 3900 {
		t.Errorf("server saw %+v", got)
	}
}

func TestClient_Routes(t *testing.T) {
	type seen struct {
		method, path string
		body         map[string]any
	}
	var (
		mu   sync.Mutex
		hits []seen
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		hits = append(hits, seen{r.Method, r.URL.Path, body})
		mu.Unlock()

		switch r.URL.Path {
		case "/offers/escrow":
			w.Write([]byte(`{"self_days":0,"partner_days":7}`))
		case "/friends":
			w.Write([]byte(`{"friends":[{"steam_id":"76561198000000002","relationship":2}]}`))
		case "/inventory/grind":
			w.Write([]byte(`{"gems_received":80}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	ctx := context.Background()
	id := domain.SteamID("76561198000000002")

	escrow, err := c.EscrowStatus(ctx, id)
	if err != nil || !escrow.Held() || escrow.PartnerDays != 7 {
		t.Errorf("escrow = %+v, %v", escrow, err)
	}
	friends, err := c.Friends(ctx)
	if err != nil || len(friends) != 1 || friends[0].Relationship != domain.RelationshipRequestRecipient {
		t.Errorf("friends = %+v, %v", friends, err)
	}
	gems, err := c.GrindIntoGems(ctx, domain.Item{AssetID: "9", AppID: 753, ContextID: 6})
	if err != nil || gems != 80 {
		t.Errorf("grind = %d, %v", gems, err)
	}

	calls := []error{
		c.AcceptOffer(ctx, "11"),
		c.DeclineOffer(ctx, "12"),
		c.SendMessage(ctx, id, "hello"),
		c.PostComment(ctx, id, "+rep"),
		c.AddFriend(ctx, id),
		c.RemoveFriend(ctx, id),
		c.InviteToGroup(ctx, "103582791400000000", id),
		c.SetStatus(ctx, "5000 Gems > Buy/Sell Gems (!prices)"),
	}
	for i, err := range calls {
		if err != nil {
			t.Errorf("call %d: %v", i, err)
		}
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/offers/escrow"},
		{http.MethodGet, "/friends"},
		{http.MethodPost, "/inventory/grind"},
		{http.MethodPost, "/offers/11/accept"},
		{http.MethodPost, "/offers/12/decline"},
		{http.MethodPost, "/chat/messages"},
		{http.MethodPost, "/profiles/76561198000000002/comments"},
		{http.MethodPost, "/friends/76561198000000002"},
		{http.MethodDelete, "/friends/76561198000000002"},
		{http.MethodPost, "/groups/103582791400000000/invites"},
		{http.MethodPost, "/status"},
	}

	mu.Lock()
	defer mu.Unlock()
	if len(hits) != len(want) {
		t.Fatalf("hits = %d, want %d", len(hits), len(want))
	}
	for i, w := range want {
		if hits[i].method != w.method || hits[i].path != w.path {
			t.Errorf("hit %d = %s %s, want %s %s", i, hits[i].method, hits[i].path, w.method, w.path)
		}
	}
	if hits[5].body["to"] != "76561198000000002" || hits[5].body["text"] != "hello" {
		t.Errorf("chat body = %v", hits[5].body)
	}
	if hits[2].body["assetid"] != "9" {
		t.Errorf("grind body = %v", hits[2].body)
	}
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown offer", http.StatusNotFound)
	})

	for i := 0; i < 10; i++ {
		_ = c.AcceptOffer(context.Background(), "missing")
	}
	if state := c.BreakerState(); state != "closed" {
		t.Errorf("breaker = %s, want closed", state)
	}
}

func TestEvents_DeliversFrames(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		conn.Write(r.Context(), websocket.MessageText, []byte(`{"type":"chat_message","data":{"from":"1","text":"!help"}}`))
		<-r.Context().Done()
	}))
	defer srv.Close()

	ev, err := NewEvents(EventsConfig{URL: "ws" + srv.URL[len("http"):], APIKey: testKey}, testLogger())
	if err != nil {
		t.Fatalf("NewEvents: %v", err)
	}
	defer ev.Close()

	frames := make(chan []byte, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ev.Start(ctx, func(_ context.Context, raw []byte) { frames <- raw }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !ev.Connected() {
		t.Error("expected connected")
	}

	select {
	case raw := <-frames:
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &env); err != nil || env.Type != "chat_message" {
			t.Errorf("frame = %s", raw)
		}
	case <-ctx.Done():
		t.Fatal("no frame received")
	}

	if got := <-auth; got != "Bearer "+testKey {
		t.Errorf("authorization = %q", got)
	}
}
