// Package bridge talks to the session bridge: the HTTP API for inventories,
// offers and community actions, and the websocket event stream.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/circuitbreaker"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/httpclient"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/ratelimit"
)

const (
	tracerName     = "platform.bridge"
	defaultTimeout = 15 * time.Second
	defaultRPM     = 120
)

var _ app.Platform = (*Client)(nil)

// Config holds connection settings for the bridge HTTP API.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	// HTTPClient overrides the transport, for tests.
	HTTPClient *http.Client
}

// Client implements app.Platform over the bridge HTTP API. Every call passes
// through the rate limiter and a circuit breaker that only counts remote
// faults.
type Client struct {
	http    *httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a bridge client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperror.Validation(apperror.CodeRequiredField, "bridge: base url")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRPM
	}

	tracer := otel.Tracer(tracerName)

	opts := []httpclient.Option{
		httpclient.WithName("bridge"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithTimeout(timeout),
		httpclient.WithLimiter(ratelimit.New(rpm)),
		httpclient.WithTracer(tracer),
		httpclient.WithRedactedHeaders("Authorization"),
		httpclient.WithHeaders(map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
		}),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, httpclient.WithHTTPClient(cfg.HTTPClient))
	}

	hc, err := httpclient.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("bridge: http client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("bridge")
	cbCfg.IsSuccessful = func(err error) bool {
		return err == nil || isClientStatus(err)
	}

	return &Client{
		http:    hc,
		breaker: circuitbreaker.New[*httpclient.Response](cbCfg),
		logger:  log,
		tracer:  tracer,
	}, nil
}

func isClientStatus(err error) bool {
	var se *httpclient.StatusError
	return errors.As(err, &se) && !se.Temporary()
}

// call runs one request through the breaker and maps failures to
// application errors carrying the HTTP status.
func (c *Client) call(ctx context.Context, code apperror.Code, endpoint string, send func(r *httpclient.Request) (*httpclient.Response, error)) error {
	_, err := c.breaker.Execute(func() (*httpclient.Response, error) {
		return send(c.http.NewRequest().SetLabel("endpoint", endpoint))
	})
	if err == nil {
		return nil
	}
	return translate(err, code, endpoint)
}

func translate(err error, code apperror.Code, endpoint string) error {
	if apperror.IsAppError(err) {
		return err
	}

	var se *httpclient.StatusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden {
			code = apperror.CodePlatformUnauthorized
		}
		return apperror.New(code,
			apperror.WithContext(endpoint),
			apperror.WithCause(err),
			apperror.WithStatusCode(se.StatusCode),
		)
	}

	return apperror.External(code, endpoint, err)
}

type inventoryResponse struct {
	Items []domain.Item `json:"items"`
}

func (c *Client) FetchInventory(ctx context.Context, owner domain.SteamID, ns domain.Namespace, tradableOnly bool) ([]domain.Item, error) {
	ctx, span := c.tracer.Start(ctx, "bridge.fetch_inventory",
		trace.WithAttributes(
			attribute.String("owner", owner.String()),
			attribute.String("namespace", ns.String()),
		),
	)
	defer span.End()

	var res inventoryResponse
	path := fmt.Sprintf("/inventory/%s/%d/%d", url.PathEscape(owner.String()), ns.AppID, ns.ContextID)
	err := c.call(ctx, apperror.CodeInventoryFetchFailed, "inventory", func(r *httpclient.Request) (*httpclient.Response, error) {
		if tradableOnly {
			r.SetQueryParam("tradable_only", "true")
		}
		return r.SetResult(&res).Get(ctx, path)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for i := range res.Items {
		if res.Items[i].AppID == 0 && res.Items[i].ContextID == 0 {
			res.Items[i].AppID = ns.AppID
			res.Items[i].ContextID = ns.ContextID
		}
	}
	span.SetAttributes(attribute.Int("items", len(res.Items)))

	c.logger.Debug(ctx, "fetched inventory",
		"owner", owner,
		"namespace", ns.String(),
		"items", len(res.Items))

	return res.Items, nil
}

type offerResponse struct {
	ID    string            `json:"id"`
	State domain.OfferState `json:"state"`
}

func (c *Client) SubmitOffer(ctx context.Context, draft domain.OfferDraft) (domain.Offer, error) {
	ctx, span := c.tracer.Start(ctx, "bridge.submit_offer",
		trace.WithAttributes(
			attribute.String("partner", draft.Partner.String()),
			attribute.Int("give", len(draft.ItemsToGive)),
			attribute.Int("receive", len(draft.ItemsToReceive)),
		),
	)
	defer span.End()

	var res offerResponse
	err := c.call(ctx, apperror.CodeOfferSubmitFailed, "offers", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(draft).SetResult(&res).Post(ctx, "/offers")
	})
	if err != nil {
		span.RecordError(err)
		return domain.Offer{}, err
	}
	if res.ID == "" {
		return domain.Offer{}, apperror.External(apperror.CodeOfferSubmitFailed, "offers: empty offer id", nil)
	}

	span.SetAttributes(attribute.String("offer_id", res.ID))
	return domain.Offer{
		ID:             res.ID,
		Partner:        draft.Partner,
		ItemsToGive:    draft.ItemsToGive,
		ItemsToReceive: draft.ItemsToReceive,
		Message:        draft.Message,
		State:          res.State,
		IsOurOffer:     true,
	}, nil
}

func (c *Client) AcceptOffer(ctx context.Context, offerID string) error {
	return c.call(ctx, apperror.CodeOfferAcceptFailed, "offers.accept", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.Post(ctx, "/offers/"+url.PathEscape(offerID)+"/accept")
	})
}

func (c *Client) DeclineOffer(ctx context.Context, offerID string) error {
	return c.call(ctx, apperror.CodeOfferDeclineFailed, "offers.decline", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.Post(ctx, "/offers/"+url.PathEscape(offerID)+"/decline")
	})
}

func (c *Client) EscrowStatus(ctx context.Context, partner domain.SteamID) (domain.Escrow, error) {
	var res domain.Escrow
	err := c.call(ctx, apperror.CodeEscrowCheckFailed, "offers.escrow", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(map[string]string{"partner": partner.String()}).SetResult(&res).Post(ctx, "/offers/escrow")
	})
	return res, err
}

func (c *Client) SendMessage(ctx context.Context, to domain.SteamID, text string) error {
	return c.call(ctx, apperror.CodePlatformRequestFailed, "chat", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(map[string]string{"to": to.String(), "text": text}).Post(ctx, "/chat/messages")
	})
}

func (c *Client) PostComment(ctx context.Context, profile domain.SteamID, text string) error {
	return c.call(ctx, apperror.CodePlatformRequestFailed, "comments", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(map[string]string{"text": text}).Post(ctx, "/profiles/"+url.PathEscape(profile.String())+"/comments")
	})
}

type friendsResponse struct {
	Friends []domain.Friend `json:"friends"`
}

func (c *Client) Friends(ctx context.Context) ([]domain.Friend, error) {
	var res friendsResponse
	err := c.call(ctx, apperror.CodePlatformRequestFailed, "friends", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetResult(&res).Get(ctx, "/friends")
	})
	if err != nil {
		return nil, err
	}
	return res.Friends, nil
}

func (c *Client) AddFriend(ctx context.Context, id domain.SteamID) error {
	return c.call(ctx, apperror.CodePlatformRequestFailed, "friends.add", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.Post(ctx, "/friends/"+url.PathEscape(id.String()))
	})
}

func (c *Client) RemoveFriend(ctx context.Context, id domain.SteamID) error {
	return c.call(ctx, apperror.CodePlatformRequestFailed, "friends.remove", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.Delete(ctx, "/friends/"+url.PathEscape(id.String()))
	})
}

func (c *Client) InviteToGroup(ctx context.Context, groupID string, id domain.SteamID) error {
	return c.call(ctx, apperror.CodePlatformRequestFailed, "groups.invite", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(map[string]string{"steam_id": id.String()}).Post(ctx, "/groups/"+url.PathEscape(groupID)+"/invites")
	})
}

func (c *Client) SetStatus(ctx context.Context, text string) error {
	return c.call(ctx, apperror.CodePlatformRequestFailed, "status", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(map[string]string{"text": text}).Post(ctx, "/status")
	})
}

type grindRequest struct {
	AppID     int    `json:"appid"`
	ContextID int    `json:"contextid"`
	AssetID   string `json:"assetid"`
}

type grindResponse struct {
	GemsReceived int64 `json:"gems_received"`
}

func (c *Client) GrindIntoGems(ctx context.Context, item domain.Item) (int64, error) {
	var res grindResponse
	err := c.call(ctx, apperror.CodePlatformRequestFailed, "inventory.grind", func(r *httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(grindRequest{
			AppID:     item.AppID,
			ContextID: item.ContextID,
			AssetID:   item.AssetID,
		}).SetResult(&res).Post(ctx, "/inventory/grind")
	})
	return res.GemsReceived, err
}

// BreakerState reports the circuit breaker state for health checks.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
