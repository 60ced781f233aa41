package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

type correlationKey struct{}

// WithCorrelationID returns ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id attached to ctx by the router, if any.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

type envelope struct {
	Type domain.EventType `json:"type"`
	Data json.RawMessage  `json:"data"`
}

// Router decodes bridge envelopes and hands each event to its handlers, one
// goroutine per event so a slow trade never blocks chat.
type Router struct {
	log logger.LoggerInterface

	mu            sync.RWMutex
	chat          []func(context.Context, domain.ChatMessage)
	newOffer      []func(context.Context, domain.NewOffer)
	offerChanged  []func(context.Context, domain.OfferChanged)
	relationships []func(context.Context, domain.FriendRelationship)
	connection    []func(connected bool)

	wg sync.WaitGroup
}

// NewRouter creates an empty Router.
func NewRouter(log logger.LoggerInterface) *Router {
	return &Router{log: log}
}

func (r *Router) OnChatMessage(h func(context.Context, domain.ChatMessage)) {
	r.mu.Lock()
	r.chat = append(r.chat, h)
	r.mu.Unlock()
}

func (r *Router) OnNewOffer(h func(context.Context, domain.NewOffer)) {
	r.mu.Lock()
	r.newOffer = append(r.newOffer, h)
	r.mu.Unlock()
}

func (r *Router) OnOfferChanged(h func(context.Context, domain.OfferChanged)) {
	r.mu.Lock()
	r.offerChanged = append(r.offerChanged, h)
	r.mu.Unlock()
}

func (r *Router) OnFriendRelationship(h func(context.Context, domain.FriendRelationship)) {
	r.mu.Lock()
	r.relationships = append(r.relationships, h)
	r.mu.Unlock()
}

// OnConnectionChange registers an observer of the event stream's liveness.
func (r *Router) OnConnectionChange(h func(connected bool)) {
	r.mu.Lock()
	r.connection = append(r.connection, h)
	r.mu.Unlock()
}

// SetConnected notifies connection observers synchronously.
func (r *Router) SetConnected(connected bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.connection {
		h(connected)
	}
}

// Dispatch decodes one envelope and fans it out. Unknown types and malformed
// payloads are logged and dropped.
func (r *Router) Dispatch(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.log.Warn(ctx, "dropping malformed event", "error", err)
		return
	}

	ctx = WithCorrelationID(ctx, uuid.NewString())

	r.mu.RLock()
	defer r.mu.RUnlock()

	switch env.Type {
	case domain.EventChatMessage:
		dispatch(r, ctx, env, r.chat)
	case domain.EventNewOffer:
		dispatch(r, ctx, env, r.newOffer)
	case domain.EventOfferChanged:
		dispatch(r, ctx, env, r.offerChanged)
	case domain.EventFriendRelationship:
		dispatch(r, ctx, env, r.relationships)
	default:
		r.log.Debug(ctx, "ignoring event", "type", env.Type)
	}
}

func dispatch[E any](r *Router, ctx context.Context, env envelope, handlers []func(context.Context, E)) {
	var ev E
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		r.log.Warn(ctx, "dropping undecodable event", "type", env.Type, "error", err)
		return
	}

	for _, h := range handlers {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			defer func() {
				if p := recover(); p != nil {
					r.log.Error(ctx, "event handler panicked", "type", env.Type, "panic", p)
				}
			}()
			h(ctx, ev)
		}()
	}
}

// Wait blocks until every dispatched handler has returned.
func (r *Router) Wait() {
	r.wg.Wait()
}
