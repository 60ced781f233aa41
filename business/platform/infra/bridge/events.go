package bridge

import (
	"context"
	"net/http"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/app"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/wsconn"
)

var _ app.EventStream = (*Events)(nil)

// EventsConfig holds event stream settings.
type EventsConfig struct {
	URL            string
	APIKey         string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int
}

// Events delivers bridge envelopes from the websocket stream.
type Events struct {
	ws       *wsconn.Client
	logger   logger.LoggerInterface
	onChange func(connected bool)
}

// NewEvents creates an event stream. It does not dial until Start.
func NewEvents(cfg EventsConfig, log logger.LoggerInterface) (*Events, error) {
	wsCfg := wsconn.DefaultConfig(cfg.URL, "bridge-events")
	wsCfg.Header = http.Header{"Authorization": []string{"Bearer " + cfg.APIKey}}
	if cfg.InitialBackoff > 0 {
		wsCfg.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		wsCfg.MaxBackoff = cfg.MaxBackoff
	}
	wsCfg.MaxReconnects = cfg.MaxReconnects

	ws, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, err
	}

	return &Events{ws: ws, logger: log}, nil
}

// Start connects and feeds every frame to sink.
func (e *Events) Start(ctx context.Context, sink func(ctx context.Context, raw []byte)) error {
	e.ws.OnMessage(sink)
	e.ws.OnStateChange(func(state wsconn.State, err error) {
		if e.onChange != nil && (state == wsconn.StateConnected || state == wsconn.StateDisconnected || state == wsconn.StateReconnecting) {
			e.onChange(state == wsconn.StateConnected)
		}
		if err != nil {
			e.logger.Warn(ctx, "event stream state changed", "state", state, "error", err)
			return
		}
		e.logger.Info(ctx, "event stream state changed", "state", state)
	})
	return e.ws.Connect(ctx)
}

// OnConnectionChange registers fn for connect and disconnect transitions.
// Call it before Start.
func (e *Events) OnConnectionChange(fn func(connected bool)) {
	e.onChange = fn
}

// Connected reports whether the stream is live.
func (e *Events) Connected() bool {
	return e.ws.IsConnected()
}

// Close stops the stream.
func (e *Events) Close() error {
	return e.ws.Close()
}
