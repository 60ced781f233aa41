// Package platform implements the platform bounded context: the session
// bridge client, its retry policies and the inbound event router.
package platform

import (
	"context"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/app"
	platformDI "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/infra/bridge"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/config"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/di"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/monolith"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/retry"
)

const eventRetryInterval = 5 * time.Second

// Module implements the platform bounded context.
type Module struct{}

// RegisterServices registers all platform services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, platformDI.Bridge, func(sr di.ServiceRegistry) *bridge.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := bridge.NewClient(bridge.Config{
			BaseURL:           cfg.Platform.BaseURL,
			APIKey:            cfg.Platform.APIKey,
			Timeout:           cfg.Platform.RequestTimeout,
			RequestsPerMinute: cfg.Platform.RequestsPerMinute,
		}, log)
		if err != nil {
			panic("failed to create bridge client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, platformDI.Platform, func(sr di.ServiceRegistry) app.Platform {
		log := sr.Get("logger").(logger.LoggerInterface)

		onRetry := func(attempt int, delay time.Duration, err error) {
			log.Warn(context.Background(), "platform call failed, retrying",
				"attempt", attempt,
				"delay", delay,
				"error", err)
		}
		reads := retry.New(retry.WithOnRetry(onRetry))
		writes := reads.With(retry.WithAttempts(retry.SubmitAttempts))

		return app.NewRetrying(platformDI.GetBridge(sr), reads, writes)
	})

	di.RegisterToken(c, platformDI.Messenger, func(sr di.ServiceRegistry) *app.Messenger {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewMessenger(platformDI.GetPlatform(sr), log)
	})

	di.RegisterToken(c, platformDI.Router, func(sr di.ServiceRegistry) *app.Router {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewRouter(log)
	})

	di.RegisterToken(c, platformDI.Events, func(sr di.ServiceRegistry) app.EventStream {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		events, err := bridge.NewEvents(bridge.EventsConfig{
			URL:            cfg.Platform.EventsURL,
			APIKey:         cfg.Platform.APIKey,
			InitialBackoff: cfg.Platform.InitialBackoff,
			MaxBackoff:     cfg.Platform.MaxBackoff,
			MaxReconnects:  cfg.Platform.MaxReconnects,
		}, log)
		if err != nil {
			panic("failed to create event stream: " + err.Error())
		}
		return events
	})

	return nil
}

// Startup connects the event stream. It must run after the modules that
// register router handlers, otherwise early events reach no one.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	router := platformDI.GetRouter(sr)
	events := platformDI.GetEvents(sr)
	client := platformDI.GetBridge(sr)

	mono.Health().RegisterCheck("events", func(context.Context) (bool, string) {
		if events.Connected() {
			return true, "connected"
		}
		return false, "disconnected"
	})
	mono.Health().RegisterCheck("bridge", func(context.Context) (bool, string) {
		state := client.BreakerState()
		return state != "open", "circuit " + state
	})

	mono.OnClose(func() error {
		err := events.Close()
		router.Wait()
		return err
	})

	events.OnConnectionChange(router.SetConnected)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := events.Start(connectCtx, router.Dispatch); err != nil {
		log.Warn(ctx, "event stream connection failed, will retry in background", "error", err)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(eventRetryInterval):
					if err := events.Start(ctx, router.Dispatch); err != nil {
						log.Warn(ctx, "event stream retry failed", "error", err)
						continue
					}
					log.Info(ctx, "event stream connected")
					return
				}
			}
		}()
	}

	log.Info(ctx, "platform module started")
	return nil
}
