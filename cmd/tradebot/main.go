// Package main is the entry point for the Steam gem / TF2 key trading bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/chat"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading"
	tradingApp "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/app"
	tradingInfra "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/infra"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apm"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/config"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/health"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/metrics"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/monolith"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tradebot %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
		if ui.Program != nil {
			ui.Program.Quit()
		}
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		var missing *config.MissingFieldsError
		if errors.As(err, &missing) {
			for _, f := range missing.Fields {
				fmt.Fprintf(os.Stderr, "missing configuration: %s\n", f)
			}
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = tuiMode

	log := newLogger(cfg, tuiMode)
	log.Info(ctx, "starting trading bot",
		"version", version,
		"environment", cfg.App.Environment,
		"config", cfg.Redacted())

	if cfg.Telemetry.Enabled {
		stop, err := startTelemetry(ctx, cfg, log)
		if err != nil {
			log.Warn(ctx, "telemetry disabled", "error", err)
		} else {
			defer stop()
		}
	}

	healthServer := health.NewServer(cfg.Health.Port, version)
	healthServer.OnError(func(err error) {
		log.Error(ctx, "health server stopped", "error", err)
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Health.Port)
	}
	defer healthServer.Stop(context.Background())

	mono := monolith.New(cfg, log, healthServer)
	defer mono.Close()

	var reporter tradingApp.Reporter = tradingInfra.NewConsoleReporter()
	if tuiMode {
		reporter = tradingInfra.NewTUIReporter()
	}
	mono.Container().Register("reporter", reporter)

	// Platform starts last: every subscriber must be registered before the
	// event stream opens.
	modules := []monolith.Module{
		&ledger.Module{},
		&trading.Module{},
		&chat.Module{},
		&platform.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if tuiMode {
		return runTUI(ctx, cfg, func() error {
			return mono.StartModules(ctx, modules...)
		})
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	log.Info(ctx, "all modules started")

	<-ctx.Done()
	log.Info(ctx, "shutting down")
	return nil
}

func newLogger(cfg *config.Config, tuiMode bool) *logger.Logger {
	level := logger.ParseLevel(cfg.App.LogLevel)

	var out io.Writer = os.Stderr
	if tuiMode {
		out = io.Discard
	}
	if cfg.App.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.App.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		if tuiMode {
			out = file
		} else {
			out = io.MultiWriter(os.Stderr, file)
		}
	}
	return logger.New(out, level, cfg.App.Name, nil)
}

func startTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (func(), error) {
	name := cfg.Telemetry.ServiceName
	if name == "" {
		name = cfg.App.Name
	}

	tp, err := apm.NewTraceProvider(ctx, apm.Settings{
		ServiceName: name,
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
	})
	if err != nil {
		return nil, fmt.Errorf("trace provider: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider, "endpoint", cfg.Telemetry.OTLPEndpoint)

	mp, err := metrics.NewMetricProvider(ctx,
		metrics.WithServiceName(name),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	)
	if err != nil {
		_ = tp.Stop()
		return nil, fmt.Errorf("metric provider: %w", err)
	}

	port := cfg.Telemetry.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go func() {
		if err := metrics.ServePrometheusMetrics(ctx, metrics.WithPort(strconv.Itoa(port))); err != nil {
			log.Error(ctx, "prometheus server stopped", "error", err)
		}
	}()
	log.Info(ctx, "prometheus metrics server started", "port", port)

	return func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Warn(context.Background(), "metric provider shutdown", "error", err)
		}
		if err := tp.Stop(); err != nil {
			log.Warn(context.Background(), "trace provider shutdown", "error", err)
		}
	}, nil
}

func runTUI(ctx context.Context, cfg *config.Config, start func() error) error {
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
		ui.Send(ui.StartupMsg{Step: "storage", Status: "done"})
		ui.Send(ui.RatesMsg{
			KeyBuy:          cfg.Rates.KeyBuy,
			KeySell:         cfg.Rates.KeySell,
			CollectibleBuy:  cfg.Rates.CollectibleBuy,
			CollectibleSell: cfg.Rates.CollectibleSell,
			MaxBuy:          cfg.Limits.MaxBuy,
			MaxSell:         cfg.Limits.MaxSell,
		})
		ui.Send(ui.StartupMsg{Step: "bridge", Status: "connecting"})

		if err := start(); err != nil {
			ui.Send(ui.StartupMsg{Step: "bridge", Status: "failed", Message: err.Error()})
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		errCh <- nil
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
