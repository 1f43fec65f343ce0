package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinyland-inc/mediafwd/cmd/mediafwd/internal"
	"github.com/tinyland-inc/mediafwd/pkg/config"
	"github.com/tinyland-inc/mediafwd/pkg/forward"
	"github.com/tinyland-inc/mediafwd/pkg/health"
	"github.com/tinyland-inc/mediafwd/pkg/logger"
	"github.com/tinyland-inc/mediafwd/pkg/transport/botapi"
	"github.com/tinyland-inc/mediafwd/pkg/transport/mtproto"
)

const shutdownTimeout = 5 * time.Second

func runCmd(debug bool, envFile string) error {
	cfg, err := internal.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if level, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	} else {
		logger.WarnCF("run", "Unknown log level, keeping default", map[string]any{"log_level": cfg.LogLevel})
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg)
}

// serve runs the forwarder until ctx is canceled or startup resolution fails. The
// health server lives for the same span.
func serve(ctx context.Context, cfg *config.Config) error {
	transport, err := newTransport(cfg)
	if err != nil {
		return fmt.Errorf("error creating transport: %w", err)
	}

	fwd, err := forward.New(transport, forward.Options{
		Target:     cfg.TargetInvite,
		Senders:    cfg.Senders,
		DedupeSize: cfg.DedupeSize,
	})
	if err != nil {
		return fmt.Errorf("error creating forwarder: %w", err)
	}

	healthServer := health.NewServer(cfg.Host, cfg.Port)
	healthServer.SetReadyCheck(fwd.Resolved)
	go func() {
		if err := healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCF("health", "Health server error", map[string]any{"error": err.Error()})
		}
	}()

	logger.InfoCF("run", "Starting forwarder", map[string]any{
		"transport":   transport.Name(),
		"target":      cfg.TargetInvite,
		"senders":     len(cfg.Senders),
		"health_addr": cfg.Addr(),
	})

	runErr := fwd.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.WarnCF("health", "Health server shutdown failed", map[string]any{"error": err.Error()})
	}

	if runErr != nil && !(errors.Is(runErr, context.Canceled) && ctx.Err() != nil) {
		return fmt.Errorf("forwarder stopped: %w", runErr)
	}
	logger.InfoC("run", "Bot stopped.")
	return nil
}

// newTransport is a variable so tests can run serve without a Telegram connection.
var newTransport = func(cfg *config.Config) (forward.Transport, error) {
	switch cfg.Transport {
	case config.TransportBotAPI:
		return botapi.New(cfg.BotToken)
	default:
		return mtproto.New(mtproto.Config{
			AppID:         cfg.APIID,
			AppHash:       cfg.APIHash,
			Session:       cfg.SessionString,
			SessionFormat: cfg.SessionFormat,
		})
	}
}
