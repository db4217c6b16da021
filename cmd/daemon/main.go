package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/vlcbridge/vlcbridge/internal/config"
	"github.com/vlcbridge/vlcbridge/internal/domain"
	"github.com/vlcbridge/vlcbridge/internal/player"
	"github.com/vlcbridge/vlcbridge/internal/protocol"
	"github.com/vlcbridge/vlcbridge/internal/queue"
	"github.com/vlcbridge/vlcbridge/internal/server"
	"github.com/vlcbridge/vlcbridge/internal/session"
)

var (
	flagPlayerAddr = flag.StringP("vlc-addr", "H", "", "host:port of the VLC rc/telnet interface (default localhost:8080)")
	flagListenAddr = flag.StringP("http-addr", "p", "", "listen address for the local HTTP interface (default :9000)")
)

// AppOptions assembles the daemon's dependency graph
var AppOptions = fx.Options(
	// Provide dependencies
	fx.Provide(
		newLogger,
		newConfig,
		player.New,
		queue.New,
		protocol.NewStatusParser,
		protocol.NewClassifier,
		newDriver,
		newDriverBinding,
		newCommander,
		server.NewAPI,
		server.NewHub,
		server.SetupRouter,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	flag.Parse()

	app := fx.New(
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),

		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for an interrupt signal or a session-driven shutdown
	select {
	case <-ctx.Done():
	case <-app.Wait():
	}

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newConfig builds the configuration from the environment with
// command-line overrides
func newConfig(logger *zap.Logger) domain.Config {
	return config.NewAppConfig(logger, config.Overrides{
		PlayerAddr: *flagPlayerAddr,
		ListenAddr: *flagListenAddr,
	})
}

// newDriver wires the session driver to the real TCP transport
func newDriver(
	logger *zap.Logger,
	cfg domain.Config,
	p *player.Player,
	q *queue.Queue,
	cls *protocol.Classifier,
) *session.Driver {
	return session.NewDriver(logger, cfg, p, q, cls, session.Dial)
}

// newDriverBinding exposes the concrete driver through its domain interface
func newDriverBinding(d *session.Driver) domain.Driver {
	return d
}

// newCommander exposes the driver's command pipeline to the HTTP layer
func newCommander(d *session.Driver) domain.Commander {
	return d
}

// registerHooks sets up application lifecycle hooks
func registerHooks(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	logger *zap.Logger,
	cfg domain.Config,
	driver domain.Driver,
	hub *server.Hub,
	router *gin.Engine,
) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := driver.Start(ctx); err != nil {
				return err
			}

			go hub.Run(context.Background(), driver.Events())

			go func() {
				logger.Info("HTTP interface listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server failed", zap.Error(err))
					_ = sd.Shutdown()
				}
			}()

			// A closed or reset remote connection ends the whole process
			// cleanly; there is no reconnect.
			go func() {
				<-driver.Done()
				_ = sd.Shutdown()
			}()

			logger.Info("VLCBridge daemon started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("HTTP shutdown", zap.Error(err))
			}
			return driver.Stop(ctx)
		},
	})
}
