package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/recobot/internal/auth"
	"github.com/heartmarshall/recobot/internal/config"
	"github.com/heartmarshall/recobot/internal/transport/middleware"
	"github.com/heartmarshall/recobot/internal/transport/rest"
	"github.com/heartmarshall/recobot/internal/transport/telegram"
)

// Run is the application entry point of the serve command. It opens the
// catalogue, connects to the Bot API, starts the HTTP server and receives
// updates in the configured mode until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("telegram_mode", cfg.Telegram.Mode),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("admin_api", cfg.Admin.Enabled),
	)

	cat, err := OpenCatalogue(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open catalogue: %w", err)
	}
	defer cat.Close() //nolint:errcheck

	if err := tgbotapi.SetLogger(telegramLogger(logger)); err != nil {
		return fmt.Errorf("telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.Token, cfg.Telegram.APIEndpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return fmt.Errorf("telegram connect: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info("telegram authorized", slog.String("bot", api.Self.UserName))

	sender := telegram.NewBreakerSender(api, logger)
	handler := telegram.NewHandler(cat.Service, sender, cfg.Telegram, logger)

	if err := telegram.SetCommands(sender); err != nil {
		logger.Warn("set bot commands failed", slog.String("error", err.Error()))
	}

	deps := rest.RouterDeps{
		Health: rest.NewHealthHandler(cat.DB, sender, BuildVersion()),
		Logger: logger,
	}

	if cfg.Admin.Enabled {
		rl := middleware.NewRateLimiter(time.Minute)
		defer rl.Stop()

		deps.Admin = rest.NewAdminHandler(cat.Service, func(id int64) string {
			return telegram.PostLink(cfg.Telegram.ChannelID, cfg.Telegram.ChannelUsername, id)
		}, logger)
		deps.Tokens = auth.NewJWTManager(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, cfg.Admin.TokenTTL)
		deps.RateLimiter = rl
		deps.RateLimitPerMinute = cfg.Admin.RateLimitPerMinute
	}

	if cfg.Telegram.Mode == config.ModeWebhook {
		deps.Webhook = telegram.NewWebhookHandler(handler, logger)
		deps.WebhookPath = telegram.WebhookPath(cfg.Telegram.WebhookSecret)
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      rest.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		if err := telegram.SetWebhook(sender, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		logger.Info("telegram webhook registered")
	default:
		if err := telegram.DeleteWebhook(sender); err != nil {
			logger.Warn("delete webhook failed", slog.String("error", err.Error()))
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Mode == config.ModePolling {
		// The polling copy aborts its in-flight getUpdates on shutdown
		// instead of waiting out the long-poll timeout.
		pollAPI := *api
		pollAPI.Client = &http.Client{
			Transport: contextTransport{ctx: gctx, base: http.DefaultTransport},
			Timeout:   time.Duration(cfg.Telegram.PollTimeout)*time.Second + 10*time.Second,
		}
		poller := telegram.NewPoller(&pollAPI, handler, cfg.Telegram.PollTimeout, cfg.Telegram.RetryDelay, logger)
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("application stopped")
	return err
}

// contextTransport binds every request to ctx.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
