package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/heartmarshall/recobot/internal/metrics"
)

// allowedUpdates limits delivery to the update kinds the Handler routes.
var allowedUpdates = []string{"message", "callback_query", "channel_post"}

type updatesSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

type updateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update) error
}

// Poller receives updates with long polling and hands them to a handler
// one at a time.
type Poller struct {
	src        updatesSource
	handler    updateHandler
	timeout    int
	retryDelay time.Duration
	log        *slog.Logger
}

// NewPoller creates a Poller. timeout is the long-poll timeout in seconds;
// retryDelay is the pause after a failed getUpdates call.
func NewPoller(src updatesSource, handler updateHandler, timeout int, retryDelay time.Duration, log *slog.Logger) *Poller {
	return &Poller{
		src:        src,
		handler:    handler,
		timeout:    timeout,
		retryDelay: retryDelay,
		log:        log.With("component", "telegram_poller"),
	}
}

// Run polls until ctx is cancelled. A cancelled context is a clean stop
// and returns nil.
func (p *Poller) Run(ctx context.Context) error {
	p.log.InfoContext(ctx, "polling started", slog.Int("timeout_sec", p.timeout))
	offset := 0

	for {
		if ctx.Err() != nil {
			p.log.Info("polling stopped")
			return nil
		}

		cfg := tgbotapi.NewUpdate(offset)
		cfg.Timeout = p.timeout
		cfg.AllowedUpdates = allowedUpdates

		updates, err := p.src.GetUpdates(cfg)
		if err != nil {
			metrics.TelegramPollErrorsTotal.Inc()
			p.log.WarnContext(ctx, "get updates failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", p.retryDelay),
			)
			if !sleep(ctx, p.retryDelay) {
				p.log.Info("polling stopped")
				return nil
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			if err := p.dispatch(ctx, upd); err != nil {
				p.log.ErrorContext(ctx, "update failed",
					slog.Int("update_id", upd.UpdateID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// dispatch runs the handler, turning a panic into an error so one bad
// update cannot stop the loop.
func (p *Poller) dispatch(ctx context.Context, upd tgbotapi.Update) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.ErrorContext(ctx, "panic recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return p.handler.HandleUpdate(ctx, upd)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
