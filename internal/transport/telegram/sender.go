package telegram

import (
	"errors"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/heartmarshall/recobot/internal/metrics"
)

// Sender is the outbound half of the Bot API client.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ Sender = (*BreakerSender)(nil)

// BreakerSender wraps a Sender with a circuit breaker so a failing Bot API
// is not hammered by every incoming update.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// NewBreakerSender creates a BreakerSender around next. The breaker opens
// after 5 consecutive failures and probes again after 30 seconds.
func NewBreakerSender(next Sender, log *slog.Logger) *BreakerSender {
	const name = "telegram-api"
	log = log.With("component", "telegram_breaker")

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isHealthyOutcome,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &BreakerSender{next: next, cb: cb, name: name}
}

// Send implements Sender.
func (s *BreakerSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	res, err := s.execute(func() (any, error) {
		return s.next.Send(c)
	})
	if err != nil {
		return tgbotapi.Message{}, err
	}
	return res.(tgbotapi.Message), nil
}

// Request implements Sender.
func (s *BreakerSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	res, err := s.execute(func() (any, error) {
		return s.next.Request(c)
	})
	if err != nil {
		return nil, err
	}
	return res.(*tgbotapi.APIResponse), nil
}

// State returns the current breaker state.
func (s *BreakerSender) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerSender) execute(fn func() (any, error)) (any, error) {
	res, err := s.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
	case err != nil && isHealthyOutcome(err):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "client_error").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	}
	return res, err
}

// isHealthyOutcome reports whether err leaves the Bot API looking healthy.
// A 4xx answer such as "bot was blocked by the user" concerns one request
// only. Transport errors, 5xx and 429 count against the breaker.
func isHealthyOutcome(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != 429
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
