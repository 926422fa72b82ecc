package telegram

import (
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxUpdateBytes = 1 << 20

// WebhookPath is the HTTP path updates are posted to. The secret segment
// keeps the endpoint unguessable.
func WebhookPath(secret string) string {
	return "/telegram/webhook/" + secret
}

// WebhookHandler receives updates pushed by Telegram.
type WebhookHandler struct {
	handler updateHandler
	log     *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(handler updateHandler, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		handler: handler,
		log:     log.With("component", "telegram_webhook"),
	}
}

// ServeHTTP decodes one update and handles it. Handler failures are logged
// and still acknowledged with 200 so Telegram does not redeliver forever.
func (wh *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var upd tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
		wh.log.WarnContext(r.Context(), "invalid update payload", slog.String("error", err.Error()))
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}

	if err := wh.handler.HandleUpdate(r.Context(), upd); err != nil {
		wh.log.ErrorContext(r.Context(), "update failed",
			slog.Int("update_id", upd.UpdateID),
			slog.String("error", err.Error()),
		)
	}
	w.WriteHeader(http.StatusOK)
}

// SetWebhook points Telegram at baseURL + WebhookPath(secret).
func SetWebhook(api Sender, baseURL, secret string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + WebhookPath(secret))
	if err != nil {
		return err
	}
	wh.AllowedUpdates = allowedUpdates

	_, err = api.Request(wh)
	return err
}

// DeleteWebhook switches the bot back to getUpdates delivery.
func DeleteWebhook(api Sender) error {
	_, err := api.Request(tgbotapi.DeleteWebhookConfig{})
	return err
}

// SetCommands publishes the command menu shown by Telegram clients.
func SetCommands(api Sender) error {
	_, err := api.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Выбрать категорию"},
		tgbotapi.BotCommand{Command: "manual", Description: "Как добавить пост"},
		tgbotapi.BotCommand{Command: "add", Description: "Добавить пост: ID #категория Название"},
		tgbotapi.BotCommand{Command: "stats", Description: "Сколько постов в каталоге"},
	))
	return err
}
