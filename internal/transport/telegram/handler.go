// Package telegram adapts Telegram Bot API updates to catalogue operations.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/heartmarshall/recobot/internal/config"
	"github.com/heartmarshall/recobot/internal/domain"
	"github.com/heartmarshall/recobot/internal/metrics"
	"github.com/heartmarshall/recobot/internal/service/catalogue"
)

type catalogueService interface {
	RegisterArgs(ctx context.Context, args, source string) (catalogue.RegisterResult, error)
	IngestPost(ctx context.Context, messageID int64, raw, source string) (catalogue.IngestResult, error)
	Recommend(ctx context.Context, c domain.Category) (catalogue.Recommendation, error)
	Stats(ctx context.Context) (domain.CatalogueStats, error)
}

// Handler routes updates to the catalogue and replies through a Sender.
type Handler struct {
	svc catalogueService
	out Sender
	cfg config.TelegramConfig
	log *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc catalogueService, out Sender, cfg config.TelegramConfig, log *slog.Logger) *Handler {
	return &Handler{
		svc: svc,
		out: out,
		cfg: cfg,
		log: log.With("handler", "telegram"),
	}
}

// HandleUpdate processes a single update. Errors are returned only for
// failures worth logging; user mistakes are answered in chat.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	switch {
	case upd.CallbackQuery != nil:
		metrics.TelegramUpdatesTotal.WithLabelValues("callback").Inc()
		return h.handleCallback(ctx, upd.CallbackQuery)
	case upd.ChannelPost != nil:
		metrics.TelegramUpdatesTotal.WithLabelValues("channel_post").Inc()
		return h.handleChannelPost(ctx, upd.ChannelPost)
	case upd.Message != nil && upd.Message.IsCommand():
		metrics.TelegramUpdatesTotal.WithLabelValues("command").Inc()
		return h.handleCommand(ctx, upd.Message)
	case upd.Message != nil && upd.Message.ForwardFromChat != nil:
		metrics.TelegramUpdatesTotal.WithLabelValues("forward").Inc()
		return h.handleForward(ctx, upd.Message)
	default:
		metrics.TelegramUpdatesTotal.WithLabelValues("ignored").Inc()
		return nil
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		reply := tgbotapi.NewMessage(msg.Chat.ID, textGreeting)
		reply.ReplyMarkup = categoryKeyboard()
		return h.send(reply)
	case "manual", "help":
		return h.reply(msg.Chat.ID, textManual)
	case "add":
		return h.handleAdd(ctx, msg)
	case "debug", "stats":
		return h.handleStats(ctx, msg)
	default:
		return nil
	}
}

func (h *Handler) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	if !h.isAdmin(msg.From) {
		return h.reply(msg.Chat.ID, textForbidden)
	}

	res, err := h.svc.RegisterArgs(ctx, msg.CommandArguments(), catalogue.SourceCommand)
	if err != nil {
		if sendErr := h.reply(msg.Chat.ID, renderRegisterError(err)); sendErr != nil {
			return sendErr
		}
		if errors.Is(err, domain.ErrValidation) {
			return nil
		}
		return fmt.Errorf("register post: %w", err)
	}

	return h.reply(msg.Chat.ID, renderAdded(res.Entry, res.Created))
}

func (h *Handler) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	stats, err := h.svc.Stats(ctx)
	if err != nil {
		if sendErr := h.reply(msg.Chat.ID, textInternal); sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("stats: %w", err)
	}
	return h.reply(msg.Chat.ID, renderStats(stats))
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	c, ok := domain.CategoryFromCallback(q.Data)
	if !ok {
		_, err := h.out.Request(tgbotapi.NewCallback(q.ID, textUnknownQuery))
		return err
	}

	if _, err := h.out.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		h.log.WarnContext(ctx, "answer callback failed", slog.String("error", err.Error()))
	}

	rec, err := h.svc.Recommend(ctx, c)
	if err != nil {
		if sendErr := h.answerCallback(q, textInternal); sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("recommend %s: %w", c, err)
	}

	text := renderEmptyCategory(c)
	if rec.Found {
		text = renderRecommendation(PostLink(h.cfg.ChannelID, h.cfg.ChannelUsername, rec.Entry.MessageID), rec.Entry.Title)
	}
	return h.answerCallback(q, text)
}

// answerCallback replaces the keyboard message with text, or writes to the
// user directly when the original message is gone.
func (h *Handler) answerCallback(q *tgbotapi.CallbackQuery, text string) error {
	if q.Message == nil {
		if q.From == nil {
			return nil
		}
		return h.reply(q.From.ID, text)
	}

	edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	return h.send(edit)
}

// handleChannelPost auto-ingests posts published in the configured channel.
func (h *Handler) handleChannelPost(ctx context.Context, post *tgbotapi.Message) error {
	if post.Chat == nil || post.Chat.ID != h.cfg.ChannelID {
		return nil
	}

	_, err := h.svc.IngestPost(ctx, int64(post.MessageID), postText(post), catalogue.SourceChannel)
	if err != nil {
		return fmt.Errorf("ingest channel post %d: %w", post.MessageID, err)
	}
	return nil
}

// handleForward ingests a channel post forwarded to the bot by an admin,
// keyed by the original message id.
func (h *Handler) handleForward(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.ForwardFromChat.ID != h.cfg.ChannelID || msg.ForwardFromMessageID == 0 {
		return nil
	}
	if !h.isAdmin(msg.From) {
		return h.reply(msg.Chat.ID, textForbidden)
	}

	res, err := h.svc.IngestPost(ctx, int64(msg.ForwardFromMessageID), postText(msg), catalogue.SourceForward)
	if err != nil {
		if sendErr := h.reply(msg.Chat.ID, textInternal); sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("ingest forwarded post %d: %w", msg.ForwardFromMessageID, err)
	}
	if res.Skipped {
		return h.reply(msg.Chat.ID, textSkipped)
	}
	return h.reply(msg.Chat.ID, renderAdded(res.Entry, res.Created))
}

func (h *Handler) isAdmin(u *tgbotapi.User) bool {
	if u == nil {
		return false
	}
	return h.cfg.IsAdmin(u.ID)
}

func (h *Handler) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	return h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.out.Send(c); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// postText returns the text of a post, falling back to the media caption.
func postText(m *tgbotapi.Message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}
