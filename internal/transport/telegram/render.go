package telegram

import (
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/heartmarshall/recobot/internal/domain"
)

const (
	textGreeting = "Привет! Я помогу выбрать, что посмотреть или почитать. Выбери категорию:"

	textManual = "📝 Чтобы добавить пост вручную:\n\n" +
		"1. Найди пост в канале и скопируй ссылку на него\n" +
		"2. Из ссылки возьми ID сообщения (последнее число)\n" +
		"3. Пришли команду:\n" +
		"<code>/add ID #категория Название</code>\n\n" +
		"🔹 Примеры:\n" +
		"<code>/add 123 #книги Между нами горы</code>\n" +
		"<code>/add 456 #фильмы Интересный фильм</code>\n\n" +
		"Можно и просто переслать пост из канала мне в личку."

	textUsage = "❌ Неправильный формат. Используйте:\n" +
		"<code>/add ID #категория Название</code>\n\n" +
		"Пример:\n" +
		"<code>/add 123 #книги Между нами горы</code>"

	textBadID        = "❌ ID сообщения должен быть числом"
	textBadCategory  = "❌ Используйте #книги, #фильмы или #сериалы"
	textForbidden    = "⛔ Добавлять посты могут только администраторы"
	textInternal     = "⚠️ Что-то пошло не так, попробуйте позже"
	textUnknownQuery = "Неизвестная категория"
	textSkipped      = "🤔 Не нашёл в посте хэштег категории (#фильмы, #сериалы, #книги) или название"
	textStatsEmpty   = "📊 В базе данных пока нет постов\nИспользуйте /manual для инструкций"
)

var buttonLabels = map[domain.Category]string{
	domain.CategoryMovies: "🎬 Фильм",
	domain.CategorySeries: "📺 Сериал",
	domain.CategoryBooks:  "📚 Книга",
}

// PostLink renders the deep link to a channel post. Public channels are
// addressed by username; private ones by their id without the "-100" prefix.
func PostLink(channelID int64, username string, messageID int64) string {
	if username = strings.TrimPrefix(strings.TrimSpace(username), "@"); username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", username, messageID)
	}

	id := strconv.FormatInt(channelID, 10)
	if trimmed, ok := strings.CutPrefix(id, "-100"); ok {
		id = trimmed
	} else {
		id = strings.TrimPrefix(id, "-")
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}

// categoryKeyboard builds one button per category, one per row.
func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonLabels[c], domain.CallbackData(c)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderRecommendation(link, title string) string {
	return fmt.Sprintf("<b>🎉 Ваша рекомендация:</b>\n\n<a href=\"%s\">%s</a>",
		html.EscapeString(link), html.EscapeString(title))
}

func renderEmptyCategory(c domain.Category) string {
	return fmt.Sprintf("😔 В категории '%s' пока ничего нет. Используйте /manual для инструкций!",
		html.EscapeString(c.String()))
}

func renderStats(stats domain.CatalogueStats) string {
	if stats.Empty() {
		return textStatsEmpty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Всего постов в БД: %d", stats.Total)
	for _, c := range statsOrder(stats) {
		fmt.Fprintf(&b, "\n• %s: %d", html.EscapeString(c.String()), stats.ByCategory[c])
	}
	return b.String()
}

// statsOrder lists known categories first, then any legacy values sorted.
func statsOrder(stats domain.CatalogueStats) []domain.Category {
	out := make([]domain.Category, 0, len(stats.ByCategory))
	for _, c := range domain.Categories {
		if stats.ByCategory[c] > 0 {
			out = append(out, c)
		}
	}
	var rest []domain.Category
	for c, n := range stats.ByCategory {
		if !c.IsValid() && n > 0 {
			rest = append(rest, c)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func renderAdded(e domain.Entry, created bool) string {
	prefix := "✅ Добавлено"
	if !created {
		prefix = "ℹ️ Уже в каталоге"
	}
	return fmt.Sprintf("%s: %s - %s\nID: %d",
		prefix, html.EscapeString(e.Category.String()), html.EscapeString(e.Title), e.MessageID)
}

// renderRegisterError picks the reply for a failed registration.
func renderRegisterError(err error) string {
	switch domain.ReasonOf(err) {
	case domain.ReasonMissingFields:
		return textUsage
	case domain.ReasonBadID:
		return textBadID
	case domain.ReasonBadCategory:
		return textBadCategory
	default:
		return textInternal
	}
}
