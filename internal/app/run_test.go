package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/recobot/internal/auth"
	"github.com/heartmarshall/recobot/internal/config"
)

// fakeBotAPI records Bot API calls and answers them with canned results.
type fakeBotAPI struct {
	mu    sync.Mutex
	calls []botCall
}

type botCall struct {
	method string
	params url.Values
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	body, _ := io.ReadAll(r.Body)
	params, _ := url.ParseQuery(string(body))

	f.mu.Lock()
	f.calls = append(f.calls, botCall{method: method, params: params})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Reco","username":"recobot"}}`)
	case "sendMessage", "editMessageText":
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":99,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	}
}

func (f *fakeBotAPI) find(method string) []botCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []botCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestRun_WebhookEndToEnd(t *testing.T) {
	bot := &fakeBotAPI{}
	botSrv := httptest.NewServer(bot)
	t.Cleanup(botSrv.Close)

	port := freePort(t)
	secret := strings.Repeat("s", 40)
	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			Token:           "123:test",
			ChannelID:       -1001234567890,
			ChannelUsername: "recs",
			Mode:            config.ModeWebhook,
			WebhookURL:      "https://bot.example.com",
			WebhookSecret:   "hook",
			APIEndpoint:     botSrv.URL + "/bot%s/%s",
			AdminIDs:        []int64{42},
		},
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			DSN:          filepath.Join(t.TempDir(), "posts.db"),
			MaxOpenConns: 1,
			BusyTimeout:  time.Second,
		},
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Admin: config.AdminConfig{
			Enabled:            true,
			JWTSecret:          secret,
			JWTIssuer:          "recobot",
			TokenTTL:           time.Hour,
			RateLimitPerMinute: 100,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, slog.New(slog.DiscardHandler)) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("Run did not stop")
		}
	})

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health/live")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	hooks := bot.find("setWebhook")
	require.Len(t, hooks, 1)
	assert.Equal(t, "https://bot.example.com/telegram/webhook/hook", hooks[0].params.Get("url"))

	postUpdate := func(body string) {
		t.Helper()
		resp, err := http.Post(base+"/telegram/webhook/hook", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	postUpdate(`{"update_id":1,"message":{"message_id":5,"date":0,
		"from":{"id":42,"is_bot":false,"first_name":"Admin"},
		"chat":{"id":42,"type":"private"},
		"text":"/add 123 #книги Между нами горы",
		"entities":[{"type":"bot_command","offset":0,"length":4}]}}`)

	sent := bot.find("sendMessage")
	require.NotEmpty(t, sent)
	assert.Contains(t, sent[len(sent)-1].params.Get("text"), "Добавлено: книги - Между нами горы")

	postUpdate(`{"update_id":2,"callback_query":{"id":"cb1",
		"from":{"id":7,"is_bot":false,"first_name":"Reader"},
		"message":{"message_id":10,"date":0,"chat":{"id":7,"type":"private"}},
		"data":"category_книги"}}`)

	require.Len(t, bot.find("answerCallbackQuery"), 1)
	edits := bot.find("editMessageText")
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0].params.Get("text"), `href="https://t.me/recs/123"`)

	token, err := auth.NewJWTManager(secret, "recobot", time.Hour).GenerateAdminToken("ops")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, base+"/admin/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"total":1`)
}
