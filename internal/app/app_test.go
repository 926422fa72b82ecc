package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/recobot/internal/config"
	"github.com/heartmarshall/recobot/internal/domain"
	"github.com/heartmarshall/recobot/internal/service/catalogue"
)

func TestOpenCatalogue_SQLiteRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "nested", "channel_posts.db"),
		MaxOpenConns: 1,
		BusyTimeout:  time.Second,
	}

	cat, err := OpenCatalogue(ctx, cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() }) //nolint:errcheck

	res, err := cat.Service.RegisterArgs(ctx, "123 #книги Между нами горы", catalogue.SourceCLI)
	require.NoError(t, err)
	assert.True(t, res.Created)

	rec, err := cat.Service.Recommend(ctx, domain.CategoryBooks)
	require.NoError(t, err)
	require.True(t, rec.Found)
	assert.Equal(t, "Между нами горы", rec.Entry.Title)

	stats, err := cat.Service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestOpenCatalogue_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := OpenCatalogue(context.Background(), config.DatabaseConfig{Driver: "mysql", DSN: "x"}, slog.New(slog.DiscardHandler))
	require.Error(t, err)
}

func TestContextTransport_AbortsOnCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	client := &http.Client{Transport: contextTransport{ctx: ctx, base: http.DefaultTransport}}

	done := make(chan error, 1)
	go func() {
		resp, err := client.Get(srv.URL)
		if err == nil {
			resp.Body.Close()
		}
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("request was not aborted")
	}
}

func TestBuildVersion(t *testing.T) {
	assert.Equal(t, "dev", BuildVersion())

	Version, Commit, BuildTime = "1.2.0", "abc123", "2026-01-01"
	t.Cleanup(func() { Version, Commit, BuildTime = "dev", "unknown", "unknown" })

	assert.Equal(t, "1.2.0 (commit: abc123, built: 2026-01-01)", BuildVersion())
}
