package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/model"
	"MarketScreener/internal/recorder"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.BaseURL = url
	n.Backoff = time.Millisecond
	return n
}

func TestTelegramNotifier_Send(t *testing.T) {
	var gotPath string
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Notify(context.Background(), "x"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTelegramNotifier_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTelegramNotifier_CancelStopsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	n.Backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.SendWithRetry(ctx, "x", 3), context.DeadlineExceeded)
}

func TestStartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var replies []string
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if atomic.AddInt32(&polls, 1) == 1 {
				fmt.Fprint(w, `{"ok":true,"result":[
					{"update_id":7,"message":{"text":"/top","chat":{"id":999}}},
					{"update_id":8,"message":{"text":" /top ","chat":{"id":42}}}]}`)
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			replies = append(replies, body["text"].(string))
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
			cancel()
		}
	}))
	defer srv.Close()

	var handled []string
	done := make(chan struct{})
	go func() {
		newTestNotifier(srv.URL).StartPolling(ctx, func(_ context.Context, cmd string) string {
			handled = append(handled, cmd)
			return "reply to " + cmd
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []string{"/top"}, handled, "foreign chat ignored, text trimmed")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"reply to /top"}, replies)
}

func TestFormatRanking(t *testing.T) {
	ranking := []model.RankingEntry{
		{Ticker: "NVDA", MasterScore: 8.1, LongScore: 9, MediumScore: 8, ShortScore: 6.05},
		{Ticker: "AAPL", MasterScore: 3.84, LongScore: 6, ShortScore: 4.2},
		{Ticker: "T", MasterScore: -4.5, LongScore: -5, MediumScore: -4, ShortScore: -4.25},
	}
	sum := RunSummary{Mode: "live", Finished: time.Date(2024, 5, 3, 22, 30, 0, 0, time.UTC), Tickers: 4, Skipped: 1}

	msg := FormatRanking(sum, ranking, 2)
	assert.Contains(t, msg, "Market Screener</b> | 2024-05-03")
	assert.Contains(t, msg, "Tickers: 4 | Ranked: 3 | Skipped: 1")
	assert.Contains(t, msg, "Top 2")
	assert.Contains(t, msg, " 1. <b>NVDA</b> +8.10  (9.00 / 8.00 / 6.05)")
	assert.Contains(t, msg, " 2. <b>AAPL</b> +3.84")
	assert.Contains(t, msg, "Bottom: <b>T</b> -4.50")
	assert.NotContains(t, msg, " 3. ")

	all := FormatRanking(sum, ranking, 0)
	assert.Contains(t, all, "Top 3")
	assert.NotContains(t, all, "Bottom")

	bt := FormatRanking(RunSummary{Mode: "backtest", AsOf: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Finished: sum.Finished}, nil, 10)
	assert.Contains(t, bt, "backtest</b> | 2024-01-01")
	assert.Contains(t, bt, "No tickers produced a score.")
}

func TestFormatHistory(t *testing.T) {
	msg := FormatHistory("AAPL", []recorder.RankingPoint{
		{Rank: 3, MasterScore: 4.25, FinishedAt: time.Unix(1700000000, 0)},
		{Rank: 10, MasterScore: -0.5, FinishedAt: time.Unix(1699900000, 0)},
	})
	assert.Contains(t, msg, "<b>AAPL</b>")
	assert.Contains(t, msg, "#3  +4.25")
	assert.Contains(t, msg, "#10  -0.50")

	assert.Contains(t, FormatHistory("X", nil), "No recorded runs.")
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	assert.NoError(t, n.Notify(context.Background(), "x"))
}
