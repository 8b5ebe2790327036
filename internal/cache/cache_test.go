package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/model"
)

var testKey = Key{Ticker: "AAPL", Timeframe: "Short_Term_Analysis"}

func sampleSeries() model.Series {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 5)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.OHLCV{Time: base.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1000}
	}
	return model.Series{Ticker: "AAPL", Bars: bars}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "AAPL_Short_Term_Analysis", testKey.String())
	assert.Equal(t, "BRK-B_Long_2024-01-01", Key{Ticker: "BRK-B", Timeframe: "Long", AsOf: "2024-01-01"}.String())
	assert.Equal(t, "A-B_x_y", Key{Ticker: "A/B", Timeframe: "x y"}.String())
}

func newTestFileCache(t *testing.T, now time.Time) *FileCache {
	t.Helper()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"), 24*time.Hour, zerolog.Nop())
	require.NoError(t, err)
	c.now = func() time.Time { return now }
	return c
}

func TestFileCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c := newTestFileCache(t, now)

	_, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache misses")

	want := sampleSeries()
	require.NoError(t, c.Put(ctx, testKey, want))

	got, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Ticker, got.Ticker)
	require.Len(t, got.Bars, len(want.Bars))
	for i := range want.Bars {
		assert.True(t, want.Bars[i].Time.Equal(got.Bars[i].Time))
		assert.Equal(t, want.Bars[i].Close, got.Bars[i].Close)
	}
}

func TestFileCache_StaleEntryMisses(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c := newTestFileCache(t, now)
	require.NoError(t, c.Put(ctx, testKey, sampleSeries()))

	c.now = func() time.Time { return now.Add(23 * time.Hour) }
	_, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, ok)

	c.now = func() time.Time { return now.Add(25 * time.Hour) }
	_, ok, err = c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCache_CorruptEntryIsDiscarded(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t, time.Now())
	path := c.path(testKey)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "corrupt file should be removed")
}

func TestFileCache_InvalidSeriesIsDiscarded(t *testing.T) {
	ctx := context.Background()
	c := newTestFileCache(t, time.Now())
	bad := sampleSeries()
	bad.Bars[3].Time = bad.Bars[1].Time
	require.NoError(t, c.Put(ctx, testKey, bad))

	_, ok, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoop(t *testing.T) {
	var c SeriesCache = Noop{}
	require.NoError(t, c.Put(context.Background(), testKey, sampleSeries()))
	_, ok, err := c.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Get(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	full := DefaultRedisPrefix + testKey.String()

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := newRedisCache(db, time.Hour, zerolog.Nop())
		data, err := encode(sampleSeries(), now)
		require.NoError(t, err)

		mock.ExpectGet(full).SetVal(string(data))
		got, ok, err := c.Get(ctx, testKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Len(t, got.Bars, 5)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := newRedisCache(db, time.Hour, zerolog.Nop())

		mock.ExpectGet(full).RedisNil()
		_, ok, err := c.Get(ctx, testKey)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt value is deleted", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := newRedisCache(db, time.Hour, zerolog.Nop())

		mock.ExpectGet(full).SetVal("garbage")
		mock.ExpectDel(full).SetVal(1)
		_, ok, err := c.Get(ctx, testKey)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := newRedisCache(db, time.Hour, zerolog.Nop())

		mock.ExpectGet(full).SetErr(errors.New("connection refused"))
		_, _, err := c.Get(ctx, testKey)
		assert.Error(t, err)
	})
}

func TestRedisCache_Put(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	full := DefaultRedisPrefix + testKey.String()

	db, mock := redismock.NewClientMock()
	c := newRedisCache(db, 24*time.Hour, zerolog.Nop())
	c.now = func() time.Time { return now }

	data, err := encode(sampleSeries(), now)
	require.NoError(t, err)
	mock.ExpectSet(full, data, 24*time.Hour).SetVal("OK")
	require.NoError(t, c.Put(ctx, testKey, sampleSeries()))

	mock.ExpectSet(full, data, 24*time.Hour).SetErr(errors.New("readonly"))
	assert.Error(t, c.Put(ctx, testKey, sampleSeries()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
