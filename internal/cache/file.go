package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"MarketScreener/internal/model"
)

// FileCache keeps one JSON file per key under Dir.
type FileCache struct {
	Dir string
	TTL time.Duration

	now func() time.Time
	log zerolog.Logger
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string, ttl time.Duration, logger zerolog.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{Dir: dir, TTL: ttl, now: time.Now, log: logger.With().Str("component", "file_cache").Logger()}, nil
}

func (c *FileCache) path(key Key) string {
	return filepath.Join(c.Dir, key.String()+".json")
}

func (c *FileCache) Get(_ context.Context, key Key) (model.Series, bool, error) {
	p := c.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Series{}, false, nil
		}
		return model.Series{}, false, fmt.Errorf("read cache file: %w", err)
	}
	e, err := decode(data)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key.String()).Msg("discarding corrupt cache entry")
		if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
			c.log.Warn().Err(rmErr).Str("path", p).Msg("remove corrupt cache file")
		}
		return model.Series{}, false, nil
	}
	if c.TTL > 0 && c.now().Sub(e.FetchedAt) > c.TTL {
		return model.Series{}, false, nil
	}
	return e.Series, true, nil
}

func (c *FileCache) Put(_ context.Context, key Key, series model.Series) error {
	data, err := encode(series, c.now())
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	// Entries are replaced atomically via a temp file.
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}
