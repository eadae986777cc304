package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gitpraise/gitpraise/pkg/models"
)

// Cache stores generated analyses keyed by normalized username, backed by
// SQLite. Entries expire after the configured TTL; expiry is checked on read.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS analyses (
	username TEXT NOT NULL PRIMARY KEY,
	analysis TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER NOT NULL
);
`

// New creates a Cache with the given database path and entry TTL.
func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get retrieves the cached analysis for a username. The lookup is
// case-insensitive. Returns false if the entry is absent, expired, or the
// store is unreachable.
func (c *Cache) Get(username string) (string, bool) {
	var analysis string
	var createdAt time.Time
	var ttlSeconds int64

	err := c.db.QueryRow(
		`SELECT analysis, created_at, ttl_seconds FROM analyses WHERE username = ?`,
		strings.ToLower(username),
	).Scan(&analysis, &createdAt, &ttlSeconds)

	if err != nil {
		c.misses.Add(1)
		return "", false
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if time.Since(createdAt) > ttl {
		c.misses.Add(1)
		return "", false
	}

	c.hits.Add(1)
	return analysis, true
}

// Put stores a complete analysis, overwriting any previous entry for the
// same username.
func (c *Cache) Put(username, analysis string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO analyses (username, analysis, created_at, ttl_seconds)
		 VALUES (?, ?, ?, ?)`,
		strings.ToLower(username), analysis, time.Now().UTC(), int64(c.ttl.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Stats returns cache performance metrics.
func (c *Cache) Stats() (models.CacheStats, error) {
	var count int64
	err := c.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&count)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{
		Entries: count,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}, nil
}

// Clear removes cache entries. If expiredOnly is true, only expired entries
// are removed.
func (c *Cache) Clear(expiredOnly bool) error {
	var query string
	if expiredOnly {
		query = `DELETE FROM analyses WHERE (julianday('now') - julianday(created_at)) * 86400 > ttl_seconds`
	} else {
		query = `DELETE FROM analyses`
	}
	_, err := c.db.Exec(query)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
