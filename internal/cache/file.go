package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry represents a cached HTTP response.
type Entry struct {
	Body       []byte    `json:"body"`
	ETag       string    `json:"etag,omitempty"`
	LastMod    string    `json:"last_modified,omitempty"`
	StatusCode int       `json:"status_code"`
	CachedAt   time.Time `json:"cached_at"`
}

// FileCache provides TTL-based file caching for HTTP responses, plus a home
// for the Parquet tables and quota metadata the CLI keeps alongside them.
type FileCache struct {
	dir string
	ttl time.Duration
}

// New creates a new file cache.
func New(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache base directory.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a cached entry if it exists and hasn't expired.
func (c *FileCache) Get(key string) (*Entry, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		os.Remove(path)
		return nil, false
	}

	if time.Since(entry.CachedAt) > c.ttl {
		// Expired but return for conditional fetch (ETag/If-Modified-Since)
		return &entry, false
	}

	return &entry, true
}

// Set stores an entry in the cache.
func (c *FileCache) Set(key string, entry *Entry) error {
	entry.CachedAt = time.Now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ParquetPath returns the path of the Parquet file backing a table.
func (c *FileCache) ParquetPath(table string) string {
	return filepath.Join(c.dir, table+".parquet")
}

// HasParquet reports whether a table's Parquet file exists.
func (c *FileCache) HasParquet(table string) bool {
	_, err := os.Stat(c.ParquetPath(table))
	return err == nil
}

// Quota is API rate-limit state captured from response headers.
type Quota struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     string    `json:"reset,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Low reports whether less than 10% of the quota remains.
func (q *Quota) Low() bool {
	if q.Limit == 0 {
		return false
	}
	return q.Remaining*10 < q.Limit
}

// SetQuota persists quota state.
func (c *FileCache) SetQuota(q *Quota) error {
	q.UpdatedAt = time.Now()
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshaling quota: %w", err)
	}
	return os.WriteFile(filepath.Join(c.dir, "quota.json"), data, 0o644)
}

// GetQuota returns the last persisted quota state, if any.
func (c *FileCache) GetQuota() *Quota {
	data, err := os.ReadFile(filepath.Join(c.dir, "quota.json"))
	if err != nil {
		return nil
	}
	var q Quota
	if err := json.Unmarshal(data, &q); err != nil {
		return nil
	}
	return &q
}

// Stats summarizes cache contents.
type Stats struct {
	Dir       string
	Entries   int
	TotalSize int64
}

// SizeHuman formats the total size for display.
func (s Stats) SizeHuman() string {
	switch {
	case s.TotalSize < 1024:
		return fmt.Sprintf("%d B", s.TotalSize)
	case s.TotalSize < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(s.TotalSize)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(s.TotalSize)/(1024*1024))
	}
}

// Stat counts cache files and their total size.
func (c *FileCache) Stat() (Stats, error) {
	stats := Stats{Dir: c.dir}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return stats, fmt.Errorf("reading cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalSize += info.Size()
	}
	return stats, nil
}

// Clear removes all cached responses, Parquet files and metadata.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".parquet") || strings.HasSuffix(name, ".json") || len(name) == 64 {
			if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *FileCache) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
