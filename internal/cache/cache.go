// Package cache stores generated Go sources keyed by the content that
// produced them, so unchanged templates are not recompiled.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const indexVersion = "ruitl-cache/1"

// Cache is an on-disk compile cache. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	dir     string
	index   *Index
	maxSize int64
	maxAge  time.Duration
	stats   Stats
	logger  *slog.Logger

	// clock orders accesses for LRU eviction
	clock uint64
}

// Index tracks all cached entries
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached artifact
type Entry struct {
	Key          string    `json:"key"`
	File         string    `json:"file"`
	Size         int64     `json:"size"`
	Created      time.Time `json:"created"`
	LastAccess   time.Time `json:"last_access"`
	Used         uint64    `json:"used"`
	Dependencies []string  `json:"dependencies,omitempty"`
}

// Stats tracks cache effectiveness
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	TotalSize int64 `json:"total_size"`
	Entries   int   `json:"entries"`
}

// Config holds cache configuration
type Config struct {
	Dir     string
	MaxSize int64         // bytes; 0 means unlimited
	MaxAge  time.Duration // 0 means entries never expire
	Logger  *slog.Logger
}

// DefaultConfig returns the default cache configuration rooted at dir
func DefaultConfig(dir string) Config {
	return Config{
		Dir:     dir,
		MaxSize: 64 << 20,
		MaxAge:  30 * 24 * time.Hour,
	}
}

// New opens or creates the cache in config.Dir. A missing or unreadable
// index starts an empty cache.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "objects"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Cache{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		maxAge:  config.MaxAge,
		logger:  logger,
		index:   newIndex(),
	}
	if err := c.loadIndex(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("discarding unreadable cache index", "dir", config.Dir, "error", err)
		c.index = newIndex()
	}
	return c, nil
}

func newIndex() *Index {
	return &Index{Version: indexVersion, Entries: map[string]*Entry{}, Updated: time.Now()}
}

// Key derives a cache key from compile inputs. Each input is length
// prefixed so ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, in := range inputs {
		fmt.Fprintf(h, "%d:", len(in))
		io.WriteString(h, in)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the artifact stored under key
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.expired(entry) {
		c.removeLocked(key, entry)
		c.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(c.objectPath(entry))
	if err != nil {
		c.logger.Debug("cache object unreadable", "key", key, "error", err)
		c.removeLocked(key, entry)
		c.stats.Misses++
		return nil, false
	}

	c.touch(entry)
	c.stats.Hits++
	return data, true
}

// Put stores data under key. deps are the source files the artifact was
// built from; see InvalidateByDependency.
func (c *Cache) Put(key string, data []byte, deps ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.index.Entries[key]; ok {
		c.removeLocked(key, old)
	}

	size := int64(len(data))
	c.evictLocked(size)

	entry := &Entry{
		Key:          key,
		File:         Key(key)[:32],
		Size:         size,
		Created:      time.Now(),
		LastAccess:   time.Now(),
		Dependencies: deps,
	}
	c.touch(entry)
	if err := writeFileAtomic(c.objectPath(entry), data); err != nil {
		return fmt.Errorf("failed to write cache object: %w", err)
	}

	c.index.Entries[key] = entry
	c.index.Updated = time.Now()
	c.stats.TotalSize += size
	return nil
}

// Delete removes key from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.index.Entries[key]; ok {
		c.removeLocked(key, entry)
	}
}

// InvalidateByDependency removes every entry built from path and returns
// how many were removed
func (c *Cache) InvalidateByDependency(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	path = filepath.Clean(path)
	count := 0
	for key, entry := range c.index.Entries {
		for _, dep := range entry.Dependencies {
			if filepath.Clean(dep) == path {
				c.removeLocked(key, entry)
				count++
				break
			}
		}
	}
	return count
}

// Clear removes all entries
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "objects")); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(c.dir, "objects"), 0755); err != nil {
		return err
	}
	c.index = newIndex()
	c.stats = Stats{}
	return nil
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.index.Entries)
	return s
}

// Flush persists the index
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(c.dir, "index.json"), data)
}

// Close flushes the index
func (c *Cache) Close() error { return c.Flush() }

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion {
		return fmt.Errorf("index version %q, want %q", index.Version, indexVersion)
	}
	if index.Entries == nil {
		index.Entries = map[string]*Entry{}
	}

	c.index = &index
	for _, e := range index.Entries {
		c.stats.TotalSize += e.Size
		c.clock = max(c.clock, e.Used)
	}
	return nil
}

func (c *Cache) touch(e *Entry) {
	c.clock++
	e.Used = c.clock
	e.LastAccess = time.Now()
}

func (c *Cache) objectPath(e *Entry) string {
	return filepath.Join(c.dir, "objects", e.File)
}

func (c *Cache) expired(e *Entry) bool {
	return c.maxAge > 0 && time.Since(e.Created) > c.maxAge
}

// evictLocked drops least recently used entries until needed bytes fit
func (c *Cache) evictLocked(needed int64) {
	if c.maxSize <= 0 {
		return
	}
	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		var victim *Entry
		for _, e := range c.index.Entries {
			if victim == nil || e.Used < victim.Used {
				victim = e
			}
		}
		c.removeLocked(victim.Key, victim)
		c.stats.Evictions++
	}
}

func (c *Cache) removeLocked(key string, e *Entry) {
	if err := os.Remove(c.objectPath(e)); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to remove cache object", "key", key, "error", err)
	}
	delete(c.index.Entries, key)
	c.stats.TotalSize -= e.Size
	c.index.Updated = time.Now()
}

// writeFileAtomic writes through a temp file so readers never see a
// partial object
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
