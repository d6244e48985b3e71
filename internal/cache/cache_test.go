package cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newCache(t *testing.T, cfg Config) *Cache {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return c
}

func TestCache_GetPut(t *testing.T) {
	c := newCache(t, Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	key := Key("component Hello {}", "components")
	data := []byte("package components\n")

	if err := c.Put(key, data, "hello.ruitl"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("entry not found")
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}

	if _, ok := c.Get(Key("other")); ok {
		t.Error("found a key that was never stored")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 || stats.TotalSize != int64(len(data)) {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("inputs are not separated")
	}
	if Key("x", "y") != Key("x", "y") {
		t.Error("Key is not deterministic")
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := newCache(t, Config{})
	key := Key("k")

	c.Put(key, []byte("first"))
	c.Put(key, []byte("second!"))

	got, _ := c.Get(key)
	if string(got) != "second!" {
		t.Errorf("Get() = %q", got)
	}
	if s := c.Stats(); s.Entries != 1 || s.TotalSize != 7 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCache_Delete(t *testing.T) {
	c := newCache(t, Config{})
	key := Key("delete")
	c.Put(key, []byte("data"))

	c.Delete(key)
	if _, ok := c.Get(key); ok {
		t.Error("entry still present after Delete")
	}
	c.Delete(key) // no-op
}

func TestCache_InvalidateByDependency(t *testing.T) {
	c := newCache(t, Config{})

	c.Put(Key("a"), []byte("a"), "views/a.ruitl")
	c.Put(Key("b"), []byte("b"), "views/b.ruitl", "views/a.ruitl")
	c.Put(Key("c"), []byte("c"), "views/c.ruitl")

	if n := c.InvalidateByDependency("views/./a.ruitl"); n != 2 {
		t.Errorf("InvalidateByDependency() = %d, want 2", n)
	}
	if _, ok := c.Get(Key("a")); ok {
		t.Error("a survived")
	}
	if _, ok := c.Get(Key("b")); ok {
		t.Error("b survived")
	}
	if _, ok := c.Get(Key("c")); !ok {
		t.Error("c was removed")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := newCache(t, Config{MaxSize: 30})

	c.Put(Key("1"), bytes.Repeat([]byte("x"), 10))
	c.Put(Key("2"), bytes.Repeat([]byte("x"), 10))
	c.Put(Key("3"), bytes.Repeat([]byte("x"), 10))

	// touch 1 so 2 becomes the least recently used
	c.Get(Key("1"))
	c.Put(Key("4"), bytes.Repeat([]byte("x"), 10))

	if _, ok := c.Get(Key("2")); ok {
		t.Error("least recently used entry was not evicted")
	}
	for _, k := range []string{"1", "3", "4"} {
		if _, ok := c.Get(Key(k)); !ok {
			t.Errorf("entry %s evicted", k)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.TotalSize > 30 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := newCache(t, Config{MaxAge: time.Millisecond})
	c.Put(Key("old"), []byte("data"))

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get(Key("old")); ok {
		t.Error("expired entry returned")
	}
}

func TestCache_MissingObject(t *testing.T) {
	dir := t.TempDir()
	c := newCache(t, Config{Dir: dir})
	c.Put(Key("gone"), []byte("data"))

	if err := os.RemoveAll(filepath.Join(dir, "objects")); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(Key("gone")); ok {
		t.Error("entry with missing object returned")
	}
	if s := c.Stats(); s.Entries != 0 {
		t.Errorf("broken entry kept: %+v", s)
	}
}

func TestCache_Persistence(t *testing.T) {
	dir := t.TempDir()

	c1 := newCache(t, Config{Dir: dir})
	c1.Put(Key("persist"), []byte("persistent data"), "x.ruitl")
	if err := c1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	c2 := newCache(t, Config{Dir: dir})
	got, ok := c2.Get(Key("persist"))
	if !ok || string(got) != "persistent data" {
		t.Fatalf("Get() after reopen = %q, %v", got, ok)
	}
	if n := c2.InvalidateByDependency("x.ruitl"); n != 1 {
		t.Errorf("dependencies not persisted: %d", n)
	}
}

func TestCache_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	c := newCache(t, Config{Dir: dir})
	if s := c.Stats(); s.Entries != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCache_Clear(t *testing.T) {
	c := newCache(t, Config{})
	for i := 0; i < 5; i++ {
		c.Put(Key(fmt.Sprint(i)), []byte("data"))
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if s := c.Stats(); s.Entries != 0 || s.TotalSize != 0 {
		t.Errorf("Stats() after Clear = %+v", s)
	}
	if err := c.Put(Key("after"), []byte("ok")); err != nil {
		t.Errorf("Put() after Clear error = %v", err)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := newCache(t, Config{MaxSize: 1 << 20})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := Key(fmt.Sprint(id), fmt.Sprint(j%5))
				if err := c.Put(key, []byte(fmt.Sprintf("%d-%d", id, j))); err != nil {
					t.Errorf("Put() error = %v", err)
					return
				}
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if s := c.Stats(); s.Entries != 50 {
		t.Errorf("Entries = %d, want 50", s.Entries)
	}
}
