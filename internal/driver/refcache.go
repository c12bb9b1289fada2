package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/decl"
	"vela/internal/outline"
)

// Current schema version - increment when refPayload format changes
const refCacheSchemaVersion uint16 = 1

// refPayload is the serialized form of one unit's slot table. Names and
// Slots are parallel and sorted by name, so identical tables produce
// identical bytes.
type refPayload struct {
	Schema uint16
	Next   uint32
	Names  []string
	Slots  []uint32
}

// RefCache хранит индексы слотов прошлых компиляций на диске, по одному
// файлу на юнит. Thread-safe for concurrent access.
type RefCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenRefCache initializes the cache at the standard user location.
func OpenRefCache(app string) (*RefCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenRefCacheAt(filepath.Join(base, app))
}

// OpenRefCacheAt initializes the cache at an explicit directory, for
// manifest overrides and tests.
func OpenRefCacheAt(dir string) (*RefCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &RefCache{dir: dir}, nil
}

// Dir returns the cache root directory.
func (c *RefCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *RefCache) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	// Для удобства читаемости/очистки — подкаталог "refs".
	return filepath.Join(c.dir, "refs", hex.EncodeToString(sum[:])+".mp")
}

// Put serializes and atomically writes a unit's slot index.
func (c *RefCache) Put(key string, idx *outline.RefIndex) error {
	if c == nil || idx == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp)
		}
	}()

	payload := packRefIndex(idx)
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads a unit's slot index. A missing entry or a stale schema is not
// an error: the caller simply starts fresh.
func (c *RefCache) Get(key string) (*outline.RefIndex, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var payload refPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != refCacheSchemaVersion {
		return nil, false, nil
	}
	return unpackRefIndex(&payload), true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *RefCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func packRefIndex(idx *outline.RefIndex) refPayload {
	names := make([]string, 0, len(idx.Slots))
	for name := range idx.Slots {
		names = append(names, name)
	}
	sort.Strings(names)
	slots := make([]uint32, len(names))
	for i, name := range names {
		slots[i] = uint32(idx.Slots[name])
	}
	return refPayload{Schema: refCacheSchemaVersion, Next: idx.Next, Names: names, Slots: slots}
}

func unpackRefIndex(p *refPayload) *outline.RefIndex {
	idx := &outline.RefIndex{
		Slots: make(map[string]decl.RefSlot, len(p.Names)),
		Next:  p.Next,
	}
	for i, name := range p.Names {
		if i < len(p.Slots) {
			idx.Slots[name] = decl.RefSlot(p.Slots[i])
		}
	}
	return idx
}
