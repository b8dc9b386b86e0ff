package pack

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// #region registry

type cachedPack struct {
	hash string
	pack *ContentPack
}

// Registry is a read-through cache of parsed content packs keyed by file
// path. Entries are revalidated by content hash on every Load, so an edited
// pack file is reparsed instead of served stale. Hosts that evaluate against
// several packs share one Registry.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, cachedPack]
}

// NewRegistry creates a registry holding at most size parsed packs.
func NewRegistry(size int) (*Registry, error) {
	cache, err := lru.New[string, cachedPack](size)
	if err != nil {
		return nil, fmt.Errorf("creating pack registry: %w", err)
	}
	return &Registry{cache: cache}, nil
}

// Load returns the parsed pack for path, reading from disk only when the
// file content changed since the cached parse.
func (r *Registry) Load(path string) (*ContentPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading content pack: %w", err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.cache.Get(path); ok && entry.hash == hash {
		return entry.pack, nil
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading content pack %s: %w", path, err)
	}
	r.cache.Add(path, cachedPack{hash: hash, pack: p})
	return p, nil
}

// Len reports how many parsed packs are currently cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

// #endregion
