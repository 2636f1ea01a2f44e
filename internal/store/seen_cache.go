package store

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// SeenCache is a bounded, LRU-evicted set of message keys the orchestrator
// has already routed, mirroring the seen-cache gossip overlays use to break
// forwarding loops a pure TTL bound would otherwise let through for a few
// extra hops.
type SeenCache struct {
	cache *lru.Cache[uint64, struct{}]
}

// NewSeenCache creates a cache holding at most size keys.
func NewSeenCache(size int) (*SeenCache, error) {
	cache, err := lru.New[uint64, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &SeenCache{cache: cache}, nil
}

// SeenBefore reports whether key was already recorded, recording it as seen
// either way. DataMessage carries no message id, so callers key
// on message content (see Key) — two distinct messages that happen to share
// topic and payload are indistinguishable, and deduping them is harmless
// since redelivering one would be redundant anyway.
func (s *SeenCache) SeenBefore(key uint64) bool {
	if s.cache.Contains(key) {
		return true
	}
	s.cache.Add(key, struct{}{})
	return false
}

// Len reports how many keys are currently retained.
func (s *SeenCache) Len() int { return s.cache.Len() }
