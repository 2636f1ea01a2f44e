// Package filter implements the topic-prefix subscription set used to
// decide which data_messages a node is interested in and which peerings'
// advertised interest should gate forwarding.
package filter

import (
	"sort"
	"sync"

	"github.com/J-Gras/zeek-broker/pkg/types"
)

// Filter is an insertion-order-irrelevant set of topic prefixes.
//
// Matching is "any entry is a prefix of the topic" (hierarchical,
// slash-delimited).
type Filter struct {
	mu       sync.RWMutex
	prefixes map[string]struct{}
}

// New returns an empty Filter.
func New() *Filter {
	return &Filter{prefixes: make(map[string]struct{})}
}

// Add inserts prefix into the set. Adding an already-present prefix is a
// no-op.
func (f *Filter) Add(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes[prefix] = struct{}{}
}

// Remove deletes prefix from the set, if present.
func (f *Filter) Remove(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.prefixes, prefix)
}

// Matches reports whether any prefix in the set is a leading
// path-component prefix of topic.
func (f *Filter) Matches(topic string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for prefix := range f.prefixes {
		if types.IsPrefixOf(prefix, topic) {
			return true
		}
	}
	return false
}

// Prefixes returns a sorted snapshot of the set's contents, used when
// building a routing advertisement message.
func (f *Filter) Prefixes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, 0, len(f.prefixes))
	for p := range f.prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of prefixes currently in the set.
func (f *Filter) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.prefixes)
}

// Merge adds every prefix from other into f, used to build the aggregate
// filter an orchestrator advertises on behalf of itself and its
// subscribers.
func (f *Filter) Merge(other *Filter) {
	for _, p := range other.Prefixes() {
		f.Add(p)
	}
}
