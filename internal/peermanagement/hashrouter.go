package peermanagement

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHashRouterEntries bounds the number of distinct content hashes the
// router remembers at once. Older entries are evicted LRU once the bound is
// hit.
const DefaultHashRouterEntries = 100000

// hashRouterEntry is the per-hash relay record: the set of peers known to
// have already seen (or sent) this content.
type hashRouterEntry struct {
	mu   sync.Mutex
	seen map[PeerID]struct{}
}

// HashRouter deduplicates relay traffic by content hash: a message
// is forwarded to a peer only if that peer has not already been recorded
// as having seen it, and every peer the message is about to go to is
// unioned into the seen set before it is sent, so a later relay of the same
// hash through a different path skips everyone already covered.
type HashRouter struct {
	mu    sync.Mutex
	cache *lru.Cache[[32]byte, *hashRouterEntry]
}

// NewHashRouter creates a router bounded to entries distinct content hashes.
func NewHashRouter(entries int) (*HashRouter, error) {
	if entries <= 0 {
		entries = DefaultHashRouterEntries
	}
	cache, err := lru.New[[32]byte, *hashRouterEntry](entries)
	if err != nil {
		return nil, err
	}
	return &HashRouter{cache: cache}, nil
}

func (r *HashRouter) entry(uid [32]byte) *hashRouterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache.Get(uid)
	if !ok {
		e = &hashRouterEntry{seen: make(map[PeerID]struct{})}
		r.cache.Add(uid, e)
	}
	return e
}

// SwapSet records that skip (the peer the message arrived from or is being
// relayed through, if any) has seen uid, unions it into the tracked set, and
// returns whether uid was already known (relayed is true the first time)
// along with the set of peers that must still receive the message — every
// currently-tracked peer minus those already marked as having seen it.
//
// Calling SwapSet twice with the same uid and skip set is idempotent: the
// second call returns relayed=true and an unchanged peer set, since the
// union already contains everyone from the first call.
func (r *HashRouter) SwapSet(uid [32]byte, skip map[PeerID]struct{}, candidates []PeerID) (relayed bool, toSend []PeerID) {
	e := r.entry(uid)
	e.mu.Lock()
	defer e.mu.Unlock()

	relayed = len(e.seen) > 0

	for id := range skip {
		e.seen[id] = struct{}{}
	}

	for _, id := range candidates {
		if _, already := e.seen[id]; !already {
			toSend = append(toSend, id)
		}
	}
	for _, id := range toSend {
		e.seen[id] = struct{}{}
	}

	return relayed, toSend
}

// Has reports whether uid has been seen at all.
func (r *HashRouter) Has(uid [32]byte) bool {
	r.mu.Lock()
	_, ok := r.cache.Get(uid)
	r.mu.Unlock()
	return ok
}

// Len returns the number of distinct content hashes currently tracked.
func (r *HashRouter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
