package peermanagement

import (
	"sync"
	"sync/atomic"
	"time"
)

// AdmissionState is the lifecycle of a slot in the SlotTable. Unlike
// discovery.go's SlotState (Closing has no distinct terminal state), this
// taxonomy adds a terminal Closed so callers can tell "tearing down" apart
// from "gone" when reconciling the table after a peer disconnects.
type AdmissionState int

const (
	AdmissionAccept AdmissionState = iota
	AdmissionConnect
	AdmissionConnected
	AdmissionActive
	AdmissionClosed
)

// String returns the taxonomy name for the state.
func (s AdmissionState) String() string {
	switch s {
	case AdmissionAccept:
		return "accept"
	case AdmissionConnect:
		return "connect"
	case AdmissionConnected:
		return "connected"
	case AdmissionActive:
		return "active"
	case AdmissionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SlotDirection distinguishes how a slot entered the table.
type SlotDirection int

const (
	SlotInbound SlotDirection = iota
	SlotOutbound
	SlotFixed
)

// String returns the taxonomy name for the direction.
func (d SlotDirection) String() string {
	switch d {
	case SlotInbound:
		return "inbound"
	case SlotOutbound:
		return "outbound"
	case SlotFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// ActivateResult is the outcome of SlotTable.Activate:
// activate(SlotId, NodeKey, is_cluster) -> {success, duplicate, full}.
type ActivateResult int

const (
	ActivateSuccess ActivateResult = iota
	ActivateDuplicate
	ActivateFull
)

// String returns the taxonomy name for the result.
func (r ActivateResult) String() string {
	switch r {
	case ActivateSuccess:
		return "success"
	case ActivateDuplicate:
		return "duplicate"
	case ActivateFull:
		return "full"
	default:
		return "unknown"
	}
}

// SlotID is an opaque, monotonically increasing handle assigned when a slot
// is admitted. It survives state transitions and outlives net.Addr changes
// a reconnect might bring (unlike keying by remote address alone).
type SlotID uint64

var slotIDCounter uint64

func nextSlotID() SlotID {
	return SlotID(atomic.AddUint64(&slotIDCounter, 1))
}

// AdmissionSlot tracks one admitted connection attempt through the table.
type AdmissionSlot struct {
	mu sync.RWMutex

	id        SlotID
	direction SlotDirection
	state     AdmissionState
	remote    Endpoint
	nodeKey   *PublicKeyToken

	createdAt   time.Time
	activatedAt time.Time
	closedAt    time.Time
}

// ID returns the slot's stable identifier.
func (s *AdmissionSlot) ID() SlotID {
	return s.id
}

// Direction returns how the slot was admitted.
func (s *AdmissionSlot) Direction() SlotDirection {
	return s.direction
}

// State returns the current admission state.
func (s *AdmissionSlot) State() AdmissionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Remote returns the endpoint this slot was admitted for.
func (s *AdmissionSlot) Remote() Endpoint {
	return s.remote
}

// NodeKey returns the peer's verified node key once the slot has been
// activated, or nil before then.
func (s *AdmissionSlot) NodeKey() *PublicKeyToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodeKey
}

// CreatedAt returns when the slot was admitted.
func (s *AdmissionSlot) CreatedAt() time.Time {
	return s.createdAt
}

func (s *AdmissionSlot) setState(state AdmissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	switch state {
	case AdmissionActive:
		if s.activatedAt.IsZero() {
			s.activatedAt = time.Now()
		}
	case AdmissionClosed:
		s.closedAt = time.Now()
	}
}

// SlotTable is the admission-control table: it decides whether a
// connection attempt (inbound or outbound) may proceed and tracks it through
// Accept/Connect -> Connected -> Active -> Closed. It is independent of the
// discovery.go Slot/SlotState pair (which key by net.Addr and drive the
// boot-cache/reservation machinery); SlotTable is keyed by a stable SlotID
// and is the thing the overlay's handoff path consults for admission.
type SlotTable struct {
	mu          sync.RWMutex
	slots       map[SlotID]*AdmissionSlot
	byRemote    map[string]SlotID
	byNodeKey   map[string]SlotID
	maxInbound  int
	maxOutbound int
	maxFixed    int
	maxPeers    int
}

// NewSlotTable creates an empty admission table with the given per-direction
// capacities and the overall Active-peer ceiling maxPeers. A limit of 0
// means unbounded for that dimension.
func NewSlotTable(maxInbound, maxOutbound, maxFixed, maxPeers int) *SlotTable {
	return &SlotTable{
		slots:       make(map[SlotID]*AdmissionSlot),
		byRemote:    make(map[string]SlotID),
		byNodeKey:   make(map[string]SlotID),
		maxInbound:  maxInbound,
		maxOutbound: maxOutbound,
		maxFixed:    maxFixed,
		maxPeers:    maxPeers,
	}
}

func (t *SlotTable) countLocked(direction SlotDirection) int {
	n := 0
	for _, s := range t.slots {
		if s.Direction() == direction && s.State() != AdmissionClosed {
			n++
		}
	}
	return n
}

func (t *SlotTable) activeCountLocked() int {
	n := 0
	for _, s := range t.slots {
		if s.State() == AdmissionActive {
			n++
		}
	}
	return n
}

// NewInboundSlot admits an inbound connection attempt. local is this node's
// own advertised endpoint; if remote matches it byte-for-byte the attempt is
// refused with ErrSelfConnection before any capacity is consulted, so a
// self-connect never counts against ipLimit the way a real peer would. It
// otherwise returns ErrSlotUnavailable if the inbound budget
// (or, for a fixed peer, the fixed budget) is exhausted, or
// ErrAlreadyConnected if remote is already tracked.
func (t *SlotTable) NewInboundSlot(local, remote Endpoint, fixed bool) (*AdmissionSlot, error) {
	if local.Host != "" && local.String() == remote.String() {
		return nil, ErrSelfConnection
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := remote.String()
	if _, exists := t.byRemote[key]; exists {
		return nil, ErrAlreadyConnected
	}

	direction := SlotInbound
	limit := t.maxInbound
	if fixed {
		direction = SlotFixed
		limit = t.maxFixed
	}
	if limit > 0 && t.countLocked(direction) >= limit {
		return nil, ErrSlotUnavailable
	}

	slot := &AdmissionSlot{
		id:        nextSlotID(),
		direction: direction,
		state:     AdmissionAccept,
		remote:    remote,
		createdAt: time.Now(),
	}
	t.slots[slot.id] = slot
	t.byRemote[key] = slot.id
	return slot, nil
}

// NewOutboundSlot admits an outbound connect attempt, returning
// ErrSlotUnavailable if the outbound budget is exhausted.
func (t *SlotTable) NewOutboundSlot(remote Endpoint, fixed bool) (*AdmissionSlot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := remote.String()
	if _, exists := t.byRemote[key]; exists {
		return nil, ErrAlreadyConnected
	}

	direction := SlotOutbound
	limit := t.maxOutbound
	if fixed {
		direction = SlotFixed
		limit = t.maxFixed
	}
	if limit > 0 && t.countLocked(direction) >= limit {
		return nil, ErrSlotUnavailable
	}

	slot := &AdmissionSlot{
		id:        nextSlotID(),
		direction: direction,
		state:     AdmissionConnect,
		remote:    remote,
		createdAt: time.Now(),
	}
	t.slots[slot.id] = slot
	t.byRemote[key] = slot.id
	return slot, nil
}

// OnConnected transitions a slot from Accept/Connect to Connected once the
// TCP/TLS leg has succeeded. local is the endpoint the connection actually
// landed on; if it matches the slot's remote (a self-dial only discoverable
// once the socket is up, e.g. an outbound connect that looped back to us) or
// the slot has already been closed out from under the caller, the slot is
// left alone and false is returned so the caller tears the connection down
// instead of proceeding to a handshake.
func (t *SlotTable) OnConnected(id SlotID, local Endpoint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.slots[id]
	if !ok || slot.State() == AdmissionClosed {
		return false
	}
	if local.Host != "" && slot.remote.String() == local.String() {
		return false
	}
	slot.setState(AdmissionConnected)
	return true
}

// Activate transitions a slot to Active, meaning the peer session has
// completed its handshake and joined the overlay. key is the peer's
// handshake-verified node key; isCluster reports whether key is one of the
// configured cluster keys, which are exempt from the overall peer ceiling
// and take priority over a non-cluster peer already holding the same key.
//
// Returns ActivateDuplicate if another live slot already holds key (and
// isCluster is false, so the newcomer can't evict it), ActivateFull if the
// table is already at its Active ceiling and the peer isn't a cluster peer,
// or ActivateSuccess once the slot is marked Active.
func (t *SlotTable) Activate(id SlotID, key *PublicKeyToken, isCluster bool) ActivateResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.slots[id]
	if !ok || slot.State() == AdmissionClosed {
		return ActivateDuplicate
	}

	if key != nil {
		keyStr := key.Encode()
		if existingID, exists := t.byNodeKey[keyStr]; exists && existingID != id {
			if !isCluster {
				return ActivateDuplicate
			}
			if old, ok := t.slots[existingID]; ok {
				old.setState(AdmissionClosed)
				delete(t.slots, existingID)
				if t.byRemote[old.remote.String()] == existingID {
					delete(t.byRemote, old.remote.String())
				}
			}
		}
		slot.nodeKey = key
		t.byNodeKey[keyStr] = id
	}

	if t.maxPeers > 0 && !isCluster && t.activeCountLocked() >= t.maxPeers {
		return ActivateFull
	}

	slot.setState(AdmissionActive)
	return ActivateSuccess
}

// OnClosed marks a slot Closed and frees it, and its node key, for reuse by
// a future attempt against the same remote endpoint or key.
func (t *SlotTable) OnClosed(id SlotID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	slot, ok := t.slots[id]
	if !ok {
		return
	}
	slot.setState(AdmissionClosed)
	delete(t.slots, id)
	if t.byRemote[slot.remote.String()] == id {
		delete(t.byRemote, slot.remote.String())
	}
	if slot.nodeKey != nil {
		keyStr := slot.nodeKey.Encode()
		if t.byNodeKey[keyStr] == id {
			delete(t.byNodeKey, keyStr)
		}
	}
}

// Get returns the slot for a SlotID, if present.
func (t *SlotTable) Get(id SlotID) (*AdmissionSlot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.slots[id]
	return s, ok
}

// Lookup returns the slot currently admitted for a remote endpoint, if any.
func (t *SlotTable) Lookup(remote Endpoint) (*AdmissionSlot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byRemote[remote.String()]
	if !ok {
		return nil, false
	}
	s := t.slots[id]
	return s, s != nil
}

// Count returns the number of non-closed slots for a direction.
func (t *SlotTable) Count(direction SlotDirection) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.countLocked(direction)
}

// ActiveCount returns the number of slots currently Active.
func (t *SlotTable) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeCountLocked()
}

// Len returns the total number of tracked (non-closed) slots.
func (t *SlotTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots)
}
