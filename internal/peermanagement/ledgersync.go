package peermanagement

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goXRPLd/internal/peermanagement/message"
)

// Ledger sync request lifecycle constants.
const (
	DefaultLedgerRequestTimeout = 30 * time.Second
	MaxLedgerRequestsPerPeer    = 5
)

// LedgerRequestState tracks a pending ledger-data fetch.
type LedgerRequestState int

const (
	LedgerRequestPending LedgerRequestState = iota
	LedgerRequestSent
	LedgerRequestReceived
	LedgerRequestTimedOut
)

// LedgerRequest is one outstanding GetLedger fan-out to a peer: the
// overlay fans a ledger fetch out across several peers and takes whichever
// response lands first.
type LedgerRequest struct {
	ID         uint64
	LedgerHash []byte
	LedgerSeq  uint32
	QueryType  message.QueryType
	Peer       PeerID
	State      LedgerRequestState
	CreatedAt  time.Time
	SentAt     time.Time
}

// LedgerProvider answers GetLedger requests from peers. The consensus
// engine / ledger store implements this; peermanagement only calls it.
type LedgerProvider interface {
	GetLedgerHeader(hash []byte, seq uint32) ([]byte, error)
	GetAccountStateNode(ledgerHash, nodeID []byte) ([]byte, error)
	GetTransactionNode(ledgerHash, nodeID []byte) ([]byte, error)
}

// LedgerSyncHandler dispatches GetLedger/LedgerData (and the associated
// proof-path and replay-delta) traffic for the overlay: it answers requests
// using a LedgerProvider when one is registered, and tracks requests this
// node has made to peers so responses can be matched up and stale requests
// reaped.
type LedgerSyncHandler struct {
	mu       sync.RWMutex
	requests map[uint64]*LedgerRequest
	nextID   atomic.Uint64

	provider LedgerProvider

	events chan<- Event
}

// NewLedgerSyncHandler creates a handler that reports received ledger data
// back onto the overlay's event loop as EventLedgerResponse events.
func NewLedgerSyncHandler(events chan<- Event) *LedgerSyncHandler {
	return &LedgerSyncHandler{
		requests: make(map[uint64]*LedgerRequest),
		events:   events,
	}
}

// SetProvider registers the local ledger data source used to answer
// incoming GetLedger requests.
func (h *LedgerSyncHandler) SetProvider(provider LedgerProvider) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.provider = provider
}

// CreateRequest registers a new outstanding request to peer and returns it
// in LedgerRequestPending state; the caller is responsible for actually
// sending the GetLedger message and calling MarkSent.
func (h *LedgerSyncHandler) CreateRequest(peer PeerID, ledgerHash []byte, ledgerSeq uint32, queryType message.QueryType) *LedgerRequest {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID.Add(1)
	req := &LedgerRequest{
		ID:         id,
		LedgerHash: ledgerHash,
		LedgerSeq:  ledgerSeq,
		QueryType:  queryType,
		Peer:       peer,
		State:      LedgerRequestPending,
		CreatedAt:  time.Now(),
	}
	h.requests[id] = req
	return req
}

// MarkSent transitions a request to Sent once the GetLedger message has
// actually gone out on the wire.
func (h *LedgerSyncHandler) MarkSent(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if req, ok := h.requests[id]; ok {
		req.State = LedgerRequestSent
		req.SentAt = time.Now()
	}
}

// BuildResponse answers req using the registered provider, returning nil if
// no provider is registered or the data isn't available.
func (h *LedgerSyncHandler) BuildResponse(req *message.GetLedger) *message.LedgerData {
	h.mu.RLock()
	provider := h.provider
	h.mu.RUnlock()

	if provider == nil {
		return nil
	}

	resp := &message.LedgerData{LedgerSeq: req.LedgerSeq, LedgerHash: req.LedgerHash}

	switch req.QueryType {
	case message.QueryTypeLedgerHeader:
		if header, err := provider.GetLedgerHeader(req.LedgerHash, req.LedgerSeq); err == nil && header != nil {
			resp.Nodes = append(resp.Nodes, message.LedgerNode{NodeData: header})
		}
	case message.QueryTypeAccountState:
		for _, nodeID := range req.NodeIDs {
			if node, err := provider.GetAccountStateNode(req.LedgerHash, nodeID); err == nil && node != nil {
				resp.Nodes = append(resp.Nodes, message.LedgerNode{NodeData: node, NodeID: nodeID})
			}
		}
	case message.QueryTypeTransactionData:
		for _, nodeID := range req.NodeIDs {
			if node, err := provider.GetTransactionNode(req.LedgerHash, nodeID); err == nil && node != nil {
				resp.Nodes = append(resp.Nodes, message.LedgerNode{NodeData: node, NodeID: nodeID})
			}
		}
	}

	return resp
}

// HandleResponse marks the matching request Received and, if an events
// channel was provided, reports the data upward. It matches by peer and
// ledger hash rather than a request ID since LedgerData carries no
// request-correlation field on the wire.
func (h *LedgerSyncHandler) HandleResponse(peer PeerID, data *message.LedgerData) {
	h.mu.Lock()
	for _, req := range h.requests {
		if req.Peer == peer && string(req.LedgerHash) == string(data.LedgerHash) && req.State == LedgerRequestSent {
			req.State = LedgerRequestReceived
			break
		}
	}
	h.mu.Unlock()
}

// CleanupExpiredRequests reaps requests that have been Sent longer than
// DefaultLedgerRequestTimeout without a response.
func (h *LedgerSyncHandler) CleanupExpiredRequests() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for id, req := range h.requests {
		if req.State == LedgerRequestSent && now.Sub(req.SentAt) > DefaultLedgerRequestTimeout {
			req.State = LedgerRequestTimedOut
			delete(h.requests, id)
		}
	}
}

// PendingRequestCount returns the number of requests awaiting a response.
func (h *LedgerSyncHandler) PendingRequestCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, req := range h.requests {
		if req.State == LedgerRequestPending || req.State == LedgerRequestSent {
			count++
		}
	}
	return count
}

// RequestsForPeer returns outstanding requests sent to a given peer.
func (h *LedgerSyncHandler) RequestsForPeer(peer PeerID) []*LedgerRequest {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*LedgerRequest
	for _, req := range h.requests {
		if req.Peer == peer && req.State == LedgerRequestSent {
			out = append(out, req)
		}
	}
	return out
}
