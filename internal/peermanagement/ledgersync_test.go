package peermanagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goXRPLd/internal/peermanagement/message"
)

type fakeLedgerProvider struct {
	header []byte
}

func (f *fakeLedgerProvider) GetLedgerHeader(hash []byte, seq uint32) ([]byte, error) {
	return f.header, nil
}
func (f *fakeLedgerProvider) GetAccountStateNode(ledgerHash, nodeID []byte) ([]byte, error) {
	return nil, nil
}
func (f *fakeLedgerProvider) GetTransactionNode(ledgerHash, nodeID []byte) ([]byte, error) {
	return nil, nil
}

func TestLedgerSyncHandler_CreateAndCountRequests(t *testing.T) {
	h := NewLedgerSyncHandler(make(chan Event, 1))
	req := h.CreateRequest(PeerID(1), []byte("hash"), 10, message.QueryTypeLedgerHeader)

	require.Equal(t, LedgerRequestPending, req.State)
	assert.Equal(t, 1, h.PendingRequestCount())

	h.MarkSent(req.ID)
	assert.Equal(t, LedgerRequestSent, req.State)
	assert.Len(t, h.RequestsForPeer(PeerID(1)), 1)
}

func TestLedgerSyncHandler_BuildResponseWithoutProviderIsNil(t *testing.T) {
	h := NewLedgerSyncHandler(nil)
	resp := h.BuildResponse(&message.GetLedger{LedgerSeq: 5})
	assert.Nil(t, resp)
}

func TestLedgerSyncHandler_BuildResponseUsesProvider(t *testing.T) {
	h := NewLedgerSyncHandler(nil)
	h.SetProvider(&fakeLedgerProvider{header: []byte("header-bytes")})

	resp := h.BuildResponse(&message.GetLedger{LedgerSeq: 5, QueryType: message.QueryTypeLedgerHeader})
	require.NotNil(t, resp)
	require.Len(t, resp.Nodes, 1)
	assert.Equal(t, []byte("header-bytes"), resp.Nodes[0].NodeData)
}

func TestLedgerSyncHandler_HandleResponseMarksReceived(t *testing.T) {
	h := NewLedgerSyncHandler(nil)
	req := h.CreateRequest(PeerID(1), []byte("hash"), 10, message.QueryTypeLedgerHeader)
	h.MarkSent(req.ID)

	h.HandleResponse(PeerID(1), &message.LedgerData{LedgerHash: []byte("hash")})
	assert.Equal(t, LedgerRequestReceived, req.State)
}

func TestLedgerSyncHandler_CleanupExpiredRequests(t *testing.T) {
	h := NewLedgerSyncHandler(nil)
	req := h.CreateRequest(PeerID(1), []byte("hash"), 10, message.QueryTypeLedgerHeader)
	h.MarkSent(req.ID)
	req.SentAt = time.Now().Add(-time.Hour)

	h.CleanupExpiredRequests()
	assert.Equal(t, 0, h.PendingRequestCount())
}
