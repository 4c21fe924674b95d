package peermanagement

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goXRPLd/internal/peermanagement/message"
)

// Overlay is the central orchestrator for XRPL peer-to-peer networking.
// It manages peer connections, discovery, message routing, and the reduce-relay system.
type Overlay struct {
	cfg      Config
	identity *Identity
	log      Logger

	// Components
	discovery  *Discovery
	relay      *Relay
	ledgerSync *LedgerSyncHandler
	slots      *SlotTable
	resources  *ResourceManager
	hashRouter *HashRouter
	manifests  *ManifestCache

	// Peer management
	peers   map[PeerID]*Peer
	peerSlot map[PeerID]SlotID
	peersMu sync.RWMutex
	nextID  atomic.Uint64

	// Coordination channels
	events   chan Event
	messages chan *InboundMessage

	// Network
	listener net.Listener

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Overlay with the provided options.
func New(opts ...Option) (*Overlay, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Load or create identity
	identity, err := loadOrCreateIdentity(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("identity error: %w", err)
	}

	events := make(chan Event, cfgOrDefaultBuffer(cfg.EventBufferSize))

	hashRouter, err := NewHashRouter(cfg.HashRouterEntries)
	if err != nil {
		return nil, fmt.Errorf("hash router: %w", err)
	}

	var manifestStore ManifestStore
	if cfg.ManifestDBPath != "" {
		store, err := NewSQLiteManifestStore(context.Background(), cfg.ManifestDBPath)
		if err != nil {
			return nil, fmt.Errorf("manifest store: %w", err)
		}
		manifestStore = store
	}
	manifests := NewManifestCache(cfg.ValidatorKeys, manifestStore)
	if err := manifests.LoadFromStore(); err != nil {
		return nil, fmt.Errorf("load manifests: %w", err)
	}

	o := &Overlay{
		cfg:        cfg,
		identity:   identity,
		log:        loggerOrNop(cfg.Logger),
		discovery:  NewDiscovery(&cfg, events),
		relay:      NewRelay(&cfg, nil), // squelch callback set below
		ledgerSync: NewLedgerSyncHandler(events),
		slots:      NewSlotTable(cfg.MaxInbound, cfg.MaxOutbound, len(cfg.FixedPeers), cfg.MaxPeers),
		resources:  NewResourceManager(),
		hashRouter: hashRouter,
		manifests:  manifests,
		peers:      make(map[PeerID]*Peer),
		peerSlot:   make(map[PeerID]SlotID),
		events:     events,
		messages:   make(chan *InboundMessage, cfgOrDefaultBuffer(cfg.MessageBufferSize)),
	}

	// Set squelch callback for reduce-relay
	o.relay.onSquelch = o.handleSquelch

	if cfg.ValidationManifest != nil {
		o.manifests.Apply(cfg.ValidationManifest)
	}

	return o, nil
}

func cfgOrDefaultBuffer(n int) int {
	if n <= 0 {
		return DefaultEventBufferSize
	}
	return n
}

// loadOrCreateIdentity loads existing identity or creates a new one.
func loadOrCreateIdentity(dataDir string) (*Identity, error) {
	if dataDir == "" {
		return GenerateIdentity()
	}

	// Try to load existing identity
	id, err := LoadIdentity(dataDir)
	if err == nil {
		return id, nil
	}

	// Generate new identity
	id, err = GenerateIdentity()
	if err != nil {
		return nil, err
	}

	// Try to save it (ignore errors if dataDir doesn't exist)
	_ = id.Save(dataDir)

	return id, nil
}

// Run starts the overlay and blocks until the context is cancelled.
func (o *Overlay) Run(ctx context.Context) error {
	o.ctx, o.cancel = context.WithCancel(ctx)
	defer o.cancel()

	// Start listener if configured
	if o.cfg.ListenAddr != "" {
		if err := o.startListener(); err != nil {
			return fmt.Errorf("listener error: %w", err)
		}
	}

	// Start discovery
	if err := o.discovery.Start(o.ctx); err != nil {
		return fmt.Errorf("discovery error: %w", err)
	}

	g, gCtx := errgroup.WithContext(o.ctx)

	// Accept incoming connections
	if o.listener != nil {
		g.Go(func() error { return o.acceptLoop(gCtx) })
	}

	// Event processing loop
	g.Go(func() error { return o.eventLoop(gCtx) })

	// Discovery/autoconnect loop
	g.Go(func() error { return o.discoveryLoop(gCtx) })

	// Maintenance loop (cleanup, ping, etc.)
	g.Go(func() error { return o.maintenanceLoop(gCtx) })

	return g.Wait()
}

// Stop gracefully shuts down the overlay.
func (o *Overlay) Stop() error {
	if o.cancel != nil {
		o.cancel()
	}

	// Close listener
	if o.listener != nil {
		o.listener.Close()
	}

	// Stop discovery
	o.discovery.Stop()

	// Close all peers
	o.peersMu.Lock()
	for _, p := range o.peers {
		p.Close()
	}
	o.peersMu.Unlock()

	return nil
}

// startListener creates and starts the TCP/TLS listener.
func (o *Overlay) startListener() error {
	tcpListener, err := net.Listen("tcp", o.cfg.ListenAddr)
	if err != nil {
		return err
	}

	tlsConfig := &tls.Config{
		Certificates:       []tls.Certificate{o.identity.TLSCertificate()},
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
		ClientAuth:         tls.RequestClientCert,
	}

	o.listener = tls.NewListener(tcpListener, tlsConfig)
	return nil
}

// acceptLoop accepts incoming connections.
func (o *Overlay) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := o.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		go o.handleInbound(ctx, conn)
	}
}

// handleInbound is the onHandoff path for an accepted TCP/TLS connection: it
// works through self-connect, admission-budget, slot, and handshake checks
// in order, refusing with a 503 + redirect body the moment one fails so a
// well-behaved peer can try elsewhere, and only proceeds to run the peer's
// read/write loops once every check (including Activate) has succeeded.
func (o *Overlay) handleInbound(ctx context.Context, conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	endpoint, _ := ParseEndpoint(remoteAddr)
	local := o.localEndpoint()

	if local.Host != "" && local.String() == endpoint.String() {
		o.log.Debug("refusing self-connect", "addr", remoteAddr)
		conn.Close()
		return
	}

	consumer := o.resources.NewInboundEndpoint(endpoint.Host)
	consumer.Charge(ResourceChargeInboundConnect)
	if consumer.Disconnect() {
		o.log.Warn("refusing inbound connection over resource budget", "ip", endpoint.Host)
		o.writeRefusal(conn)
		return
	}
	if consumer.IsWarning() {
		o.log.Warn("inbound connection from overloaded source", "ip", endpoint.Host)
	}

	slot, err := o.slots.NewInboundSlot(local, endpoint, o.isFixedPeer(endpoint))
	if err != nil {
		o.log.Debug("rejecting inbound connection", "addr", remoteAddr, "err", err)
		o.writeRefusal(conn)
		return
	}

	peerID := PeerID(o.nextID.Add(1))
	peer := NewPeer(peerID, endpoint, true, o.identity, o.events)
	peer.AcceptConnection(conn)

	remoteKey, sharedValue, err := o.verifyInboundHandshake(peer, conn.(*tls.Conn))
	if err != nil {
		o.log.Debug("inbound handshake failed", "addr", remoteAddr, "err", err)
		o.slots.OnClosed(slot.ID())
		conn.Close()
		o.events <- Event{
			Type:     EventPeerFailed,
			PeerID:   peerID,
			Endpoint: endpoint,
			Inbound:  true,
			Error:    err,
		}
		return
	}

	isCluster := o.isClusterKey(remoteKey)
	switch result := o.slots.Activate(slot.ID(), remoteKey, isCluster); result {
	case ActivateDuplicate, ActivateFull:
		o.log.Debug("refusing inbound peer", "addr", remoteAddr, "result", result.String())
		o.slots.OnClosed(slot.ID())
		o.writeRefusal(conn)
		return
	}

	cfg := HandshakeConfig{UserAgent: o.cfg.UserAgent, NetworkID: o.cfg.NetworkID, CrawlPublic: o.cfg.CrawlPublic}
	resp := BuildHandshakeResponse(o.identity, sharedValue, cfg)
	if err := resp.Write(conn); err != nil {
		o.log.Debug("send handshake response", "addr", remoteAddr, "err", err)
		o.slots.OnClosed(slot.ID())
		conn.Close()
		return
	}

	if !o.slots.OnConnected(slot.ID(), local) {
		o.log.Debug("self-dial detected post-connect", "addr", remoteAddr)
		o.slots.OnClosed(slot.ID())
		conn.Close()
		return
	}
	o.addPeer(peer, slot.ID())

	// Run peer read/write loops
	go func() {
		peer.Run(ctx)
		o.removePeer(peerID)
	}()
}

// verifyInboundHandshake reads and validates the inbound upgrade request,
// returning the peer's verified node key and the TLS shared value the
// response must be built over. It writes no response: the caller decides
// between a 101 upgrade and a 503 refusal only after consulting
// SlotTable.Activate, so a duplicate or over-budget peer never gets a
// socket-level handshake acknowledgement.
func (o *Overlay) verifyInboundHandshake(peer *Peer, tlsConn *tls.Conn) (*PublicKeyToken, []byte, error) {
	sharedValue, err := MakeSharedValue(tlsConn)
	if err != nil {
		return nil, nil, NewHandshakeError(peer.Endpoint(), "shared_value", err)
	}

	deadline := time.Now().Add(o.cfg.HandshakeTimeout)
	tlsConn.SetDeadline(deadline)
	defer tlsConn.SetDeadline(time.Time{})

	req, err := http.ReadRequest(bufio.NewReader(tlsConn))
	if err != nil {
		return nil, nil, NewHandshakeError(peer.Endpoint(), "read_request", err)
	}
	defer req.Body.Close()

	if err := ValidateHandshakeRequest(req); err != nil {
		return nil, nil, NewHandshakeError(peer.Endpoint(), "validate", err)
	}

	cfg := HandshakeConfig{
		UserAgent:   o.cfg.UserAgent,
		NetworkID:   o.cfg.NetworkID,
		CrawlPublic: o.cfg.CrawlPublic,
	}

	remoteKey, err := VerifyPeerHandshake(req.Header, sharedValue, o.identity.EncodedPublicKey(), cfg)
	if err != nil {
		return nil, nil, NewHandshakeError(peer.Endpoint(), "verify", err)
	}

	peer.mu.Lock()
	peer.remotePubKey = remoteKey
	peer.capabilities = NewPeerCapabilities()
	peer.mu.Unlock()

	return remoteKey, sharedValue, nil
}

// writeRefusal sends a 503 carrying a handful of alternative peers for the
// caller to retry against, then closes conn. It is
// built independently of any parsed *http.Request since http.Response.Write
// doesn't require one, which matters here because a refusal can happen
// before a request has even been read (self-connect, resource budget).
func (o *Overlay) writeRefusal(conn net.Conn) {
	defer conn.Close()

	body := redirectBody{PeerIPs: make([]string, 0, 10)}
	for _, ep := range o.redirect(10) {
		body.PeerIPs = append(body.PeerIPs, ep.String())
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return
	}

	resp := &http.Response{
		StatusCode: http.StatusServiceUnavailable,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header: http.Header{
			"Content-Type": []string{"application/json"},
		},
		Body:          io.NopCloser(bytes.NewReader(payload)),
		ContentLength: int64(len(payload)),
	}
	resp.Write(conn)
}

// eventLoop processes internal events.
func (o *Overlay) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-o.events:
			o.handleEvent(evt)
		}
	}
}

// handleEvent dispatches events to appropriate handlers.
func (o *Overlay) handleEvent(evt Event) {
	switch evt.Type {
	case EventPeerConnected:
		o.onPeerConnected(evt)
	case EventPeerHandshakeComplete:
		o.onPeerHandshakeComplete(evt)
	case EventPeerDisconnected:
		o.onPeerDisconnected(evt)
	case EventPeerFailed:
		o.onPeerFailed(evt)
	case EventMessageReceived:
		o.onMessageReceived(evt)
	case EventEndpointsReceived:
		o.onEndpointsReceived(evt)
	case EventLedgerResponse:
		o.onLedgerResponse(evt)
	}
}

func (o *Overlay) onPeerConnected(evt Event) {
	o.discovery.MarkConnected(evt.Endpoint.String(), evt.PeerID)
}

func (o *Overlay) onPeerHandshakeComplete(evt Event) {
	o.peersMu.RLock()
	slotID, hasSlot := o.peerSlot[evt.PeerID]
	peer, hasPeer := o.peers[evt.PeerID]
	o.peersMu.RUnlock()
	if !hasSlot || !hasPeer {
		return
	}

	key := peer.RemotePublicKey()
	isCluster := o.isClusterKey(key)
	switch result := o.slots.Activate(slotID, key, isCluster); result {
	case ActivateDuplicate, ActivateFull:
		o.log.Debug("closing peer after activation refusal", "peer", evt.PeerID, "result", result.String())
		peer.Close()
	}
}

func (o *Overlay) onPeerDisconnected(evt Event) {
	o.discovery.MarkDisconnected(evt.PeerID)
	o.relay.RemovePeer(evt.PeerID)

	o.peersMu.RLock()
	slotID, hasSlot := o.peerSlot[evt.PeerID]
	o.peersMu.RUnlock()
	if hasSlot {
		o.slots.OnClosed(slotID)
	}
	if evt.Endpoint.Host != "" && !o.hasOtherPeerFromHost(evt.Endpoint.Host, evt.PeerID) {
		o.resources.Remove(evt.Endpoint.Host)
	}
}

func (o *Overlay) onPeerFailed(evt Event) {
	if o.discovery.bootCache != nil {
		o.discovery.bootCache.MarkFailed(evt.Endpoint.String())
	}
}

// relayableCategories are the message categories the hash router dedups and
// rebroadcasts to the rest of the mesh rather than just handing to local
// consumers.
var relayableCategories = map[TrafficCategory]bool{
	CategoryProposal:    true,
	CategoryValidation:  true,
	CategoryTransaction: true,
}

func (o *Overlay) onMessageReceived(evt Event) {
	category := CategorizeMessage(evt.MessageType)

	peer, hasPeer := o.peerByID(evt.PeerID)
	if hasPeer {
		peer.RecordMessage(category != CategoryUnknown)
	}

	sourceIP := o.sourceIPFor(evt.PeerID)
	if sourceIP != "" && o.resources.ReportTraffic(sourceIP, category, true) {
		o.log.Warn("disconnecting overloaded peer", "peer", evt.PeerID, "ip", sourceIP)
		if hasPeer {
			peer.RecordDisconnect()
			peer.Close()
		}
		return
	}

	if MessageType(evt.MessageType) == TypeManifests {
		o.handleManifestsMessage(evt)
	}

	if relayableCategories[category] {
		o.relayMessage(evt)
		if category == CategoryProposal {
			if ps, err := DecodeMessage(MessageType(evt.MessageType), evt.Payload); err == nil {
				if proposal, ok := ps.(*message.ProposeSet); ok {
					o.relay.OnMessage(proposal.NodePubKey, evt.PeerID)
				}
			}
		}
	}

	// Forward to external consumers
	select {
	case o.messages <- &InboundMessage{
		PeerID:  evt.PeerID,
		Type:    evt.MessageType,
		Payload: evt.Payload,
	}:
	default:
		// Drop if channel full
	}
}

// relayMessage rebroadcasts a relayable message to peers that the hash
// router has not already seen it from, skipping the peer it arrived on.
// For hop-carrying messages (proposals, validations) it enforces
// Config.MaxTTL: a message that has already been relayed MaxTTL times is
// dropped here rather than forwarded further, and the hash router's dedup
// key is computed on the hop-zeroed payload so a message's hop count
// doesn't change what "the same message" means for dedup purposes.
func (o *Overlay) relayMessage(evt Event) {
	payload := evt.Payload
	dedupPayload := payload

	msg, err := DecodeMessage(MessageType(evt.MessageType), payload)
	if err == nil {
		if carrier, ok := msg.(HopCarrier); ok {
			hops := carrier.GetHops()
			if o.cfg.MaxTTL > 0 && hops >= o.cfg.MaxTTL {
				return
			}
			if o.cfg.Expire {
				carrier.SetHops(0)
			} else {
				carrier.SetHops(hops + 1)
			}
			if reencoded, err := EncodeMessage(msg); err == nil {
				payload = reencoded
			}

			carrier.SetHops(0)
			if canon, err := EncodeMessage(msg); err == nil {
				dedupPayload = canon
			}
		}
	}

	uid := contentHash(dedupPayload)
	_, toSend := o.hashRouter.SwapSet(uid, map[PeerID]struct{}{evt.PeerID: {}}, o.connectedPeerIDs())
	if len(toSend) == 0 {
		return
	}

	// Once reduce-relay has picked a selected set for this validator, a
	// proposal only needs to reach that set: the selected peers are
	// themselves relaying to the rest of the mesh, so flooding every
	// non-duplicate peer here would just duplicate their work.
	if proposal, ok := msg.(*message.ProposeSet); ok {
		if selected := o.relay.GetSelectedPeers(proposal.NodePubKey); len(selected) > 0 {
			selectedSet := make(map[PeerID]struct{}, len(selected))
			for _, id := range selected {
				selectedSet[id] = struct{}{}
			}
			restricted := toSend[:0]
			for _, id := range toSend {
				if _, ok := selectedSet[id]; ok {
					restricted = append(restricted, id)
				}
			}
			toSend = restricted
			if len(toSend) == 0 {
				return
			}
		}
	}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, MessageType(evt.MessageType), payload); err != nil {
		o.log.Debug("reframe relay message", "err", err)
		return
	}
	framed := buf.Bytes()

	for _, peerID := range toSend {
		if peer, ok := o.peerByID(peerID); ok {
			peer.Send(framed)
		}
	}
}

// handleManifestsMessage decodes an inbound Manifests message, applies each
// entry against the manifest cache, and re-gossips any that were newly
// accepted to every other connected peer so a rotation propagates across
// the mesh in one hop per relay.
func (o *Overlay) handleManifestsMessage(evt Event) {
	decoded, err := DecodeMessage(TypeManifests, evt.Payload)
	if err != nil {
		o.log.Debug("decode manifests message", "peer", evt.PeerID, "err", err)
		return
	}
	manifests, ok := decoded.(*message.Manifests)
	if !ok {
		return
	}

	var accepted []*Manifest
	for _, entry := range manifests.List {
		m, err := ParseManifestSTObject(entry.STObject)
		if err != nil {
			o.log.Debug("parse manifest", "peer", evt.PeerID, "err", err)
			continue
		}
		if disposition := o.manifests.Apply(m); disposition == ManifestAccepted {
			accepted = append(accepted, m)
		}
	}
	if len(accepted) == 0 {
		return
	}

	out := &message.Manifests{List: make([]message.Manifest, 0, len(accepted))}
	for _, m := range accepted {
		blob, err := SerializeManifestSTObject(m)
		if err != nil {
			continue
		}
		out.List = append(out.List, message.Manifest{STObject: blob})
	}
	framed, err := encodeFramedMessage(out)
	if err != nil {
		o.log.Debug("encode manifest gossip", "err", err)
		return
	}

	o.peersMu.RLock()
	defer o.peersMu.RUnlock()
	for id, peer := range o.peers {
		if id == evt.PeerID {
			continue
		}
		peer.Send(framed)
	}
}

func (o *Overlay) onEndpointsReceived(evt Event) {
	hop := 1
	if o.cfg.Expire {
		hop = 0
	}
	for _, ep := range evt.Endpoints {
		o.discovery.AddPeer(ep.String(), hop, evt.PeerID)
	}
}

func (o *Overlay) onLedgerResponse(evt Event) {
	o.Send(evt.PeerID, evt.Payload)
}

// discoveryLoop periodically attempts to connect to new peers.
func (o *Overlay) discoveryLoop(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.autoconnect(ctx)
		}
	}
}

// autoconnect attempts to connect to peers if we need more.
func (o *Overlay) autoconnect(ctx context.Context) {
	if !o.discovery.NeedsMorePeers() {
		return
	}

	count := o.cfg.MaxOutbound - o.outboundCount()
	if count <= 0 {
		return
	}

	addrs := o.discovery.SelectPeersToConnect(count)
	for _, addr := range addrs {
		select {
		case <-ctx.Done():
			return
		default:
			go o.Connect(addr)
		}
	}
}

// maintenanceLoop performs periodic maintenance tasks.
func (o *Overlay) maintenanceLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.performMaintenance()
		}
	}
}

func (o *Overlay) performMaintenance() {
	// Cleanup expired ledger requests
	o.ledgerSync.CleanupExpiredRequests()
}

// handleSquelch is called by the relay system when a peer should be squelched.
func (o *Overlay) handleSquelch(validator []byte, peerID PeerID, squelch bool, duration time.Duration) {
	o.peersMu.RLock()
	peer, exists := o.peers[peerID]
	o.peersMu.RUnlock()

	if !exists {
		return
	}

	msg := &message.Squelch{
		Squelch:         squelch,
		ValidatorPubKey: validator,
		SquelchDuration: uint32(duration / time.Second),
	}

	framed, err := encodeFramedMessage(msg)
	if err != nil {
		o.log.Error("encode squelch message", "peer", peerID, "err", err)
		return
	}

	if err := peer.Send(framed); err != nil {
		o.log.Debug("send squelch message", "peer", peerID, "err", err)
	}
}

// encodeFramedMessage serializes msg and wraps it with a wire header ready
// for Peer.Send.
func encodeFramedMessage(msg message.Message) ([]byte, error) {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg.Type(), payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Connect initiates an outbound connection to the specified address.
func (o *Overlay) Connect(addr string) error {
	endpoint, err := ParseEndpoint(addr)
	if err != nil {
		return err
	}

	// Check if already connected
	if o.isConnectedTo(endpoint) {
		return ErrAlreadyConnected
	}

	fixed := o.isFixedPeer(endpoint)
	slot, err := o.slots.NewOutboundSlot(endpoint, fixed)
	if err != nil {
		return err
	}

	o.resources.NewOutboundEndpoint(endpoint.Host)

	peerID := PeerID(o.nextID.Add(1))
	peer := NewPeer(peerID, endpoint, false, o.identity, o.events)

	o.events <- Event{
		Type:     EventPeerConnecting,
		PeerID:   peerID,
		Endpoint: endpoint,
		Inbound:  false,
	}

	ctx, cancel := context.WithTimeout(o.ctx, o.cfg.ConnectTimeout)
	defer cancel()

	cfg := PeerConfig{
		SendBufferSize: DefaultSendBufferSize,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		},
	}

	if err := peer.Connect(ctx, cfg); err != nil {
		o.slots.OnClosed(slot.ID())
		o.events <- Event{
			Type:     EventPeerFailed,
			PeerID:   peerID,
			Endpoint: endpoint,
			Inbound:  false,
			Error:    err,
		}
		return err
	}

	if !o.slots.OnConnected(slot.ID(), o.localEndpoint()) {
		o.slots.OnClosed(slot.ID())
		peer.Close()
		return ErrSelfConnection
	}
	o.addPeer(peer, slot.ID())
	o.events <- Event{Type: EventPeerHandshakeComplete, PeerID: peerID, Endpoint: endpoint, Inbound: false}

	// Run peer read/write loops
	go func() {
		peer.Run(o.ctx)
		o.removePeer(peerID)
	}()

	return nil
}

// Broadcast sends a message to all connected peers.
func (o *Overlay) Broadcast(msg []byte) error {
	o.peersMu.RLock()
	defer o.peersMu.RUnlock()

	for _, peer := range o.peers {
		if peer.State() == PeerStateConnected {
			peer.Send(msg)
		}
	}
	return nil
}

// Send sends a message to a specific peer.
func (o *Overlay) Send(peerID PeerID, msg []byte) error {
	o.peersMu.RLock()
	peer, exists := o.peers[peerID]
	o.peersMu.RUnlock()

	if !exists {
		return ErrPeerNotFound
	}

	return peer.Send(msg)
}

// Peers returns information about all connected peers.
func (o *Overlay) Peers() []PeerInfo {
	o.peersMu.RLock()
	defer o.peersMu.RUnlock()

	result := make([]PeerInfo, 0, len(o.peers))
	for _, peer := range o.peers {
		result = append(result, peer.Info())
	}
	return result
}

// PeerCount returns the number of connected peers.
func (o *Overlay) PeerCount() int {
	o.peersMu.RLock()
	defer o.peersMu.RUnlock()
	return len(o.peers)
}

// Messages returns a channel for receiving inbound messages.
func (o *Overlay) Messages() <-chan *InboundMessage {
	return o.messages
}

// Identity returns the node's identity.
func (o *Overlay) Identity() *Identity {
	return o.identity
}

// addPeer adds a peer to the overlay, associating it with its admission
// slot so later lifecycle events can look the slot back up by PeerID.
func (o *Overlay) addPeer(peer *Peer, slotID SlotID) {
	o.peersMu.Lock()
	o.peers[peer.ID()] = peer
	o.peerSlot[peer.ID()] = slotID
	o.peersMu.Unlock()

	o.events <- Event{
		Type:     EventPeerConnected,
		PeerID:   peer.ID(),
		Endpoint: peer.Endpoint(),
		Inbound:  peer.Inbound(),
	}
}

// removePeer removes a peer from the overlay.
func (o *Overlay) removePeer(peerID PeerID) {
	o.peersMu.Lock()
	peer, exists := o.peers[peerID]
	delete(o.peers, peerID)
	delete(o.peerSlot, peerID)
	o.peersMu.Unlock()

	if exists {
		o.events <- Event{
			Type:     EventPeerDisconnected,
			PeerID:   peerID,
			Endpoint: peer.Endpoint(),
			Inbound:  peer.Inbound(),
		}
	}
}

// peerByID looks up a connected peer by ID.
func (o *Overlay) peerByID(peerID PeerID) (*Peer, bool) {
	o.peersMu.RLock()
	defer o.peersMu.RUnlock()
	p, ok := o.peers[peerID]
	return p, ok
}

// connectedPeerIDs returns the IDs of all currently tracked peers.
func (o *Overlay) connectedPeerIDs() []PeerID {
	o.peersMu.RLock()
	defer o.peersMu.RUnlock()
	ids := make([]PeerID, 0, len(o.peers))
	for id := range o.peers {
		ids = append(ids, id)
	}
	return ids
}

// sourceIPFor returns the source IP a peer connected from, or "" if unknown.
func (o *Overlay) sourceIPFor(peerID PeerID) string {
	peer, ok := o.peerByID(peerID)
	if !ok {
		return ""
	}
	return peer.Endpoint().Host
}

// hasOtherPeerFromHost reports whether any peer besides except is still
// connected from host, used to decide whether a resource consumer can be
// dropped when a connection closes.
func (o *Overlay) hasOtherPeerFromHost(host string, except PeerID) bool {
	o.peersMu.RLock()
	defer o.peersMu.RUnlock()
	for id, peer := range o.peers {
		if id != except && peer.Endpoint().Host == host {
			return true
		}
	}
	return false
}

// isFixedPeer reports whether endpoint is one of the configured fixed peers.
func (o *Overlay) isFixedPeer(endpoint Endpoint) bool {
	addr := endpoint.String()
	for _, fixed := range o.cfg.FixedPeers {
		if fixed == addr || strings.EqualFold(fixed, addr) {
			return true
		}
	}
	return false
}

// contentHash returns the dedup key the hash router uses for a relayed
// message's payload.
func contentHash(payload []byte) [32]byte {
	var out [32]byte
	copy(out[:], sha512Half(payload))
	return out
}

// isConnectedTo checks if we're already connected to an endpoint.
func (o *Overlay) isConnectedTo(endpoint Endpoint) bool {
	o.peersMu.RLock()
	defer o.peersMu.RUnlock()

	for _, peer := range o.peers {
		if peer.Endpoint().String() == endpoint.String() {
			return true
		}
	}
	return false
}

// outboundCount returns the number of outbound connections admitted by the
// slot table (fixed-peer slots are tracked separately and excluded).
func (o *Overlay) outboundCount() int {
	return o.slots.Count(SlotOutbound)
}

// localEndpoint returns this node's own advertised endpoint, used for
// self-connect detection. An empty PublicIP means we don't know our own
// address (NAT'd/unconfigured), so self-connect checks are skipped.
func (o *Overlay) localEndpoint() Endpoint {
	if o.cfg.PublicIP == "" {
		return Endpoint{}
	}
	_, portStr, err := net.SplitHostPort(o.cfg.ListenAddr)
	if err != nil {
		portStr = o.cfg.ListenAddr
	}
	port, err := strconv.Atoi(strings.TrimPrefix(portStr, ":"))
	if err != nil {
		return Endpoint{Host: o.cfg.PublicIP}
	}
	return Endpoint{Host: o.cfg.PublicIP, Port: uint16(port)}
}

// isClusterKey reports whether key belongs to a node in the configured
// administrative cluster, exempting it from the resource manager and the
// max-peers ceiling.
func (o *Overlay) isClusterKey(key *PublicKeyToken) bool {
	if key == nil {
		return false
	}
	encoded := key.Encode()
	for _, k := range o.cfg.ClusterKeys {
		if k == encoded {
			return true
		}
	}
	return false
}

// redirect returns up to limit candidate peers to hand back to a peer
// refused admission, drawn from the discovery boot cache/candidate pool.
func (o *Overlay) redirect(limit int) []Endpoint {
	return o.discovery.Redirect(limit)
}
