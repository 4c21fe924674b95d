package peermanagement

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ConnectStage names a phase of an outbound connect attempt. Each
// stage has its own watchdog so a peer that accepts the TCP connection and
// then goes silent at any later phase is torn down instead of held open
// indefinitely.
type ConnectStage int

const (
	StageResolving ConnectStage = iota
	StageConnecting
	StageTLSHandshake
	StageHTTPSend
	StageHTTPReceive
	StageHandoff
	StageFail
)

// String returns the taxonomy name for the stage.
func (s ConnectStage) String() string {
	switch s {
	case StageResolving:
		return "resolving"
	case StageConnecting:
		return "connecting"
	case StageTLSHandshake:
		return "tls_handshake"
	case StageHTTPSend:
		return "http_send"
	case StageHTTPReceive:
		return "http_receive"
	case StageHandoff:
		return "handoff"
	case StageFail:
		return "fail"
	default:
		return "unknown"
	}
}

// DefaultStageWatchdog is the maximum time a single stage may take before
// the attempt is abandoned.
const DefaultStageWatchdog = 15 * time.Second

// ConnectAttemptResult is the outcome of a completed attempt.
type ConnectAttemptResult struct {
	Stage        ConnectStage
	Conn         *tls.Conn
	RemoteKey    *PublicKeyToken
	Capabilities *PeerCapabilities
	Redirects    []Endpoint
	Err          error
}

// redirectBody is the JSON shape of a busy peer's 503 response:
// {"peer-ips": ["1.2.3.4:51235", ...]}.
type redirectBody struct {
	PeerIPs []string `json:"peer-ips"`
}

// ConnectAttempt drives a single outbound connection through
// Resolving -> Connecting -> TlsHandshake -> HttpSend -> HttpReceive and
// finally Handoff (success) or Fail. On a 503 response it parses the
// redirect body before tearing the connection down so the caller can feed
// the suggested endpoints back into peer discovery.
type ConnectAttempt struct {
	endpoint Endpoint
	identity *Identity
	cfg      HandshakeConfig
	watchdog time.Duration

	stage ConnectStage
}

// NewConnectAttempt creates an attempt against endpoint using identity for
// the handshake signature. watchdog of 0 uses DefaultStageWatchdog.
func NewConnectAttempt(endpoint Endpoint, identity *Identity, watchdog time.Duration) *ConnectAttempt {
	if watchdog <= 0 {
		watchdog = DefaultStageWatchdog
	}
	return &ConnectAttempt{
		endpoint: endpoint,
		identity: identity,
		cfg:      DefaultHandshakeConfig(),
		watchdog: watchdog,
		stage:    StageResolving,
	}
}

// Stage returns the attempt's current stage.
func (a *ConnectAttempt) Stage() ConnectStage {
	return a.stage
}

func (a *ConnectAttempt) withWatchdog(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.watchdog)
}

// Run executes the attempt to completion. It never panics on a well-formed
// peer response; any failure is reported through the result's Err and
// Stage fields rather than a returned error, so a caller doing bulk
// fan-out connect attempts can collect results uniformly.
func (a *ConnectAttempt) Run(ctx context.Context) *ConnectAttemptResult {
	a.stage = StageConnecting
	dialCtx, cancel := a.withWatchdog(ctx)
	defer cancel()

	dialer := &net.Dialer{}
	tcpConn, err := dialer.DialContext(dialCtx, "tcp", a.endpoint.String())
	if err != nil {
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageConnecting, Err: fmt.Errorf("dial: %w", err)}
	}

	a.stage = StageTLSHandshake
	tlsCtx, cancel := a.withWatchdog(ctx)
	defer cancel()

	tlsConn := tls.Client(tcpConn, &tls.Config{InsecureSkipVerify: true, MinVersion: tls.VersionTLS12})
	if err := tlsConn.HandshakeContext(tlsCtx); err != nil {
		tcpConn.Close()
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageTLSHandshake, Err: fmt.Errorf("tls handshake: %w", err)}
	}

	sharedValue, err := MakeSharedValue(tlsConn)
	if err != nil {
		tlsConn.Close()
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageTLSHandshake, Err: fmt.Errorf("shared value: %w", err)}
	}

	a.stage = StageHTTPSend
	req, err := BuildHandshakeRequest(a.identity, sharedValue, a.cfg)
	if err != nil {
		tlsConn.Close()
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageHTTPSend, Err: fmt.Errorf("build request: %w", err)}
	}

	deadline := time.Now().Add(a.watchdog)
	tlsConn.SetDeadline(deadline)
	defer tlsConn.SetDeadline(time.Time{})

	if err := req.Write(tlsConn); err != nil {
		tlsConn.Close()
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageHTTPSend, Err: fmt.Errorf("send request: %w", err)}
	}

	a.stage = StageHTTPReceive
	reader := bufio.NewReader(tlsConn)
	resp, err := http.ReadResponse(reader, req)
	if err != nil {
		tlsConn.Close()
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageHTTPReceive, Err: fmt.Errorf("read response: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		var body redirectBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		tlsConn.Close()
		a.stage = StageFail

		redirects := make([]Endpoint, 0, len(body.PeerIPs))
		for _, raw := range body.PeerIPs {
			if ep, err := ParseEndpoint(raw); err == nil {
				redirects = append(redirects, ep)
			}
		}
		return &ConnectAttemptResult{
			Stage:     StageHTTPReceive,
			Redirects: redirects,
			Err:       errors.New("peer busy: service unavailable"),
		}
	}

	if resp.StatusCode != http.StatusSwitchingProtocols {
		tlsConn.Close()
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageHTTPReceive, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	remoteKey, err := VerifyPeerHandshake(resp.Header, sharedValue, a.identity.EncodedPublicKey(), a.cfg)
	if err != nil {
		tlsConn.Close()
		a.stage = StageFail
		return &ConnectAttemptResult{Stage: StageHTTPReceive, Err: fmt.Errorf("verify handshake: %w", err)}
	}

	a.stage = StageHandoff
	return &ConnectAttemptResult{
		Stage:        StageHandoff,
		Conn:         tlsConn,
		RemoteKey:    remoteKey,
		Capabilities: NewPeerCapabilities(),
	}
}
