package peermanagement

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectStage_String(t *testing.T) {
	assert.Equal(t, "resolving", StageResolving.String())
	assert.Equal(t, "connecting", StageConnecting.String())
	assert.Equal(t, "tls_handshake", StageTLSHandshake.String())
	assert.Equal(t, "http_send", StageHTTPSend.String())
	assert.Equal(t, "http_receive", StageHTTPReceive.String())
	assert.Equal(t, "handoff", StageHandoff.String())
	assert.Equal(t, "fail", StageFail.String())
}

func TestConnectAttempt_DialFailureReportsConnectingStage(t *testing.T) {
	id, err := NewIdentity()
	require.NoError(t, err)

	attempt := NewConnectAttempt(Endpoint{Host: "127.0.0.1", Port: 1}, id, 500*time.Millisecond)
	result := attempt.Run(context.Background())

	require.Error(t, result.Err)
	assert.Equal(t, StageConnecting, result.Stage)
	assert.Equal(t, StageFail, attempt.Stage())
}

func TestConnectAttempt_503ParsesRedirects(t *testing.T) {
	serverID, err := NewIdentity()
	require.NoError(t, err)
	cert := serverID.TLSCertificate()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		tlsConn := tls.Server(conn, &tls.Config{Certificates: []tls.Certificate{cert}})
		defer tlsConn.Close()
		if err := tlsConn.Handshake(); err != nil {
			return
		}
		reader := bufio.NewReader(tlsConn)
		if _, err := http.ReadRequest(reader); err != nil {
			return
		}
		tlsConn.Write([]byte("HTTP/1.1 503 Service Unavailable\r\n" +
			"Content-Type: application/json\r\n" +
			"Connection: close\r\n\r\n" +
			`{"peer-ips":["10.0.0.9:51235"]}`))
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	clientID, err := NewIdentity()
	require.NoError(t, err)

	attempt := NewConnectAttempt(Endpoint{Host: "127.0.0.1", Port: uint16(port)}, clientID, 3*time.Second)
	result := attempt.Run(context.Background())

	require.Error(t, result.Err)
	assert.Equal(t, StageHTTPReceive, result.Stage)
	require.Len(t, result.Redirects, 1)
	assert.Equal(t, "10.0.0.9", result.Redirects[0].Host)
	assert.Equal(t, uint16(51235), result.Redirects[0].Port)
}
