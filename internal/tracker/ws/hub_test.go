package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T, onClients func(int)) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	h.OnClients = onClients
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	h, srv := startHub(t, nil)
	a := dial(t, srv)
	b := dial(t, srv)

	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	payload := []byte(`{"items":[],"updatedAt":"2024-03-15T12:00:00Z"}`)
	h.Broadcast(payload)

	for _, c := range []*websocket.Conn{a, b} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := c.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, string(payload), string(msg))
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	var last atomic.Int64
	h, srv := startHub(t, func(n int) { last.Store(int64(n)) })

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	_ = conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), last.Load())
}
