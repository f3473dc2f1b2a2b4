package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.handleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration races the first broadcast, so keep sending until the
	// frame lands
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Broadcast([]byte(`{"type":"trade"}`))
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"type":"trade"}`), msg)
}

// A connection arriving after the hub has shut down must be closed, not
// left blocking on registration.
func TestHubRejectsClientAfterShutdown(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{})
	go func() {
		hub.run(ctx)
		close(ran)
	}()
	cancel()
	<-ran

	srv := httptest.NewServer(http.HandlerFunc(hub.handleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		return // upgrade itself failed, nothing leaked
	}
	defer conn.Close()

	// the server side drops the connection immediately; the read must
	// fail from the close, well before the deadline
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	start := time.Now()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
