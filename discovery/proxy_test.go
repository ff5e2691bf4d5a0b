package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestProxyAdapterRelaysFramesIntoTable(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_ = conn.WriteMessage(websocket.BinaryMessage, vitaDiscoveryFrame("aaaa-bbbb", "10.1.1.1", 4992))
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"

	sink := &eventSink{}
	adapter := NewProxyAdapter(url, time.Hour, nil, sink.record)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = adapter.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	events := sink.snapshot()
	require.Equal(t, Online, events[0].Kind)
	require.Equal(t, "aaaa-bbbb", events[0].Descriptor.Serial)
}
