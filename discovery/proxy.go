package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// ProxyAdapter consumes an external discovery proxy's relayed beacon
// stream over WebSocket and feeds each binary frame into a Table, as an
// alternative to listening on the local UDP broadcast domain directly
// (spec §1 "a discovery proxy may relay beacons from a network this
// process cannot broadcast-listen on; only its byte-stream contract, not
// its implementation, is in scope here"). Each frame carries exactly one
// raw VITA discovery datagram, the same bytes a local UDP listener would
// have received.
type ProxyAdapter struct {
	url    string
	logger *slog.Logger
	Table  *Table

	dialer *websocket.Dialer
}

// NewProxyAdapter constructs an adapter that will dial url (a ws:// or
// wss:// endpoint) when Run is called.
func NewProxyAdapter(url string, offlineTimeout time.Duration, logger *slog.Logger, onEvent func(Event)) *ProxyAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProxyAdapter{
		url:    url,
		logger: logger,
		Table:  NewTable(offlineTimeout, onEvent),
		dialer: websocket.DefaultDialer,
	}
}

// Run dials the proxy and relays frames into the Table until ctx is
// canceled; when the dial fails or the connection drops, it redials
// with backoff.
func (p *ProxyAdapter) Run(ctx context.Context) error {
	defer p.Table.Close()
	backoff := 0 * time.Millisecond
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.runOnce(ctx); err != nil {
			backoff = next(backoff, 5*time.Second)
			p.logger.Warn("discovery proxy connection dropped, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		backoff = 0
	}
}

func (p *ProxyAdapter) runOnce(ctx context.Context) error {
	conn, _, err := p.dialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		p.Table.IngestPacket(data)
	}
}
