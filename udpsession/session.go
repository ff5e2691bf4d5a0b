// Package udpsession implements spec §4.7: a multiplexer that receives
// raw VITA-49 datagrams — from a UDP socket or a WebRTC data channel
// carrying the same bytes — decodes them, and dispatches to per-kind
// subscribers.
package udpsession

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/daveisadork/flexcore/metrics"
	"github.com/daveisadork/flexcore/vita"
)

// Datagram is one raw inbound payload, delivered verbatim from whatever
// transport carried it (native UDP socket or WebRTC data channel — spec
// §4.6 "the session is agnostic to transport").
type Datagram []byte

// Source abstracts a raw-datagram transport; both a net.PacketConn-backed
// UDP socket and a WebRTC data channel satisfy it.
type Source interface {
	// Recv blocks for the next datagram, or returns an error (including
	// ctx.Err()) when the source is closed or ctx is canceled.
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// udpSource adapts a net.PacketConn into a Source (spec §4.6 "either a
// native UDP socket"), grounded on the teacher's internal/radio/ws.go
// readUDPPackets loop.
type udpSource struct {
	conn net.PacketConn
}

// NewUDPSource wraps an already-connected packet connection.
func NewUDPSource(conn net.PacketConn) Source {
	return &udpSource{conn: conn}
}

func (s *udpSource) Recv(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 64*1024)
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		n, _, err := s.conn.ReadFrom(buf)
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		return out, nil
	}
}

func (s *udpSource) Close() error { return s.conn.Close() }

// Subscription is returned by Subscribe; Unsubscribe is idempotent.
type Subscription struct {
	id      string
	session *Session
}

// Unsubscribe removes the subscription. Calling it more than once, or on
// a zero-value Subscription, is a no-op.
func (s Subscription) Unsubscribe() {
	if s.session == nil {
		return
	}
	s.session.unsubscribe(s.id)
}

type subscriber struct {
	id string
	fn func(vita.Packet)
}

// Session dispatches decoded VITA packets from a Source to subscribers
// registered per packet class, synchronously from the receive loop (spec
// §4.7 "dispatch is synchronous from the receive callback; subscribers
// are expected to be non-blocking").
type Session struct {
	src    Source
	logger *slog.Logger

	mu   sync.Mutex
	subs map[vita.ClassCode][]subscriber
	all  []subscriber // subscribers registered for every class

	malformed atomic.Uint64
	metrics   *metrics.Metrics
}

// SetMetrics attaches a metrics recorder; nil disables recording.
func (s *Session) SetMetrics(m *metrics.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// New constructs a Session reading from src. Call Run to start
// dispatching.
func New(src Source, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		src:    src,
		logger: logger,
		subs:   make(map[vita.ClassCode][]subscriber),
	}
}

// Subscribe registers fn to be called, synchronously, for every decoded
// packet whose class code matches class. The returned Subscription's
// Unsubscribe is idempotent (spec §4.7 "each subscription returns a
// handle whose unsubscribe is idempotent").
func (s *Session) Subscribe(class vita.ClassCode, fn func(vita.Packet)) Subscription {
	id := uuid.NewString()
	s.mu.Lock()
	s.subs[class] = append(s.subs[class], subscriber{id: id, fn: fn})
	s.mu.Unlock()
	return Subscription{id: id, session: s}
}

// SubscribeAll registers fn for every decoded packet regardless of class,
// e.g. for a raw pass-through bridge.
func (s *Session) SubscribeAll(fn func(vita.Packet)) Subscription {
	id := uuid.NewString()
	s.mu.Lock()
	s.all = append(s.all, subscriber{id: id, fn: fn})
	s.mu.Unlock()
	return Subscription{id: id, session: s}
}

func (s *Session) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for class, subs := range s.subs {
		s.subs[class] = removeByID(subs, id)
	}
	s.all = removeByID(s.all, id)
}

func removeByID(subs []subscriber, id string) []subscriber {
	out := subs[:0]
	for _, sub := range subs {
		if sub.id != id {
			out = append(out, sub)
		}
	}
	return out
}

// Run reads datagrams from the source until ctx is canceled or the
// source errors, decoding and dispatching each one.
func (s *Session) Run(ctx context.Context) error {
	for {
		raw, err := s.src.Recv(ctx)
		if err != nil {
			return err
		}
		s.dispatch(raw)
	}
}

func (s *Session) dispatch(raw []byte) {
	pkt, err := vita.Decode(raw)
	if err != nil {
		s.malformed.Add(1)
		s.mu.Lock()
		m := s.metrics
		s.mu.Unlock()
		m.RecordUDPMalformed()
		s.logger.Debug("udpsession: dropping malformed datagram", "error", err, "bytes", len(raw))
		return
	}

	s.mu.Lock()
	var targeted []subscriber
	if pkt.HasClassID {
		targeted = append(targeted, s.subs[pkt.ClassID.PacketClass]...)
	}
	broadcast := append([]subscriber(nil), s.all...)
	m := s.metrics
	s.mu.Unlock()

	if pkt.HasClassID {
		m.RecordUDPDispatched(fmt.Sprintf("0x%04X", pkt.ClassID.PacketClass))
	}

	for _, sub := range targeted {
		sub.fn(pkt)
	}
	for _, sub := range broadcast {
		sub.fn(pkt)
	}
}

// MalformedCount reports how many datagrams failed to decode, for
// diagnostics/metrics.
func (s *Session) MalformedCount() uint64 {
	return s.malformed.Load()
}

// Close closes the underlying source.
func (s *Session) Close() error {
	return s.src.Close()
}
