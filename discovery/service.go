package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures a Service (spec §4.2 "listens for UDP broadcast
// beacons on a well-known port").
type Options struct {
	Port           int
	IdleRestart    time.Duration // default 30s
	HealthInterval time.Duration // default 5s
	MaxBackoff     time.Duration // default 5s
	OfflineTimeout time.Duration // default DefaultOfflineTimeout, passed to the Table
}

// Service listens for discovery beacons on a UDP port (dual-stack when
// available, separate v4/v6 sockets otherwise), decodes each one, and
// feeds it into a Table. It reconnects with backoff on bind failure and
// restarts the socket if no packet has arrived for IdleRestart, since a
// radio-side network change can otherwise leave a dual-stack socket
// silently wedged.
type Service struct {
	opt    Options
	logger *slog.Logger
	Table  *Table

	mu sync.Mutex
	c4 net.PacketConn
	c6 net.PacketConn

	lastPktUnix atomic.Int64
}

// New constructs a Service and its backing Table. onEvent receives
// Online/Change/Offline events as beacons are decoded.
func New(opt Options, logger *slog.Logger, onEvent func(Event)) *Service {
	if opt.IdleRestart == 0 {
		opt.IdleRestart = 30 * time.Second
	}
	if opt.HealthInterval == 0 {
		opt.HealthInterval = 5 * time.Second
	}
	if opt.MaxBackoff == 0 {
		opt.MaxBackoff = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		opt:    opt,
		logger: logger,
		Table:  NewTable(opt.OfflineTimeout, onEvent),
	}
	s.lastPktUnix.Store(time.Now().UnixNano())
	return s
}

// Run binds the discovery socket(s) and serves until ctx is canceled,
// reconnecting with exponential backoff on bind failure.
func (s *Service) Run(ctx context.Context) error {
	defer s.Table.Close()
	backoff := 0 * time.Millisecond
	for {
		if err := s.bindAll(ctx); err != nil {
			backoff = next(backoff, s.opt.MaxBackoff)
			s.logger.Warn("discovery bind failed, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		backoff = 0
		if err := s.serve(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			s.logger.Warn("discovery socket restarting", "error", err)
		}
	}
}

func (s *Service) bindAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c4 != nil {
		_ = s.c4.Close()
		s.c4 = nil
	}
	if s.c6 != nil {
		_ = s.c6.Close()
		s.c6 = nil
	}

	addr := fmt.Sprintf(":%d", s.opt.Port)
	lc := net.ListenConfig{Control: applyUDPSocketOptions}

	if c6, err := lc.ListenPacket(ctx, "udp6", addr); err == nil {
		s.c6 = c6
		s.lastPktUnix.Store(time.Now().UnixNano())
		return nil
	}

	c4, e4 := lc.ListenPacket(ctx, "udp4", addr)
	c6, e6 := lc.ListenPacket(ctx, "udp6", addr)
	if e4 != nil && e6 != nil {
		return errors.Join(e4, e6)
	}

	s.c4, s.c6 = c4, c6
	s.lastPktUnix.Store(time.Now().UnixNano())
	return nil
}

func (s *Service) serve(ctx context.Context) error {
	s.mu.Lock()
	c4, c6 := s.c4, s.c6
	s.mu.Unlock()

	errCh := make(chan error, 2)
	done := make(chan struct{})
	if c4 != nil {
		go s.readLoop(ctx, c4, errCh, done)
	}
	if c6 != nil {
		go s.readLoop(ctx, c6, errCh, done)
	}

	health := time.NewTicker(s.opt.HealthInterval)
	defer health.Stop()
	for {
		select {
		case err := <-errCh:
			close(done)
			s.closeAll()
			return err
		case <-health.C:
			last := time.Unix(0, s.lastPktUnix.Load())
			if time.Since(last) > s.opt.IdleRestart {
				close(done)
				s.closeAll()
				return errors.New("discovery socket idle, restarting")
			}
		case <-ctx.Done():
			close(done)
			s.closeAll()
			return ctx.Err()
		}
	}
}

func (s *Service) readLoop(ctx context.Context, pc net.PacketConn, errCh chan<- error, done <-chan struct{}) {
	buf := make([]byte, 64*1024)
	for {
		_ = pc.SetReadDeadline(time.Now().Add(10 * time.Second))
		n, _, err := pc.ReadFrom(buf)
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
				continue
			}
		}
		if err != nil {
			errCh <- err
			return
		}
		s.lastPktUnix.Store(time.Now().UnixNano())
		s.Table.IngestPacket(buf[:n])

		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		default:
		}
	}
}

// LocalAddr returns the address of whichever socket is currently bound
// (preferring the dual/IPv6 socket), for callers that bound to port 0 and
// need to discover the assigned port.
func (s *Service) LocalAddr() (net.Addr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c6 != nil {
		return s.c6.LocalAddr(), true
	}
	if s.c4 != nil {
		return s.c4.LocalAddr(), true
	}
	return nil, false
}

func (s *Service) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c4 != nil {
		_ = s.c4.Close()
		s.c4 = nil
	}
	if s.c6 != nil {
		_ = s.c6.Close()
		s.c6 = nil
	}
}

// next grows exponential backoff with bounded jitter.
func next(cur, max time.Duration) time.Duration {
	if cur <= 0 {
		cur = 250 * time.Millisecond
	} else {
		cur *= 2
		if cur > max {
			cur = max
		}
	}
	jmax := cur / 4
	if jmax < 50*time.Millisecond {
		jmax = 50 * time.Millisecond
	}
	jitter := time.Duration(rand.Int63n(int64(jmax)))
	return cur + jitter
}
