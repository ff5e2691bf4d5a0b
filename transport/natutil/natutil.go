// Package natutil discovers a gateway's external address and manages
// port mappings for it, for advertising a reachable host candidate when
// the data plane runs over a direct UDP socket behind NAT. Adapted from
// the teacher's internal/nat/natmap.go with log replaced by slog.
package natutil

import (
	"fmt"
	"log/slog"
	"time"

	gonat "github.com/fd/go-nat"
)

type mapping struct {
	Proto       string
	Internal    int
	External    int
	Description string
	TTL         time.Duration
}

// Mapper owns a discovered NAT gateway and the port mappings created
// through it.
type Mapper struct {
	nat    gonat.NAT
	logger *slog.Logger
	maps   []mapping
	stop   chan struct{}
}

// Discover locates the local network's NAT gateway and its external
// address.
func Discover(logger *slog.Logger) (*Mapper, string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	n, err := gonat.DiscoverGateway()
	if err != nil {
		return nil, "", fmt.Errorf("natutil: discovery: %w", err)
	}
	if n == nil {
		return nil, "", fmt.Errorf("natutil: no NAT device found")
	}

	ip, err := n.GetExternalAddress()
	if err != nil {
		return nil, "", fmt.Errorf("natutil: external ip: %w", err)
	}
	return &Mapper{nat: n, logger: logger, stop: make(chan struct{})}, ip.String(), nil
}

// MapUDP requests a UDP port mapping for internal. Most gateways
// preserve the internal port as the external one.
func (m *Mapper) MapUDP(internal int, desc string, ttl time.Duration) error {
	if m == nil || m.nat == nil {
		return fmt.Errorf("natutil: mapper not ready")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	external, err := m.nat.AddPortMapping("udp", internal, desc, ttl)
	if err != nil {
		return err
	}
	m.logger.Info("natutil: mapped udp port", "internal", internal, "external", external, "desc", desc, "ttl", ttl)
	m.maps = append(m.maps, mapping{Proto: "udp", Internal: internal, External: external, Description: desc, TTL: ttl})
	return nil
}

// StartRefresher periodically re-adds every mapping before its TTL
// expires, until Close is called.
func (m *Mapper) StartRefresher(interval time.Duration) {
	if m == nil || m.nat == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-t.C:
				for i, mp := range m.maps {
					external, err := m.nat.AddPortMapping(mp.Proto, mp.Internal, mp.Description, mp.TTL)
					if err != nil {
						m.logger.Warn("natutil: refresh failed", "proto", mp.Proto, "internal", mp.Internal, "error", err)
						continue
					}
					m.maps[i].External = external
				}
			}
		}
	}()
}

// Close stops the refresher and removes every mapping this Mapper made.
func (m *Mapper) Close() {
	if m == nil || m.nat == nil {
		return
	}
	close(m.stop)
	for _, mp := range m.maps {
		if err := m.nat.DeletePortMapping(mp.Proto, mp.Internal); err != nil {
			m.logger.Warn("natutil: remove mapping failed", "proto", mp.Proto, "internal", mp.Internal, "error", err)
		}
	}
}
