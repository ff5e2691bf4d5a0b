// Package webrtcdata implements the WebRTC leg of the data-plane attach
// point (spec §4.6 "Data plane attach... either a native UDP socket or a
// WebRTC data channel"). It wraps a pion PeerConnection's data channel as
// a udpsession.Source so the rest of the client never distinguishes
// between the two transports. Grounded on the teacher's internal/rtc
// package (SettingEngine/ICE/NAT setup), generalized from the server side
// that answers a browser's offer into the client side that originates one
// against the radio.
package webrtcdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pion/ice/v4"
	"github.com/pion/webrtc/v4"

	"github.com/daveisadork/flexcore/transport/natutil"
)

// Exchange carries a locally generated SDP offer to the radio's own
// signaling surface (its HTTP API or equivalent — outside this library's
// scope, spec §0 "Non-goals... the radio's own web signaling endpoint")
// and returns its SDP answer.
type Exchange func(ctx context.Context, offerSDP string) (answerSDP string, err error)

// Options configures the PeerConnection used for the data plane.
type Options struct {
	Logger *slog.Logger

	// ICEPortStart/ICEPortEnd bound the local candidate port range. Equal
	// non-zero values fix a single muxed port instead of a range.
	ICEPortStart int
	ICEPortEnd   int

	STUN []string

	// NAT1To1IPs advertises a static public address for host candidates.
	// When empty and AutoDiscoverNAT is set, natutil.Discover supplies one.
	NAT1To1IPs      []string
	AutoDiscoverNAT bool
}

// DataSource adapts an open WebRTC data channel into a udpsession.Source.
type DataSource struct {
	logger *slog.Logger
	pc     *webrtc.PeerConnection
	dc     *webrtc.DataChannel

	recv   chan []byte
	closed chan struct{}
}

// Dial negotiates a PeerConnection with a single data channel labeled
// "udp" and blocks until it opens, using exchange to carry the SDP offer
// to the radio and return its answer.
func Dial(ctx context.Context, opt Options, exchange Exchange) (*DataSource, error) {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}

	var se webrtc.SettingEngine
	se.SetNetworkTypes([]webrtc.NetworkType{webrtc.NetworkTypeUDP4, webrtc.NetworkTypeUDP6})

	switch {
	case opt.ICEPortStart != 0 && opt.ICEPortStart == opt.ICEPortEnd:
		mux, err := ice.NewMultiUDPMuxFromPort(opt.ICEPortStart)
		if err != nil {
			return nil, fmt.Errorf("webrtcdata: udp mux on port %d: %w", opt.ICEPortStart, err)
		}
		se.SetICEUDPMux(mux)
	case opt.ICEPortStart != 0 || opt.ICEPortEnd != 0:
		if err := se.SetEphemeralUDPPortRange(uint16(opt.ICEPortStart), uint16(opt.ICEPortEnd)); err != nil {
			return nil, fmt.Errorf("webrtcdata: ice port range %d-%d: %w", opt.ICEPortStart, opt.ICEPortEnd, err)
		}
	}

	nat1to1 := opt.NAT1To1IPs
	if len(nat1to1) == 0 && opt.AutoDiscoverNAT {
		mapper, pubIP, err := natutil.Discover(opt.Logger)
		if err != nil {
			opt.Logger.Warn("webrtcdata: nat discovery failed", "error", err)
		} else {
			nat1to1 = []string{pubIP}
			mapper.Close()
		}
	}
	if len(nat1to1) > 0 {
		se.SetNAT1To1IPs(nat1to1, webrtc.ICECandidateTypeHost)
	}

	api := webrtc.NewAPI(webrtc.WithSettingEngine(se))

	var iceServers []webrtc.ICEServer
	if len(opt.STUN) > 0 {
		iceServers = append(iceServers, webrtc.ICEServer{URLs: opt.STUN})
	}

	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, fmt.Errorf("webrtcdata: new peer connection: %w", err)
	}

	// Unordered, no retransmits: VITA datagrams are already
	// loss-tolerant (spec §4.7/§4.8 reassembly handles gaps), so the data
	// channel should behave like the UDP socket it replaces rather than
	// add head-of-line blocking on a dropped packet.
	ordered := false
	maxRetransmits := uint16(0)
	dc, err := pc.CreateDataChannel("udp", &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &maxRetransmits,
	})
	if err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("webrtcdata: create data channel: %w", err)
	}

	src := &DataSource{
		logger: opt.Logger,
		pc:     pc,
		dc:     dc,
		recv:   make(chan []byte, 256),
		closed: make(chan struct{}),
	}

	opened := make(chan struct{})
	dc.OnOpen(func() {
		select {
		case <-opened:
		default:
			close(opened)
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		select {
		case src.recv <- append([]byte(nil), msg.Data...):
		default:
			opt.Logger.Warn("webrtcdata: receive buffer full, dropping datagram")
		}
	})
	dc.OnClose(func() {
		select {
		case <-src.closed:
		default:
			close(src.closed)
		}
	})
	pc.OnConnectionStateChange(func(st webrtc.PeerConnectionState) {
		opt.Logger.Debug("webrtcdata: peer connection state", "state", st.String())
		if st == webrtc.PeerConnectionStateFailed || st == webrtc.PeerConnectionStateClosed {
			select {
			case <-src.closed:
			default:
				close(src.closed)
			}
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("webrtcdata: create offer: %w", err)
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("webrtcdata: set local description: %w", err)
	}

	select {
	case <-gatherComplete:
	case <-ctx.Done():
		_ = pc.Close()
		return nil, ctx.Err()
	}

	local := pc.LocalDescription()
	if local == nil {
		_ = pc.Close()
		return nil, errors.New("webrtcdata: no local description after gathering")
	}

	answerSDP, err := exchange(ctx, local.SDP)
	if err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("webrtcdata: exchange: %w", err)
	}
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: answerSDP}); err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("webrtcdata: set remote description: %w", err)
	}

	select {
	case <-opened:
	case <-src.closed:
		return nil, errors.New("webrtcdata: connection closed before data channel opened")
	case <-ctx.Done():
		_ = pc.Close()
		return nil, ctx.Err()
	}

	return src, nil
}

// Recv implements udpsession.Source.
func (s *DataSource) Recv(ctx context.Context) ([]byte, error) {
	select {
	case b := <-s.recv:
		return b, nil
	case <-s.closed:
		return nil, errors.New("webrtcdata: data channel closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send writes a single datagram to the remote end. Not part of
// udpsession.Source; present for transports that need to talk back over
// the same channel (e.g. announcing a local UDP port is not needed here,
// but future outbound control messages may be).
func (s *DataSource) Send(b []byte) error {
	return s.dc.Send(b)
}

// Close closes the data channel and its PeerConnection.
func (s *DataSource) Close() error {
	_ = s.dc.Close()
	return s.pc.Close()
}
