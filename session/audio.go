package session

import (
	"github.com/pion/rtp"

	"github.com/daveisadork/flexcore/transport/audiorx"
	"github.com/daveisadork/flexcore/udpsession"
	"github.com/daveisadork/flexcore/vita"
)

// AudioStreamController forwards the radio's compressed audio (spec
// §4.6 "audio stream") as RTP/Opus packets, for a caller to push onto a
// WebRTC audio track or any other RTP sink. Grounded on the teacher's
// internal/rtc/demux.go, which read class-0x8005 VITA payloads off the
// same UDP socket as everything else and fed them to a WebRTC sample
// track; here the radio-agnostic fan-out already lives in
// udpsession.Session, so this controller is just one more subscriber.
type AudioStreamController struct {
	h   *Handle
	pkt *audiorx.OpusPacketizer
	sub udpsession.Subscription
}

// AudioStream returns a controller for the handle's compressed audio
// stream. AttachDataPlane must have run first; call OnPacket to start
// receiving.
func (h *Handle) AudioStream() *AudioStreamController {
	return &AudioStreamController{h: h, pkt: audiorx.NewOpusPacketizer()}
}

// OnPacket subscribes fn to every RTP packet produced from the radio's
// Opus audio stream. Replaces any previous subscription on this
// controller. A no-op if the data plane isn't attached yet.
func (c *AudioStreamController) OnPacket(fn func(*rtp.Packet)) {
	c.sub.Unsubscribe()
	if c.h.UDP == nil {
		return
	}
	c.sub = c.h.UDP.Subscribe(vita.ClassOpusAudio, func(p vita.Packet) {
		for _, pkt := range c.pkt.Packetize(p.Payload) {
			fn(pkt)
		}
	})
}

// Close stops forwarding packets.
func (c *AudioStreamController) Close() {
	c.sub.Unsubscribe()
}
