// Package audiorx packetizes the radio's compressed audio stream (spec
// §4.6 "audio stream", VITA class 0x8005) into RTP/Opus packets a caller
// can forward onto a WebRTC audio track or any other RTP consumer.
// Adapted from the teacher's internal/rtc/opusrtp.go (rtp.Packetizer
// wiring) and demux.go's opusFrameCount, generalized from a hard-wired
// WebRTC sample-track writer into a plain packetizer any session.Handle
// subscriber can use.
package audiorx

import (
	"math/rand"

	"github.com/pion/rtp"
)

const (
	opusPayloadType = 111
	opusClockRate   = 48000
	rtpMTU          = 1200
)

// opusPayloader hands each VITA audio payload to rtp.Packetizer as a
// single already-framed Opus packet; the radio never sends anything
// larger than the RTP MTU so Packetizer never has to split it.
type opusPayloader struct{}

func (opusPayloader) Payload(_ uint16, payload []byte) [][]byte {
	return [][]byte{payload}
}

// OpusPacketizer turns successive class-0x8005 VITA payloads into RTP
// packets carrying one random SSRC for the lifetime of an audio stream.
type OpusPacketizer struct {
	pkt rtp.Packetizer
}

// NewOpusPacketizer constructs a packetizer with a fresh random SSRC.
func NewOpusPacketizer() *OpusPacketizer {
	return &OpusPacketizer{
		pkt: rtp.NewPacketizer(
			rtpMTU,
			opusPayloadType,
			rand.Uint32(), //nolint:gosec // RTP SSRC collision resistance, not security-sensitive
			opusPayloader{},
			rtp.NewRandomSequencer(),
			opusClockRate,
		),
	}
}

// Packetize wraps one decoded Opus payload into RTP packets stamped with
// the correct sample-count advance for the current Opus frame.
func (o *OpusPacketizer) Packetize(payload []byte) []*rtp.Packet {
	if len(payload) == 0 {
		return nil
	}
	return o.pkt.Packetize(payload, opusSamplesPerPayload(payload))
}

// opusSamplesPerPayload counts 10ms Opus frames per RFC 6716 §3.2.1's TOC
// byte and converts to a 48kHz sample count; falls back to one 20ms frame
// (960 samples) when the payload doesn't parse as a valid TOC sequence.
func opusSamplesPerPayload(payload []byte) uint32 {
	frames := opusFrameCount(payload)
	if frames <= 0 {
		frames = 2
	}
	return uint32(frames) * (opusClockRate / 100)
}

func opusFrameCount(b []byte) int {
	if len(b) < 1 {
		return 0
	}
	toc := b[0]
	switch toc & 0x03 {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		if len(b) < 2 {
			return 0
		}
		n := int(b[1])
		if n < 1 || n > 48 {
			return 0
		}
		return n
	case 3:
		i := 1
		frames := 0
		for i < len(b) {
			size, n := opusReadSize(b, i)
			if n == 0 || i+n+size > len(b) {
				return 0
			}
			i += n + size
			frames++
		}
		if frames < 1 || frames > 48 {
			return 0
		}
		return frames
	default:
		return 0
	}
}

func opusReadSize(b []byte, i int) (size int, n int) {
	if i >= len(b) {
		return 0, 0
	}
	sz := int(b[i])
	if sz < 252 {
		return sz, 1
	}
	if i+1 >= len(b) {
		return 0, 0
	}
	return 252 + int(b[i+1]), 2
}
