package audiorx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpusPacketizerEmitsOnePacketPerOneFrameTOC(t *testing.T) {
	p := NewOpusPacketizer()
	// TOC byte 0x00: config 0, one frame, mono.
	payload := []byte{0x00, 0x01, 0x02, 0x03}

	pkts := p.Packetize(payload)
	require.Len(t, pkts, 1)
	require.Equal(t, uint8(opusPayloadType), pkts[0].PayloadType)
	require.Equal(t, payload, []byte(pkts[0].Payload))
}

func TestOpusPacketizerAdvancesTimestampBySamples(t *testing.T) {
	p := NewOpusPacketizer()
	first := p.Packetize([]byte{0x00, 0xAA})[0]
	second := p.Packetize([]byte{0x00, 0xBB})[0]

	require.Equal(t, first.SequenceNumber+1, second.SequenceNumber)
	require.Equal(t, first.Timestamp+480, second.Timestamp)
}

func TestOpusPacketizerEmptyPayloadNoPackets(t *testing.T) {
	p := NewOpusPacketizer()
	require.Nil(t, p.Packetize(nil))
}
