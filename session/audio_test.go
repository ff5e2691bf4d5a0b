package session

import (
	"context"
	"testing"
	"time"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/vita"
)

func TestAudioStreamControllerPacketizesOpusPayload(t *testing.T) {
	h, _ := connectedHandle(t)
	src := newFakeDataSource()
	require.NoError(t, h.AttachDataPlane(context.Background(), src))

	pkt := vita.Packet{
		Header:      vita.Header{Type: vita.PacketTypeExtDataWithStream, HasClassID: true},
		HasStreamID: true,
		StreamID:    0x40000001,
		HasClassID:  true,
		ClassID:     vita.ClassID{OUI: 0x001C2D, PacketClass: vita.ClassOpusAudio},
		Payload:     []byte{0x00, 0x01, 0x02, 0x03},
	}
	raw, err := vita.Encode(pkt)
	require.NoError(t, err)

	got := make(chan *rtp.Packet, 4)
	audio := h.AudioStream()
	audio.OnPacket(func(p *rtp.Packet) {
		got <- p
	})

	src.ch <- raw

	select {
	case p := <-got:
		require.Equal(t, uint8(111), p.PayloadType)
		require.Equal(t, pkt.Payload, []byte(p.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for RTP packet")
	}

	audio.Close()
}
