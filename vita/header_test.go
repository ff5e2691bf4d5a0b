package vita

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderWordRoundTrip(t *testing.T) {
	h := Header{
		Type:        PacketTypeIFContext,
		HasClassID:  true,
		HasTrailer:  true,
		TSI:         TSIGPS,
		TSF:         TSFFreeRunning,
		PacketCount: 9,
	}
	w := h.encodeWord(42)
	got := decodeHeaderWord(w)
	require.Equal(t, h.Type, got.Type)
	require.Equal(t, h.HasClassID, got.HasClassID)
	require.Equal(t, h.HasTrailer, got.HasTrailer)
	require.Equal(t, h.TSI, got.TSI)
	require.Equal(t, h.TSF, got.TSF)
	require.Equal(t, h.PacketCount, got.PacketCount)
	require.Equal(t, uint16(42), got.PacketWords)
}

func TestTrailerRoundTrip(t *testing.T) {
	tr := Trailer{
		Enabled:                   [numTrailerFlags]bool{true, false, true, false, true, false, true, false},
		Indicator:                 [numTrailerFlags]bool{false, true, false, true, false, true, false, true},
		HasAssociatedContextCount: true,
		AssociatedContextCount:    0x2A,
	}
	got := decodeTrailer(tr.encode())
	require.Equal(t, tr, got)
}

func TestClassIDRoundTrip(t *testing.T) {
	c := ClassID{OUI: 0x001C2D, InformationCode: 0x1234, PacketClass: ClassPanadapter}
	b := make([]byte, 8)
	c.encode(b)
	require.Equal(t, c, decodeClassID(b))
}
