package vita

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWaterfallPayloadRoundTrip(t *testing.T) {
	tile := WaterfallTile{
		FrameLowFrequency: HzToQ20(14_000_000),
		BinBandwidth:      HzToQ20(366),
		LineDurationMs:    100,
		Width:             4,
		Height:            1,
		Timecode:          55,
		AutoBlackLevel:    128,
		TotalBinsInFrame:  4,
		FirstBinIndex:     0,
		Samples:           []uint16{10, 20, 30, 40},
	}
	b := EncodeWaterfallPayload(tile)
	require.Equal(t, 0, len(b)%4)
	got := DecodeWaterfallPayload(b)
	require.Equal(t, tile, got)
}

func TestWaterfallPayloadOddWidthPadded(t *testing.T) {
	tile := WaterfallTile{Width: 3, Height: 1, Samples: []uint16{1, 2, 3}}
	b := EncodeWaterfallPayload(tile)
	require.Equal(t, 0, len(b)%4)
}

func TestQ20HzRoundTrip(t *testing.T) {
	q := HzToQ20(14_250_000)
	require.Equal(t, int64(14_250_000), q.Hz())
	require.InDelta(t, 14.25, q.ToMHz(), 1e-9)
}
