package vita

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFFTPayloadRoundTrip(t *testing.T) {
	f := FFTFrame{
		StartBinIndex:    4096,
		NumBins:          4,
		BinSize:          2,
		TotalBinsInFrame: 8192,
		FrameIndex:       77,
		Bins:             []int16{-100, -98, -95, -90},
	}
	b := EncodeFFTPayload(f)
	got := DecodeFFTPayload(b)
	require.Equal(t, f, got)
}

func TestFFTPayloadBinSize1(t *testing.T) {
	f := FFTFrame{NumBins: 3, BinSize: 1, TotalBinsInFrame: 3, Bins: []int16{10, 20, 30}}
	b := EncodeFFTPayload(f)
	got := DecodeFFTPayload(b)
	require.Equal(t, f.Bins, got.Bins)
}

func TestFFTPayloadTruncatedBinsAreZero(t *testing.T) {
	f := FFTFrame{StartBinIndex: 0, NumBins: 4, BinSize: 2, TotalBinsInFrame: 4, Bins: []int16{1, 2, 3, 4}}
	full := EncodeFFTPayload(f)
	truncated := full[:fftHeaderBytes+4] // only 2 of 4 bins present
	got := DecodeFFTPayload(truncated)
	require.Equal(t, []int16{1, 2, 0, 0}, got.Bins)
}

func TestFFTBinIndexInvariant(t *testing.T) {
	f := FFTFrame{StartBinIndex: 6000, NumBins: 2048, TotalBinsInFrame: 8192, BinSize: 2}
	require.True(t, f.StartBinIndex >= 0)
	require.LessOrEqual(t, int(f.StartBinIndex)+int(f.NumBins), int(f.TotalBinsInFrame))
}
