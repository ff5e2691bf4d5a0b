package reassembly

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/vita"
)

func TestFFTAssemblerCompletesAcrossChunks(t *testing.T) {
	a := NewFFTAssembler(nil)

	f1 := a.Ingest(1, vita.FFTFrame{StartBinIndex: 0, NumBins: 4, BinSize: 2, TotalBinsInFrame: 8, FrameIndex: 1, Bins: []int16{1, 2, 3, 4}})
	require.False(t, f1.Complete)
	require.Equal(t, 4, f1.ReceivedBins)

	f2 := a.Ingest(1, vita.FFTFrame{StartBinIndex: 4, NumBins: 4, BinSize: 2, TotalBinsInFrame: 8, FrameIndex: 1, Bins: []int16{5, 6, 7, 8}})
	require.True(t, f2.Complete)
	require.Equal(t, []int16{1, 2, 3, 4, 5, 6, 7, 8}, f2.Bins)
}

func TestFFTAssemblerDropsOlderIncompleteFrameOnNewFrameIndex(t *testing.T) {
	a := NewFFTAssembler(nil)
	a.Ingest(1, vita.FFTFrame{StartBinIndex: 0, NumBins: 2, BinSize: 2, TotalBinsInFrame: 8, FrameIndex: 1, Bins: []int16{1, 2}})

	f := a.Ingest(1, vita.FFTFrame{StartBinIndex: 0, NumBins: 2, BinSize: 2, TotalBinsInFrame: 8, FrameIndex: 2, Bins: []int16{9, 9}})
	require.Equal(t, uint32(2), f.FrameIndex)
	require.Equal(t, 2, f.ReceivedBins)
	require.False(t, f.Complete)
}

func TestFFTAssemblerResizeNotifiesAndResets(t *testing.T) {
	var resized []int
	a := NewFFTAssembler(func(streamID uint32, totalBins int) { resized = append(resized, totalBins) })

	a.Ingest(1, vita.FFTFrame{StartBinIndex: 0, NumBins: 4, BinSize: 2, TotalBinsInFrame: 8, FrameIndex: 1, Bins: []int16{1, 2, 3, 4}})
	f := a.Ingest(1, vita.FFTFrame{StartBinIndex: 0, NumBins: 4, BinSize: 2, TotalBinsInFrame: 16, FrameIndex: 1, Bins: []int16{1, 2, 3, 4}})

	require.Equal(t, []int{8, 16}, resized)
	require.Equal(t, 16, f.TotalBins)
}

func TestFFTAssemblerIndependentStreams(t *testing.T) {
	a := NewFFTAssembler(nil)
	a.Ingest(1, vita.FFTFrame{StartBinIndex: 0, NumBins: 2, BinSize: 2, TotalBinsInFrame: 2, FrameIndex: 1, Bins: []int16{1, 2}})
	f2 := a.Ingest(2, vita.FFTFrame{StartBinIndex: 0, NumBins: 2, BinSize: 2, TotalBinsInFrame: 4, FrameIndex: 1, Bins: []int16{3, 4}})
	require.Equal(t, 4, f2.TotalBins)
	require.False(t, f2.Complete)
}
