package reassembly

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/vita"
)

func TestWaterfallAssemblerCompositesStripsLeftToRight(t *testing.T) {
	a := NewWaterfallAssembler()

	l1 := a.Ingest(1, vita.WaterfallTile{Timecode: 100, TotalBinsInFrame: 6, FirstBinIndex: 0, Width: 3, Height: 1, Samples: []uint16{1, 2, 3}})
	require.False(t, l1.Complete)

	l2 := a.Ingest(1, vita.WaterfallTile{Timecode: 100, TotalBinsInFrame: 6, FirstBinIndex: 3, Width: 3, Height: 1, Samples: []uint16{4, 5, 6}})
	require.True(t, l2.Complete)
	require.Equal(t, []uint16{1, 2, 3, 4, 5, 6}, l2.Samples)
}

func TestWaterfallAssemblerOutOfOrderTimecodeGetsHistoricalOffset(t *testing.T) {
	a := NewWaterfallAssembler()

	newer := a.Ingest(1, vita.WaterfallTile{Timecode: 200, TotalBinsInFrame: 2, FirstBinIndex: 0, Width: 2, Height: 1, Samples: []uint16{1, 2}})
	require.Equal(t, uint32(0), newer.YOffset)

	older := a.Ingest(1, vita.WaterfallTile{Timecode: 190, TotalBinsInFrame: 2, FirstBinIndex: 0, Width: 2, Height: 1, Samples: []uint16{3, 4}})
	require.Equal(t, uint32(10), older.YOffset)

	stillNewer := a.Ingest(1, vita.WaterfallTile{Timecode: 200, TotalBinsInFrame: 2, FirstBinIndex: 1, Width: 1, Height: 1, Samples: []uint16{9}})
	require.Equal(t, uint32(0), stillNewer.YOffset)
}

func TestWaterfallAssemblerHistoryEviction(t *testing.T) {
	a := NewWaterfallAssembler()
	for tc := uint32(0); tc < maxWaterfallHistory+10; tc++ {
		a.Ingest(1, vita.WaterfallTile{Timecode: tc, TotalBinsInFrame: 1, FirstBinIndex: 0, Width: 1, Height: 1, Samples: []uint16{1}})
	}
	ss := a.streams[1]
	require.LessOrEqual(t, len(ss.lines), maxWaterfallHistory)
}
