package reassembly

import (
	"sync"

	"github.com/daveisadork/flexcore/metrics"
	"github.com/daveisadork/flexcore/vita"
)

// maxWaterfallHistory bounds how many distinct timecodes a stream retains
// while waiting for out-of-order strips to arrive (spec §4.5 "If a newer
// timecode arrives and then an older one, the older strip is applied at
// its historical y-offset").
const maxWaterfallHistory = 64

// WaterfallLine is one composited waterfall row, possibly still missing
// bins.
type WaterfallLine struct {
	StreamID     uint32
	Timecode     uint32
	TotalBins    int
	Samples      []uint16
	ReceivedBins int
	Complete     bool
	// YOffset is the row's age relative to the newest timecode seen for
	// this stream, in raw timecode units — 0 for the newest row, positive
	// for an out-of-order strip belonging to an earlier row. The consumer
	// converts this to a pixel offset using the line duration.
	YOffset uint32
}

type waterfallLineState struct {
	totalBins int
	samples   []uint16
	received  []bool
	count     int
	reported  bool // whether RecordReassemblyCompleted has already fired for this line
}

type waterfallStreamState struct {
	lines     map[uint32]*waterfallLineState
	order     []uint32 // insertion order, oldest first, for bounded eviction
	maxTimecode uint32
	haveMax   bool
}

// WaterfallAssembler reassembles fragmented waterfall strips into complete
// lines, keyed by stream id and then by timecode.
type WaterfallAssembler struct {
	mu      sync.Mutex
	streams map[uint32]*waterfallStreamState
	metrics *metrics.Metrics
}

// SetMetrics attaches a metrics recorder; nil disables recording.
func (a *WaterfallAssembler) SetMetrics(m *metrics.Metrics) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics = m
}

// NewWaterfallAssembler constructs an assembler.
func NewWaterfallAssembler() *WaterfallAssembler {
	return &WaterfallAssembler{streams: make(map[uint32]*waterfallStreamState)}
}

// Ingest applies one decoded waterfall strip.
func (a *WaterfallAssembler) Ingest(streamID uint32, tile vita.WaterfallTile) WaterfallLine {
	a.mu.Lock()
	defer a.mu.Unlock()

	ss, ok := a.streams[streamID]
	if !ok {
		ss = &waterfallStreamState{lines: make(map[uint32]*waterfallLineState)}
		a.streams[streamID] = ss
	}

	totalBins := int(tile.TotalBinsInFrame)
	ls, ok := ss.lines[tile.Timecode]
	if !ok || ls.totalBins != totalBins {
		ls = &waterfallLineState{
			totalBins: totalBins,
			samples:   make([]uint16, totalBins),
			received:  make([]bool, totalBins),
		}
		ss.lines[tile.Timecode] = ls
		ss.order = append(ss.order, tile.Timecode)
		a.evictLocked(ss)
	}

	width := int(tile.Width)
	if width > len(tile.Samples) {
		width = len(tile.Samples)
	}
	start := int(tile.FirstBinIndex)
	for i := 0; i < width; i++ {
		idx := start + i
		if idx < 0 || idx >= ls.totalBins {
			continue
		}
		ls.samples[idx] = tile.Samples[i]
		if !ls.received[idx] {
			ls.received[idx] = true
			ls.count++
		}
	}

	if !ss.haveMax || tile.Timecode > ss.maxTimecode {
		ss.maxTimecode, ss.haveMax = tile.Timecode, true
	}
	offset := ss.maxTimecode - tile.Timecode
	complete := ls.count == ls.totalBins && ls.totalBins > 0
	if complete && !ls.reported {
		ls.reported = true
		a.metrics.RecordReassemblyCompleted("waterfall")
	}

	return WaterfallLine{
		StreamID:     streamID,
		Timecode:     tile.Timecode,
		TotalBins:    ls.totalBins,
		Samples:      ls.samples,
		ReceivedBins: ls.count,
		Complete:     complete,
		YOffset:      offset,
	}
}

// evictLocked drops the oldest tracked timecode once the history exceeds
// maxWaterfallHistory. Callers hold a.mu.
func (a *WaterfallAssembler) evictLocked(ss *waterfallStreamState) {
	for len(ss.order) > maxWaterfallHistory {
		oldest := ss.order[0]
		ls := ss.lines[oldest]
		ss.order = ss.order[1:]
		delete(ss.lines, oldest)
		if ls != nil && !ls.reported {
			a.metrics.RecordReassemblyDropped("waterfall", "evicted")
		}
	}
}

// Reset drops all tracked lines for streamID.
func (a *WaterfallAssembler) Reset(streamID uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.streams, streamID)
}
