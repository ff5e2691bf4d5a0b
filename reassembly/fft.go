// Package reassembly implements spec §4.5: combine a stream of VITA FFT
// and waterfall packets, potentially fragmented and reordered, into
// complete frames.
package reassembly

import (
	"sync"

	"github.com/daveisadork/flexcore/metrics"
	"github.com/daveisadork/flexcore/vita"
)

// FFTFrame is a completed (or still-assembling) panadapter frame for one
// stream.
type FFTFrame struct {
	StreamID     uint32
	FrameIndex   uint32
	Bins         []int16
	ReceivedBins int
	TotalBins    int
	Complete     bool
}

type fftState struct {
	frameIndex uint32
	binSize    uint16
	totalBins  int
	bins       []int16
	received   []bool
	count      int
}

func newFFTState(chunk vita.FFTFrame) *fftState {
	total := int(chunk.TotalBinsInFrame)
	return &fftState{
		frameIndex: chunk.FrameIndex,
		binSize:    chunk.BinSize,
		totalBins:  total,
		bins:       make([]int16, total),
		received:   make([]bool, total),
	}
}

// FFTAssembler reassembles fragmented panadapter FFT frames, one in
// progress per stream id at a time (spec §4.5 "at most one
// frame-in-progress per stream is retained; older incomplete frames are
// dropped").
type FFTAssembler struct {
	mu       sync.Mutex
	streams  map[uint32]*fftState
	onResize func(streamID uint32, totalBins int)
	metrics  *metrics.Metrics
}

// SetMetrics attaches a metrics recorder; nil disables recording.
func (a *FFTAssembler) SetMetrics(m *metrics.Metrics) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics = m
}

// NewFFTAssembler constructs an assembler. onResize, if non-nil, is
// called whenever a stream's dimensions change (spec §4.5 "the consumer
// is notified via a dimension-change signal").
func NewFFTAssembler(onResize func(streamID uint32, totalBins int)) *FFTAssembler {
	return &FFTAssembler{streams: make(map[uint32]*fftState), onResize: onResize}
}

// Ingest applies one decoded FFT chunk and reports the frame's state
// after the chunk is applied. The returned Bins slice must not be
// retained past the call when Complete is false — it is reused by
// subsequent chunks until the frame completes.
func (a *FFTAssembler) Ingest(streamID uint32, chunk vita.FFTFrame) FFTFrame {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.streams[streamID]
	resized := !ok || st.totalBins != int(chunk.TotalBinsInFrame) || st.binSize != chunk.BinSize

	switch {
	case resized:
		if ok {
			a.metrics.RecordReassemblyDropped("fft", "resized")
		}
		st = newFFTState(chunk)
		a.streams[streamID] = st
		if a.onResize != nil {
			a.onResize(streamID, st.totalBins)
		}
	case st.frameIndex != chunk.FrameIndex:
		// A new frame preempts the one in progress, which is necessarily
		// incomplete (completed frames are removed below).
		a.metrics.RecordReassemblyDropped("fft", "preempted")
		st = newFFTState(chunk)
		a.streams[streamID] = st
	}

	start := int(chunk.StartBinIndex)
	for i, v := range chunk.Bins {
		idx := start + i
		if idx < 0 || idx >= st.totalBins {
			continue
		}
		st.bins[idx] = v
		if !st.received[idx] {
			st.received[idx] = true
			st.count++
		}
	}

	out := FFTFrame{
		StreamID:     streamID,
		FrameIndex:   st.frameIndex,
		Bins:         st.bins,
		ReceivedBins: st.count,
		TotalBins:    st.totalBins,
		Complete:     st.count == st.totalBins && st.totalBins > 0,
	}
	if out.Complete {
		// A snapshot is handed to the caller; the next frameIndex starts fresh.
		out.Bins = append([]int16(nil), st.bins...)
		delete(a.streams, streamID)
		a.metrics.RecordReassemblyCompleted("fft")
	}
	return out
}

// Reset drops any in-progress frame for streamID, e.g. when its owning
// panadapter is torn down.
func (a *FFTAssembler) Reset(streamID uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.streams, streamID)
}
