package vita

// FFTFrame is the decoded payload of one panadapter (class-0x8003) packet:
// a chunk of bins belonging to a larger frame identified by FrameIndex.
// Reassembling chunks into a complete frame is reassembly.FFT's job.
type FFTFrame struct {
	StartBinIndex    uint16
	NumBins          uint16
	BinSize          uint16 // bytes per bin, typically 2
	TotalBinsInFrame uint16
	FrameIndex       uint32
	Bins             []int16
}

const fftHeaderBytes = 12

// DecodeFFTPayload parses a panadapter packet's payload per spec §4.1.
// Missing bins (a payload shorter than the header declares) are zero
// rather than an error — the frame is simply incomplete, which is a
// reassembly concern, not a codec one.
func DecodeFFTPayload(payload []byte) FFTFrame {
	var f FFTFrame
	if len(payload) < fftHeaderBytes {
		return f
	}
	f.StartBinIndex = readU16(payload[0:2])
	f.NumBins = readU16(payload[2:4])
	f.BinSize = readU16(payload[4:6])
	f.TotalBinsInFrame = readU16(payload[6:8])
	f.FrameIndex = readU32(payload[8:12])

	binSize := int(f.BinSize)
	if binSize < 1 {
		binSize = 1
	}
	bins := make([]int16, f.NumBins)
	body := payload[fftHeaderBytes:]
	for i := range bins {
		off := i * binSize
		if off+binSize > len(body) {
			break // remaining bins stay zero
		}
		chunk := body[off : off+binSize]
		if binSize >= 2 {
			bins[i] = int16(readU16(chunk[binSize-2 : binSize]))
		} else {
			bins[i] = int16(chunk[0])
		}
	}
	f.Bins = bins
	return f
}

// EncodeFFTPayload is the inverse of DecodeFFTPayload. BinSize must be at
// least 1; when it is 1, only the low byte of each bin is written.
func EncodeFFTPayload(f FFTFrame) []byte {
	binSize := int(f.BinSize)
	if binSize < 1 {
		binSize = 1
	}
	out := make([]byte, fftHeaderBytes+len(f.Bins)*binSize)
	putU16(out[0:2], f.StartBinIndex)
	putU16(out[2:4], f.NumBins)
	putU16(out[4:6], f.BinSize)
	putU16(out[6:8], f.TotalBinsInFrame)
	putU32(out[8:12], f.FrameIndex)

	body := out[fftHeaderBytes:]
	for i, v := range f.Bins {
		off := i * binSize
		chunk := body[off : off+binSize]
		if binSize >= 2 {
			putU16(chunk[binSize-2:binSize], uint16(v))
		} else {
			chunk[0] = byte(v)
		}
	}
	return out
}
