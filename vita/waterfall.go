package vita

// WaterfallTile is the decoded payload of one waterfall (class-0x8004)
// packet: one strip of a larger line, `Width x Height` samples.
type WaterfallTile struct {
	FrameLowFrequency Q20
	BinBandwidth      Q20
	LineDurationMs    uint32
	Width             uint16
	Height            uint16
	Timecode          uint32
	AutoBlackLevel    uint32
	TotalBinsInFrame  uint16
	FirstBinIndex     uint16
	Samples           []uint16
}

const waterfallHeaderBytes = 36

// DecodeWaterfallPayload parses a waterfall packet's payload per spec
// §4.1. Samples beyond the available payload bytes are zero-padded, same
// missing-data tolerance as DecodeFFTPayload.
func DecodeWaterfallPayload(payload []byte) WaterfallTile {
	var t WaterfallTile
	if len(payload) < waterfallHeaderBytes {
		return t
	}
	t.FrameLowFrequency = Q20(readU64(payload[0:8]))
	t.BinBandwidth = Q20(readU64(payload[8:16]))
	t.LineDurationMs = readU32(payload[16:20])
	t.Width = readU16(payload[20:22])
	t.Height = readU16(payload[22:24])
	t.Timecode = readU32(payload[24:28])
	t.AutoBlackLevel = readU32(payload[28:32])
	t.TotalBinsInFrame = readU16(payload[32:34])
	t.FirstBinIndex = readU16(payload[34:36])

	count := int(t.Width) * int(t.Height)
	samples := make([]uint16, count)
	body := payload[waterfallHeaderBytes:]
	for i := range samples {
		off := i * 2
		if off+2 > len(body) {
			break
		}
		samples[i] = readU16(body[off : off+2])
	}
	t.Samples = samples
	return t
}

// EncodeWaterfallPayload is the inverse of DecodeWaterfallPayload, zero
// padding the sample section to a 32-bit boundary as the wire format
// requires.
func EncodeWaterfallPayload(t WaterfallTile) []byte {
	sampleBytes := len(t.Samples) * 2
	padded := (sampleBytes + 3) &^ 3
	out := make([]byte, waterfallHeaderBytes+padded)

	putU64(out[0:8], uint64(t.FrameLowFrequency))
	putU64(out[8:16], uint64(t.BinBandwidth))
	putU32(out[16:20], t.LineDurationMs)
	putU16(out[20:22], t.Width)
	putU16(out[22:24], t.Height)
	putU32(out[24:28], t.Timecode)
	putU32(out[28:32], t.AutoBlackLevel)
	putU16(out[32:34], t.TotalBinsInFrame)
	putU16(out[34:36], t.FirstBinIndex)

	body := out[waterfallHeaderBytes:]
	for i, v := range t.Samples {
		putU16(body[i*2:i*2+2], v)
	}
	return out
}
