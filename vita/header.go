// Package vita decodes and encodes the VITA-49 packets FlexRadio's
// SmartSDR protocol uses: panadapter FFT frames, waterfall tiles, meter
// samples, discovery beacons, and audio, all big-endian over UDP (or a
// WebRTC data channel carrying the same bytes).
package vita

import "encoding/binary"

// PacketType is the 4-bit packet-type field in the VITA-49 header word.
type PacketType uint8

const (
	PacketTypeIFData PacketType = iota
	PacketTypeIFDataWithStream
	PacketTypeExtData
	PacketTypeExtDataWithStream
	PacketTypeIFContext
	PacketTypeExtContext
)

func (t PacketType) HasStreamID() bool {
	switch t {
	case PacketTypeIFDataWithStream, PacketTypeExtDataWithStream, PacketTypeIFContext, PacketTypeExtContext:
		return true
	default:
		return false
	}
}

// TSIType is the timestamp-integer-type field (bits 23-22).
type TSIType uint8

const (
	TSINone TSIType = iota
	TSIUTC
	TSIGPS
	TSIOther
)

// TSFType is the timestamp-fractional-type field (bits 21-20).
type TSFType uint8

const (
	TSFNone TSFType = iota
	TSFSampleCount
	TSFRealTimePicoseconds
	TSFFreeRunning
)

// Header is the decoded form of the single 32-bit VITA-49 header word.
type Header struct {
	Type         PacketType
	HasClassID   bool
	HasTrailer   bool
	TSI          TSIType
	TSF          TSFType
	PacketCount  uint8 // low nibble, mod 16
	PacketWords  uint16
}

const (
	headerTypeShift   = 28
	headerTypeMask    = 0xF
	headerClassIDBit  = 1 << 27
	headerTrailerBit  = 1 << 26
	headerTSIShift    = 22
	headerTSIMask     = 0x3
	headerTSFShift    = 20
	headerTSFMask     = 0x3
	headerCountShift  = 16
	headerCountMask   = 0xF
	headerWordsMask   = 0xFFFF
)

func decodeHeaderWord(w uint32) Header {
	return Header{
		Type:        PacketType((w >> headerTypeShift) & headerTypeMask),
		HasClassID:  w&headerClassIDBit != 0,
		HasTrailer:  w&headerTrailerBit != 0,
		TSI:         TSIType((w >> headerTSIShift) & headerTSIMask),
		TSF:         TSFType((w >> headerTSFShift) & headerTSFMask),
		PacketCount: uint8((w >> headerCountShift) & headerCountMask),
		PacketWords: uint16(w & headerWordsMask),
	}
}

func (h Header) encodeWord(packetWords uint16) uint32 {
	var w uint32
	w |= uint32(h.Type&headerTypeMask) << headerTypeShift
	if h.HasClassID {
		w |= headerClassIDBit
	}
	if h.HasTrailer {
		w |= headerTrailerBit
	}
	w |= uint32(h.TSI&headerTSIMask) << headerTSIShift
	w |= uint32(h.TSF&headerTSFMask) << headerTSFShift
	w |= uint32(h.PacketCount&headerCountMask) << headerCountShift
	w |= uint32(packetWords) & headerWordsMask
	return w
}

func readU32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func putU32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func readU64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
func putU64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func readU16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func putU16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
