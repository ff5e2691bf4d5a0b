package vita

import "fmt"

// Packet is the fully decoded form of one VITA-49 datagram: header fields,
// the optional stream id / class id / timestamps, the raw payload bytes
// (Class-specific decoding happens one layer up, see meter.go, fft.go,
// waterfall.go, discovery.go), and the optional trailer.
type Packet struct {
	Header Header

	HasStreamID bool
	StreamID    uint32

	HasClassID bool
	ClassID    ClassID

	HasIntegerTimestamp    bool
	IntegerTimestamp       uint32
	HasFractionalTimestamp bool
	FractionalTimestamp    uint64

	// Payload aliases the input slice passed to Decode; callers that need
	// to retain it past the lifetime of that slice must copy it.
	Payload []byte

	HasTrailer bool
	Trailer    Trailer
}

const minPreambleBytes = 4

// Decode parses one VITA-49 datagram. It trusts the actual length of b
// (not the header's packet-size field) to find the payload and trailer
// boundaries, since a radio's declared packet-size occasionally disagrees
// with the UDP datagram it actually sent.
func Decode(b []byte) (Packet, error) {
	if len(b) < minPreambleBytes {
		return Packet{}, fmt.Errorf("vita: header word: %w", ErrMalformed)
	}

	var p Packet
	p.Header = decodeHeaderWord(readU32(b[0:4]))
	off := 4

	if p.Header.Type.HasStreamID() {
		if off+4 > len(b) {
			return Packet{}, fmt.Errorf("vita: stream id: %w", ErrMalformed)
		}
		p.HasStreamID = true
		p.StreamID = readU32(b[off : off+4])
		off += 4
	}

	if p.Header.HasClassID {
		if off+8 > len(b) {
			return Packet{}, fmt.Errorf("vita: class id: %w", ErrMalformed)
		}
		p.HasClassID = true
		p.ClassID = decodeClassID(b[off : off+8])
		off += 8
	}

	if p.Header.TSI != TSINone {
		if off+4 > len(b) {
			return Packet{}, fmt.Errorf("vita: integer timestamp: %w", ErrMalformed)
		}
		p.HasIntegerTimestamp = true
		p.IntegerTimestamp = readU32(b[off : off+4])
		off += 4
	}

	if p.Header.TSF != TSFNone {
		if off+8 > len(b) {
			return Packet{}, fmt.Errorf("vita: fractional timestamp: %w", ErrMalformed)
		}
		p.HasFractionalTimestamp = true
		p.FractionalTimestamp = readU64(b[off : off+8])
		off += 8
	}

	end := len(b)
	if p.Header.HasTrailer {
		if off+4 > end {
			return Packet{}, fmt.Errorf("vita: trailer: %w", ErrMalformed)
		}
		p.HasTrailer = true
		end -= 4
		p.Trailer = decodeTrailer(readU32(b[end : end+4]))
	}

	if off > end {
		return Packet{}, fmt.Errorf("vita: payload: %w", ErrMalformed)
	}
	p.Payload = b[off:end]

	return p, nil
}

// Encode serializes p, recomputing the header's packet-size word from the
// actual component sizes (spec §4.1 "Encoder contract... packet_size is
// recomputed from component sizes, not taken from input").
func Encode(p Packet) ([]byte, error) {
	size := minPreambleBytes
	if p.HasStreamID {
		size += 4
	}
	if p.HasClassID {
		size += 8
	}
	if p.HasIntegerTimestamp {
		size += 4
	}
	if p.HasFractionalTimestamp {
		size += 8
	}
	size += len(p.Payload)
	if p.HasTrailer {
		size += 4
	}
	if size%4 != 0 {
		return nil, fmt.Errorf("vita: payload length %d not 32-bit aligned: %w", len(p.Payload), ErrMalformed)
	}

	b := make([]byte, size)
	off := 4
	hdr := p.Header
	hdr.Type = p.Header.Type
	hdr.HasClassID = p.HasClassID
	hdr.HasTrailer = p.HasTrailer
	if !p.HasIntegerTimestamp {
		hdr.TSI = TSINone
	}
	if !p.HasFractionalTimestamp {
		hdr.TSF = TSFNone
	}
	putU32(b[0:4], hdr.encodeWord(uint16(size/4)))

	if p.HasStreamID {
		putU32(b[off:off+4], p.StreamID)
		off += 4
	}
	if p.HasClassID {
		p.ClassID.encode(b[off : off+8])
		off += 8
	}
	if p.HasIntegerTimestamp {
		putU32(b[off:off+4], p.IntegerTimestamp)
		off += 4
	}
	if p.HasFractionalTimestamp {
		putU64(b[off:off+8], p.FractionalTimestamp)
		off += 8
	}
	copy(b[off:], p.Payload)
	off += len(p.Payload)
	if p.HasTrailer {
		putU32(b[off:off+4], p.Trailer.encode())
	}
	return b, nil
}

// PacketWords reports the decoded header's declared packet-size in 32-bit
// words, as received on the wire (informational only; Decode does not rely
// on it to find payload boundaries).
func (p Packet) PacketWords() uint16 { return p.Header.PacketWords }
