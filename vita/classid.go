package vita

// ClassCode identifies the packet-class-code field of a VITA-49 class ID,
// i.e. which FlexRadio payload kind follows.
type ClassCode uint16

const (
	ClassMeter      ClassCode = 0x8002
	ClassPanadapter ClassCode = 0x8003
	ClassWaterfall  ClassCode = 0x8004
	ClassOpusAudio  ClassCode = 0x8005
	ClassDiscovery  ClassCode = 0xFFFF

	// DAX audio/IQ classes. No consumer in this library parses their
	// payload shape; they pass through as opaque bytes (spec §9 open
	// question).
	ClassDAXReducedBW ClassCode = 0x0123
	ClassDAXIQ24kHz    ClassCode = 0x02E3
	ClassDAXIQ48kHz    ClassCode = 0x02E4
	ClassDAXIQ96kHz    ClassCode = 0x02E5
	ClassDAXIQ192kHz   ClassCode = 0x02E6
	ClassDAXAudio      ClassCode = 0x03E3
)

// ClassID is the two-word VITA-49 class identifier.
type ClassID struct {
	OUI            uint32 // low 24 bits significant
	InformationCode uint16
	PacketClass     ClassCode
}

func decodeClassID(b []byte) ClassID {
	w1 := readU32(b[0:4])
	w2 := readU32(b[4:8])
	return ClassID{
		OUI:             w1 & 0x00FFFFFF,
		InformationCode: uint16(w2 >> 16),
		PacketClass:     ClassCode(w2 & 0xFFFF),
	}
}

func (c ClassID) encode(b []byte) {
	putU32(b[0:4], c.OUI&0x00FFFFFF)
	putU32(b[4:8], uint32(c.InformationCode)<<16|uint32(c.PacketClass))
}
