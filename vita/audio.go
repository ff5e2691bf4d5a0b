package vita

// OpusAudioPayload is the raw Opus-encoded payload of a class-0x8005
// packet. FlexRadio's audio compression is opaque to this library; we
// hand the bytes to an RTP/Opus packetizer one layer up (see
// transport/audiorx).
type OpusAudioPayload []byte

// Class reports the packet-class-code this packet was tagged with, or
// (0, false) if it carries no class id at all.
func (p Packet) Class() (ClassCode, bool) {
	if !p.HasClassID {
		return 0, false
	}
	return p.ClassID.PacketClass, true
}

// KnownClass reports whether code is one this library has a typed
// payload decoder for. DAX classes are deliberately excluded — spec §9
// treats them as opaque pass-throughs "until a consumer specifies
// otherwise".
func KnownClass(code ClassCode) bool {
	switch code {
	case ClassMeter, ClassPanadapter, ClassWaterfall, ClassOpusAudio, ClassDiscovery:
		return true
	default:
		return false
	}
}
