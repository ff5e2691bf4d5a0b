package vita

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func samplePacket() Packet {
	return Packet{
		Header: Header{
			Type: PacketTypeExtDataWithStream,
			TSI:  TSIUTC,
			TSF:  TSFRealTimePicoseconds,
		},
		HasStreamID: true,
		StreamID:    0x40000001,
		HasClassID:  true,
		ClassID: ClassID{
			OUI:             0x001C2D,
			InformationCode: 0x534C,
			PacketClass:     ClassMeter,
		},
		HasIntegerTimestamp:    true,
		IntegerTimestamp:       123456,
		HasFractionalTimestamp: true,
		FractionalTimestamp:    999,
		Payload:                EncodeMeterPayload([]MeterSample{{ID: 1, Value: -1280}}),
		HasTrailer:             true,
		Trailer: Trailer{
			Enabled:   [numTrailerFlags]bool{true, true},
			Indicator: [numTrailerFlags]bool{true, false},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := samplePacket()
	b, err := Encode(p)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)

	require.Equal(t, p.Header.Type, got.Header.Type)
	require.Equal(t, p.Header.TSI, got.Header.TSI)
	require.Equal(t, p.Header.TSF, got.Header.TSF)
	require.True(t, got.HasClassID)
	require.Equal(t, p.ClassID, got.ClassID)
	require.Equal(t, p.StreamID, got.StreamID)
	require.Equal(t, p.IntegerTimestamp, got.IntegerTimestamp)
	require.Equal(t, p.FractionalTimestamp, got.FractionalTimestamp)
	require.Equal(t, p.Payload, got.Payload)
	require.True(t, got.HasTrailer)
	require.Equal(t, p.Trailer, got.Trailer)

	// packet_size * 4 == total_bytes (spec §8 invariant)
	require.Equal(t, len(b), int(got.Header.PacketWords)*4)
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	p := samplePacket()
	b, err := Encode(p)
	require.NoError(t, err)

	decoded, err := Decode(b)
	require.NoError(t, err)

	decoded.Header.PacketWords = 0 // Encode recomputes this; zero it before re-encoding
	b2, err := Encode(decoded)
	require.NoError(t, err)
	require.Equal(t, b, b2)
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01})
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeClassIDTruncated(t *testing.T) {
	hdr := Header{HasClassID: true}
	b := make([]byte, 4)
	putU32(b, hdr.encodeWord(1))
	_, err := Decode(b)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeTrailerNoRoom(t *testing.T) {
	hdr := Header{HasTrailer: true}
	b := make([]byte, 4)
	putU32(b, hdr.encodeWord(1))
	_, err := Decode(b)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestNoClassIDNoClass(t *testing.T) {
	p := Packet{Header: Header{Type: PacketTypeIFData}}
	_, ok := p.Class()
	require.False(t, ok)
}
