package vita

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeterPayloadRoundTrip(t *testing.T) {
	samples := []MeterSample{
		{ID: 1, Value: -12800}, // dBm, see store package for scaling
		{ID: 2, Value: 3328},
	}
	b := EncodeMeterPayload(samples)
	require.Len(t, b, 8)
	require.Equal(t, samples, DecodeMeterPayload(b))
}

func TestMeterPayloadTrailingPartialIgnored(t *testing.T) {
	b := EncodeMeterPayload([]MeterSample{{ID: 1, Value: 2}})
	b = append(b, 0x01, 0x02) // partial trailing pair
	got := DecodeMeterPayload(b)
	require.Len(t, got, 1)
}
