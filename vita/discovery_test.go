package vita

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoveryPayloadRoundTrip(t *testing.T) {
	attrs := []DiscoveryAttr{
		{Key: "serial", Value: "1234-5678-9012-3456"},
		{Key: "model", Value: "FLEX-6600"},
		{Key: "ip", Value: "192.168.1.10"},
		{Key: "port", Value: "4992"},
		{Key: "gui_client_hosts", Value: "host1,host2"},
	}
	b := EncodeDiscoveryPayload(attrs)
	require.Equal(t, 0, len(b)%4)
	got := DecodeDiscoveryPayload(b)
	require.Equal(t, attrs, got)
}

func TestDiscoveryPayloadEmpty(t *testing.T) {
	require.Nil(t, DecodeDiscoveryPayload(nil))
	require.Nil(t, DecodeDiscoveryPayload([]byte("   ")))
}

func TestDiscoveryPayloadValuelessToken(t *testing.T) {
	got := DecodeDiscoveryPayload([]byte("status"))
	require.Equal(t, []DiscoveryAttr{{Key: "status"}}, got)
}
