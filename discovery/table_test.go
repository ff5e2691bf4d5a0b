package discovery

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/vita"
)

type eventSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *eventSink) record(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *eventSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func beacon(serial, ip string, port int, nickname string) []vita.DiscoveryAttr {
	return []vita.DiscoveryAttr{
		{Key: "serial", Value: serial},
		{Key: "ip", Value: ip},
		{Key: "port", Value: itoa(port)},
		{Key: "nickname", Value: nickname},
		{Key: "model", Value: "FLEX-6600"},
	}
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}

func TestTableEmitsOnlineOnFirstBeacon(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(time.Hour, sink.record)
	defer tbl.Close()

	tbl.Ingest(beacon("1234-5678", "192.168.1.10", 4992, "shack"))

	events := sink.snapshot()
	require.Len(t, events, 1)
	require.Equal(t, Online, events[0].Kind)
	require.Equal(t, "1234-5678", events[0].Descriptor.Serial)
	require.Equal(t, "192.168.1.10", events[0].Descriptor.Endpoint.Host)
	require.Equal(t, 4992, events[0].Descriptor.Endpoint.Port)
}

func TestTableRepeatedIdenticalBeaconEmitsNothingFurther(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(time.Hour, sink.record)
	defer tbl.Close()

	b := beacon("1234-5678", "192.168.1.10", 4992, "shack")
	tbl.Ingest(b)
	tbl.Ingest(b)
	tbl.Ingest(b)

	require.Len(t, sink.snapshot(), 1)
}

func TestTableEmitsChangeOnDescriptorDiff(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(time.Hour, sink.record)
	defer tbl.Close()

	tbl.Ingest(beacon("1234-5678", "192.168.1.10", 4992, "shack"))
	tbl.Ingest(beacon("1234-5678", "192.168.1.10", 4992, "garage"))

	events := sink.snapshot()
	require.Len(t, events, 2)
	require.Equal(t, Change, events[1].Kind)
	require.Equal(t, "garage", events[1].Diff["nickname"])
	require.False(t, events[1].HostMigrated)
}

func TestTableHostMigrationReportedAsSingleChange(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(time.Hour, sink.record)
	defer tbl.Close()

	tbl.Ingest(beacon("1234-5678", "192.168.1.10", 4992, "shack"))
	tbl.Ingest(beacon("1234-5678", "192.168.1.99", 4992, "shack"))

	events := sink.snapshot()
	require.Len(t, events, 2)
	require.Equal(t, Change, events[1].Kind)
	require.True(t, events[1].HostMigrated)
	require.Equal(t, "192.168.1.99", events[1].Diff["ip"])
}

func TestTableOfflineTimeoutExpiresStaleSerial(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(20*time.Millisecond, sink.record)
	defer tbl.Close()

	tbl.Ingest(beacon("1234-5678", "192.168.1.10", 4992, "shack"))
	require.Eventually(t, func() bool {
		for _, ev := range sink.snapshot() {
			if ev.Kind == Offline {
				return true
			}
		}
		return false
	}, time.Second, 2*time.Millisecond)

	_, ok := tbl.Get("1234-5678")
	require.False(t, ok)
}

func TestTableBeaconResetsOfflineTimer(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(40*time.Millisecond, sink.record)
	defer tbl.Close()

	tbl.Ingest(beacon("1234-5678", "192.168.1.10", 4992, "shack"))
	time.Sleep(25 * time.Millisecond)
	tbl.Ingest(beacon("1234-5678", "192.168.1.10", 4992, "shack"))
	time.Sleep(25 * time.Millisecond)

	for _, ev := range sink.snapshot() {
		require.NotEqual(t, Offline, ev.Kind)
	}
	_, ok := tbl.Get("1234-5678")
	require.True(t, ok)
}

func TestTableMalformedBeaconWithoutSerialIsIgnored(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(time.Hour, sink.record)
	defer tbl.Close()

	tbl.Ingest([]vita.DiscoveryAttr{{Key: "nickname", Value: "no-serial"}})

	require.Empty(t, sink.snapshot())
}

func TestTableIngestPacketDropsNonDiscoveryClass(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(time.Hour, sink.record)
	defer tbl.Close()

	tbl.IngestPacket([]byte{0x00})

	require.Empty(t, sink.snapshot())
}

func TestTableSnapshotReturnsCurrentDescriptors(t *testing.T) {
	sink := &eventSink{}
	tbl := NewTable(time.Hour, sink.record)
	defer tbl.Close()

	tbl.Ingest(beacon("aaa", "10.0.0.1", 4992, "one"))
	tbl.Ingest(beacon("bbb", "10.0.0.2", 4992, "two"))

	snap := tbl.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, "one", snap["aaa"].Nickname)
	require.Equal(t, "two", snap["bbb"].Nickname)
}
