package discovery

import (
	"sync"
	"time"

	"github.com/daveisadork/flexcore/metrics"
	"github.com/daveisadork/flexcore/vita"
)

// EventKind distinguishes the three events a discovery Table emits (spec
// §4.2 "online, offline, change").
type EventKind int

const (
	// Online fires the first time a serial is seen.
	Online EventKind = iota
	// Offline fires once a serial's beacons stop arriving for longer than
	// the table's offline timeout.
	Offline
	// Change fires when a known serial's descriptor changes (including a
	// host migration, folded into a single event rather than an
	// offline/online pair).
	Change
)

func (k EventKind) String() string {
	switch k {
	case Online:
		return "online"
	case Offline:
		return "offline"
	case Change:
		return "change"
	default:
		return "unknown"
	}
}

// Event reports a single table transition.
type Event struct {
	Kind         EventKind
	Descriptor   RadioDescriptor
	Diff         map[string]string // populated for Change
	HostMigrated bool              // set on Change when the endpoint host moved
}

// DefaultOfflineTimeout is how long a serial may go without a beacon
// before it is declared offline, roughly four beacon intervals at the
// radio's ~1 Hz advertise rate (spec §4.2 "a configurable offline timeout,
// default on the order of several missed beacon intervals").
const DefaultOfflineTimeout = 4 * time.Second

type tableEntry struct {
	descriptor RadioDescriptor
	timer      *time.Timer
}

// Table deduplicates a stream of discovery beacons into a live set of
// radios, tracking liveness per serial and emitting Online/Change/Offline
// events as beacons arrive or go quiet.
type Table struct {
	mu             sync.Mutex
	offlineTimeout time.Duration
	entries        map[string]*tableEntry
	onEvent        func(Event)
	metrics        *metrics.Metrics
}

// SetMetrics attaches a metrics recorder; nil disables recording.
func (t *Table) SetMetrics(m *metrics.Metrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics = m
}

// NewTable constructs a Table. onEvent is invoked synchronously from
// whichever goroutine detects the transition (Ingest's caller, or the
// offline timer's own goroutine) — it must not block or call back into
// the Table without care, since Ingest and the timer callback both take
// the same lock.
func NewTable(offlineTimeout time.Duration, onEvent func(Event)) *Table {
	if offlineTimeout <= 0 {
		offlineTimeout = DefaultOfflineTimeout
	}
	return &Table{
		offlineTimeout: offlineTimeout,
		entries:        make(map[string]*tableEntry),
		onEvent:        onEvent,
	}
}

// Ingest applies one decoded beacon payload. A malformed or serial-less
// beacon is ignored rather than causing an error — beacons are
// best-effort UDP broadcasts and a bad one should never take down
// discovery (spec §4.2 "a malformed beacon is dropped, never fatal").
func (t *Table) Ingest(attrs []vita.DiscoveryAttr) {
	d := parseDescriptor(attrs)
	if d.Serial == "" {
		return
	}
	t.apply(d)
}

// IngestPacket decodes a raw class-0xFFFF VITA datagram and applies it.
// A packet that fails to decode, or whose class isn't discovery, is
// dropped silently.
func (t *Table) IngestPacket(raw []byte) {
	pkt, err := vita.Decode(raw)
	if err != nil || !pkt.HasClassID || pkt.ClassID.PacketClass != vita.ClassDiscovery {
		return
	}
	t.Ingest(vita.DecodeDiscoveryPayload(pkt.Payload))
}

func (t *Table) apply(next RadioDescriptor) {
	t.mu.Lock()

	existing, known := t.entries[next.Serial]
	if !known {
		entry := &tableEntry{descriptor: next}
		entry.timer = time.AfterFunc(t.offlineTimeout, func() { t.expire(next.Serial) })
		t.entries[next.Serial] = entry
		t.mu.Unlock()
		t.notify(Event{Kind: Online, Descriptor: next})
		return
	}

	existing.timer.Reset(t.offlineTimeout)
	prev := existing.descriptor
	diff := diffDescriptors(prev, next)
	migrated := hostMigrated(prev, next)
	existing.descriptor = next
	t.mu.Unlock()

	if len(diff) > 0 || migrated {
		t.notify(Event{Kind: Change, Descriptor: next, Diff: diff, HostMigrated: migrated})
	}
}

func (t *Table) expire(serial string) {
	t.mu.Lock()
	entry, ok := t.entries[serial]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.entries, serial)
	t.mu.Unlock()

	t.notify(Event{Kind: Offline, Descriptor: entry.descriptor})
}

func (t *Table) notify(ev Event) {
	t.mu.Lock()
	m := t.metrics
	t.mu.Unlock()
	switch ev.Kind {
	case Online:
		m.RecordDiscoveryOnline()
	case Offline:
		m.RecordDiscoveryOffline()
	case Change:
		m.RecordDiscoveryChange()
	}
	if t.onEvent != nil {
		t.onEvent(ev)
	}
}

// Snapshot returns the currently-known descriptors, keyed by serial.
func (t *Table) Snapshot() map[string]RadioDescriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]RadioDescriptor, len(t.entries))
	for serial, e := range t.entries {
		out[serial] = e.descriptor
	}
	return out
}

// Get returns one serial's current descriptor.
func (t *Table) Get(serial string) (RadioDescriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[serial]
	if !ok {
		return RadioDescriptor{}, false
	}
	return e.descriptor, true
}

// Close stops every outstanding offline timer without emitting further
// events, for use during shutdown.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for serial, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, serial)
	}
}
