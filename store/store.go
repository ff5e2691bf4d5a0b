package store

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/daveisadork/flexcore/wire"
)

// kv is a local alias so entity parsers don't need to import wire
// themselves; Store.Apply does the one necessary conversion.
type kv = wire.KV

// Store holds the latest snapshot of every entity for one radio handle
// (spec §4.4). It is owned exclusively by its handle; callers read via the
// Snapshot-returning getters or subscribe to change events.
type Store struct {
	mu     sync.Mutex
	logger *slog.Logger

	radio   RadioSnapshot
	gps     GPSSnapshot
	tx      TransmitSnapshot
	interlock InterlockSnapshot
	apd     APDSnapshot

	slices      map[string]SliceSnapshot
	panadapters map[uint32]PanadapterSnapshot
	waterfalls  map[uint32]WaterfallSnapshot
	meters      map[uint16]MeterSnapshot
	audioStreams map[uint32]AudioStreamSnapshot
	guiClients  map[uint32]GUIClientSnapshot
	equalizers  map[string]EqualizerSnapshot
	licenses    map[string]LicenseSnapshot

	listeners map[int]func(ChangeEvent)
	nextSub   int
}

// New constructs an empty Store. logger may be nil, in which case
// slog.Default() is used for "unknown attribute"/"parse error" logging
// (spec §7).
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:       logger,
		slices:       make(map[string]SliceSnapshot),
		panadapters:  make(map[uint32]PanadapterSnapshot),
		waterfalls:   make(map[uint32]WaterfallSnapshot),
		meters:       make(map[uint16]MeterSnapshot),
		audioStreams: make(map[uint32]AudioStreamSnapshot),
		guiClients:   make(map[uint32]GUIClientSnapshot),
		equalizers:   make(map[string]EqualizerSnapshot),
		licenses:     make(map[string]LicenseSnapshot),
		listeners:    make(map[int]func(ChangeEvent)),
	}
}

// Subscribe registers fn to be called, on the goroutine that calls Apply,
// for every change event. The returned unsubscribe is idempotent.
func (st *Store) Subscribe(fn func(ChangeEvent)) func() {
	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.listeners[id] = fn
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.listeners, id)
			st.mu.Unlock()
		})
	}
}

func (st *Store) emit(ev ChangeEvent) {
	st.mu.Lock()
	fns := make([]func(ChangeEvent), 0, len(st.listeners))
	for _, fn := range st.listeners {
		fns = append(fns, fn)
	}
	st.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (st *Store) unknownAttribute(entity, key string) {
	st.logger.Warn("unknown attribute", "entity", entity, "key", key)
}

func (st *Store) unknownValue(entity, key, value string) {
	st.logger.Warn("parse error", "entity", entity, "key", key, "value", value)
}

func (st *Store) logUnknown(msg string, args ...any) {
	st.logger.Warn(msg, args...)
}

func parseHexID(s string) (uint32, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// Apply routes one parsed status line to its entity parser and returns the
// resulting change event. Status sources not recognized at all (rather
// than attributes within a recognized source) are logged as an unknown
// attribute and reported via ok=false; spec §4.4 routes by source name, so
// an unroutable source is itself an "unknown attribute"-class condition.
func (st *Store) Apply(s wire.Status) (ChangeEvent, bool) {
	st.mu.Lock()
	ev, ok := st.applyLocked(s)
	st.mu.Unlock()

	if ok {
		st.emit(ev)
	}
	return ev, ok
}

func (st *Store) applyLocked(s wire.Status) (ChangeEvent, bool) {
	switch s.Source {
	case "radio":
		next, diff, removed := st.applyRadio(st.radio, s.Positional, s.Attrs)
		st.radio = next
		return ChangeEvent{Entity: "radio", ID: "", Diff: diff, Removed: removed}, true

	case "gps":
		next, diff, removed := st.applyGPS(st.gps, s.Attrs)
		st.gps = next
		return ChangeEvent{Entity: "gps", ID: "", Diff: diff, Removed: removed}, true

	case "tx":
		next, diff, removed := st.applyTransmit(st.tx, s.Attrs)
		st.tx = next
		return ChangeEvent{Entity: "tx", ID: "", Diff: diff, Removed: removed}, true

	case "interlock":
		next, diff, removed := st.applyInterlock(st.interlock, s.Attrs)
		st.interlock = next
		return ChangeEvent{Entity: "interlock", ID: "", Diff: diff, Removed: removed}, true

	case "apd":
		next, diff, removed := st.applyAPD(st.apd, s.Attrs)
		st.apd = next
		return ChangeEvent{Entity: "apd", ID: "", Diff: diff, Removed: removed}, true

	case "meter":
		if len(s.Positional) == 0 {
			st.unknownAttribute("meter", "<missing id>")
			return ChangeEvent{}, false
		}
		idVal, err := strconv.ParseUint(s.Positional[0], 10, 16)
		if err != nil {
			st.unknownValue("meter", "id", s.Positional[0])
			return ChangeEvent{}, false
		}
		id := uint16(idVal)
		next, diff, removed := st.applyMeter(id, st.meters[id], s.Attrs)
		if removed {
			delete(st.meters, id)
		} else {
			st.meters[id] = next
		}
		return ChangeEvent{Entity: "meter", ID: s.Positional[0], Diff: diff, Removed: removed}, true

	case "slice":
		if len(s.Positional) == 0 {
			st.unknownAttribute("slice", "<missing id>")
			return ChangeEvent{}, false
		}
		id := s.Positional[0]
		next, diff, removed := st.applySlice(id, st.slices[id], s.Positional[1:], s.Attrs)
		if removed {
			delete(st.slices, id)
		} else {
			st.slices[id] = next
		}
		return ChangeEvent{Entity: "slice", ID: id, Diff: diff, Removed: removed}, true

	case "display":
		if len(s.Positional) < 2 {
			st.unknownAttribute("display", "<missing kind/id>")
			return ChangeEvent{}, false
		}
		streamID, ok := parseHexID(s.Positional[1])
		if !ok {
			st.unknownValue("display", "stream_id", s.Positional[1])
			return ChangeEvent{}, false
		}
		switch s.Positional[0] {
		case "pan":
			next, diff, removed := st.applyPanadapter(streamID, st.panadapters[streamID], s.Attrs)
			if removed {
				delete(st.panadapters, streamID)
			} else {
				st.panadapters[streamID] = next
			}
			return ChangeEvent{Entity: "panadapter", ID: formatHex(streamID), Diff: diff, Removed: removed}, true
		case "waterfall":
			next, diff, removed := st.applyWaterfall(streamID, st.waterfalls[streamID], s.Attrs)
			if removed {
				delete(st.waterfalls, streamID)
			} else {
				st.waterfalls[streamID] = next
			}
			return ChangeEvent{Entity: "waterfall", ID: formatHex(streamID), Diff: diff, Removed: removed}, true
		default:
			st.unknownAttribute("display", s.Positional[0])
			return ChangeEvent{}, false
		}

	case "audio_stream":
		if len(s.Positional) == 0 {
			st.unknownAttribute("audio_stream", "<missing id>")
			return ChangeEvent{}, false
		}
		streamID, ok := parseHexID(s.Positional[0])
		if !ok {
			st.unknownValue("audio_stream", "stream_id", s.Positional[0])
			return ChangeEvent{}, false
		}
		next, diff, removed := st.applyAudioStream(streamID, st.audioStreams[streamID], s.Attrs)
		if removed {
			delete(st.audioStreams, streamID)
		} else {
			st.audioStreams[streamID] = next
		}
		return ChangeEvent{Entity: "audio_stream", ID: formatHex(streamID), Diff: diff, Removed: removed}, true

	case "client":
		if len(s.Positional) < 2 || s.Positional[0] != "gui" {
			st.unknownAttribute("client", "<unsupported positional shape>")
			return ChangeEvent{}, false
		}
		handle, ok := parseHexID(s.Positional[1])
		if !ok {
			st.unknownValue("client", "handle", s.Positional[1])
			return ChangeEvent{}, false
		}
		next, diff, removed := st.applyGUIClient(handle, st.guiClients[handle], s.Attrs)
		if removed {
			delete(st.guiClients, handle)
		} else {
			st.guiClients[handle] = next
		}
		return ChangeEvent{Entity: "client", ID: formatHex(handle), Diff: diff, Removed: removed}, true

	case "eq":
		if len(s.Positional) == 0 {
			st.unknownAttribute("eq", "<missing domain>")
			return ChangeEvent{}, false
		}
		domain := s.Positional[0]
		next, diff, removed := st.applyEqualizer(domain, st.equalizers[domain], s.Attrs)
		if removed {
			delete(st.equalizers, domain)
		} else {
			st.equalizers[domain] = next
		}
		return ChangeEvent{Entity: "equalizer", ID: domain, Diff: diff, Removed: removed}, true

	case "license":
		if len(s.Positional) == 0 {
			st.unknownAttribute("license", "<missing feature>")
			return ChangeEvent{}, false
		}
		feature := s.Positional[0]
		next, diff, removed := st.applyLicense(feature, st.licenses[feature], s.Attrs)
		if removed {
			delete(st.licenses, feature)
		} else {
			st.licenses[feature] = next
		}
		return ChangeEvent{Entity: "license", ID: feature, Diff: diff, Removed: removed}, true

	default:
		st.unknownAttribute(s.Source, "<unrecognized source>")
		return ChangeEvent{}, false
	}
}

func formatHex(v uint32) string {
	s := strings.ToUpper(strconv.FormatUint(uint64(v), 16))
	return "0x" + strings.Repeat("0", 8-len(s)) + s
}

// Radio returns the current radio snapshot.
func (st *Store) Radio() RadioSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return cloneRadio(st.radio)
}

// GPS returns the current GPS snapshot.
func (st *Store) GPS() GPSSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.gps
}

// Transmit returns the current transmit snapshot.
func (st *Store) Transmit() TransmitSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.tx
}

// Interlock returns the current interlock snapshot.
func (st *Store) Interlock() InterlockSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.interlock
}

// APD returns the current APD snapshot.
func (st *Store) APD() APDSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.apd
}

// Slice returns the snapshot for id and whether it exists.
func (st *Store) Slice(id string) (SliceSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.slices[id]
	return s, ok
}

// Slices returns a copy of every known slice snapshot, keyed by slice id.
func (st *Store) Slices() map[string]SliceSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[string]SliceSnapshot, len(st.slices))
	for k, v := range st.slices {
		out[k] = v
	}
	return out
}

// Panadapter returns the snapshot for streamID and whether it exists.
func (st *Store) Panadapter(streamID uint32) (PanadapterSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	p, ok := st.panadapters[streamID]
	return p, ok
}

// Waterfall returns the snapshot for streamID and whether it exists.
func (st *Store) Waterfall(streamID uint32) (WaterfallSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	w, ok := st.waterfalls[streamID]
	return w, ok
}

// Meter returns the snapshot for id and whether it exists.
func (st *Store) Meter(id uint16) (MeterSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	m, ok := st.meters[id]
	return m, ok
}

// AudioStream returns the snapshot for streamID and whether it exists.
func (st *Store) AudioStream(streamID uint32) (AudioStreamSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	a, ok := st.audioStreams[streamID]
	return a, ok
}

// GUIClient returns the snapshot for handle and whether it exists.
func (st *Store) GUIClient(handle uint32) (GUIClientSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	c, ok := st.guiClients[handle]
	return c, ok
}

// Equalizer returns the snapshot for domain and whether it exists.
func (st *Store) Equalizer(domain string) (EqualizerSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.equalizers[domain]
	return e, ok
}

// License returns the snapshot for feature and whether it exists.
func (st *Store) License(feature string) (LicenseSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	l, ok := st.licenses[feature]
	return l, ok
}
