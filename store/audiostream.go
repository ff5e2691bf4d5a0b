package store

// AudioStreamSnapshot describes one DAX/remote-audio stream, adapted from
// the teacher's attribute set (internal/radio/audiostream.go) and
// generalized from its positional stream-id key/value extraction into the
// common key=value attribute parsing every other entity uses.
type AudioStreamSnapshot struct {
	StreamID     uint32
	Type         string
	Compression  string
	ClientHandle uint32
	IP           string
	DAXChannel   uint8
	Slice        string
	TX           bool
}

func (st *Store) applyAudioStream(streamID uint32, prev AudioStreamSnapshot, attrs []kv) (AudioStreamSnapshot, Diff, bool) {
	next := prev
	next.StreamID = streamID
	diff := Diff{}
	removed := false

	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "type":
			next.Type, diff[a.Key] = a.Value, a.Value
		case "compression":
			next.Compression, diff[a.Key] = a.Value, a.Value
		case "client_handle":
			if v, ok := parseIntegerHex(a.Value); ok {
				next.ClientHandle, diff[a.Key] = uint32(v), uint32(v)
			}
		case "ip":
			next.IP, diff[a.Key] = a.Value, a.Value
		case "dax_channel":
			if v, ok := parseIntSafe(a.Value); ok {
				next.DAXChannel, diff[a.Key] = uint8(v), uint8(v)
			}
		case "slice":
			next.Slice, diff[a.Key] = a.Value, a.Value
		case "tx":
			if v, ok := parseTruthy(a.Value); ok {
				next.TX, diff[a.Key] = v, v
			}
		default:
			st.unknownAttribute("audio_stream", a.Key)
		}
	}

	return next, diff, removed
}
