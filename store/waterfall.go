package store

// WaterfallSnapshot is keyed by its own stream id and references the
// panadapter stream id it is bound to (spec §3 Waterfall).
type WaterfallSnapshot struct {
	StreamID          uint32
	PanadapterStreamID uint32

	ColorGain      int64
	AutoBlackLevel bool
	BlackLevel     int64
	Gradient       string
	LineDurationMs int64
	BandwidthMHz   float64
}

func (st *Store) applyWaterfall(streamID uint32, prev WaterfallSnapshot, attrs []kv) (WaterfallSnapshot, Diff, bool) {
	next := prev
	next.StreamID = streamID
	diff := Diff{}
	removed := false

	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "panadapter":
			if v, ok := parseIntegerHex(a.Value); ok {
				next.PanadapterStreamID, diff[a.Key] = uint32(v), uint32(v)
			}
		case "color_gain":
			if v, ok := parseIntSafe(a.Value); ok {
				next.ColorGain, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "auto_black":
			if v, ok := parseTruthy(a.Value); ok {
				next.AutoBlackLevel, diff[a.Key] = v, v
			}
		case "black_level":
			if v, ok := parseIntSafe(a.Value); ok {
				next.BlackLevel, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "gradient_index":
			next.Gradient, diff[a.Key] = a.Value, a.Value
		case "line_duration":
			if v, ok := parseIntSafe(a.Value); ok {
				next.LineDurationMs, diff[a.Key] = v, v
			}
		case "bandwidth":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.BandwidthMHz, diff[a.Key] = v, v
			}
		default:
			st.unknownAttribute("waterfall", a.Key)
		}
	}

	return next, diff, removed
}
