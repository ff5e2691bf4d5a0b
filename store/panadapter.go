package store

// PanadapterSnapshot is keyed by its 32-bit stream id, rendered as 8 hex
// digits (spec §3 Panadapter).
type PanadapterSnapshot struct {
	StreamID uint32

	CenterMHz    float64
	BandwidthMHz float64
	MinBandwidthMHz float64
	MaxBandwidthMHz float64
	MinDBM       float64
	MaxDBM       float64
	XPixels      int64
	YPixels      int64

	WaterfallStreamID uint32
	ClientHandle      uint32

	Band    string
	Ant     string
	PreAmp  string

	Raw map[string]string
}

func clonePanadapter(p PanadapterSnapshot) PanadapterSnapshot {
	raw := make(map[string]string, len(p.Raw))
	for k, v := range p.Raw {
		raw[k] = v
	}
	p.Raw = raw
	return p
}

func (st *Store) applyPanadapter(streamID uint32, prev PanadapterSnapshot, attrs []kv) (PanadapterSnapshot, Diff, bool) {
	next := clonePanadapter(prev)
	next.StreamID = streamID
	diff := Diff{}
	removed := false

	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "center":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.CenterMHz, diff[a.Key] = v, v
			} else {
				st.unknownValue("panadapter", a.Key, a.Value)
			}
		case "bandwidth":
			if v, ok := parseFloatSafe(a.Value); ok {
				if next.MinBandwidthMHz > 0 && v < next.MinBandwidthMHz {
					v = next.MinBandwidthMHz
				}
				if next.MaxBandwidthMHz > 0 && v > next.MaxBandwidthMHz {
					v = next.MaxBandwidthMHz
				}
				if v <= 0 {
					st.unknownValue("panadapter", "bandwidth", a.Value)
				} else {
					next.BandwidthMHz, diff[a.Key] = v, v
				}
			} else {
				st.unknownValue("panadapter", a.Key, a.Value)
			}
		case "min_bw":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.MinBandwidthMHz, diff[a.Key] = v, v
			}
		case "max_bw":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.MaxBandwidthMHz, diff[a.Key] = v, v
			}
		case "min_dbm":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.MinDBM, diff[a.Key] = v, v
			}
		case "max_dbm":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.MaxDBM, diff[a.Key] = v, v
			}
		case "xpixels":
			if v, ok := parseIntSafe(a.Value); ok {
				next.XPixels, diff[a.Key] = v, v
			}
		case "ypixels":
			if v, ok := parseIntSafe(a.Value); ok {
				next.YPixels, diff[a.Key] = v, v
			}
		case "waterfall":
			if v, ok := parseIntegerHex(a.Value); ok {
				next.WaterfallStreamID, diff[a.Key] = uint32(v), uint32(v)
			}
		case "client_handle":
			if v, ok := parseIntegerHex(a.Value); ok {
				next.ClientHandle, diff[a.Key] = uint32(v), uint32(v)
			}
		case "band":
			next.Band, diff[a.Key] = a.Value, a.Value
		case "ant":
			next.Ant, diff[a.Key] = a.Value, a.Value
		case "pre":
			next.PreAmp, diff[a.Key] = a.Value, a.Value
		default:
			if next.Raw == nil {
				next.Raw = map[string]string{}
			}
			next.Raw[a.Key] = a.Value
			st.unknownAttribute("panadapter", a.Key)
		}
	}

	return next, diff, removed
}
