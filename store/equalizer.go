package store

// EqualizerSnapshot is one equalizer domain (e.g. "rxsc", "txsc"), keyed
// by that domain name (spec §6 "eq <tx|rx>sc mode=... / <band>=...").
type EqualizerSnapshot struct {
	Domain string
	Mode   bool
	Bands  map[string]int64
}

func cloneEqualizer(e EqualizerSnapshot) EqualizerSnapshot {
	bands := make(map[string]int64, len(e.Bands))
	for k, v := range e.Bands {
		bands[k] = v
	}
	e.Bands = bands
	return e
}

func (st *Store) applyEqualizer(domain string, prev EqualizerSnapshot, attrs []kv) (EqualizerSnapshot, Diff, bool) {
	next := cloneEqualizer(prev)
	next.Domain = domain
	diff := Diff{}

	for _, a := range attrs {
		switch a.Key {
		case "mode":
			if v, ok := parseTruthy(a.Value); ok {
				next.Mode, diff[a.Key] = v, v
			}
		default:
			if v, ok := parseIntSafe(a.Value); ok {
				clamped := clampInt(v, -10, 10)
				next.Bands[a.Key] = clamped
				diff["band."+a.Key] = clamped
			} else {
				st.unknownAttribute("eq", a.Key)
			}
		}
	}

	return next, diff, false
}
