package store

import "strings"

// ATUState is the antenna tuner sub-entity accumulated under the "radio"
// source (spec §4.4 context-sensitive entities).
type ATUState struct {
	Present  bool
	Enabled  bool
	Status   string
	UsingMem bool
}

// FilterSharpness is the per-mode-family sharpness level, clamped to 0..3
// (spec §4.4 "Clamping").
type FilterSharpness struct {
	Voice   int
	CW      int
	Digital int
}

// StaticNetParams is the radio's static (non-DHCP) network configuration.
type StaticNetParams struct {
	IP      string
	Netmask string
	Gateway string
}

// OscillatorState reports the radio's frequency reference source.
type OscillatorState struct {
	Source string
	Locked bool
}

// ProfileState names the currently selected profile per family.
type ProfileState struct {
	Global  string
	TX      string
	Mic     string
	Display string
}

// RadioSnapshot is the single top-level "radio" entity (spec §3 Radio
// handle owns "a snapshot of every entity"; the radio entity itself has a
// fixed id of "").
type RadioSnapshot struct {
	Nickname string
	Callsign string
	Model    string
	Serial   string
	Region   string

	TNFEnabled         bool
	BinauralRX         bool
	FullDuplexEnabled  bool
	FreqErrorPPB       int64
	MixerLineoutGain   int64
	MixerHeadphoneGain int64
	MixerHeadphoneMute bool

	Filter FilterSharpness
	Static StaticNetParams
	Osc    OscillatorState
	Prof   ProfileState
	ATU    ATUState

	Raw map[string]string
}

func cloneRadio(s RadioSnapshot) RadioSnapshot {
	raw := make(map[string]string, len(s.Raw))
	for k, v := range s.Raw {
		raw[k] = v
	}
	s.Raw = raw
	return s
}

// applyRadio parses a "radio" source status line. Positional[0] selects a
// sub-entity when it is filter_sharpness, static_net_params, oscillator,
// profile or atu; any other positional token (log and gps among them) is
// not dispatched, and the line's attributes are applied to the top-level
// radio record.
func (st *Store) applyRadio(prev RadioSnapshot, positional []string, attrs []kv) (RadioSnapshot, Diff, bool) {
	next := cloneRadio(prev)
	diff := Diff{}

	if len(positional) > 0 {
		switch positional[0] {
		case "filter_sharpness":
			if len(positional) > 1 {
				applyFilterSharpness(&next.Filter, positional[1], attrs, diff)
			}
			return next, diff, false
		case "static_net_params":
			applyStaticNetParams(&next.Static, attrs, diff)
			return next, diff, false
		case "oscillator":
			applyOscillator(&next.Osc, attrs, diff)
			return next, diff, false
		case "profile":
			applyProfile(&next.Prof, positional[1:], attrs, diff)
			return next, diff, false
		case "atu":
			applyATU(&next.ATU, attrs, diff)
			return next, diff, false
		}
	}

	for _, a := range attrs {
		switch a.Key {
		case "nickname":
			if next.Nickname != a.Value {
				next.Nickname, diff[a.Key] = a.Value, a.Value
			}
		case "callsign":
			v := strings.ToUpper(a.Value)
			if next.Callsign != v {
				next.Callsign, diff[a.Key] = v, v
			}
		case "model":
			next.Model, diff[a.Key] = a.Value, a.Value
		case "serial":
			next.Serial, diff[a.Key] = a.Value, a.Value
		case "region":
			next.Region, diff[a.Key] = a.Value, a.Value
		case "tnf_enabled":
			if v, ok := parseTruthy(a.Value); ok {
				next.TNFEnabled, diff[a.Key] = v, v
			} else {
				st.unknownValue("radio", a.Key, a.Value)
			}
		case "binaural_rx":
			if v, ok := parseTruthy(a.Value); ok {
				next.BinauralRX, diff[a.Key] = v, v
			} else {
				st.unknownValue("radio", a.Key, a.Value)
			}
		case "full_duplex_enabled":
			if v, ok := parseTruthy(a.Value); ok {
				next.FullDuplexEnabled, diff[a.Key] = v, v
			} else {
				st.unknownValue("radio", a.Key, a.Value)
			}
		case "freq_error_ppb":
			if v, ok := parseIntSafe(a.Value); ok {
				next.FreqErrorPPB, diff[a.Key] = v, v
			} else {
				st.unknownValue("radio", a.Key, a.Value)
			}
		default:
			next.Raw[a.Key] = a.Value
			st.unknownAttribute("radio", a.Key)
		}
	}
	return next, diff, false
}

func applyFilterSharpness(fs *FilterSharpness, family string, attrs []kv, diff Diff) {
	for _, a := range attrs {
		if a.Key != "level" {
			continue
		}
		v, ok := parseIntSafe(a.Value)
		if !ok {
			continue
		}
		v = clampInt(v, 0, 3)
		switch family {
		case "voice":
			fs.Voice = int(v)
		case "cw":
			fs.CW = int(v)
		case "digital":
			fs.Digital = int(v)
		default:
			continue
		}
		diff["filter_sharpness."+family+".level"] = v
	}
}

func applyStaticNetParams(s *StaticNetParams, attrs []kv, diff Diff) {
	for _, a := range attrs {
		switch a.Key {
		case "ip":
			s.IP, diff[a.Key] = a.Value, a.Value
		case "netmask":
			s.Netmask, diff[a.Key] = a.Value, a.Value
		case "gateway":
			s.Gateway, diff[a.Key] = a.Value, a.Value
		}
	}
}

func applyOscillator(o *OscillatorState, attrs []kv, diff Diff) {
	for _, a := range attrs {
		switch a.Key {
		case "source":
			o.Source, diff[a.Key] = a.Value, a.Value
		case "locked":
			if v, ok := parseTruthy(a.Value); ok {
				o.Locked, diff[a.Key] = v, v
			}
		}
	}
}

func applyProfile(p *ProfileState, positional []string, attrs []kv, diff Diff) {
	family := ""
	if len(positional) > 0 {
		family = positional[0]
	}
	for _, a := range attrs {
		if a.Key != "current" {
			continue
		}
		switch family {
		case "global":
			p.Global, diff["profile.global.current"] = a.Value, a.Value
		case "tx":
			p.TX, diff["profile.tx.current"] = a.Value, a.Value
		case "mic":
			p.Mic, diff["profile.mic.current"] = a.Value, a.Value
		case "display":
			p.Display, diff["profile.display.current"] = a.Value, a.Value
		}
	}
}

func applyATU(a0 *ATUState, attrs []kv, diff Diff) {
	for _, a := range attrs {
		switch a.Key {
		case "atu_present":
			if v, ok := parseTruthy(a.Value); ok {
				a0.Present, diff[a.Key] = v, v
			}
		case "status":
			a0.Status, diff[a.Key] = a.Value, a.Value
		case "using_mem":
			if v, ok := parseTruthy(a.Value); ok {
				a0.UsingMem, diff[a.Key] = v, v
			}
		case "enabled":
			if v, ok := parseTruthy(a.Value); ok {
				a0.Enabled, diff[a.Key] = v, v
			}
		}
	}
}
