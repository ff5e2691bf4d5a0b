package store

import "strings"

// AGCState is the slice's automatic gain control configuration.
type AGCState struct {
	Mode      string
	Threshold int64
	OffLevel  int64
}

// NoiseReduction bundles the slice's noise-mitigation toggles (spec §3
// "NR/NR2/ANF/NB/WNB/APF/NRS/RNN/ANFT/NRF/ESC").
type NoiseReduction struct {
	NR    bool
	NR2   bool
	ANF   bool
	NB    bool
	WNB   bool
	APF   bool
	NRS   int64
	RNN   bool
	ANFT  int64
	NRF   int64
	ESC   bool
}

// FMToneState carries FM sub-audible tone parameters.
type FMToneState struct {
	ToneMode string
	ToneValue float64
	RepeaterOffsetDirection string
	RepeaterOffsetHz int64
}

// SliceSnapshot is one receive slice, keyed by its small integer id string
// (spec §3 Slice).
type SliceSnapshot struct {
	ID string

	FrequencyMHz float64
	Mode         string
	FilterLowHz  int64
	FilterHighHz int64
	RFGain       int64

	AGC AGCState
	NR  NoiseReduction

	StepHz    int64
	StepListHz []int64

	CWAutoTune bool

	RXAnt      string
	TXAnt      string
	AntList    []string

	DiversityChild  bool
	DiversityParent string

	AudioLevel int64
	AudioPan   int64
	AudioMute  bool

	RITOffsetHz int64
	XITOffsetHz int64
	RITEnabled  bool
	XITEnabled  bool

	FM FMToneState

	RTTYMarkHz  int64
	RTTYShiftHz int64

	Detached bool
	Owner    uint32

	Raw map[string]string
}

func cloneSlice(s SliceSnapshot) SliceSnapshot {
	s.StepListHz = append([]int64(nil), s.StepListHz...)
	s.AntList = append([]string(nil), s.AntList...)
	raw := make(map[string]string, len(s.Raw))
	for k, v := range s.Raw {
		raw[k] = v
	}
	s.Raw = raw
	return s
}

// stepInList reports whether step is present in the slice's step list,
// the invariant spec §3 names ("step must appear in step_list").
func stepInList(step int64, list []int64) bool {
	for _, v := range list {
		if v == step {
			return true
		}
	}
	return false
}

func (st *Store) applySlice(id string, prev SliceSnapshot, positional []string, attrs []kv) (SliceSnapshot, Diff, bool) {
	next := cloneSlice(prev)
	next.ID = id
	diff := Diff{}
	removed := false

	for _, p := range positional {
		if p == "removed" {
			removed = true
		}
	}

	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "RF_frequency":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.FrequencyMHz, diff[a.Key] = v, v
			} else {
				st.unknownValue("slice", a.Key, a.Value)
			}
		case "mode":
			next.Mode, diff[a.Key] = strings.ToUpper(a.Value), strings.ToUpper(a.Value)
		case "filter_lo":
			if v, ok := parseIntSafe(a.Value); ok {
				if next.FilterHighHz != 0 && v > next.FilterHighHz {
					st.unknownValue("slice", "filter_lo", a.Value)
				} else {
					next.FilterLowHz, diff[a.Key] = v, v
				}
			} else {
				st.unknownValue("slice", a.Key, a.Value)
			}
		case "filter_hi":
			if v, ok := parseIntSafe(a.Value); ok {
				if next.FilterLowHz != 0 && v < next.FilterLowHz {
					st.unknownValue("slice", "filter_hi", a.Value)
				} else {
					next.FilterHighHz, diff[a.Key] = v, v
				}
			} else {
				st.unknownValue("slice", a.Key, a.Value)
			}
		case "rfgain":
			if v, ok := parseIntSafe(a.Value); ok {
				next.RFGain, diff[a.Key] = v, v
			} else {
				st.unknownValue("slice", a.Key, a.Value)
			}
		case "agc_mode":
			next.AGC.Mode, diff[a.Key] = a.Value, a.Value
		case "agc_threshold":
			if v, ok := parseIntSafe(a.Value); ok {
				next.AGC.Threshold, diff[a.Key] = v, v
			}
		case "agc_off_level":
			if v, ok := parseIntSafe(a.Value); ok {
				next.AGC.OffLevel, diff[a.Key] = v, v
			}
		case "nr":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.NR, diff[a.Key] = v, v
			}
		case "nr2":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.NR2, diff[a.Key] = v, v
			}
		case "anf":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.ANF, diff[a.Key] = v, v
			}
		case "nb":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.NB, diff[a.Key] = v, v
			}
		case "wnb":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.WNB, diff[a.Key] = v, v
			}
		case "apf":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.APF, diff[a.Key] = v, v
			}
		case "nrs":
			if v, ok := parseIntSafe(a.Value); ok {
				next.NR.NRS, diff[a.Key] = v, v
			}
		case "rnn":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.RNN, diff[a.Key] = v, v
			}
		case "anft":
			if v, ok := parseIntSafe(a.Value); ok {
				next.NR.ANFT, diff[a.Key] = v, v
			}
		case "nrf":
			if v, ok := parseIntSafe(a.Value); ok {
				next.NR.NRF, diff[a.Key] = v, v
			}
		case "esc":
			if v, ok := parseTruthy(a.Value); ok {
				next.NR.ESC, diff[a.Key] = v, v
			}
		case "step":
			if v, ok := parseIntSafe(a.Value); ok {
				if len(next.StepListHz) > 0 && !stepInList(v, next.StepListHz) {
					st.unknownValue("slice", "step", a.Value)
				} else {
					next.StepHz, diff[a.Key] = v, v
				}
			}
		case "step_list":
			list := splitCSV(a.Value)
			vals := make([]int64, 0, len(list))
			for _, s := range list {
				if v, ok := parseIntSafe(s); ok {
					vals = append(vals, v)
				}
			}
			next.StepListHz, diff[a.Key] = vals, vals
		case "cw_auto_tune":
			if v, ok := parseTruthy(a.Value); ok {
				next.CWAutoTune, diff[a.Key] = v, v
			}
		case "rxant":
			next.RXAnt, diff[a.Key] = a.Value, a.Value
		case "txant":
			next.TXAnt, diff[a.Key] = a.Value, a.Value
		case "ant_list":
			list := splitCSV(a.Value)
			next.AntList, diff[a.Key] = list, list
		case "diversity_child":
			if v, ok := parseTruthy(a.Value); ok {
				next.DiversityChild, diff[a.Key] = v, v
			}
		case "diversity_parent":
			next.DiversityParent, diff[a.Key] = a.Value, a.Value
		case "audio_level":
			if v, ok := parseIntSafe(a.Value); ok {
				next.AudioLevel, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "audio_pan":
			if v, ok := parseIntSafe(a.Value); ok {
				next.AudioPan, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "audio_mute":
			if v, ok := parseTruthy(a.Value); ok {
				next.AudioMute, diff[a.Key] = v, v
			}
		case "rit_on":
			if v, ok := parseTruthy(a.Value); ok {
				next.RITEnabled, diff[a.Key] = v, v
			}
		case "xit_on":
			if v, ok := parseTruthy(a.Value); ok {
				next.XITEnabled, diff[a.Key] = v, v
			}
		case "rit_freq":
			if v, ok := parseIntSafe(a.Value); ok {
				next.RITOffsetHz, diff[a.Key] = v, v
			}
		case "xit_freq":
			if v, ok := parseIntSafe(a.Value); ok {
				next.XITOffsetHz, diff[a.Key] = v, v
			}
		case "tx_offset_freq":
			if v, ok := parseFloatSafe(a.Value); ok {
				diff[a.Key] = v
			}
		case "fm_tone_mode":
			next.FM.ToneMode, diff[a.Key] = a.Value, a.Value
		case "fm_tone_value":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.FM.ToneValue, diff[a.Key] = v, v
			}
		case "fm_repeater_offset_dir":
			next.FM.RepeaterOffsetDirection, diff[a.Key] = a.Value, a.Value
		case "fm_repeater_offset_freq":
			if v, ok := parseIntSafe(a.Value); ok {
				next.FM.RepeaterOffsetHz, diff[a.Key] = v, v
			}
		case "rtty_mark":
			if v, ok := parseFloatSafe(a.Value); ok {
				rounded := int64(v + 0.5)
				next.RTTYMarkHz, diff[a.Key] = rounded, rounded
			}
		case "rtty_shift":
			if v, ok := parseIntSafe(a.Value); ok {
				next.RTTYShiftHz, diff[a.Key] = v, v
			}
		case "detached":
			if v, ok := parseTruthy(a.Value); ok {
				next.Detached, diff[a.Key] = v, v
			}
		case "owner":
			if v, ok := parseIntegerHex(a.Value); ok {
				next.Owner, diff[a.Key] = uint32(v), uint32(v)
			}
		default:
			if next.Raw == nil {
				next.Raw = map[string]string{}
			}
			next.Raw[a.Key] = a.Value
			st.unknownAttribute("slice", a.Key)
		}
	}

	if next.DiversityChild && next.DiversityParent == "" {
		st.unknownValue("slice", "diversity_parent", "")
	}

	return next, diff, removed
}
