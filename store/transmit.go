package store

// TransmitSnapshot is the singleton "tx" entity (spec §4.6 sync set names
// the subscription source "tx").
type TransmitSnapshot struct {
	TunePower    int64
	RFPower      int64
	MicSelection string
	MicLevel     int64
	MicBoost     bool
	CompanderLevel int64
	Monitor      bool
	PTTSource    string
	TX1Enabled   bool
	TX2Enabled   bool
	TX3Enabled   bool
}

func (st *Store) applyTransmit(prev TransmitSnapshot, attrs []kv) (TransmitSnapshot, Diff, bool) {
	next := prev
	diff := Diff{}

	for _, a := range attrs {
		switch a.Key {
		case "tunepower":
			if v, ok := parseIntSafe(a.Value); ok {
				next.TunePower, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "rfpower":
			if v, ok := parseIntSafe(a.Value); ok {
				next.RFPower, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "mic_selection":
			next.MicSelection, diff[a.Key] = a.Value, a.Value
		case "mic_level":
			if v, ok := parseIntSafe(a.Value); ok {
				next.MicLevel, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "mic_boost":
			if v, ok := parseTruthy(a.Value); ok {
				next.MicBoost, diff[a.Key] = v, v
			}
		case "compander_level":
			if v, ok := parseIntSafe(a.Value); ok {
				next.CompanderLevel, diff[a.Key] = clampInt(v, 0, 100), clampInt(v, 0, 100)
			}
		case "monitor":
			if v, ok := parseTruthy(a.Value); ok {
				next.Monitor, diff[a.Key] = v, v
			}
		case "ptt_source":
			next.PTTSource, diff[a.Key] = a.Value, a.Value
		case "tx1_enabled":
			if v, ok := parseTruthy(a.Value); ok {
				next.TX1Enabled, diff[a.Key] = v, v
			}
		case "tx2_enabled":
			if v, ok := parseTruthy(a.Value); ok {
				next.TX2Enabled, diff[a.Key] = v, v
			}
		case "tx3_enabled":
			if v, ok := parseTruthy(a.Value); ok {
				next.TX3Enabled, diff[a.Key] = v, v
			}
		default:
			st.unknownAttribute("tx", a.Key)
		}
	}

	return next, diff, false
}
