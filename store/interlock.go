package store

// InterlockSnapshot is the singleton "interlock" entity guarding transmit
// safety state (spec §3 "interlock").
type InterlockSnapshot struct {
	State       string
	TXAllowed   bool
	Reason      string
	TXClientHandle uint32
	TimeoutSecs int64
	ACCTXReqEnabled bool
	RCATXReqEnabled bool
}

func (st *Store) applyInterlock(prev InterlockSnapshot, attrs []kv) (InterlockSnapshot, Diff, bool) {
	next := prev
	diff := Diff{}

	for _, a := range attrs {
		switch a.Key {
		case "state":
			next.State, diff[a.Key] = a.Value, a.Value
			next.TXAllowed = a.Value == "READY" || a.Value == "TRANSMITTING"
		case "reason":
			next.Reason, diff[a.Key] = a.Value, a.Value
		case "tx_client_handle":
			if v, ok := parseIntegerHex(a.Value); ok {
				next.TXClientHandle, diff[a.Key] = uint32(v), uint32(v)
			}
		case "timeout":
			if v, ok := parseIntSafe(a.Value); ok {
				next.TimeoutSecs, diff[a.Key] = v, v
			}
		case "acc_txreq_enable":
			if v, ok := parseTruthy(a.Value); ok {
				next.ACCTXReqEnabled, diff[a.Key] = v, v
			}
		case "rca_txreq_enable":
			if v, ok := parseTruthy(a.Value); ok {
				next.RCATXReqEnabled, diff[a.Key] = v, v
			}
		default:
			st.unknownAttribute("interlock", a.Key)
		}
	}

	return next, diff, false
}
