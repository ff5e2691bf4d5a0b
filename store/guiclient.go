package store

// GUIClientSnapshot is one connected GUI client, keyed by its 32-bit
// client handle (spec §4.2 "gui_client_handles" etc., surfaced here as
// its own per-connection entity rather than only a discovery aggregate).
type GUIClientSnapshot struct {
	ClientHandle uint32
	Station      string
	Program      string
	Host         string
	IP           string
	IsLocalPTT   bool
}

func (st *Store) applyGUIClient(handle uint32, prev GUIClientSnapshot, attrs []kv) (GUIClientSnapshot, Diff, bool) {
	next := prev
	next.ClientHandle = handle
	diff := Diff{}
	removed := false

	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "station":
			next.Station, diff[a.Key] = a.Value, a.Value
		case "program":
			next.Program, diff[a.Key] = a.Value, a.Value
		case "host":
			next.Host, diff[a.Key] = a.Value, a.Value
		case "ip":
			next.IP, diff[a.Key] = a.Value, a.Value
		case "is_local_ptt":
			if v, ok := parseTruthy(a.Value); ok {
				next.IsLocalPTT, diff[a.Key] = v, v
			}
		default:
			st.unknownAttribute("client", a.Key)
		}
	}

	return next, diff, removed
}
