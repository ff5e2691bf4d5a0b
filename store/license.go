package store

// LicenseSnapshot is one feature-license entry, accumulated in its own
// per-entity store keyed by feature name (spec §4.4 "context-sensitive
// license store").
type LicenseSnapshot struct {
	Feature  string
	Licensed bool
	Expires  string
}

func (st *Store) applyLicense(feature string, prev LicenseSnapshot, attrs []kv) (LicenseSnapshot, Diff, bool) {
	next := prev
	next.Feature = feature
	diff := Diff{}
	removed := false

	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "licensed":
			if v, ok := parseTruthy(a.Value); ok {
				next.Licensed, diff[a.Key] = v, v
			}
		case "expires":
			next.Expires, diff[a.Key] = a.Value, a.Value
		default:
			st.unknownAttribute("license", a.Key)
		}
	}

	return next, diff, removed
}
