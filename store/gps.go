package store

// GPSSnapshot is the "gps" entity, subscribed independently of "radio"
// (spec §4.6 sync set lists "gps" alongside "radio" as separate sub
// subscriptions).
type GPSSnapshot struct {
	Present    bool
	Lat        float64
	Lon        float64
	Altitude   float64
	Speed      float64
	Track      float64
	Time       string
	FreqError  float64
}

func (st *Store) applyGPS(prev GPSSnapshot, attrs []kv) (GPSSnapshot, Diff, bool) {
	next := prev
	diff := Diff{}
	removed := false
	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "lat":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.Lat, diff[a.Key] = v, v
				next.Present = true
			} else {
				st.unknownValue("gps", a.Key, a.Value)
			}
		case "lon":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.Lon, diff[a.Key] = v, v
			} else {
				st.unknownValue("gps", a.Key, a.Value)
			}
		case "altitude":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.Altitude, diff[a.Key] = v, v
			} else {
				st.unknownValue("gps", a.Key, a.Value)
			}
		case "speed":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.Speed, diff[a.Key] = v, v
			} else {
				st.unknownValue("gps", a.Key, a.Value)
			}
		case "track":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.Track, diff[a.Key] = v, v
			} else {
				st.unknownValue("gps", a.Key, a.Value)
			}
		case "time":
			next.Time, diff[a.Key] = a.Value, a.Value
		case "freq_error":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.FreqError, diff[a.Key] = v, v
			} else {
				st.unknownValue("gps", a.Key, a.Value)
			}
		default:
			st.unknownAttribute("gps", a.Key)
		}
	}
	return next, diff, removed
}
