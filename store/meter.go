package store

import "strconv"

// MeterUnit is one of the units spec §6 defines a scale factor for.
type MeterUnit string

const (
	UnitDB   MeterUnit = "dB"
	UnitDBM  MeterUnit = "dBm"
	UnitDBFS MeterUnit = "dBFS"
	UnitVolts MeterUnit = "Volts"
	UnitAmps MeterUnit = "Amps"
	UnitSWR  MeterUnit = "SWR"
	UnitDegC MeterUnit = "degC"
	UnitDegF MeterUnit = "degF"
	UnitRPM  MeterUnit = "RPM"
)

// scaleFor returns the divisor spec §6 names for a unit, with generic/
// unrecognized units falling back to 1.0.
func scaleFor(unit MeterUnit) float64 {
	switch unit {
	case UnitDB, UnitDBM, UnitDBFS, UnitSWR:
		return 128.0
	case UnitVolts, UnitAmps:
		return 256.0
	case UnitDegC, UnitDegF:
		return 64.0
	default:
		return 1.0
	}
}

// MeterSnapshot is one numeric meter (spec §3 Meter).
type MeterSnapshot struct {
	ID          uint16
	Source      string
	Name        string
	Description string
	Low         float64
	High        float64
	Unit        MeterUnit
	FPS         int64

	Value     float64
	HasValue  bool
}

func (st *Store) applyMeter(id uint16, prev MeterSnapshot, attrs []kv) (MeterSnapshot, Diff, bool) {
	next := prev
	next.ID = id
	diff := Diff{}
	removed := false

	for _, a := range attrs {
		switch a.Key {
		case "removed":
			removed = true
		case "src":
			next.Source, diff[a.Key] = a.Value, a.Value
		case "nam":
			next.Name, diff[a.Key] = a.Value, a.Value
		case "desc":
			next.Description, diff[a.Key] = a.Value, a.Value
		case "low":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.Low, diff[a.Key] = v, v
			}
		case "hi":
			if v, ok := parseFloatSafe(a.Value); ok {
				next.High, diff[a.Key] = v, v
			}
		case "unit":
			next.Unit, diff[a.Key] = MeterUnit(a.Value), a.Value
		case "fps":
			if v, ok := parseIntSafe(a.Value); ok {
				next.FPS, diff[a.Key] = v, v
			}
		default:
			st.unknownAttribute("meter", a.Key)
		}
	}

	return next, diff, removed
}

// ApplyMeterValue scales a raw VITA meter sample (spec §4.1 "Meter
// payload") into its engineering-unit value and clamps it to the
// meter's declared [Low, High] bounds, logging a parse error on clamp
// per spec §4.4 "Clamping" without rejecting the value.
func (st *Store) ApplyMeterValue(id uint16, raw int16) {
	st.mu.Lock()
	prev, ok := st.meters[id]
	if !ok {
		prev = MeterSnapshot{ID: id}
	}
	value := float64(raw) / scaleFor(prev.Unit)
	clamped := value
	if prev.High > prev.Low {
		clamped = clampFloat(value, prev.Low, prev.High)
		if clamped != value {
			st.logUnknown("meter value out of bounds, clamped", "id", id, "value", value, "low", prev.Low, "high", prev.High)
		}
	}
	next := prev
	next.Value, next.HasValue = clamped, true
	st.meters[id] = next
	st.mu.Unlock()

	st.emit(ChangeEvent{Entity: "meter", ID: strconv.Itoa(int(id)), Diff: Diff{"value": clamped}})
}
