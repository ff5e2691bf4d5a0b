package vita

// Q20 is a Q44.20 fixed-point value (64-bit integer scaled by 2^20) used by
// the waterfall payload for frequencies and bandwidths. Kept as an exact
// integer per spec §9 ("numeric timestamp types... use a 64-bit integer
// wrapper with explicit from_hz/to_mhz accessors rather than floating
// point").
type Q20 int64

const q20Scale = 1 << 20

// HzToQ20 converts an integer Hz value to its Q20 representation.
func HzToQ20(hz int64) Q20 { return Q20(hz * q20Scale) }

// Hz returns the integer Hz value this Q20 represents.
func (q Q20) Hz() int64 { return int64(q) / q20Scale }

// ToMHz returns the value in MHz as a float64, for display and for
// composing with the rest of the frequency-as-float64-MHz convention used
// elsewhere in this library (spec §4.4 "Frequency representation").
func (q Q20) ToMHz() float64 { return float64(q) / q20Scale / 1e6 }
