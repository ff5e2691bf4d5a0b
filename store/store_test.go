package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/wire"
)

func mustParse(t *testing.T, line string) wire.Status {
	t.Helper()
	m, err := wire.Parse(line)
	require.NoError(t, err)
	require.Equal(t, wire.KindStatus, m.Kind)
	return m.Status
}

func TestSliceTuneAppliesFrequencyDiff(t *testing.T) {
	st := New(nil)
	ev, ok := st.Apply(mustParse(t, "S1|slice 0 RF_frequency=14.075000 mode=USB"))
	require.True(t, ok)
	require.Equal(t, "slice", ev.Entity)
	require.Equal(t, "0", ev.ID)
	require.Equal(t, 14.075, ev.Diff["RF_frequency"])

	s, ok := st.Slice("0")
	require.True(t, ok)
	require.Equal(t, 14.075, s.FrequencyMHz)
	require.Equal(t, "USB", s.Mode)
}

func TestSliceRemovedDeletesSnapshot(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S1|slice 0 RF_frequency=14.075000"))
	ev, ok := st.Apply(mustParse(t, "S1|slice 0 removed"))
	require.True(t, ok)
	require.True(t, ev.Removed)
	_, exists := st.Slice("0")
	require.False(t, exists)
}

func TestMeterScalingAppliesUnitDivisor(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S1|meter 1 src=TX nam=SWR low=1.0 hi=6.0 unit=SWR fps=10"))
	st.ApplyMeterValue(1, 256) // 256/128 = 2.0

	m, ok := st.Meter(1)
	require.True(t, ok)
	require.Equal(t, "SWR", string(m.Unit))
	require.InDelta(t, 2.0, m.Value, 0.0001)
}

func TestMeterValueClampsToBounds(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S1|meter 2 src=TX nam=PWR low=0 hi=1 unit=SWR fps=10"))
	st.ApplyMeterValue(2, 1280) // raw/128 = 10.0, clamped to 1.0

	m, ok := st.Meter(2)
	require.True(t, ok)
	require.Equal(t, 1.0, m.Value)
}

func TestUnknownAttributeDoesNotAbortParsing(t *testing.T) {
	st := New(nil)
	ev, ok := st.Apply(mustParse(t, "S1|slice 0 RF_frequency=14.075000 totally_unknown_field=xyz"))
	require.True(t, ok)
	require.Equal(t, 14.075, ev.Diff["RF_frequency"])
	s, _ := st.Slice("0")
	require.Equal(t, "xyz", s.Raw["totally_unknown_field"])
}

func TestPanadapterBandwidthClampedToRange(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S1|display pan 0x40000000 min_bw=0.01 max_bw=2.0"))
	st.Apply(mustParse(t, "S1|display pan 0x40000000 bandwidth=5.0"))

	p, ok := st.Panadapter(0x40000000)
	require.True(t, ok)
	require.Equal(t, 2.0, p.BandwidthMHz)
}

func TestWaterfallBoundToPanadapter(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S1|display waterfall 0x42000000 panadapter=0x40000000 color_gain=50"))

	w, ok := st.Waterfall(0x42000000)
	require.True(t, ok)
	require.Equal(t, uint32(0x40000000), w.PanadapterStreamID)
	require.Equal(t, int64(50), w.ColorGain)
}

func TestRadioFilterSharpnessClampedToRange(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S1|radio filter_sharpness voice level=9"))
	r := st.Radio()
	require.Equal(t, 3, r.Filter.Voice)
}

func TestGPSIsOwnEntitySeparateFromRadio(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S1|radio nickname=Shack"))
	st.Apply(mustParse(t, "S0|gps lat=37.7 lon=-122.4"))

	r := st.Radio()
	require.Equal(t, "Shack", r.Nickname)
	g := st.GPS()
	require.Equal(t, 37.7, g.Lat)
	require.Equal(t, -122.4, g.Lon)
}

func TestSubscribeReceivesChangeEventsAndUnsubscribeIsIdempotent(t *testing.T) {
	st := New(nil)
	var got []ChangeEvent
	unsub := st.Subscribe(func(ev ChangeEvent) { got = append(got, ev) })

	st.Apply(mustParse(t, "S1|slice 0 mode=USB"))
	require.Len(t, got, 1)

	unsub()
	unsub() // must not panic

	st.Apply(mustParse(t, "S1|slice 0 mode=LSB"))
	require.Len(t, got, 1)
}

func TestTruthyValueParsing(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "on", "On"} {
		v, ok := parseTruthy(s)
		require.True(t, ok, s)
		require.True(t, v, s)
	}
	for _, s := range []string{"0", "false", "off"} {
		v, ok := parseTruthy(s)
		require.True(t, ok, s)
		require.False(t, v, s)
	}
	_, ok := parseTruthy("maybe")
	require.False(t, ok)
}

func TestVersionAtLeast(t *testing.T) {
	v, err := ParseVersion("3.10.10")
	require.NoError(t, err)
	require.True(t, AtLeast(v, "3.2.0"))
	require.False(t, AtLeast(v, "4.0.0"))
	require.False(t, AtLeast(nil, "1.0.0"))
}

func TestLicenseStoreSeparateFromRadio(t *testing.T) {
	st := New(nil)
	st.Apply(mustParse(t, "S0|license SSDR-TNF licensed=1 expires=2030-01-01"))
	l, ok := st.License("SSDR-TNF")
	require.True(t, ok)
	require.True(t, l.Licensed)
}
