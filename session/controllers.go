package session

import (
	"context"
	"fmt"

	"github.com/daveisadork/flexcore/wire"
)

// Each controller translates a typed call into the exact line-protocol
// command (spec §4.6 "Controller vending") and applies an optimistic
// snapshot update by feeding a synthetic status line through the same
// Store.Apply path a real broadcast would take — the authoritative value
// still arrives over the control channel and simply re-applies on top.

func (h *Handle) send(ctx context.Context, cmd string) error {
	res, err := h.cmd.Send(ctx, cmd, h.cmdTimeout)
	if err != nil {
		return err
	}
	if !res.Accepted() {
		return fmt.Errorf("session: command rejected: %s", cmd)
	}
	return nil
}

func (h *Handle) applyOptimistic(source string, positional []string, attrs map[string]string) {
	s := wire.Status{Handle: h.handle, Source: source, Positional: positional}
	for k, v := range attrs {
		s.Attrs = append(s.Attrs, wire.KV{Key: k, Value: v})
	}
	h.Store.Apply(s)
}

// SliceController issues commands scoped to one slice.
type SliceController struct {
	h  *Handle
	ID string
}

// Slice returns a controller for slice id.
func (h *Handle) Slice(id string) SliceController { return SliceController{h: h, ID: id} }

func (c SliceController) Tune(ctx context.Context, freqMHz float64) error {
	cmd := fmt.Sprintf("slice tune %s %.6f", c.ID, freqMHz)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("slice", []string{c.ID}, map[string]string{"RF_frequency": fmt.Sprintf("%.6f", freqMHz)})
	return nil
}

func (c SliceController) SetMode(ctx context.Context, mode string) error {
	cmd := fmt.Sprintf("slice set %s mode=%s", c.ID, mode)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("slice", []string{c.ID}, map[string]string{"mode": mode})
	return nil
}

func (c SliceController) SetFilter(ctx context.Context, loHz, hiHz int) error {
	cmd := fmt.Sprintf("slice set %s filter_lo=%d filter_hi=%d", c.ID, loHz, hiHz)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("slice", []string{c.ID}, map[string]string{
		"filter_lo": fmt.Sprintf("%d", loHz),
		"filter_hi": fmt.Sprintf("%d", hiHz),
	})
	return nil
}

func (c SliceController) SetRXAntenna(ctx context.Context, ant string) error {
	cmd := fmt.Sprintf("slice set %s rxant=%s", c.ID, ant)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("slice", []string{c.ID}, map[string]string{"rxant": ant})
	return nil
}

func (c SliceController) SetAudioLevel(ctx context.Context, level int) error {
	cmd := fmt.Sprintf("slice set %s audio_level=%d", c.ID, level)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("slice", []string{c.ID}, map[string]string{"audio_level": fmt.Sprintf("%d", level)})
	return nil
}

func (c SliceController) Lock(ctx context.Context) error {
	return c.h.send(ctx, "slice lock "+c.ID)
}

func (c SliceController) Unlock(ctx context.Context) error {
	return c.h.send(ctx, "slice unlock "+c.ID)
}

// PanadapterController issues commands scoped to one panadapter stream.
type PanadapterController struct {
	h        *Handle
	StreamID string // wire.FormatHandle-style hex, e.g. "0x40000000"
}

func (h *Handle) Panadapter(streamID uint32) PanadapterController {
	return PanadapterController{h: h, StreamID: wire.FormatHandle(streamID)}
}

func (c PanadapterController) SetCenter(ctx context.Context, mhz float64) error {
	cmd := fmt.Sprintf("display pan s %s center=%.6f", c.StreamID, mhz)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("display", []string{"pan", c.StreamID}, map[string]string{"center": fmt.Sprintf("%.6f", mhz)})
	return nil
}

func (c PanadapterController) SetBandwidth(ctx context.Context, mhz float64) error {
	cmd := fmt.Sprintf("display pan s %s bandwidth=%.6f", c.StreamID, mhz)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("display", []string{"pan", c.StreamID}, map[string]string{"bandwidth": fmt.Sprintf("%.6f", mhz)})
	return nil
}

func (c PanadapterController) SetDimensions(ctx context.Context, xpixels, ypixels int) error {
	cmd := fmt.Sprintf("display pan s %s xpixels=%d ypixels=%d", c.StreamID, xpixels, ypixels)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("display", []string{"pan", c.StreamID}, map[string]string{
		"xpixels": fmt.Sprintf("%d", xpixels),
		"ypixels": fmt.Sprintf("%d", ypixels),
	})
	return nil
}

// WaterfallController issues commands scoped to one waterfall stream.
type WaterfallController struct {
	h        *Handle
	StreamID string
}

func (h *Handle) Waterfall(streamID uint32) WaterfallController {
	return WaterfallController{h: h, StreamID: wire.FormatHandle(streamID)}
}

func (c WaterfallController) SetColorGain(ctx context.Context, gain int) error {
	cmd := fmt.Sprintf("display waterfall s %s color_gain=%d", c.StreamID, gain)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("display", []string{"waterfall", c.StreamID}, map[string]string{"color_gain": fmt.Sprintf("%d", gain)})
	return nil
}

func (c WaterfallController) SetBlackLevel(ctx context.Context, level int) error {
	cmd := fmt.Sprintf("display waterfall s %s black_level=%d", c.StreamID, level)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("display", []string{"waterfall", c.StreamID}, map[string]string{"black_level": fmt.Sprintf("%d", level)})
	return nil
}

// RadioController issues global radio commands.
type RadioController struct{ h *Handle }

func (h *Handle) Radio() RadioController { return RadioController{h: h} }

func (c RadioController) SetNickname(ctx context.Context, name string) error {
	if err := c.h.send(ctx, "radio name "+name); err != nil {
		return err
	}
	c.h.applyOptimistic("radio", nil, map[string]string{"nickname": name})
	return nil
}

func (c RadioController) SetCallsign(ctx context.Context, callsign string) error {
	if err := c.h.send(ctx, "radio callsign "+callsign); err != nil {
		return err
	}
	c.h.applyOptimistic("radio", nil, map[string]string{"callsign": callsign})
	return nil
}

func (c RadioController) Set(ctx context.Context, key, value string) error {
	cmd := fmt.Sprintf("radio set %s=%s", key, value)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("radio", nil, map[string]string{key: value})
	return nil
}

func (c RadioController) SetMixerLineoutGain(ctx context.Context, gain int) error {
	cmd := fmt.Sprintf("mixer lineout gain %d", gain)
	return c.h.send(ctx, cmd)
}

func (c RadioController) SetMixerHeadphoneMute(ctx context.Context, mute bool) error {
	cmd := fmt.Sprintf("mixer headphone mute %d", boolToInt(mute))
	return c.h.send(ctx, cmd)
}

// APDController issues automatic power down commands.
type APDController struct{ h *Handle }

func (h *Handle) APD() APDController { return APDController{h: h} }

func (c APDController) SetEnabled(ctx context.Context, enabled bool) error {
	cmd := fmt.Sprintf("apd enable=%d", boolToInt(enabled))
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("apd", nil, map[string]string{"enable": fmt.Sprintf("%d", boolToInt(enabled))})
	return nil
}

// EqualizerController issues commands scoped to one equalizer domain
// ("rxsc", "txsc").
type EqualizerController struct {
	h      *Handle
	Domain string
}

func (h *Handle) Equalizer(domain string) EqualizerController {
	return EqualizerController{h: h, Domain: domain}
}

func (c EqualizerController) SetMode(ctx context.Context, enabled bool) error {
	cmd := fmt.Sprintf("eq %s mode=%d", c.Domain, boolToInt(enabled))
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("eq", []string{c.Domain}, map[string]string{"mode": fmt.Sprintf("%d", boolToInt(enabled))})
	return nil
}

func (c EqualizerController) SetBand(ctx context.Context, band string, gain int) error {
	cmd := fmt.Sprintf("eq %s %s=%d", c.Domain, band, gain)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("eq", []string{c.Domain}, map[string]string{band: fmt.Sprintf("%d", gain)})
	return nil
}

// InterlockController issues TX interlock commands.
type InterlockController struct{ h *Handle }

func (h *Handle) Interlock() InterlockController { return InterlockController{h: h} }

func (c InterlockController) SetACCTXReqEnabled(ctx context.Context, enabled bool) error {
	cmd := fmt.Sprintf("interlock acc_txreq_enable=%d", boolToInt(enabled))
	return c.h.send(ctx, cmd)
}

// TransmitController issues TX-chain commands.
type TransmitController struct{ h *Handle }

func (h *Handle) Transmit() TransmitController { return TransmitController{h: h} }

func (c TransmitController) SetRFPower(ctx context.Context, power int) error {
	cmd := fmt.Sprintf("transmit set rfpower=%d", power)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("tx", nil, map[string]string{"rfpower": fmt.Sprintf("%d", power)})
	return nil
}

func (c TransmitController) SetMicLevel(ctx context.Context, level int) error {
	cmd := fmt.Sprintf("transmit set mic_level=%d", level)
	if err := c.h.send(ctx, cmd); err != nil {
		return err
	}
	c.h.applyOptimistic("tx", nil, map[string]string{"mic_level": fmt.Sprintf("%d", level)})
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
