package udpsession

import "github.com/daveisadork/flexcore/vita"

// SubscribeMeter decodes each class-0x8002 packet's payload and calls fn
// with the resulting samples.
func (s *Session) SubscribeMeter(fn func(streamID uint32, samples []vita.MeterSample)) Subscription {
	return s.Subscribe(vita.ClassMeter, func(p vita.Packet) {
		fn(p.StreamID, vita.DecodeMeterPayload(p.Payload))
	})
}

// SubscribeFFT decodes each class-0x8003 packet's payload and calls fn
// with the resulting chunk.
func (s *Session) SubscribeFFT(fn func(streamID uint32, chunk vita.FFTFrame)) Subscription {
	return s.Subscribe(vita.ClassPanadapter, func(p vita.Packet) {
		fn(p.StreamID, vita.DecodeFFTPayload(p.Payload))
	})
}

// SubscribeWaterfall decodes each class-0x8004 packet's payload and calls
// fn with the resulting strip.
func (s *Session) SubscribeWaterfall(fn func(streamID uint32, tile vita.WaterfallTile)) Subscription {
	return s.Subscribe(vita.ClassWaterfall, func(p vita.Packet) {
		fn(p.StreamID, vita.DecodeWaterfallPayload(p.Payload))
	})
}

// SubscribeOpusAudio delivers the raw Opus payload of each class-0x8005
// packet, undecoded — RTP packetization is transport/audiorx's concern
// (used by session.AudioStreamController), not udpsession's.
func (s *Session) SubscribeOpusAudio(fn func(streamID uint32, payload []byte)) Subscription {
	return s.Subscribe(vita.ClassOpusAudio, func(p vita.Packet) {
		fn(p.StreamID, p.Payload)
	})
}
