package udpsession

import (
	"context"
	"encoding/binary"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/vita"
)

// fakeSource feeds a fixed queue of datagrams, then blocks until closed.
type fakeSource struct {
	mu     sync.Mutex
	queue  [][]byte
	closed bool
	signal chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{signal: make(chan struct{}, 64)}
}

func (f *fakeSource) push(b []byte) {
	f.mu.Lock()
	f.queue = append(f.queue, b)
	f.mu.Unlock()
	f.signal <- struct{}{}
}

func (f *fakeSource) Recv(ctx context.Context) ([]byte, error) {
	for {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return nil, io.EOF
		}
		if len(f.queue) > 0 {
			b := f.queue[0]
			f.queue = f.queue[1:]
			f.mu.Unlock()
			return b, nil
		}
		f.mu.Unlock()
		select {
		case <-f.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.signal <- struct{}{}
	return nil
}

func frame(classCode uint16, streamID uint32, payload []byte) []byte {
	b := make([]byte, 4+4+8+len(payload))
	binary.BigEndian.PutUint32(b[0:4], (1<<28)|(1<<27)) // IFDataWithStream, classID present
	binary.BigEndian.PutUint32(b[4:8], streamID)
	binary.BigEndian.PutUint32(b[8:12], 0)
	binary.BigEndian.PutUint32(b[12:16], uint32(classCode))
	copy(b[16:], payload)
	return b
}

func TestSessionDispatchesToClassSubscriber(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil)

	var got []vita.MeterSample
	done := make(chan struct{})
	s.SubscribeMeter(func(streamID uint32, samples []vita.MeterSample) {
		got = samples
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	payload := vita.EncodeMeterPayload([]vita.MeterSample{{ID: 1, Value: 42}})
	src.push(frame(uint16(vita.ClassMeter), 7, payload))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatch")
	}
	require.Equal(t, []vita.MeterSample{{ID: 1, Value: 42}}, got)
}

func TestSessionUnsubscribeIsIdempotentAndStopsDelivery(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil)

	count := 0
	var mu sync.Mutex
	sub := s.Subscribe(vita.ClassMeter, func(vita.Packet) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	src.push(frame(uint16(vita.ClassMeter), 1, nil))
	time.Sleep(50 * time.Millisecond)

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	src.push(frame(uint16(vita.ClassMeter), 1, nil))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, count)
}

func TestSessionMalformedDatagramIsDroppedNotFatal(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil)

	var got []vita.MeterSample
	done := make(chan struct{})
	s.SubscribeMeter(func(streamID uint32, samples []vita.MeterSample) {
		got = samples
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	src.push([]byte{0x01}) // too short to decode
	payload := vita.EncodeMeterPayload([]vita.MeterSample{{ID: 2, Value: -5}})
	src.push(frame(uint16(vita.ClassMeter), 1, payload))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatch")
	}
	require.Equal(t, []vita.MeterSample{{ID: 2, Value: -5}}, got)
	require.Equal(t, uint64(1), s.MalformedCount())
}

func TestSubscribeAllReceivesEveryClass(t *testing.T) {
	src := newFakeSource()
	s := New(src, nil)

	seen := make(chan vita.ClassCode, 2)
	s.SubscribeAll(func(p vita.Packet) { seen <- p.ClassID.PacketClass })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	src.push(frame(uint16(vita.ClassMeter), 1, nil))
	src.push(frame(uint16(vita.ClassPanadapter), 1, nil))

	require.Equal(t, vita.ClassMeter, <-seen)
	require.Equal(t, vita.ClassPanadapter, <-seen)
}
