package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/flexerr"
	"github.com/daveisadork/flexcore/wire"
)

type fakeTransport struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeTransport) send(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeTransport) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

func TestSequenceNumbersStrictlyIncreasing(t *testing.T) {
	ft := &fakeTransport{}
	ch := New(ft.send, nil)

	go func() {
		for _, seq := range []int{1, 2, 3} {
			// A reply is only matched once its command is pending.
			for ch.PendingCount() != 1 {
				time.Sleep(time.Millisecond)
			}
			ch.HandleReply(wire.Reply{Seq: seq, Code: 0})
		}
	}()

	for i := 0; i < 3; i++ {
		_, err := ch.Send(context.Background(), "ping", time.Second)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"C1|ping", "C2|ping", "C3|ping"}, ft.Lines())
}

func TestReplyResolvesExactlyOnePendingCommand(t *testing.T) {
	ft := &fakeTransport{}
	ch := New(ft.send, nil)

	done := make(chan Result, 1)
	go func() {
		r, _ := ch.Send(context.Background(), "slice tune 0 14.075000", time.Second)
		done <- r
	}()

	require.Eventually(t, func() bool { return ch.PendingCount() == 1 }, time.Second, time.Millisecond)
	ch.HandleReply(wire.Reply{Seq: 1, Code: 0})

	r := <-done
	require.True(t, r.Accepted())
	require.Equal(t, 0, ch.PendingCount())
}

func TestRejectedCommandDecodesCode(t *testing.T) {
	ft := &fakeTransport{}
	ch := New(ft.send, nil)

	go func() {
		require.Eventually(t, func() bool { return ch.PendingCount() == 1 }, time.Second, time.Millisecond)
		ch.HandleReply(wire.Reply{Seq: 1, Code: 0x50000001, Message: "Unable to assign slice"})
	}()

	_, err := ch.Send(context.Background(), "slice create", time.Second)
	require.Error(t, err)
	var fe *flexerr.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, flexerr.CommandRejected, fe.Kind)
	require.Equal(t, uint32(0x50000001), fe.Code)
	require.Contains(t, fe.Err.Error(), "Unable to get foundation receiver assignment")
}

func TestCommandTimeout(t *testing.T) {
	ft := &fakeTransport{}
	ch := New(ft.send, nil)

	_, err := ch.Send(context.Background(), "ping", 10*time.Millisecond)
	require.Error(t, err)
	var fe *flexerr.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, flexerr.CommandTimeout, fe.Kind)
}

func TestCloseRejectsAllPendingAndEmptiesSet(t *testing.T) {
	ft := &fakeTransport{}
	ch := New(ft.send, nil)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := ch.Send(context.Background(), "ping", time.Second)
			results <- err
		}()
	}
	require.Eventually(t, func() bool { return ch.PendingCount() == 2 }, time.Second, time.Millisecond)

	ch.Close()

	for i := 0; i < 2; i++ {
		err := <-results
		var fe *flexerr.Error
		require.ErrorAs(t, err, &fe)
		require.Equal(t, flexerr.ChannelClosed, fe.Kind)
	}
	require.Equal(t, 0, ch.PendingCount())
}

func TestSendAfterCloseRejectsImmediately(t *testing.T) {
	ft := &fakeTransport{}
	ch := New(ft.send, nil)
	ch.Close()

	_, err := ch.Send(context.Background(), "ping", time.Second)
	var fe *flexerr.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, flexerr.ChannelClosed, fe.Kind)
}

func TestStrayReplyIsDropped(t *testing.T) {
	ft := &fakeTransport{}
	ch := New(ft.send, nil)
	// No pending command with seq 99; must not panic.
	ch.HandleReply(wire.Reply{Seq: 99, Code: 0})
	require.Equal(t, 0, ch.PendingCount())
}
