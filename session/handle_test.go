package session

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daveisadork/flexcore/discovery"
)

// fakeRadio emulates the server side of the control channel over one end
// of a net.Pipe: sends the version/handle banner, then replies "accepted"
// to every command it scans, optionally pushing extra status lines.
type fakeRadio struct {
	conn net.Conn
	mu   sync.Mutex
}

func newFakeRadio(conn net.Conn) *fakeRadio {
	return &fakeRadio{conn: conn}
}

func (f *fakeRadio) writeLine(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.conn, "%s\n", line)
}

// run sends the startup banner then replies to every received command
// with an accepted reply, until the connection closes.
func (f *fakeRadio) run() {
	f.writeLine("V2.5.9(1)")
	f.writeLine("H12345678")

	scan := bufio.NewScanner(f.conn)
	scan.Buffer(make([]byte, 0, 64*1024), 512*1024)
	for scan.Scan() {
		line := scan.Text()
		if !strings.HasPrefix(line, "C") {
			continue
		}
		rest := line[1:]
		seqStr, _, ok := strings.Cut(rest, "|")
		if !ok {
			continue
		}
		f.writeLine(fmt.Sprintf("R%s|0|", seqStr))
	}
}

func dialerFor(serverConn net.Conn) (Dialer, *fakeRadio) {
	clientConn, remote := net.Pipe()
	radio := newFakeRadio(remote)
	return func(ctx context.Context, host string, port int) (net.Conn, error) {
		return clientConn, nil
	}, radio
}

// connectedHandle dials a fake radio over net.Pipe and runs Connect to
// completion, returning the handle positioned at EstablishingDataPlane.
func connectedHandle(t *testing.T) (*Handle, *fakeRadio) {
	t.Helper()
	clientConn, remote := net.Pipe()
	radio := newFakeRadio(remote)
	go radio.run()

	h := New(Options{Dial: func(ctx context.Context, host string, port int) (net.Conn, error) {
		return clientConn, nil
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := h.Connect(ctx, discovery.RadioDescriptor{
		Serial:   "1234-5678-9012-3456",
		Endpoint: discovery.Endpoint{Host: "192.0.2.1", Port: 4992, Protocol: "tcp"},
	})
	require.NoError(t, err)
	return h, radio
}

func TestHandleConnectReachesEstablishingDataPlane(t *testing.T) {
	h, _ := connectedHandle(t)
	require.Equal(t, EstablishingDataPlane, h.State())
	require.Equal(t, "0x12345678", h.HandleHex())
	require.NotNil(t, h.Version())
}

type fakeDataSource struct {
	mu     sync.Mutex
	closed bool
	ch     chan []byte
}

func newFakeDataSource() *fakeDataSource {
	return &fakeDataSource{ch: make(chan []byte, 8)}
}

func (f *fakeDataSource) Recv(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-f.ch:
		if !ok {
			return nil, context.Canceled
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeDataSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return nil
}

func TestHandleAttachDataPlaneReachesReady(t *testing.T) {
	h, _ := connectedHandle(t)
	ctx := context.Background()

	err := h.AttachDataPlane(ctx, newFakeDataSource())
	require.NoError(t, err)
	require.Equal(t, Ready, h.State())
	require.NotNil(t, h.UDP)
}

func TestHandleAttachDataPlaneRejectedOutsideEstablishing(t *testing.T) {
	h := New(Options{})
	err := h.AttachDataPlane(context.Background(), newFakeDataSource())
	require.Error(t, err)
}

func TestHandleDisconnectReachesDisconnectedAndIsIdempotent(t *testing.T) {
	h, _ := connectedHandle(t)
	ctx := context.Background()
	require.NoError(t, h.AttachDataPlane(ctx, newFakeDataSource()))

	h.Disconnect()
	require.Equal(t, Disconnected, h.State())

	// Disconnect must be idempotent.
	h.Disconnect()
	require.Equal(t, Disconnected, h.State())
}

func TestSliceControllerTuneSendsCommandAndUpdatesStore(t *testing.T) {
	h, _ := connectedHandle(t)
	ctx := context.Background()
	require.NoError(t, h.AttachDataPlane(ctx, newFakeDataSource()))

	err := h.Slice("0").Tune(ctx, 14.250000)
	require.NoError(t, err)

	sl, ok := h.Store.Slice("0")
	require.True(t, ok)
	require.InDelta(t, 14.25, sl.FrequencyMHz, 1e-6)
}

func TestRadioControllerSetNicknameUpdatesStore(t *testing.T) {
	h, _ := connectedHandle(t)
	ctx := context.Background()
	require.NoError(t, h.AttachDataPlane(ctx, newFakeDataSource()))

	err := h.Radio().SetNickname(ctx, "Shack1")
	require.NoError(t, err)

	r := h.Store.Radio()
	require.Equal(t, "Shack1", r.Nickname)
}

func TestAPDControllerSetEnabledUpdatesStore(t *testing.T) {
	h, _ := connectedHandle(t)
	ctx := context.Background()
	require.NoError(t, h.AttachDataPlane(ctx, newFakeDataSource()))

	require.NoError(t, h.APD().SetEnabled(ctx, true))
	apd := h.Store.APD()
	require.True(t, apd.Enabled)
}
