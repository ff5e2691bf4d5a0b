package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	hversion "github.com/hashicorp/go-version"

	"github.com/daveisadork/flexcore/command"
	"github.com/daveisadork/flexcore/discovery"
	"github.com/daveisadork/flexcore/flexerr"
	"github.com/daveisadork/flexcore/internal/apilog"
	"github.com/daveisadork/flexcore/metrics"
	"github.com/daveisadork/flexcore/store"
	"github.com/daveisadork/flexcore/udpsession"
	"github.com/daveisadork/flexcore/wire"
)

// PingInterval is how often a keepalive ping is sent once the handle is
// ready (spec §4.6 "send ping every 1000 ms").
const PingInterval = 1000 * time.Millisecond

// PingMissThreshold is the number of consecutive interval-lengths a ping
// reply may be overdue before the handle is forced to disconnected (spec
// §4.6 "a missed reply for more than 5x the interval").
const PingMissThreshold = 5

// Dialer opens the control-channel TCP connection to a descriptor's
// endpoint. Overridable for tests.
type Dialer func(ctx context.Context, host string, port int) (net.Conn, error)

func defaultDialer(ctx context.Context, host string, port int) (net.Conn, error) {
	d := net.Dialer{}
	return d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, port))
}

// Handle owns one radio's control connection, command channel, state
// store, and (once attached) data-plane session — spec §4.6's "radio
// handle." Grounded on the teacher's internal/core.RadioSession (identity
// + connection legs) generalized into the full state machine, and on
// internal/radio/ws.go's Session for the TCP dial/line-scan plumbing.
type Handle struct {
	logger *slog.Logger
	dial   Dialer

	mu      sync.Mutex
	state   State
	conn    net.Conn
	handle  uint32
	version *hversion.Version

	cmd   *command.Channel
	Store *store.Store
	UDP   *udpsession.Session

	onState func(State)

	handleReady chan struct{}
	closeOnce   sync.Once
	readDone    chan struct{}
	stopKeepalive chan struct{}
	lastPong    time.Time

	keepalive     time.Duration
	missThreshold int
	cmdTimeout    time.Duration
	metrics       *metrics.Metrics
	apiLogger     *apilog.Logger
	apiConn       *apilog.Connection

	writeMu sync.Mutex
}

// Options configures a Handle.
type Options struct {
	Logger  *slog.Logger
	Dial    Dialer
	OnState func(State)

	// KeepaliveInterval overrides PingInterval; <= 0 uses the default.
	KeepaliveInterval time.Duration
	// PingMissThreshold overrides the package constant of the same name;
	// <= 0 uses the default.
	PingMissThreshold int
	// CommandTimeout overrides command.DefaultTimeout for every command
	// this Handle sends (sync handshake, controllers); keepalive pings
	// time out after one keepalive interval instead. <= 0 uses the default.
	CommandTimeout time.Duration

	// Metrics, if non-nil, is attached to this Handle's command.Channel
	// (once Connect creates it) and udpsession.Session (once
	// AttachDataPlane creates it).
	Metrics *metrics.Metrics

	// APILog, if non-nil, records every raw line this Handle sends or
	// receives on its control connection (spec §5 "Diagnostics").
	APILog *apilog.Logger
}

// New constructs a disconnected Handle.
func New(opt Options) *Handle {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Dial == nil {
		opt.Dial = defaultDialer
	}
	keepalive := opt.KeepaliveInterval
	if keepalive <= 0 {
		keepalive = PingInterval
	}
	missThreshold := opt.PingMissThreshold
	if missThreshold <= 0 {
		missThreshold = PingMissThreshold
	}
	return &Handle{
		logger:        opt.Logger,
		dial:          opt.Dial,
		state:         Disconnected,
		Store:         store.New(opt.Logger),
		onState:       opt.OnState,
		keepalive:     keepalive,
		missThreshold: missThreshold,
		cmdTimeout:    opt.CommandTimeout,
		metrics:       opt.Metrics,
		apiLogger:     opt.APILog,
	}
}

// State returns the current connection state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// HandleHex returns the assigned client handle, formatted per the wire
// convention, once known.
func (h *Handle) HandleHex() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return wire.FormatHandle(h.handle)
}

// Version returns the parsed firmware version once the handshake's
// banner has arrived.
func (h *Handle) Version() *hversion.Version {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

func (h *Handle) setState(to State) {
	h.mu.Lock()
	from := h.state
	if !validTransition(from, to) {
		h.mu.Unlock()
		h.logger.Warn("session: rejected invalid state transition", "from", from, "to", to)
		return
	}
	h.state = to
	h.mu.Unlock()

	h.logger.Debug("session: state transition", "from", from, "to", to)
	if h.onState != nil {
		h.onState(to)
	}
}

// Connect dials d's endpoint, waits for the client handle assignment,
// runs the sync command set, and leaves the Handle in
// establishing_data_plane on success (spec §4.6's state table through
// "syncing"). Call AttachDataPlane to reach ready.
func (h *Handle) Connect(ctx context.Context, d discovery.RadioDescriptor) error {
	h.setState(ConnectingControl)

	conn, err := h.dial(ctx, d.Endpoint.Host, d.Endpoint.Port)
	if err != nil {
		h.setState(Disconnected)
		return flexerr.Wrap(flexerr.ConnectionFailed, "connecting_control", err)
	}

	h.mu.Lock()
	h.conn = conn
	h.handleReady = make(chan struct{})
	h.readDone = make(chan struct{})
	h.apiConn = h.apiLogger.NewConnection(d.Serial, d.Endpoint.Host, d.Endpoint.Port)
	h.mu.Unlock()

	h.cmd = command.New(h.writeLine, h.logger)
	h.cmd.SetMetrics(h.metrics)
	h.setState(AwaitingHandle)

	go h.readLoop()

	select {
	case <-h.handleReady:
	case <-ctx.Done():
		h.disconnect(flexerr.Wrap(flexerr.ConnectionFailed, "awaiting_handle", ctx.Err()))
		return ctx.Err()
	}

	h.setState(Syncing)
	if err := h.runSync(ctx); err != nil {
		h.disconnect(err)
		return err
	}

	h.setState(EstablishingDataPlane)
	return nil
}

// writeLine serializes concurrent command sends onto the single control
// connection — multiple in-flight commands during Syncing must not have
// their lines interleaved on the wire.
func (h *Handle) writeLine(line string) error {
	h.mu.Lock()
	conn := h.conn
	apiConn := h.apiConn
	h.mu.Unlock()
	if conn == nil {
		return errors.New("session: no control connection")
	}
	apiConn.LogOutbound(line)
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_, err := fmt.Fprintf(conn, "%s\n", line)
	return err
}

func (h *Handle) readLoop() {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()
	defer close(h.readDone)

	scan := wire.NewLineScanner(conn)
	for scan.Scan() {
		h.handleLine(scan.Text())
	}
	h.disconnect(flexerr.Wrap(flexerr.TransportError, "control_channel", scan.Err()))
}

func (h *Handle) handleLine(line string) {
	h.mu.Lock()
	apiConn := h.apiConn
	h.mu.Unlock()
	apiConn.LogInbound(line)

	msg, err := wire.Parse(line)
	if err != nil {
		h.logger.Debug("session: malformed control line", "error", err, "line", line)
		return
	}
	switch msg.Kind {
	case wire.KindVersion:
		v, err := store.ParseVersion(msg.Version)
		if err != nil {
			h.logger.Warn("session: unparsable version banner", "version", msg.Version, "error", err)
			return
		}
		h.mu.Lock()
		h.version = v
		h.mu.Unlock()
	case wire.KindHandle:
		h.mu.Lock()
		h.handle = msg.Handle
		ready := h.handleReady
		h.mu.Unlock()
		if ready != nil {
			select {
			case <-ready:
			default:
				close(ready)
			}
		}
	case wire.KindReply:
		h.cmd.HandleReply(msg.Reply)
		h.mu.Lock()
		h.lastPong = time.Now()
		h.mu.Unlock()
	case wire.KindNotice:
		h.logger.Info("session: notice", "severity", msg.Notice.Severity, "description", msg.Notice.Description)
	case wire.KindStatus:
		if _, ok := h.Store.Apply(msg.Status); !ok {
			h.logger.Debug("session: status not applied", "source", msg.Status.Source)
		}
	}
}

func (h *Handle) runSync(ctx context.Context) error {
	cmds := syncCommands()
	results := make(chan error, len(cmds))
	for _, c := range cmds {
		c := c
		go func() {
			_, err := h.cmd.Send(ctx, c, h.cmdTimeout)
			if err != nil {
				results <- flexerr.Wrap(flexerr.ConnectionFailed, "syncing:"+c, err)
				return
			}
			results <- nil
		}()
	}
	for range cmds {
		if err := <-results; err != nil {
			return err
		}
	}
	return nil
}

// AttachDataPlane wires the data-plane transport (a native UDP socket or
// a WebRTC data channel, per spec §4.6) into the Handle, starts dispatch
// and keepalive, and transitions to ready.
func (h *Handle) AttachDataPlane(ctx context.Context, src udpsession.Source) error {
	if h.State() != EstablishingDataPlane {
		return fmt.Errorf("session: AttachDataPlane called in state %s", h.State())
	}

	h.UDP = udpsession.New(src, h.logger)
	h.UDP.SetMetrics(h.metrics)
	go func() { _ = h.UDP.Run(ctx) }()

	h.mu.Lock()
	h.lastPong = time.Now()
	h.stopKeepalive = make(chan struct{})
	h.mu.Unlock()

	go h.keepaliveLoop(ctx)

	h.setState(Ready)
	return nil
}

func (h *Handle) keepaliveLoop(ctx context.Context) {
	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	h.mu.Lock()
	stop := h.stopKeepalive
	h.mu.Unlock()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			since := time.Since(h.lastPong)
			h.mu.Unlock()
			if since > time.Duration(h.missThreshold)*h.keepalive {
				h.disconnect(flexerr.New(flexerr.TransportError, "keepalive"))
				return
			}
			go func() {
				if _, err := h.cmd.Send(ctx, "ping", h.keepalive); err == nil {
					h.mu.Lock()
					h.lastPong = time.Now()
					h.mu.Unlock()
				}
			}()
		}
	}
}

// Disconnect tears the handle down: stops keepalive, cancels pending
// commands, closes the control connection and data plane, and
// transitions to disconnected — on every exit path (spec §5 "Resource
// scoping").
func (h *Handle) Disconnect() {
	h.disconnect(flexerr.New(flexerr.Cancelled, "disconnect"))
}

func (h *Handle) disconnect(cause error) {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		stop := h.stopKeepalive
		conn := h.conn
		h.mu.Unlock()

		if stop != nil {
			close(stop)
		}
		if h.cmd != nil {
			h.cmd.Cancel()
			h.cmd.Close()
		}
		if h.UDP != nil {
			_ = h.UDP.Close()
		}
		if conn != nil {
			_ = conn.Close()
		}
		h.setState(Disconnected)
		if cause != nil {
			h.logger.Info("session: disconnected", "cause", cause)
		}
	})
}
