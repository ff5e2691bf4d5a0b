// Package flexcore is the library's client facade (spec §4.10 "Client
// facade"): it owns discovery and vends connected radio handles, so a
// caller never has to wire discovery.Service, session.Manager, and
// metrics together by hand. Everything it does is a thin composition of
// the discovery, session, and metrics packages — no new protocol logic
// lives here.
package flexcore

import (
	"context"
	"log/slog"
	"time"

	"github.com/daveisadork/flexcore/discovery"
	"github.com/daveisadork/flexcore/flexerr"
	"github.com/daveisadork/flexcore/internal/apilog"
	"github.com/daveisadork/flexcore/metrics"
	"github.com/daveisadork/flexcore/session"
)

// Options configures a Client. It is a plain struct with no dependency
// on viper or pflag, so a library consumer can build one by hand; the
// CLI's internal/config package is the only place those are mandatory,
// producing an Options via Config.ClientOptions.
type Options struct {
	Logger *slog.Logger

	// DiscoveryPort is the UDP port to listen for beacons on (spec §4.2);
	// it is passed to discovery.Options.Port unchanged, so 0 binds an
	// OS-assigned port.
	DiscoveryPort int
	// DiscoveryOfflineTimeout overrides discovery.DefaultOfflineTimeout;
	// <= 0 uses the default.
	DiscoveryOfflineTimeout time.Duration

	// KeepaliveInterval, PingMissThreshold, and CommandTimeout are passed
	// through to every session.Handle this Client connects (spec §4.6).
	KeepaliveInterval time.Duration
	PingMissThreshold int
	CommandTimeout    time.Duration

	// Metrics, if non-nil, is attached to every component this Client
	// constructs (discovery.Table, and each Handle's command.Channel and
	// udpsession.Session).
	Metrics *metrics.Metrics

	// APILog, if non-nil, is attached to every Handle this Client
	// connects (spec §5 "Diagnostics").
	APILog *apilog.Logger
}

// Client owns discovery and a set of connected radio handles. Zero value
// is not usable; construct with New.
type Client struct {
	opt      Options
	logger   *slog.Logger
	discover *discovery.Service
	sessions *session.Manager
	onEvent  func(discovery.Event)
}

// New constructs a Client. Call Run to start the discovery listener, and
// Connect to bring up a radio handle once it's been seen.
func New(opt Options) *Client {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	c := &Client{opt: opt, logger: opt.Logger}
	c.discover = discovery.New(discovery.Options{
		Port:           opt.DiscoveryPort,
		OfflineTimeout: opt.DiscoveryOfflineTimeout,
	}, opt.Logger, c.onDiscoveryEvent)
	c.discover.Table.SetMetrics(opt.Metrics)
	c.sessions = session.NewManager(opt.Logger, c.handleOptions)
	return c
}

func (c *Client) handleOptions() session.Options {
	return session.Options{
		Logger:            c.logger,
		KeepaliveInterval: c.opt.KeepaliveInterval,
		PingMissThreshold: c.opt.PingMissThreshold,
		CommandTimeout:    c.opt.CommandTimeout,
		Metrics:           c.opt.Metrics,
		APILog:            c.opt.APILog,
	}
}

// onDiscoveryEvent, if OnDiscoveryEvent has registered a handler,
// forwards every discovery transition (online/change/offline) this
// Client's listener observes.
func (c *Client) onDiscoveryEvent(ev discovery.Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

// Run starts the discovery listener and blocks until ctx is canceled or
// the listener fails unrecoverably. Run it in its own goroutine.
func (c *Client) Run(ctx context.Context) error {
	return c.discover.Run(ctx)
}

// OnDiscoveryEvent registers fn to receive every discovery event. Only
// one handler is kept; calling this again replaces the previous one.
func (c *Client) OnDiscoveryEvent(fn func(discovery.Event)) {
	c.onEvent = fn
}

// Radios returns the currently-known radio descriptors, keyed by serial
// (spec §4.2's live discovery table).
func (c *Client) Radios() map[string]discovery.RadioDescriptor {
	return c.discover.Table.Snapshot()
}

// Radio returns one known descriptor by serial.
func (c *Client) Radio(serial string) (discovery.RadioDescriptor, bool) {
	return c.discover.Table.Get(serial)
}

// Connect looks up serial in the discovery table and connects a Handle
// to it, registering the Handle under that serial (spec §4.6's
// connection lifecycle, vended per radio). Returns an error if serial
// has never been observed.
func (c *Client) Connect(ctx context.Context, serial string) (*session.Handle, error) {
	d, ok := c.discover.Table.Get(serial)
	if !ok {
		return nil, flexerr.New(flexerr.ConnectionFailed, "radio not discovered: "+serial)
	}
	return c.sessions.Connect(ctx, d)
}

// Handle returns the Handle registered for serial, if one is connected.
func (c *Client) Handle(serial string) (*session.Handle, bool) {
	return c.sessions.Get(serial)
}

// Disconnect tears down the Handle registered for serial, if any.
func (c *Client) Disconnect(serial string) {
	c.sessions.Remove(serial)
}

// Close shuts down every connected Handle. It does not stop Run; cancel
// the context passed to Run for that.
func (c *Client) Close() {
	c.sessions.CloseAll()
}
