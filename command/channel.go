// Package command implements the command lifecycle of spec §4.3: serialize
// outbound commands with a monotonically increasing sequence number,
// correlate replies by sequence (not FIFO order), apply per-command
// timeouts, and surface rejections via the numeric code taxonomy in
// codes.go.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daveisadork/flexcore/flexerr"
	"github.com/daveisadork/flexcore/metrics"
	"github.com/daveisadork/flexcore/wire"
)

// DefaultTimeout is used when Send is called with timeout <= 0.
const DefaultTimeout = 10 * time.Second

// Sender writes one already-framed line (without trailing '\n') to the
// control transport.
type Sender func(line string) error

// Result is the outcome of one command: Code == 0 means accepted.
type Result struct {
	Seq     int
	Code    uint32
	Message string
	Debug   string
}

// Accepted reports whether the radio accepted the command (code 0).
func (r Result) Accepted() bool { return r.Code == 0 }

type pending struct {
	done   chan struct{}
	result Result
	err    error
	timer  *time.Timer
	trace  string
	sentAt time.Time
}

// Channel owns the sequence counter and the pending-reply table for one
// control connection.
type Channel struct {
	mu      sync.Mutex
	nextSeq int
	pending map[int]*pending
	send    Sender
	closed  bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// SetMetrics attaches a metrics recorder; nil disables recording.
func (c *Channel) SetMetrics(m *metrics.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// New constructs a Channel that writes outbound lines via send. logger may
// be nil, in which case slog.Default() is used.
func New(send Sender, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{send: send, pending: make(map[int]*pending), nextSeq: 1, logger: logger}
}

// Send assigns the next sequence number, frames and sends the command,
// and blocks until a matching reply arrives, the per-command timeout
// elapses, the channel closes, or ctx is cancelled.
func (c *Channel) Send(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{}, flexerr.New(flexerr.ChannelClosed, command)
	}
	seq := c.nextSeq
	c.nextSeq++
	p := &pending{done: make(chan struct{}), trace: uuid.NewString(), sentAt: time.Now()}
	c.pending[seq] = p
	m := c.metrics
	c.mu.Unlock()

	line := wire.FormatCommand(seq, command)
	c.logger.Debug("command send", "seq", seq, "command", command, "trace", p.trace)

	if err := c.send(line); err != nil {
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
		return Result{}, flexerr.Wrap(flexerr.TransportError, command, err)
	}
	m.RecordCommandSent()

	p.timer = time.AfterFunc(timeout, func() {
		m.RecordCommandTimeout()
		c.resolve(seq, Result{Seq: seq}, flexerr.New(flexerr.CommandTimeout, command))
	})

	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
		p.timer.Stop()
		return Result{}, ctx.Err()
	}
}

// HandleReply correlates an incoming reply to its pending command and
// resolves it. Replies for sequences with no pending command (already
// timed out, or a stray/duplicate reply) are silently dropped.
func (c *Channel) HandleReply(r wire.Reply) {
	result := Result{Seq: r.Seq, Code: r.Code, Message: r.Message, Debug: r.Debug}
	var err error
	if r.Code != 0 {
		err = flexerr.Rejected(fmt.Sprintf("seq %d", r.Seq), r.Code, ReasonDescription(r.Code))
	}
	c.resolve(r.Seq, result, err)
}

func (c *Channel) resolve(seq int, result Result, err error) {
	c.mu.Lock()
	p, ok := c.pending[seq]
	if ok {
		delete(c.pending, seq)
	}
	m := c.metrics
	c.mu.Unlock()
	if !ok {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.result, p.err = result, err
	close(p.done)
	if !errors.Is(err, flexerr.CommandTimeout.Sentinel()) {
		m.RecordCommandResolved(result.Accepted() && err == nil, time.Since(p.sentAt).Seconds())
	}
}

// Close rejects every pending command with ChannelClosed and leaves the
// pending set empty (spec §4.3 "On transport close: reject all pending").
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	pend := c.pending
	c.pending = make(map[int]*pending)
	c.mu.Unlock()

	for seq, p := range pend {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.err = flexerr.New(flexerr.ChannelClosed, fmt.Sprintf("seq %d", seq))
		close(p.done)
	}
}

// Cancel rejects every pending command with Cancelled, used when the
// owning session transitions to disconnected outside of a transport error
// (spec §5 "Cancellation").
func (c *Channel) Cancel() {
	c.mu.Lock()
	pend := c.pending
	c.pending = make(map[int]*pending)
	c.mu.Unlock()

	for seq, p := range pend {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.err = flexerr.New(flexerr.Cancelled, fmt.Sprintf("seq %d", seq))
		close(p.done)
	}
}

// PendingCount reports the number of commands currently awaiting a reply.
func (c *Channel) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
