// Package apilog writes every raw control-channel line a Handle sends or
// receives to a flat file, one line per wire message, for post-hoc
// debugging of a session. Adapted from the teacher's
// internal/radio/apilog.go, generalized from a wire-handle-keyed
// connection label to a radio-serial-keyed one, since a serial is known
// before the handshake assigns a wire handle.
package apilog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Logger writes timestamped inbound/outbound lines to a single file
// shared across every connection it labels.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	connSeq uint64
}

// New opens path for writing (truncating any existing content), creating
// parent directories as needed. An empty path disables logging: every
// method on a nil *Logger is a no-op.
func New(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &Logger{file: f}, nil
}

// Close flushes and closes the backing file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// Connection labels every line logged through it with a sequence number,
// serial, and endpoint.
type Connection struct {
	parent *Logger
	label  string
}

// NewConnection starts labeling lines for one radio connection. Safe to
// call on a nil *Logger (returns a nil *Connection whose methods are
// no-ops).
func (l *Logger) NewConnection(serial, host string, port int) *Connection {
	if l == nil {
		return nil
	}
	seq := atomic.AddUint64(&l.connSeq, 1)
	serial = strings.ToUpper(strings.TrimSpace(serial))
	if serial == "" {
		serial = "UNKNOWN"
	}
	label := fmt.Sprintf("#%03d %s %s:%d", seq, serial, host, port)
	return &Connection{parent: l, label: label}
}

// LogInbound records one line received from the radio.
func (c *Connection) LogInbound(line string) { c.log("IN", line) }

// LogOutbound records one line sent to the radio.
func (c *Connection) LogOutbound(line string) { c.log("OUT", line) }

func (c *Connection) log(direction, line string) {
	if c == nil || c.parent == nil || c.parent.file == nil {
		return
	}
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	d := fixedWidth(strings.ToUpper(direction), 4)
	label := fixedWidth(c.label, 32)
	out := fmt.Sprintf("%s %s %s %s\n", ts, d, label, sanitize(line))
	c.parent.mu.Lock()
	_, _ = c.parent.file.WriteString(out)
	c.parent.mu.Unlock()
}

func fixedWidth(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}

func sanitize(line string) string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "<empty>"
	}
	return line
}
