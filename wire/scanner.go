package wire

import (
	"bufio"
	"io"
)

// NewLineScanner wraps r in a bufio.Scanner configured for the control
// channel's newline-delimited grammar, with headroom for long status
// lines (a GUI-client status line listing many connected clients can run
// well past bufio's 64KiB default). Grounded on the teacher's
// internal/radio/ws.go readTCPLines, which sizes its scan buffer the same
// way.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 512*1024)
	return scan
}
