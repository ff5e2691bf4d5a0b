package wire

import "fmt"

// FormatCommand renders an outbound command line per spec §4.3/§6:
// `C<seq>|<command>`, sequence numbers without leading zeros, no
// trailing newline (the transport layer appends it).
func FormatCommand(seq int, command string) string {
	return fmt.Sprintf("C%d|%s", seq, command)
}

// FormatHandle renders a client handle as the wire/display convention:
// uppercase, zero-padded to eight hex digits, prefixed 0x.
func FormatHandle(h uint32) string {
	return fmt.Sprintf("0x%08X", h)
}
