//go:build !windows

package discovery

import "syscall"

// applyUDPSocketOptions sets minimal, portable options. SO_REUSEPORT is
// intentionally omitted: it isn't defined on all Unix targets and isn't
// required for the discovery socket to rebind cleanly.
func applyUDPSocketOptions(network, address string, rc syscall.RawConn) error {
	var retErr error
	_ = rc.Control(func(fd uintptr) {
		if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil && retErr == nil {
			retErr = err
		}
	})
	return retErr
}
