package vita

import "errors"

// ErrMalformed is returned (optionally wrapped with more context via
// fmt.Errorf("...: %w", ErrMalformed)) whenever a packet's declared
// structure cannot fit the bytes actually present — truncated preamble,
// payload running past the buffer, or a trailer flag with no room left
// for the trailer word (spec §4.1 "Failure").
var ErrMalformed = errors.New("vita: malformed packet")
