package store

import hversion "github.com/hashicorp/go-version"

// ParseVersion parses the handshake's "V<dotted-version>" banner (spec
// §4.3) into a comparable version, so callers can gate behavior on
// firmware capability instead of comparing raw strings.
func ParseVersion(dotted string) (*hversion.Version, error) {
	return hversion.NewVersion(dotted)
}

// AtLeast reports whether v is defined and >= min. A nil v (version not yet
// received) is never at least anything.
func AtLeast(v *hversion.Version, min string) bool {
	if v == nil {
		return false
	}
	m, err := hversion.NewVersion(min)
	if err != nil {
		return false
	}
	return v.GreaterThanOrEqual(m)
}
