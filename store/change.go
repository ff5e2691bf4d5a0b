package store

// Diff carries only the fields that changed between two snapshots of the
// same entity, keyed by attribute name as it appears on the wire.
type Diff map[string]any

// ChangeEvent is emitted by the store for every applied status line (spec
// §4.4 "Change events carry {entity, id, diff, removed?}").
type ChangeEvent struct {
	Entity  string
	ID      string
	Diff    Diff
	Removed bool
}

// unsubscribeFunc adapts a plain unsubscribe func to an Unsubscribe method;
// a nil func is a no-op. Store.Subscribe itself returns a plain func(),
// which is safe to call more than once (spec §4.7's idempotent-unsubscribe
// convention).
type unsubscribeFunc func()

func (u unsubscribeFunc) Unsubscribe() {
	if u != nil {
		u()
	}
}
