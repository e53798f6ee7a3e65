package resourceguard

// Dropper is implemented by resource owners that need cleanup when they are
// forcibly released, for example when a tracking registry is cleared while
// handles are still alive. Drop must be safe to call more than once.
type Dropper interface {
	Drop()
}
