package track

// Handle is an opaque reference to a tracked resource.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Event types for handle lifecycle notifications.
type EventType uint8

const (
	EventOpened EventType = iota
	EventTransferred
	EventDetached
	EventReleased
	EventReleaseFailed
)

// Event represents a handle lifecycle event.
type Event struct {
	Err    error
	Name   string
	Desc   uintptr
	Handle Handle
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// Info is a point-in-time snapshot of one tracked resource.
type Info struct {
	Name      string
	Desc      uintptr
	Transfers uint32
}
