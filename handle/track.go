package handle

import (
	"github.com/wippyai/resource-guard/track"
)

var registry *track.Registry

// SetRegistry wires a lifecycle registry into the package. Handles opened
// afterwards report their lifecycle to it; a nil registry disables
// tracking. This must be called before any handles are opened.
func SetRegistry(r *track.Registry) {
	registry = r
}

// Registry returns the wired lifecycle registry, or nil.
func Registry() *track.Registry {
	return registry
}

func register(name string, desc uintptr, owner any) (*track.Registry, track.Handle) {
	r := registry
	if r == nil {
		return nil, 0
	}
	h := r.Add(name, desc, owner)
	if h == 0 {
		return nil, 0
	}
	return r, h
}
