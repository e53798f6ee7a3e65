package track

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	resourceguard "github.com/wippyai/resource-guard"
	"github.com/wippyai/resource-guard/errors"
)

// Registry audits the lifecycle of exclusive resource handles. Each live
// resource occupies one slot; slots are reused after release. Registries are
// safe for concurrent use.
type Registry struct {
	id        string
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	owner     any
	name      string
	desc      uintptr
	transfers uint32
	valid     bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		id:       uuid.NewString(),
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// ID returns the registry's instance identifier, used in log fields.
func (r *Registry) ID() string {
	return r.id
}

// Add registers a live resource and returns its tracking handle.
// Returns 0 after Close.
func (r *Registry) Add(name string, desc uintptr, owner any) Handle {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return 0
	}

	for i := range r.entries {
		if r.entries[i].valid && r.entries[i].desc == desc {
			Logger().Warn("descriptor already tracked",
				zap.String("registry", r.id),
				zap.Uintptr("desc", desc),
				zap.String("name", name),
				zap.String("prior", r.entries[i].name))
			break
		}
	}

	e := entry{
		owner: owner,
		name:  name,
		desc:  desc,
		valid: true,
	}

	var h Handle
	if len(r.freeList) > 0 {
		h = r.freeList[len(r.freeList)-1]
		r.freeList = r.freeList[:len(r.freeList)-1]
		r.entries[h-1] = e
	} else {
		r.entries = append(r.entries, e)
		h = Handle(len(r.entries))
	}
	r.mu.Unlock()

	r.notify(Event{
		Type:   EventOpened,
		Handle: h,
		Name:   name,
		Desc:   desc,
	})

	return h
}

// Transfer records an ownership move: the resource stays live, the owner
// changes. Reports whether the handle was tracked.
func (r *Registry) Transfer(h Handle, owner any) bool {
	r.mu.Lock()
	e := r.lookup(h)
	if e == nil {
		r.mu.Unlock()
		return false
	}
	e.owner = owner
	e.transfers++
	ev := Event{
		Type:   EventTransferred,
		Handle: h,
		Name:   e.name,
		Desc:   e.desc,
	}
	r.mu.Unlock()

	r.notify(ev)
	return true
}

// Detach removes a resource from tracking without a release: ownership has
// left the handle discipline and the caller is on their own.
func (r *Registry) Detach(h Handle) bool {
	r.mu.Lock()
	e := r.lookup(h)
	if e == nil {
		r.mu.Unlock()
		return false
	}
	ev := Event{
		Type:   EventDetached,
		Handle: h,
		Name:   e.name,
		Desc:   e.desc,
	}
	r.free(h, e)
	r.mu.Unlock()

	r.notify(ev)
	return true
}

// Release records the end of a resource's life. A non-nil err marks the
// release as failed; the slot is freed either way. Releasing an untracked
// handle is logged and ignored, so double releases surface in logs without
// breaking callers.
func (r *Registry) Release(h Handle, err error) bool {
	r.mu.Lock()
	e := r.lookup(h)
	if e == nil {
		r.mu.Unlock()
		Logger().Warn("release of untracked handle",
			zap.String("registry", r.id),
			zap.Uint32("handle", uint32(h)))
		return false
	}
	ev := Event{
		Type:   EventReleased,
		Handle: h,
		Name:   e.name,
		Desc:   e.desc,
		Err:    err,
	}
	if err != nil {
		ev.Type = EventReleaseFailed
	}
	r.free(h, e)
	r.mu.Unlock()

	r.notify(ev)
	return true
}

// Get returns a snapshot of a tracked resource.
func (r *Registry) Get(h Handle) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e := r.lookup(h)
	if e == nil {
		return Info{}, false
	}
	return Info{Name: e.name, Desc: e.desc, Transfers: e.transfers}, true
}

// Len returns the number of live resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for i := range r.entries {
		if r.entries[i].valid {
			count++
		}
	}
	return count
}

// Each iterates over all live resources.
func (r *Registry) Each(fn func(Handle, Info) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		e := &r.entries[i]
		if e.valid {
			if !fn(Handle(i+1), Info{Name: e.name, Desc: e.desc, Transfers: e.transfers}) {
				break
			}
		}
	}
}

// Owned reports whether a descriptor is currently tracked as live.
func (r *Registry) Owned(desc uintptr) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		if r.entries[i].valid && r.entries[i].desc == desc {
			return true
		}
	}
	return false
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Clear releases all live resources. Owners implementing Dropper are dropped
// and call back into Release themselves; anything left is released directly.
func (r *Registry) Clear() {
	type live struct {
		owner any
		h     Handle
	}

	// Collect first to avoid holding the lock during drops.
	var snapshot []live
	r.mu.RLock()
	for i := range r.entries {
		if r.entries[i].valid {
			snapshot = append(snapshot, live{r.entries[i].owner, Handle(i + 1)})
		}
	}
	r.mu.RUnlock()

	for _, l := range snapshot {
		if d, ok := l.owner.(resourceguard.Dropper); ok {
			d.Drop()
		}
		if r.alive(l.h) {
			r.Release(l.h, nil)
		}
	}
}

// Close drops all remaining owners and shuts the registry down. Every
// resource still live at this point is a leak; the returned error aggregates
// one report per leaked handle. Close is idempotent.
func (r *Registry) Close() error {
	type leak struct {
		owner any
		name  string
		desc  uintptr
		h     Handle
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true

	var leaks []leak
	for i := range r.entries {
		e := &r.entries[i]
		if e.valid {
			leaks = append(leaks, leak{e.owner, e.name, e.desc, Handle(i + 1)})
		}
	}
	r.mu.Unlock()

	var err error
	for _, l := range leaks {
		Logger().Warn("handle still open at registry close",
			zap.String("registry", r.id),
			zap.String("name", l.name),
			zap.Uintptr("desc", l.desc))
		err = multierr.Append(err, errors.Leaked(l.name, l.desc))

		if d, ok := l.owner.(resourceguard.Dropper); ok {
			d.Drop()
		}
		if r.alive(l.h) {
			r.Release(l.h, nil)
		}
	}

	r.mu.Lock()
	r.entries = nil
	r.freeList = nil
	r.mu.Unlock()
	return err
}

// lookup returns the entry for a handle, or nil. Caller holds mu.
func (r *Registry) lookup(h Handle) *entry {
	if h == 0 {
		return nil
	}
	idx := int(h) - 1
	if idx >= len(r.entries) {
		return nil
	}
	e := &r.entries[idx]
	if !e.valid {
		return nil
	}
	return e
}

// free invalidates a slot and queues it for reuse. Caller holds mu.
func (r *Registry) free(h Handle, e *entry) {
	e.valid = false
	e.owner = nil
	e.name = ""
	e.desc = 0
	e.transfers = 0
	r.freeList = append(r.freeList, h)
}

func (r *Registry) alive(h Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(h) != nil
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHandleEvent(e)
	}
}
