package handle

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/resource-guard/errors"
	"github.com/wippyai/resource-guard/track"
)

// MaxChunk is the upper bound on a single ReadChunk call.
const MaxChunk = 1024

// InvalidDescriptor is the value Fd reports when a handle owns nothing.
const InvalidDescriptor = ^uintptr(0)

// File owns at most one open file. The zero value is an empty handle: it
// owns nothing, reads nothing and releases nothing, but it is a valid
// transfer target. File must not be copied; use Transfer or TransferFrom to
// move ownership between handles.
type File struct {
	mu   sync.Mutex
	f    *os.File
	name string
	reg  *track.Registry
	th   track.Handle
}

// Open acquires path for reading. On failure no handle exists and the
// returned error carries the path and the mapped OS error kind.
func Open(path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, errors.Open(path, err)
	}

	f := &File{f: osf, name: path}
	f.reg, f.th = register(path, osf.Fd(), f)

	Logger().Debug("opened",
		zap.String("path", path),
		zap.Uintptr("fd", osf.Fd()))
	return f, nil
}

// Transfer constructs a new handle owning whatever src currently owns.
// src is emptied before the new handle becomes visible, so at no point do
// two handles own the descriptor. Transferring an empty handle yields
// another empty handle.
func Transfer(src *File) *File {
	dst := &File{}
	if src == nil {
		return dst
	}

	dst.f, dst.name, dst.reg, dst.th = src.take()
	if dst.reg != nil && dst.th != 0 {
		dst.reg.Transfer(dst.th, dst)
	}
	return dst
}

// TransferFrom moves src's resource into f. Whatever f owned before is
// released: the old descriptor is closed and a failure there is logged, it
// never blocks the move. Self-transfer is a no-op. src is empty when
// TransferFrom returns.
func (f *File) TransferFrom(src *File) {
	if f == nil || src == nil || f == src {
		return
	}

	osf, name, reg, th := src.take()

	f.mu.Lock()
	old, oldName, oldReg, oldTh := f.f, f.name, f.reg, f.th
	f.f = osf
	f.name = name
	f.reg = reg
	f.th = th
	f.mu.Unlock()

	if reg != nil && th != 0 {
		reg.Transfer(th, f)
	}
	if old != nil {
		releaseFile(old, oldName, oldReg, oldTh)
	}
}

// ReadChunk performs one bounded read of up to max bytes, capped at
// MaxChunk. It returns an empty result when the handle is empty, at end of
// file, when the read fails, or when max is not positive. A call makes at
// most one read; short reads are returned as-is, never retried.
func (f *File) ReadChunk(max int) []byte {
	if f == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.f == nil || max <= 0 {
		return nil
	}
	if max > MaxChunk {
		max = MaxChunk
	}

	buf := make([]byte, max)
	n, err := f.f.Read(buf)
	if err != nil && err != io.EOF {
		Logger().Debug("read failed", zap.Error(errors.Read(f.name, err)))
	}
	if n <= 0 {
		return nil
	}
	return buf[:n]
}

// Close releases the owned file. The first close on an owning handle
// performs the release; every other call, including closes of emptied
// handles, is a no-op returning nil. A release failure is logged before it
// is returned, so ignoring the error loses nothing.
func (f *File) Close() error {
	if f == nil {
		return nil
	}

	osf, name, reg, th := f.take()
	if osf == nil {
		return nil
	}
	return releaseFile(osf, name, reg, th)
}

// Drop releases the owned file and discards the outcome. It exists so
// registries can clear leftover handles uniformly.
func (f *File) Drop() {
	_ = f.Close()
}

// Detach yields the underlying file and empties the handle. The caller
// assumes the close obligation; tracking for the descriptor stops.
func (f *File) Detach() *os.File {
	if f == nil {
		return nil
	}

	osf, _, reg, th := f.take()
	if osf == nil {
		return nil
	}
	if reg != nil && th != 0 {
		reg.Detach(th)
	}
	return osf
}

// Alive reports whether the handle currently owns a file.
func (f *File) Alive() bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f != nil
}

// Name returns the path the handle was opened with. An emptied handle keeps
// its last name as a diagnostic label.
func (f *File) Name() string {
	if f == nil {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

// Fd returns the owned descriptor, or InvalidDescriptor for an empty
// handle. The descriptor remains owned by the handle; use Detach to assume
// ownership.
func (f *File) Fd() uintptr {
	if f == nil {
		return InvalidDescriptor
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return InvalidDescriptor
	}
	return f.f.Fd()
}

// take empties the handle and returns what it owned. The name is returned
// but kept on the handle as a diagnostic label.
func (f *File) take() (*os.File, string, *track.Registry, track.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	osf, name, reg, th := f.f, f.name, f.reg, f.th
	f.f = nil
	f.reg = nil
	f.th = 0
	return osf, name, reg, th
}

// releaseFile returns a descriptor to the OS and reports the outcome. The
// release counts as done whether or not the close succeeded; the error is
// logged here and surfaced to the registry.
func releaseFile(osf *os.File, name string, reg *track.Registry, th track.Handle) error {
	if err := osf.Close(); err != nil {
		relErr := errors.Release(name, err)
		Logger().Warn("release failed", zap.Error(relErr))
		if reg != nil && th != 0 {
			reg.Release(th, relErr)
		}
		return relErr
	}

	Logger().Debug("released", zap.String("path", name))
	if reg != nil && th != 0 {
		reg.Release(th, nil)
	}
	return nil
}
