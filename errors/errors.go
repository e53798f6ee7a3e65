package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// Op indicates which resource operation the error occurred in
type Op string

const (
	OpOpen    Op = "open"    // acquiring a descriptor
	OpRead    Op = "read"    // bounded reads
	OpRelease Op = "release" // returning a descriptor to the OS
	OpTrack   Op = "track"   // lifecycle registry bookkeeping
	OpLoad    Op = "load"    // config file loading
	OpWatch   Op = "watch"   // config file watching
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindPermission  Kind = "permission"
	KindIsDirectory Kind = "is_directory"
	KindClosed      Kind = "closed"
	KindInvalid     Kind = "invalid"
	KindLeaked      Kind = "leaked"
	KindIO          Kind = "io"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Op     Op
	Kind   Kind
	Path   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Op))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Op == t.Op && e.Kind == t.Kind
	}
	return false
}

// kindOf maps an OS-level error to the closest Kind
func kindOf(err error) Kind {
	if os.IsNotExist(err) {
		return KindNotFound
	}
	if os.IsPermission(err) {
		return KindPermission
	}
	if stderrors.Is(err, os.ErrClosed) {
		return KindClosed
	}
	var pathErr *os.PathError
	if stderrors.As(err, &pathErr) {
		var errno syscall.Errno
		if stderrors.As(pathErr.Err, &errno) {
			return kindOfErrno(errno)
		}
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return kindOfErrno(errno)
	}
	return KindIO
}

func kindOfErrno(errno syscall.Errno) Kind {
	switch errno {
	case syscall.EACCES, syscall.EPERM:
		return KindPermission
	case syscall.ENOENT:
		return KindNotFound
	case syscall.EISDIR:
		return KindIsDirectory
	case syscall.EBADF:
		return KindClosed
	case syscall.EINVAL:
		return KindInvalid
	default:
		return KindIO
	}
}

// Convenience constructors for common error patterns

// Open creates an error for a failed descriptor acquisition
func Open(path string, cause error) *Error {
	return &Error{
		Op:    OpOpen,
		Kind:  kindOf(cause),
		Path:  path,
		Cause: cause,
	}
}

// Read creates an error for a failed bounded read
func Read(path string, cause error) *Error {
	return &Error{
		Op:    OpRead,
		Kind:  kindOf(cause),
		Path:  path,
		Cause: cause,
	}
}

// Release creates an error for a close that did not complete cleanly
func Release(path string, cause error) *Error {
	return &Error{
		Op:    OpRelease,
		Kind:  kindOf(cause),
		Path:  path,
		Cause: cause,
	}
}

// Load creates a config loading error
func Load(path string, cause error) *Error {
	return &Error{
		Op:    OpLoad,
		Kind:  KindInvalid,
		Path:  path,
		Cause: cause,
	}
}

// Watch creates a watcher setup or delivery error
func Watch(path string, cause error) *Error {
	return &Error{
		Op:    OpWatch,
		Kind:  kindOf(cause),
		Path:  path,
		Cause: cause,
	}
}

// Leaked reports a handle that was still alive when its registry shut down
func Leaked(name string, desc uintptr) *Error {
	return &Error{
		Op:     OpTrack,
		Kind:   KindLeaked,
		Path:   name,
		Detail: fmt.Sprintf("descriptor %d still owned at registry close", desc),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(op Op, kind Kind, cause error, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
