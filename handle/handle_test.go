package handle

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/resource-guard/errors"
	"github.com/wippyai/resource-guard/track"
)

// writeTemp creates a file of size bytes filled with a repeating pattern.
func writeTemp(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte('a' + i%26)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// releaseCounter counts terminal release events per descriptor.
type releaseCounter struct {
	byDesc map[uintptr]int
}

func newReleaseCounter() *releaseCounter {
	return &releaseCounter{byDesc: make(map[uintptr]int)}
}

func (c *releaseCounter) OnHandleEvent(e track.Event) {
	if e.Type == track.EventReleased || e.Type == track.EventReleaseFailed {
		c.byDesc[e.Desc]++
	}
}

func (c *releaseCounter) total() int {
	n := 0
	for _, v := range c.byDesc {
		n += v
	}
	return n
}

// withRegistry wires a fresh registry and release counter for one test.
func withRegistry(t *testing.T) (*track.Registry, *releaseCounter) {
	t.Helper()
	reg := track.NewRegistry()
	counter := newReleaseCounter()
	reg.Subscribe(counter)
	SetRegistry(reg)
	t.Cleanup(func() { SetRegistry(nil) })
	return reg, counter
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !stderrors.Is(err, &errors.Error{Op: errors.OpOpen, Kind: errors.KindNotFound}) {
		t.Fatalf("expected [open] not_found, got: %v", err)
	}
}

func TestReadChunk_Content(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got := f.ReadChunk(5); string(got) != "hello" {
		t.Fatalf("expected 'hello', got %q", got)
	}
	if got := f.ReadChunk(MaxChunk); string(got) != " world" {
		t.Fatalf("expected ' world', got %q", got)
	}
}

func TestReadChunk_Bound(t *testing.T) {
	f, err := Open(writeTemp(t, 2000))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got := f.ReadChunk(4096); len(got) != 1024 {
		t.Fatalf("first chunk = %d bytes, want 1024", len(got))
	}
	if got := f.ReadChunk(4096); len(got) != 976 {
		t.Fatalf("second chunk = %d bytes, want 976", len(got))
	}
	if got := f.ReadChunk(4096); len(got) != 0 {
		t.Fatalf("read past end = %d bytes, want empty", len(got))
	}
}

func TestReadChunk_RequestSizes(t *testing.T) {
	f, err := Open(writeTemp(t, 100))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got := f.ReadChunk(10); len(got) != 10 {
		t.Fatalf("ReadChunk(10) = %d bytes, want 10", len(got))
	}
	if got := f.ReadChunk(0); len(got) != 0 {
		t.Fatalf("ReadChunk(0) = %d bytes, want empty", len(got))
	}
	if got := f.ReadChunk(-5); len(got) != 0 {
		t.Fatalf("ReadChunk(-5) = %d bytes, want empty", len(got))
	}
	if got := f.ReadChunk(MaxChunk + 1); len(got) != 90 {
		t.Fatalf("capped read = %d bytes, want remaining 90", len(got))
	}
}

func TestTransfer_Exclusivity(t *testing.T) {
	reg, _ := withRegistry(t)

	a, err := Open(writeTemp(t, 64))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	desc := a.Fd()

	b := Transfer(a)
	if a.Alive() {
		t.Fatal("source should be empty after transfer")
	}
	if !b.Alive() {
		t.Fatal("destination should own the file")
	}
	if b.Fd() != desc {
		t.Fatalf("descriptor changed across transfer: %d != %d", b.Fd(), desc)
	}

	c := Transfer(b)
	if b.Alive() {
		t.Fatal("second source should be empty after transfer")
	}

	alive := 0
	for _, h := range []*File{a, b, c} {
		if h.Alive() {
			alive++
		}
	}
	if alive != 1 {
		t.Fatalf("exactly one handle should be alive, got %d", alive)
	}
	if !reg.Owned(desc) {
		t.Fatal("registry should report the descriptor as owned")
	}
	if reg.Len() != 1 {
		t.Fatalf("registry should hold one live resource, got %d", reg.Len())
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if reg.Owned(desc) {
		t.Fatal("descriptor should not be owned after close")
	}
}

func TestClose_Once(t *testing.T) {
	_, counter := withRegistry(t)

	f, err := Open(writeTemp(t, 16))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	desc := f.Fd()

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got: %v", err)
	}
	if got := counter.byDesc[desc]; got != 1 {
		t.Fatalf("descriptor released %d times, want 1", got)
	}
	if f.Alive() {
		t.Fatal("closed handle should be empty")
	}
}

func TestClose_AfterTransferChain(t *testing.T) {
	_, counter := withRegistry(t)

	a, err := Open(writeTemp(t, 16))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	desc := a.Fd()

	b := Transfer(a)
	c := Transfer(b)

	a.Close()
	b.Close()
	if counter.total() != 0 {
		t.Fatal("closing emptied handles must release nothing")
	}

	c.Close()
	if got := counter.byDesc[desc]; got != 1 {
		t.Fatalf("descriptor released %d times across chain, want 1", got)
	}
}

func TestTransferFrom_ReleasesPrior(t *testing.T) {
	_, counter := withRegistry(t)

	a, err := Open(writeTemp(t, 16))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b, err := Open(writeTemp(t, 16))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	descA, descB := a.Fd(), b.Fd()

	b.TransferFrom(a)

	if a.Alive() {
		t.Fatal("source should be empty after transfer")
	}
	if b.Fd() != descA {
		t.Fatal("destination should own the moved descriptor")
	}
	if got := counter.byDesc[descB]; got != 1 {
		t.Fatalf("prior descriptor released %d times, want 1", got)
	}
	if got := counter.byDesc[descA]; got != 0 {
		t.Fatalf("moved descriptor released %d times during move, want 0", got)
	}

	b.Close()
	if got := counter.byDesc[descA]; got != 1 {
		t.Fatalf("moved descriptor released %d times total, want 1", got)
	}
}

func TestTransferFrom_Self(t *testing.T) {
	_, counter := withRegistry(t)

	f, err := Open(writeTemp(t, 32))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	f.TransferFrom(f)

	if !f.Alive() {
		t.Fatal("self transfer must not empty the handle")
	}
	if counter.total() != 0 {
		t.Fatal("self transfer must not release anything")
	}
	if got := f.ReadChunk(4); len(got) != 4 {
		t.Fatal("handle should still be readable after self transfer")
	}
}

func TestTransfer_PreservesOffset(t *testing.T) {
	f, err := Open(writeTemp(t, 2000))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if got := f.ReadChunk(MaxChunk); len(got) != 1024 {
		t.Fatalf("first chunk = %d bytes, want 1024", len(got))
	}

	g := Transfer(f)
	defer g.Close()

	if got := f.ReadChunk(MaxChunk); len(got) != 0 {
		t.Fatal("emptied handle must read nothing")
	}
	if got := g.ReadChunk(MaxChunk); len(got) != 976 {
		t.Fatalf("offset lost across transfer: got %d bytes, want 976", len(got))
	}
}

func TestTransfer_EmptySource(t *testing.T) {
	a := &File{}
	b := Transfer(a)
	if b.Alive() {
		t.Fatal("transfer of an empty handle should yield an empty handle")
	}
	if b.Close() != nil {
		t.Fatal("closing an empty handle should be a no-op")
	}
}

func TestZeroValue_TransferTarget(t *testing.T) {
	f, err := Open(writeTemp(t, 8))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var sink File
	sink.TransferFrom(f)
	defer sink.Close()

	if !sink.Alive() {
		t.Fatal("zero-value handle should accept a transfer")
	}
	if f.Alive() {
		t.Fatal("source should be empty")
	}
	if got := sink.ReadChunk(8); len(got) != 8 {
		t.Fatalf("sink read %d bytes, want 8", len(got))
	}
}

func TestDetach(t *testing.T) {
	reg, counter := withRegistry(t)

	f, err := Open(writeTemp(t, 8))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	desc := f.Fd()

	osf := f.Detach()
	if osf == nil {
		t.Fatal("detach should yield the file")
	}
	defer osf.Close()

	if f.Alive() {
		t.Fatal("handle should be empty after detach")
	}
	if reg.Owned(desc) {
		t.Fatal("detached descriptor should not be tracked")
	}
	if counter.total() != 0 {
		t.Fatal("detach is not a release")
	}
	if f.Detach() != nil {
		t.Fatal("second detach should yield nothing")
	}
}

func TestDiagnostics(t *testing.T) {
	path := writeTemp(t, 8)
	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if f.Name() != path {
		t.Fatalf("Name() = %q, want %q", f.Name(), path)
	}
	if f.Fd() == InvalidDescriptor {
		t.Fatal("owning handle should report a real descriptor")
	}

	f.Close()
	if f.Fd() != InvalidDescriptor {
		t.Fatal("empty handle should report InvalidDescriptor")
	}
	if f.Name() != path {
		t.Fatal("emptied handle should keep its name as a label")
	}
}

func TestNilHandle(t *testing.T) {
	var f *File

	if f.Alive() {
		t.Fatal("nil handle should not be alive")
	}
	if f.Close() != nil {
		t.Fatal("closing a nil handle should be a no-op")
	}
	if f.ReadChunk(10) != nil {
		t.Fatal("nil handle should read nothing")
	}
	if f.Fd() != InvalidDescriptor {
		t.Fatal("nil handle should report InvalidDescriptor")
	}
	if Transfer(f).Alive() {
		t.Fatal("transfer of nil should yield an empty handle")
	}
}
