package shared

import (
	"sync"
	"testing"
)

type netConfig struct {
	Hostname string
	URL      string
	Port     int
}

func TestOwner_LoadInitial(t *testing.T) {
	owner := NewOwner(netConfig{Hostname: "localhost", Port: 80, URL: "/index.html"})

	got := owner.Load()
	if got.Hostname != "localhost" || got.Port != 80 || got.URL != "/index.html" {
		t.Fatalf("unexpected initial value: %+v", got)
	}
}

func TestView_SeesMutation(t *testing.T) {
	owner := NewOwner(netConfig{Hostname: "localhost", Port: 80, URL: "/index.html"})
	view := owner.View()

	if got := view.Load().Port; got != 80 {
		t.Fatalf("initial port = %d, want 80", got)
	}

	owner.Mutate(func(c *netConfig) { c.Port++ })

	if got := view.Load().Port; got != 81 {
		t.Fatalf("port after update = %d, want 81", got)
	}
	if got := view.Load().Hostname; got != "localhost" {
		t.Fatalf("hostname changed unexpectedly: %q", got)
	}
}

func TestView_LoadIsCopy(t *testing.T) {
	owner := NewOwner(netConfig{Port: 80})
	view := owner.View()

	loaded := view.Load()
	loaded.Port = 9999

	if got := owner.Load().Port; got != 80 {
		t.Fatalf("mutating a loaded copy leaked through: port = %d, want 80", got)
	}
	if got := view.Load().Port; got != 80 {
		t.Fatalf("view affected by a loaded copy: port = %d, want 80", got)
	}
}

func TestView_Zero(t *testing.T) {
	var view View[netConfig]

	if view.Valid() {
		t.Fatal("zero view should not be valid")
	}
	if got := view.Load(); got != (netConfig{}) {
		t.Fatalf("zero view should load the zero value, got %+v", got)
	}
}

func TestView_CopiesShareOwner(t *testing.T) {
	owner := NewOwner(netConfig{Port: 80})
	a := owner.View()
	b := a

	owner.Mutate(func(c *netConfig) { c.Port = 443 })

	if a.Load().Port != 443 || b.Load().Port != 443 {
		t.Fatal("all view copies should observe the same owner")
	}
}

func TestOwner_Store(t *testing.T) {
	owner := NewOwner(netConfig{Hostname: "localhost", Port: 80})
	view := owner.View()

	owner.Store(netConfig{Hostname: "example.com", Port: 8080})

	got := view.Load()
	if got.Hostname != "example.com" || got.Port != 8080 {
		t.Fatalf("store not visible through view: %+v", got)
	}
}

func TestOwner_ConcurrentAccess(t *testing.T) {
	owner := NewOwner(netConfig{Port: 0})
	view := owner.View()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				owner.Mutate(func(c *netConfig) { c.Port++ })
				view.Load()
			}
		}()
	}
	wg.Wait()

	if got := view.Load().Port; got != 400 {
		t.Fatalf("lost updates under concurrency: port = %d, want 400", got)
	}
}

// maskCount counts occurrences of c in buf while overwriting each match
// with '*'. The count is right exactly once; the data is wrong forever.
func maskCount(buf []byte, c byte) int {
	n := 0
	for i := range buf {
		if buf[i] == c {
			buf[i] = '*'
			n++
		}
	}
	return n
}

// scanCount counts occurrences of c without touching the data.
func scanCount(s string, c byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			n++
		}
	}
	return n
}

func TestScan_MutatingScanDestroysInput(t *testing.T) {
	buf := []byte("assessment")

	if got := maskCount(buf, 's'); got != 4 {
		t.Fatalf("first masked scan counted %d, want 4", got)
	}
	if got := maskCount(buf, 's'); got != 0 {
		t.Fatalf("masked scan should have destroyed its input, second count = %d", got)
	}
	if string(buf) != "a**e**ment" {
		t.Fatalf("buffer after masked scans = %q", buf)
	}

	s := "assessment"
	if scanCount(s, 's') != 4 || scanCount(s, 's') != 4 {
		t.Fatal("read-only scan must be repeatable")
	}
}

func TestView_ReferenceFieldsPierceReadOnly(t *testing.T) {
	type record struct {
		buf []byte // reference field: exactly what the package doc warns about
	}

	owner := NewOwner(record{buf: []byte("assessment")})
	view := owner.View()

	loaded := view.Load()
	maskCount(loaded.buf, 's')

	if got := string(owner.Load().buf); got != "a**e**ment" {
		t.Fatalf("expected the shared backing array to be clobbered, got %q", got)
	}
}

func TestView_ValueFieldsIsolated(t *testing.T) {
	type record struct {
		count int
	}

	owner := NewOwner(record{count: 1})
	view := owner.View()

	loaded := view.Load()
	loaded.count = 99

	if got := owner.Load().count; got != 1 {
		t.Fatalf("value field leaked through a copy: count = %d, want 1", got)
	}
}
