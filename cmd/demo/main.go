package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/resource-guard/handle"
	"github.com/wippyai/resource-guard/shared"
	"github.com/wippyai/resource-guard/track"
	"github.com/wippyai/resource-guard/watcher"
)

func main() {
	var (
		filePath    = flag.String("file", "", "Path to a file to open and read")
		configPath  = flag.String("config", "", "Path to a config file to watch (optional, a temp one is created)")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: demo -file <path> [-config <path>] [-v]")
		fmt.Fprintln(os.Stderr, "       demo -file <path> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		handle.SetLogger(logger)
		track.SetLogger(logger)
		watcher.SetLogger(logger)
	}

	if *interactive {
		if err := runInteractive(*filePath, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*filePath, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(filePath, configPath string) error {
	reg := track.NewRegistry()
	handle.SetRegistry(reg)

	if err := ownershipDemo(filePath); err != nil {
		return err
	}
	fmt.Println()

	aliasingDemo()
	fmt.Println()

	if err := configDemo(configPath); err != nil {
		return err
	}
	fmt.Println()

	// Anything still in the registry at this point escaped its owner.
	fmt.Printf("Live handles at exit: %d\n", reg.Len())
	reg.Each(func(h track.Handle, info track.Info) bool {
		fmt.Printf("  #%d %s (fd %d, %d transfers)\n", h, info.Name, info.Desc, info.Transfers)
		return true
	})
	if err := reg.Close(); err != nil {
		return fmt.Errorf("leaked handles: %w", err)
	}
	return nil
}

// ownershipDemo walks one file through the full handle lifecycle: open,
// bounded reads, a transfer chain that leaves each source empty, and a
// single release at the end.
func ownershipDemo(path string) error {
	fmt.Println("Exclusive file handle")

	a, err := handle.Open(path)
	if err != nil {
		return err
	}

	chunk := a.ReadChunk(handle.MaxChunk)
	if len(chunk) >= handle.MaxChunk {
		fmt.Println("File is bigger than 1KB")
	} else {
		fmt.Printf("File is %d bytes long\n", len(chunk))
	}

	// Move ownership a -> b -> c. After each move the source owns nothing;
	// reads through it come back empty rather than touching the file.
	b := handle.Transfer(a)
	fmt.Printf("after transfer: a alive=%v, b alive=%v\n", a.Alive(), b.Alive())
	if got := a.ReadChunk(16); got != nil {
		return fmt.Errorf("read through transferred-from handle returned %d bytes", len(got))
	}

	var c handle.File
	c.TransferFrom(b)
	fmt.Printf("after assign: b alive=%v, c alive=%v\n", b.Alive(), c.Alive())

	next := c.ReadChunk(handle.MaxChunk)
	fmt.Printf("next chunk through c: %d bytes (offset survives transfers)\n", len(next))

	// One release for the whole chain. The closes of a and b are no-ops.
	if err := c.Close(); err != nil {
		return err
	}
	_ = a.Close()
	_ = b.Close()
	fmt.Println("closed once across the whole chain")
	return nil
}

// aliasingDemo contrasts a read-only scan with a scan through a mutable
// alias that clobbers its input as a side effect. The second variant is the
// hazard shared.View exists to rule out.
func aliasingDemo() {
	fmt.Println("Aliasing hazard")

	msg := "Hello shared world!"

	good := countByte(msg, 'l')
	fmt.Printf("%q contains %d 'l's\n", msg, good)

	// A mutable alias handed to something that was only supposed to look.
	buf := []byte(msg)
	bad := maskByte(buf, 'l')
	fmt.Printf("%q contains %d 'l's, but the scan left it as %q\n", msg, bad, buf)
}

func countByte(s string, c byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			n++
		}
	}
	return n
}

func maskByte(buf []byte, c byte) int {
	n := 0
	for i := range buf {
		if buf[i] == c {
			buf[i] = '*'
			n++
		}
	}
	return n
}

// configDemo distributes a config through read-only views and shows an
// outstanding view observing the owner's next publication.
func configDemo(path string) error {
	fmt.Println("Watched configuration")

	if path == "" {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("resource-guard-demo-%d.yaml", os.Getpid()))
		if err := writeConfig(path, 80); err != nil {
			return err
		}
		defer os.Remove(path)
	}

	w, err := watcher.New(path)
	if err != nil {
		return err
	}
	defer w.Close()

	view := w.Config()
	before := view.Load()
	fmt.Printf("Port %d is configured\n", before.Port)

	// We cannot update the config through the view, but the watcher
	// republishes when the file changes underneath it.
	if err := writeConfig(path, before.Port+1); err != nil {
		return err
	}
	if !waitForPort(view, before.Port+1, 3*time.Second) {
		return fmt.Errorf("view did not observe the config update")
	}
	fmt.Printf("Port %d is configured\n", view.Load().Port)
	return nil
}

func writeConfig(path string, port int) error {
	content := fmt.Sprintf("hostname: localhost\nport: %d\nurl: /index.html\n", port)
	return os.WriteFile(path, []byte(content), 0644)
}

func waitForPort(view shared.View[watcher.Config], want int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if view.Load().Port == want {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}
