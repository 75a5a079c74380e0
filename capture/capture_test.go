package capture

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestCapture_CollectsBothStreams(t *testing.T) {
	origOut, origErr := os.Stdout, os.Stderr

	c, err := Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fmt.Fprint(os.Stdout, "to out")
	fmt.Fprint(os.Stderr, "to err")
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	if c.Stdout() != "to out" {
		t.Errorf("Stdout = %q, want %q", c.Stdout(), "to out")
	}
	if c.Stderr() != "to err" {
		t.Errorf("Stderr = %q, want %q", c.Stderr(), "to err")
	}
	if os.Stdout != origOut || os.Stderr != origErr {
		t.Fatal("streams not restored after Release")
	}
}

func TestCapture_ReleaseIdempotent(t *testing.T) {
	c, err := Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fmt.Fprint(os.Stdout, "once")
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if c.Stdout() != "once" {
		t.Errorf("Stdout = %q, want %q", c.Stdout(), "once")
	}
}

func TestCapture_LargeOutput(t *testing.T) {
	// Much larger than a pipe buffer. The writer would block forever if
	// draining waited until Release.
	big := strings.Repeat("x", 1<<20)

	c, err := Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	fmt.Fprint(os.Stdout, big)
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if c.Stdout() != big {
		t.Errorf("Stdout lost data: got %d bytes, want %d", len(c.Stdout()), len(big))
	}
}

func TestCapture_Sequential(t *testing.T) {
	for i, want := range []string{"first", "second"} {
		c, err := Start()
		if err != nil {
			t.Fatalf("Start #%d: %v", i, err)
		}
		fmt.Fprint(os.Stdout, want)
		if err := c.Release(); err != nil {
			t.Fatalf("Release #%d: %v", i, err)
		}
		if c.Stdout() != want {
			t.Errorf("capture #%d Stdout = %q, want %q", i, c.Stdout(), want)
		}
	}
}
