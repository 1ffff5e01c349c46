package pacman

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeBinary writes a shell script standing in for pacman.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "pacman")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListParsesNames(t *testing.T) {
	bin := fakeBinary(t, `cat <<EOF
example_repo alpha 1.0.0-1
example_repo beta 2.1-1 [installed]
other zeta 1.0-1
EOF`)

	c := &CLI{Binary: bin}
	names, err := c.List(context.Background(), "example_repo")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "beta"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestListFailure(t *testing.T) {
	bin := fakeBinary(t, "exit 1")

	c := &CLI{Binary: bin}
	if _, err := c.List(context.Background(), "example_repo"); err == nil {
		t.Error("expected an error for a failing listing")
	}
}

func TestSyncFailureIncludesOutput(t *testing.T) {
	bin := fakeBinary(t, `echo "error: failed to synchronize" >&2; exit 1`)

	c := &CLI{Binary: bin}
	err := c.Sync(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); !strings.Contains(got, "failed to synchronize") {
		t.Errorf("error %q does not carry tool output", got)
	}
}

func TestSyncSuccess(t *testing.T) {
	bin := fakeBinary(t, "exit 0")

	c := &CLI{Binary: bin}
	if err := c.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
}
