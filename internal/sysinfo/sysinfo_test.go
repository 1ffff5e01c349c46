package sysinfo

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/repoadd/repoadd/internal/models"
)

func TestRequireTools(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test expects POSIX tools")
	}
	if err := RequireTools("sh"); err != nil {
		t.Errorf("sh should be on PATH: %v", err)
	}

	err := RequireTools("sh", "definitely-not-a-real-tool-xyz")
	if err == nil {
		t.Fatal("expected an error for a missing tool")
	}
	var rerr *models.RegistrarError
	if !errors.As(err, &rerr) || rerr.Type != models.ErrToolMissing {
		t.Errorf("expected ToolMissing, got %v", err)
	}
}

func TestArchMapping(t *testing.T) {
	switch runtime.GOARCH {
	case "amd64":
		if Arch() != "x86_64" {
			t.Errorf("Arch() = %q, want x86_64", Arch())
		}
	case "arm64":
		if Arch() != "aarch64" {
			t.Errorf("Arch() = %q, want aarch64", Arch())
		}
	default:
		if Arch() != "" {
			t.Errorf("Arch() = %q, want empty on unsupported platform", Arch())
		}
	}
}

func TestRequireArchDiagnostic(t *testing.T) {
	arch, err := RequireArch()
	if err != nil {
		// The diagnostic must name the detected platform.
		if !strings.Contains(err.Error(), runtime.GOARCH) {
			t.Errorf("diagnostic %q does not name the architecture", err)
		}
		return
	}
	if arch == "" {
		t.Error("RequireArch returned no architecture without an error")
	}
}
