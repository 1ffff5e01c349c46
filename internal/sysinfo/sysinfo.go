// Package sysinfo checks the preconditions for touching the system
// package configuration: elevated privilege, a supported CPU
// architecture, and the presence of the external pacman tooling.
package sysinfo

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/repoadd/repoadd/internal/models"
)

// archNames maps GOARCH values to the architecture names pacman uses.
var archNames = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
}

// Arch returns the pacman architecture name for the current platform,
// or an empty string when the platform is unsupported.
func Arch() string {
	return archNames[runtime.GOARCH]
}

// RequireRoot fails unless the process runs with effective uid 0.
func RequireRoot() error {
	if os.Geteuid() != 0 {
		return &models.RegistrarError{
			Type: models.ErrPrecondition,
			Err:  fmt.Errorf("this command must be run as root"),
		}
	}
	return nil
}

// RequireArch fails on platforms pacman does not run on, naming the
// detected architecture in the diagnostic.
func RequireArch() (string, error) {
	arch := Arch()
	if arch == "" || runtime.GOOS != "linux" {
		return "", &models.RegistrarError{
			Type: models.ErrPrecondition,
			Err:  fmt.Errorf("unsupported platform %s/%s", runtime.GOOS, runtime.GOARCH),
		}
	}
	return arch, nil
}

// RequireTools fails when any of the named executables cannot be found
// on PATH.
func RequireTools(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return &models.RegistrarError{
				Type: models.ErrToolMissing,
				Path: name,
				Err:  fmt.Errorf("required tool not found: %w", err),
			}
		}
	}
	return nil
}
