// Package pacman wraps the external package-manager binary behind a
// narrow interface so the registration flow can be tested without
// invoking the real privileged tool.
package pacman

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner is the subset of pacman operations the registrar needs.
type Runner interface {
	// Sync refreshes the package metadata databases.
	Sync(ctx context.Context) error

	// List returns the package names available from the named
	// repository.
	List(ctx context.Context, repo string) ([]string, error)
}

// CLI runs the real pacman binary.
type CLI struct {
	// Binary overrides the executable name, mainly for tests.
	Binary string
}

func (c *CLI) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "pacman"
}

// Sync implements Runner via `pacman -Sy`.
func (c *CLI) Sync(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.binary(), "-Sy")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s -Sy: %w: %s", c.binary(), err, bytes.TrimSpace(out))
	}
	logrus.Debug("Package metadata synchronized")
	return nil
}

// List implements Runner via `pacman -Sl <repo>`. Output lines look
// like "repo name version [installed]"; only the name column is kept.
func (c *CLI) List(ctx context.Context, repo string) ([]string, error) {
	cmd := exec.CommandContext(ctx, c.binary(), "-Sl", repo)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s -Sl %s: %w", c.binary(), repo, err)
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == repo {
			names = append(names, fields[1])
		}
	}
	return names, nil
}
