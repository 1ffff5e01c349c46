package trust

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Keyring is the narrow interface over the system trust store. The
// production implementation shells out to pacman-key; tests substitute
// a fake so no privileged tool runs.
type Keyring interface {
	// Init makes sure the keyring exists.
	Init(ctx context.Context) error

	// Import adds raw key material to the trust store.
	Import(ctx context.Context, raw []byte) error

	// LocallySign marks the key with the given fingerprint as locally
	// trusted.
	LocallySign(ctx context.Context, fingerprint string) error
}

// PacmanKeyring drives the pacman-key binary.
type PacmanKeyring struct {
	// Binary overrides the executable name, mainly for tests.
	Binary string
}

func (k *PacmanKeyring) binary() string {
	if k.Binary != "" {
		return k.Binary
	}
	return "pacman-key"
}

func (k *PacmanKeyring) run(ctx context.Context, stdin []byte, args ...string) error {
	cmd := exec.CommandContext(ctx, k.binary(), args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", k.binary(), args[0], err, bytes.TrimSpace(out))
	}
	logrus.Debugf("%s %v succeeded", k.binary(), args)
	return nil
}

// Init implements Keyring.
func (k *PacmanKeyring) Init(ctx context.Context) error {
	return k.run(ctx, nil, "--init")
}

// Import implements Keyring. The key is fed on stdin.
func (k *PacmanKeyring) Import(ctx context.Context, raw []byte) error {
	return k.run(ctx, raw, "--add", "-")
}

// LocallySign implements Keyring.
func (k *PacmanKeyring) LocallySign(ctx context.Context, fingerprint string) error {
	return k.run(ctx, nil, "--lsign-key", fingerprint)
}
