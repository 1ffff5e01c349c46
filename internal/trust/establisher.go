// Package trust establishes signing-key trust for a package
// repository: fetch the key, derive its fingerprint, import it into the
// system trust store and locally sign it. Every step is best-effort by
// default; failures lower the signature guarantee instead of aborting,
// since the operator can safely re-run the whole flow.
package trust

import (
	"context"
	"fmt"

	"github.com/repoadd/repoadd/internal/models"
	"github.com/sirupsen/logrus"
)

// Establisher runs the key trust flow against its collaborators.
type Establisher struct {
	Fetcher Fetcher
	Keyring Keyring

	// Strict turns fetch and fingerprint failures into fatal errors
	// instead of degrading to the no-key sentinel.
	Strict bool
}

// Establish fetches the key at url and installs it into the trust
// store. On any degradable failure it returns the no-key sentinel and a
// nil error; the caller relaxes the signature policy accordingly.
// Import and local-sign failures never abort even in strict mode, since
// the key may already be trusted from a prior run.
func (e *Establisher) Establish(ctx context.Context, url string) (models.TrustKey, error) {
	raw, err := e.Fetcher.Fetch(ctx, url)
	if err != nil {
		return e.degrade("key fetch failed", err)
	}

	fpr, err := Fingerprint(raw)
	if err != nil {
		return e.degrade("key fingerprint could not be determined", err)
	}
	logrus.Infof("Signing key fingerprint: %s", fpr)

	if err := e.Keyring.Init(ctx); err != nil {
		logrus.Warnf("Keyring init failed (may already be initialized): %v", err)
	}
	if err := e.Keyring.Import(ctx, raw); err != nil {
		logrus.Warnf("Key import failed (key may already be present): %v", err)
	}
	if err := e.Keyring.LocallySign(ctx, fpr); err != nil {
		logrus.Warnf("Local signing failed (key may already be signed): %v", err)
	}

	return models.TrustKey{Raw: raw, Fingerprint: fpr}, nil
}

func (e *Establisher) degrade(msg string, err error) (models.TrustKey, error) {
	if e.Strict {
		return models.NoKey, &models.RegistrarError{
			Type: models.ErrPrecondition,
			Err:  fmt.Errorf("%s: %w", msg, err),
		}
	}
	logrus.Warnf("%s, continuing with relaxed signature policy: %v", msg, err)
	return models.NoKey, nil
}
