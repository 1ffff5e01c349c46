package cli

import (
	"context"
	"strings"

	"github.com/repoadd/repoadd/internal/conf"
	"github.com/repoadd/repoadd/internal/models"
	"github.com/repoadd/repoadd/internal/pacman"
	"github.com/repoadd/repoadd/internal/sysinfo"
	"github.com/repoadd/repoadd/internal/trust"
	"github.com/repoadd/repoadd/internal/verify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// DefaultConfPath is the system pacman configuration file.
const DefaultConfPath = "/etc/pacman.conf"

// registerOptions is the fully resolved input to the registration flow.
type registerOptions struct {
	desc        models.RepositoryDescriptor
	keyURL      string
	confPath    string
	anchor      string
	arch        string
	strictTrust bool
	skipVerify  bool
}

// collaborators are the external tools behind narrow interfaces, so the
// flow runs against fakes in tests.
type collaborators struct {
	fetcher trust.Fetcher
	keyring trust.Keyring
	runner  pacman.Runner
	probe   *verify.Probe
}

// outcome is what a completed run reports in the final summary.
type outcome struct {
	fresh    bool
	key      models.TrustKey
	level    models.SigLevel
	backup   string
	packages int
	verified bool
}

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var (
		configPath string
		sigLevel   string
		opts       registerOptions
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a repository with pacman",
		Long: `Adds a repository stanza to pacman.conf, establishes trust in the
repository signing key and refreshes the package databases.

Requires root. The configuration file is backed up before any change
and rewritten atomically; re-running the command is always safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := loadConfigFile(configPath)
				if err != nil {
					return err
				}
				applyConfigFile(cmd, cfg, &opts, &sigLevel)
			}

			level, err := models.ParseSigLevel(sigLevel)
			if err != nil {
				return &models.RegistrarError{Type: models.ErrInvalidConfig, Err: err}
			}
			opts.desc.SigLevel = level

			if err := opts.desc.Validate(); err != nil {
				return err
			}
			if opts.keyURL == "" {
				opts.keyURL = strings.TrimRight(opts.desc.URL, "/") + "/" + opts.desc.Name + ".gpg"
			}

			// Fatal preconditions
			if err := sysinfo.RequireRoot(); err != nil {
				return err
			}
			arch, err := sysinfo.RequireArch()
			if err != nil {
				return err
			}
			opts.arch = arch
			if err := sysinfo.RequireTools("pacman", "pacman-key"); err != nil {
				return err
			}

			deps := collaborators{
				fetcher: &trust.HTTPFetcher{},
				keyring: &trust.PacmanKeyring{},
				runner:  &pacman.CLI{},
				probe:   &verify.Probe{},
			}

			out, err := runRegister(cmd.Context(), opts, deps)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), opts, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.desc.Name, "name", "n", "", "Repository name (config section token)")
	cmd.Flags().StringVarP(&opts.desc.URL, "url", "u", "", "Repository URL template (must contain $arch)")
	cmd.Flags().StringVarP(&opts.keyURL, "key-url", "k", "", "Signing key URL (defaults to <url>/<name>.gpg)")
	cmd.Flags().StringVar(&sigLevel, "sig-level", "required", "Signature policy: optional, trustall or required")
	cmd.Flags().StringVar(&opts.confPath, "conf", DefaultConfPath, "Path to pacman configuration file")
	cmd.Flags().StringVar(&opts.anchor, "anchor", conf.DefaultAnchor, "Section to insert the new repository before")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file with repository settings")
	cmd.Flags().BoolVar(&opts.strictTrust, "strict-trust", false, "Treat key fetch/parse failures as fatal")
	cmd.Flags().BoolVar(&opts.skipVerify, "skip-verify", false, "Skip the repository reachability check")

	return cmd
}

// applyConfigFile fills in options from the YAML file for every flag
// the user did not set explicitly.
func applyConfigFile(cmd *cobra.Command, cfg *fileConfig, opts *registerOptions, sigLevel *string) {
	if !cmd.Flags().Changed("name") && cfg.Name != "" {
		opts.desc.Name = cfg.Name
	}
	if !cmd.Flags().Changed("url") && cfg.URL != "" {
		opts.desc.URL = cfg.URL
	}
	if !cmd.Flags().Changed("key-url") && cfg.KeyURL != "" {
		opts.keyURL = cfg.KeyURL
	}
	if !cmd.Flags().Changed("sig-level") && cfg.SigLevel != "" {
		*sigLevel = cfg.SigLevel
	}
	if !cmd.Flags().Changed("conf") && cfg.ConfPath != "" {
		opts.confPath = cfg.ConfPath
	}
	if !cmd.Flags().Changed("anchor") && cfg.Anchor != "" {
		opts.anchor = cfg.Anchor
	}
}

// runRegister drives the registration state machine:
//
//	CheckPresence -> already present: trust refresh + sync
//	             -> absent: establish trust -> patch -> sync -> verify
//
// Presence is threaded through as an explicit value; a re-run always
// reaches the same terminal state.
func runRegister(ctx context.Context, opts registerOptions, deps collaborators) (*outcome, error) {
	f, err := conf.Load(opts.confPath)
	if err != nil {
		return nil, err
	}
	present := f.HasSection(opts.desc.Name)
	if present {
		logrus.Infof("Repository [%s] already configured in %s", opts.desc.Name, opts.confPath)
	}

	est := &trust.Establisher{
		Fetcher: deps.fetcher,
		Keyring: deps.keyring,
		Strict:  opts.strictTrust,
	}
	keyURL := strings.ReplaceAll(opts.keyURL, "$arch", opts.arch)
	logrus.Infof("Establishing trust for signing key: %s", keyURL)
	key, err := est.Establish(ctx, keyURL)
	if err != nil {
		return nil, err
	}

	out := &outcome{fresh: !present, key: key, level: opts.desc.SigLevel}

	if !present {
		level := opts.desc.SigLevel
		if !key.HasKey() && level != level.Relaxed() {
			level = level.Relaxed()
			logrus.Warnf("No signing key trusted, relaxing signature policy to %q", level)
		}
		out.level = level

		patcher := &conf.Patcher{Anchor: opts.anchor}
		res, err := patcher.Apply(opts.confPath, conf.NewStanza(opts.desc, level))
		if err != nil {
			return nil, err
		}
		out.backup = res.BackupPath
		if res.Applied {
			logrus.Infof("Repository [%s] added to %s", opts.desc.Name, opts.confPath)
		} else {
			// Lost a race with a concurrent run; same terminal state.
			logrus.Infof("Repository [%s] already configured in %s", opts.desc.Name, opts.confPath)
			out.fresh = false
		}
	}

	logrus.Info("Refreshing package databases")
	if err := deps.runner.Sync(ctx); err != nil {
		logrus.Warnf("Metadata sync failed (re-run `pacman -Sy` later): %v", err)
	}

	if out.fresh && !opts.skipVerify {
		out.packages, out.verified = verifyReachable(ctx, opts, deps)
	}
	return out, nil
}

// verifyReachable asks pacman for the repository's package list and
// falls back to probing the repository database directly. Both checks
// are advisory.
func verifyReachable(ctx context.Context, opts registerOptions, deps collaborators) (int, bool) {
	if names, err := deps.runner.List(ctx, opts.desc.Name); err == nil && len(names) > 0 {
		return len(names), true
	}

	n, err := deps.probe.Check(ctx, opts.desc, opts.arch)
	if err != nil {
		logrus.Warnf("Repository added, but could not verify reachability: %v", err)
		return 0, false
	}
	if n == 0 {
		logrus.Warn("Repository added, but its database lists no packages yet")
	}
	return n, true
}
