package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SigLevel is the signature verification policy written into the
// repository stanza.
type SigLevel int

const (
	SigLevelOptional SigLevel = iota
	SigLevelTrustAll
	SigLevelRequired
)

// String returns the pacman.conf directive value for the policy.
func (s SigLevel) String() string {
	switch s {
	case SigLevelTrustAll:
		return "Optional TrustAll"
	case SigLevelRequired:
		return "Required DatabaseOptional"
	default:
		return "Optional"
	}
}

// ParseSigLevel maps a flag/config value to a SigLevel.
func ParseSigLevel(s string) (SigLevel, error) {
	switch strings.ToLower(s) {
	case "optional", "":
		return SigLevelOptional, nil
	case "trustall":
		return SigLevelTrustAll, nil
	case "required":
		return SigLevelRequired, nil
	default:
		return SigLevelOptional, fmt.Errorf("unknown signature level %q", s)
	}
}

// Relaxed returns the policy to fall back to when no signing key could
// be trusted. Required cannot be satisfied without a key.
func (s SigLevel) Relaxed() SigLevel {
	if s == SigLevelRequired {
		return SigLevelOptional
	}
	return s
}

var sectionNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// RepositoryDescriptor describes the repository to register. Immutable
// once validated; built from flags or a config file.
type RepositoryDescriptor struct {
	Name     string `yaml:"name" validate:"required,sectiontoken"`
	URL      string `yaml:"url" validate:"required,archtemplate"`
	SigLevel SigLevel
}

// ServerURL expands the $arch placeholder for a concrete architecture.
func (d RepositoryDescriptor) ServerURL(arch string) string {
	return strings.ReplaceAll(d.URL, "$arch", arch)
}

func newDescriptorValidator() *validator.Validate {
	v := validator.New()
	// Registrations only fail for empty tags or nil funcs.
	_ = v.RegisterValidation("sectiontoken", func(fl validator.FieldLevel) bool {
		return sectionNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("archtemplate", func(fl validator.FieldLevel) bool {
		return strings.Contains(fl.Field().String(), "$arch")
	})
	return v
}

var descriptorValidator = newDescriptorValidator()

// Validate checks the descriptor invariants: the name must be a valid
// config section token and the URL must carry the $arch placeholder.
func (d RepositoryDescriptor) Validate() error {
	if err := descriptorValidator.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		msg := err.Error()
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Tag() {
			case "sectiontoken":
				msg = fmt.Sprintf("repository name %q is not a valid config section token", d.Name)
			case "archtemplate":
				msg = fmt.Sprintf("repository URL %q does not contain the $arch placeholder", d.URL)
			case "required":
				msg = fmt.Sprintf("%s is required", strings.ToLower(verrs[0].Field()))
			}
		}
		return &RegistrarError{
			Type: ErrInvalidConfig,
			Err:  fmt.Errorf("%s", msg),
		}
	}
	return nil
}
