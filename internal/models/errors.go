package models

import "fmt"

// ErrorType represents different categories of fatal errors
type ErrorType int

const (
	ErrPrecondition ErrorType = iota
	ErrConfigNotFound
	ErrBackupFailed
	ErrPatch
	ErrInvalidConfig
	ErrToolMissing
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrPrecondition:
		return "Precondition"
	case ErrConfigNotFound:
		return "ConfigNotFound"
	case ErrBackupFailed:
		return "BackupFailed"
	case ErrPatch:
		return "Patch"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrToolMissing:
		return "ToolMissing"
	default:
		return "Unknown"
	}
}

// RegistrarError represents a fatal error during repository registration.
// Best-effort steps (key fetch, metadata sync, reachability verification)
// never produce one; they log a warning and continue with degraded
// guarantees instead.
type RegistrarError struct {
	Type ErrorType
	Path string
	Err  error
}

// Error implements the error interface
func (e *RegistrarError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *RegistrarError) Unwrap() error {
	return e.Err
}
