package domain

import "fmt"

// Sentinel errors for the domain layer.
var (
	ErrAssistantNotFound  = fmt.Errorf("assistant not found")
	ErrDuplicateAssistant = fmt.Errorf("duplicate assistant name")
	ErrConnectionFailed   = fmt.Errorf("tool provider connection failed")
	ErrEngineFailure      = fmt.Errorf("run engine failure")
	ErrMaxTurns           = fmt.Errorf("run reached max turns")
	ErrContractViolation  = fmt.Errorf("output contract violation")
	ErrContractUnknown    = fmt.Errorf("unknown output contract")
	ErrConfigLoad         = fmt.Errorf("failed to load configuration")
	ErrAuthInvalid        = fmt.Errorf("authentication failed")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrRateLimit          = fmt.Errorf("rate limit exceeded")
)

// DomainError wraps a sentinel error with operation context.
type DomainError struct {
	Op     string // operation name (e.g., "Orchestrator.Invoke")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
