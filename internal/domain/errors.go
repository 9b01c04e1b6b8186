package domain

import "errors"

// Common domain errors
var (
	// Dataset errors
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetEmpty    = errors.New("dataset contains no examples")

	// Reading errors
	ErrReadingNotFound      = errors.New("reading not found")
	ErrInvalidSpreadType    = errors.New("invalid spread type")
	ErrInvalidOrientation   = errors.New("invalid card orientation")
	ErrCardCountMismatch    = errors.New("card count does not match breakdown count")
	ErrBreakdownCardUnknown = errors.New("breakdown references a card that was not drawn")

	// Feedback errors
	ErrInvalidThumbValue = errors.New("thumb value must be -1 or +1")

	// Prompt version errors
	ErrPromptVersionNotFound = errors.New("prompt version not found")
	ErrInvalidVersionStatus  = errors.New("invalid prompt version status")

	// Evaluation errors
	ErrEvaluationNotFound = errors.New("evaluation run not found")

	// External collaborator errors
	ErrOptimizerFailed    = errors.New("optimizer run failed")
	ErrTrackerUnavailable = errors.New("experiment tracker unavailable")

	// Validation errors
	ErrInvalidID    = errors.New("invalid ID format")
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// DomainError wraps a domain error with additional context
type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(err error, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
	}
}

func NewDomainErrorWithCode(err error, message, code string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}
