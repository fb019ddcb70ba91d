package domain

import "errors"

// ErrorKind classifies pipeline failures. Boundary layers map kinds onto
// user-facing status codes; the pipeline never collapses one kind into another.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindDataFetch  ErrorKind = "data_fetch"
	KindAnalysis   ErrorKind = "analysis"
	KindInternal   ErrorKind = "internal"
)

// ValidationError reports malformed or out-of-policy user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for the given input field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DataFetchError reports that the price source produced nothing usable, or
// that a structurally required column is absent.
type DataFetchError struct {
	Message string
	Err     error
}

func (e *DataFetchError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// NewDataFetchError creates a DataFetchError with an optional cause.
func NewDataFetchError(message string, cause error) *DataFetchError {
	return &DataFetchError{Message: message, Err: cause}
}

// AnalysisError reports data a numerical step structurally cannot process.
type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// NewAnalysisError creates an AnalysisError with an optional cause.
func NewAnalysisError(message string, cause error) *AnalysisError {
	return &AnalysisError{Message: message, Err: cause}
}

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	var (
		validationErr *ValidationError
		fetchErr      *DataFetchError
		analysisErr   *AnalysisError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &fetchErr):
		return KindDataFetch
	case errors.As(err, &analysisErr):
		return KindAnalysis
	default:
		return KindInternal
	}
}

// UserMessage extracts the human-readable message of a classified error,
// without any wrapping context added on the way up.
func UserMessage(err error) string {
	var (
		validationErr *ValidationError
		fetchErr      *DataFetchError
		analysisErr   *AnalysisError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &fetchErr):
		return fetchErr.Message
	case errors.As(err, &analysisErr):
		return analysisErr.Message
	default:
		return "Internal server error"
	}
}
