package errors

import (
	"errors"
	"fmt"
)

// Error codes for validation and processing findings
const (
	// General errors
	ErrCodeInternalError  = "INTERNAL_ERROR"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"

	// Row-level validation errors (blocking)
	ErrCodeMissingCompany  = "MISSING_COMPANY"
	ErrCodeMissingPosition = "MISSING_POSITION"

	// Row-level validation warnings (non-blocking)
	WarnCodeInvalidDate     = "INVALID_DATE"
	WarnCodeInvalidStatus   = "INVALID_STATUS"
	WarnCodeInvalidType     = "INVALID_TYPE"
	WarnCodeInvalidPriority = "INVALID_PRIORITY"
	WarnCodeInvalidEmail    = "INVALID_EMAIL"

	// File errors
	ErrCodeFileParseError = "FILE_PARSE_ERROR"
	ErrCodeFileTooLarge   = "FILE_TOO_LARGE"

	// Job errors
	ErrCodeJobNotFound = "JOB_NOT_FOUND"
)

// Sentinel errors for the fatal pipeline failure modes. Fatal errors abort
// the whole operation and leave no partial output.
var (
	// ErrCancelled is returned when processing was cancelled at a batch
	// boundary. No partial result accompanies it.
	ErrCancelled = errors.New("processing cancelled")

	// ErrIdentifierCollision is returned when identifier generation could not
	// produce a unique id within bounded retries.
	ErrIdentifierCollision = errors.New("identifier generation exhausted retries")

	// ErrNoValidRows is returned when an import was requested but every row
	// carried a blocking error.
	ErrNoValidRows = errors.New("no valid rows to import")

	// ErrRowsBlocked is returned when blocking validation errors exist and the
	// caller did not request valid-only import.
	ErrRowsBlocked = errors.New("rows with blocking errors present; fix them or import valid rows only")

	// ErrResolutionRequired is returned when duplicate groups exist without a
	// resolution decision for each.
	ErrResolutionRequired = errors.New("duplicate groups require a resolution decision")
)

// ParseError is a fatal, structural CSV failure. Row-level problems are never
// ParseErrors; they are collected as ValidationErrors instead.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed CSV at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed CSV: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps a structural CSV error.
func NewParseError(line int, err error) *ParseError {
	return &ParseError{Line: line, Err: err}
}

// TemplateNotFoundError is returned only when a caller explicitly requests an
// unknown template id.
type TemplateNotFoundError struct {
	ID string
}

func (e *TemplateNotFoundError) Error() string {
	return "Template not found: " + e.ID
}

// Severity distinguishes blocking errors from informational warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a row-scoped blocking finding. It is collected and
// returned as data, never thrown; it blocks only the offending row.
type ValidationError struct {
	RowIndex int      `json:"row_index"`
	Field    string   `json:"field"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: [%s] %s", e.RowIndex, e.Code, e.Message)
}

// ValidationWarning is a row-scoped non-blocking finding: the row still
// imports with defaults substituted for the malformed field.
type ValidationWarning struct {
	RowIndex int      `json:"row_index"`
	Field    string   `json:"field"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// NewValidationError creates a blocking row-level error.
func NewValidationError(rowIndex int, field, code, message string) *ValidationError {
	return &ValidationError{
		RowIndex: rowIndex,
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: SeverityError,
	}
}

// NewValidationWarning creates a non-blocking row-level warning.
func NewValidationWarning(rowIndex int, field, code, message string) *ValidationWarning {
	return &ValidationWarning{
		RowIndex: rowIndex,
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: SeverityWarning,
	}
}

// AppError represents a call-scoped application error surfaced over HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewAppError creates a new application error.
func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// Error factory functions
func ErrInternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message, 500)
}

func ErrInvalidRequest(message string) *AppError {
	return NewAppError(ErrCodeInvalidRequest, message, 400)
}

func ErrNotFound(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), 404)
}
