package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConfig       = "CONFIG_ERROR"
	ErrCodeCorpusFormat = "CORPUS_FORMAT_ERROR"
	ErrCodeProvider     = "PROVIDER_ERROR"
	ErrCodeIndexBuild   = "INDEX_BUILD_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuery   = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrEmptyContent = NewDomainError(ErrCodeValidation, "content cannot be empty")
)

// Configuration errors
var (
	ErrNoVectorFiles = NewDomainError(ErrCodeConfig, "no vector files configured")
	ErrNoCredential  = NewDomainError(ErrCodeConfig, "no embedding credential configured")
)

// Not found errors
var (
	ErrKnowledgeNotFound = NewDomainError(ErrCodeNotFound, "knowledge item not found")
)

// NewCorpusFormatError reports a malformed corpus file, naming the path.
func NewCorpusFormatError(path string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeCorpusFormat, fmt.Sprintf("invalid corpus file %q", path), err)
}

// NewProviderError reports an embedding provider failure.
func NewProviderError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeProvider, message, err)
}

// NewIndexBuildError reports a failed similarity index construction.
func NewIndexBuildError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIndexBuild, "failed to build similarity index", err)
}

// ErrorCode extracts the domain error code from err, or ErrCodeInternal for
// errors outside the taxonomy.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr.Code
	}
	return ErrCodeInternal
}
