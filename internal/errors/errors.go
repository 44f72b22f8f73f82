package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a lexicon error code.
type ErrorCode string

const (
	ErrStructural      ErrorCode = "STRUCTURAL_ERROR" // 422
	ErrGrammar         ErrorCode = "GRAMMAR_ERROR"    // 422
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrArtifactInvalid ErrorCode = "ARTIFACT_INVALID" // 422
	ErrNotIndexed      ErrorCode = "NOT_INDEXED"      // 409
	ErrCancelled       ErrorCode = "CANCELLED"        // 499
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// LexError represents a structured error with code, status, and details.
type LexError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewStructural creates an error for input that ended where a delimiter,
// header or terminator was still required. line is the 1-based line count
// consumed when the input ran out.
func NewStructural(msg string, line int) *LexError {
	return &LexError{
		Code:    ErrStructural,
		Status:  422,
		Message: fmt.Sprintf("parse error: %s (line %d)", msg, line),
		Details: map[string]any{"line": line},
	}
}

// NewGrammar creates an error for a header line that does not match the header grammar.
func NewGrammar(msg string, line int, text string) *LexError {
	return &LexError{
		Code:    ErrGrammar,
		Status:  422,
		Message: fmt.Sprintf("parse error: %s (line %d)", msg, line),
		Details: map[string]any{"line": line, "text": text},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LexError {
	return &LexError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a term cannot be found.
func NewNotFound(name string) *LexError {
	return &LexError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("term not found: %s", name),
		Details: map[string]any{"name": name},
	}
}

// NewArtifactInvalid creates a 422 error for an artifact that cannot be decoded.
func NewArtifactInvalid(reason string) *LexError {
	return &LexError{
		Code:    ErrArtifactInvalid,
		Status:  422,
		Message: fmt.Sprintf("invalid lexicon artifact: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewNotIndexed creates a 409 error for queries against an empty index.
func NewNotIndexed() *LexError {
	return &LexError{
		Code:    ErrNotIndexed,
		Status:  409,
		Message: "lexicon has not been indexed; run 'lexicon index' first",
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(op string) *LexError {
	return &LexError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *LexError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LexError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err (or anything it wraps) is a LexError with the given code.
func Is(err error, code ErrorCode) bool {
	var lErr *LexError
	if stderrors.As(err, &lErr) {
		return lErr.Code == code
	}
	return false
}

// As unwraps err into a *LexError, converting anything else into an internal error.
func As(err error) *LexError {
	var lErr *LexError
	if stderrors.As(err, &lErr) {
		return lErr
	}
	return NewInternal(err)
}
