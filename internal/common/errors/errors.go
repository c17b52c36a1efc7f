// Package errors provides standardized error handling for the assistant pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEmptyQuestion    ErrorCode = "EMPTY_QUESTION"
	ErrCodeTableUnresolved  ErrorCode = "TABLE_UNRESOLVED"
	ErrCodeTableBlacklisted ErrorCode = "TABLE_BLACKLISTED"
	ErrCodeTableNotFound    ErrorCode = "TABLE_NOT_FOUND"

	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout         ErrorCode = "QUERY_TIMEOUT"

	ErrCodeEmbeddingFailed    ErrorCode = "EMBEDDING_FAILED"
	ErrCodeVectorSearchFailed ErrorCode = "VECTOR_SEARCH_FAILED"

	ErrCodeLLMCompletionFailed ErrorCode = "LLM_COMPLETION_FAILED"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or empty when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func NewEmptyQuestionError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuestion,
		Message:   "question must not be empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTableUnresolvedError(question string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTableUnresolved,
		Message:   "could not resolve a target table for the question",
		Details:   question,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTableBlacklistedError(table string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTableBlacklisted,
		Message:   "table is not accessible through the assistant",
		Details:   table,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTableNotFoundError(table string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTableNotFound,
		Message:   "table does not exist in the data store",
		Details:   table,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewQueryExecutionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "structured query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmbeddingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmbeddingFailed,
		Message:   "embedding generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewVectorSearchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVectorSearchFailed,
		Message:   "vector similarity search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMCompletionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCompletionFailed,
		Message:   "LLM completion failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
