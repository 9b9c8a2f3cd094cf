package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeBlocked represents a detected anti-bot block (HTTP 403)
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStorage represents store upsert errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a pipeline-specific error
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewBlocked creates a new detected-block error
func NewBlocked(source, url string) *ScrapeError {
	message := fmt.Sprintf("request to %s rejected with 403, likely anti-bot block", url)
	return New(ErrorTypeBlocked, source, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *ScrapeError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewStorage creates a new storage error
func NewStorage(message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsBlocked reports whether err is a detected anti-bot block
func IsBlocked(err error) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeBlocked
	}
	return false
}
