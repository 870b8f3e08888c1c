package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCode is returned when a worksheet code fails a range or lookup check.
	ErrInvalidCode = errors.New("invalid worksheet code")
	// ErrWorksheetNotFound indicates no worksheet is loaded under a code.
	ErrWorksheetNotFound = errors.New("worksheet not found")
	// ErrInsufficientFunds is returned when a bet, hint or skip costs more than the balance.
	ErrInsufficientFunds = errors.New("insufficient coins")
	// ErrInvalidTransition is returned when an intent is not allowed in the current state.
	ErrInvalidTransition = errors.New("action not allowed now")
	// ErrInvalidBet indicates a non-positive bet.
	ErrInvalidBet = errors.New("bet must be positive")
	// ErrInvalidOption indicates an answer index outside the option range.
	ErrInvalidOption = errors.New("option not found")
	// ErrHintUsed is returned when the current question already consumed its hint.
	ErrHintUsed = errors.New("hint already used for this question")
	// ErrBlobNotFound is returned by blob stores when nothing has been saved yet.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrStorageCorrupt marks a stored blob that could not be decoded.
	ErrStorageCorrupt = errors.New("stored worksheets are corrupt")

	ErrParse      = errors.New("malformed document")
	ErrValidation = errors.New("invalid worksheet")
)

// ParseError reports a document whose text is not valid JSON.
type ParseError struct {
	Document string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Document, ErrParse, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ValidationError reports the first schema violation of a well-formed document.
// Question is the 1-based position of the offending question, 0 for top-level fields.
type ValidationError struct {
	Document   string
	Field      string
	Question   int
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	where := e.Field
	if e.Question > 0 {
		where = fmt.Sprintf("question %d", e.Question)
		if e.QuestionID != "" {
			where += fmt.Sprintf(" (id %s)", e.QuestionID)
		}
		where += ": " + e.Field
	}
	if e.Document != "" {
		return fmt.Sprintf("%s: %v: %s %s", e.Document, ErrValidation, where, e.Reason)
	}
	return fmt.Sprintf("%v: %s %s", ErrValidation, where, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
