package beastwords

import (
	"errors"
	"fmt"
	"strings"

	"github.com/n2code/beastwords/internal/document"
	"github.com/n2code/beastwords/internal/partition"
)

// ConversionError reports which step of a conversion failed and why.
type ConversionError struct {
	message string
	cause   error
}

func (e *ConversionError) Error() string {
	var msg strings.Builder
	fmt.Fprint(&msg, e.message)
	if e.cause != nil {
		fmt.Fprint(&msg, ": ", e.cause)
	}
	return msg.String()
}

func (e *ConversionError) Unwrap() error {
	return e.cause
}

func newConversionError(message string, cause error) *ConversionError {
	return &ConversionError{message: message, cause: cause}
}

var (
	// ErrNotFound is matched by failures of queries that must find exactly one element but found none.
	ErrNotFound = document.ErrNotFound
	// ErrAmbiguous is matched by failures of queries that must find exactly one element but found several.
	ErrAmbiguous            = document.ErrAmbiguous
	ErrInvalidPartitionSpec = partition.ErrInvalidPartitionSpec
	ErrOverlap              = partition.ErrOverlap
	ErrAlreadyConverted     = errors.New("document has been converted already")
)
