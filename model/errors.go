package model

import (
	"errors"
	"fmt"

	"github.com/iancoleman/strcase"
)

// Kind classifies business-rule failures. Store and transport failures are
// not Kinds; they propagate as plain wrapped errors.
type Kind string

const (
	// KindNotFound is an absent entity on a lookup by id.
	KindNotFound Kind = "NotFound"
	// KindPreconditionFailed is a duplicate email or a missing related entity.
	KindPreconditionFailed Kind = "PreconditionFailed"
	// KindDanglingReference is a single reference whose target is gone.
	KindDanglingReference Kind = "DanglingReference"
	// KindInvalidID is an identifier that is not a 24 char hex ObjectID.
	KindInvalidID Kind = "InvalidID"
)

// Error is the recoverable, per-request error type. It satisfies the GraphQL
// engine's extended error interface so clients see extensions.code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions returns the GraphQL error extensions, e.g. {"code": "NOT_FOUND"}.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": strcase.ToScreamingSnake(string(e.Kind)),
	}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// PreconditionFailed builds a KindPreconditionFailed error.
func PreconditionFailed(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPreconditionFailed, Message: fmt.Sprintf(format, args...)}
}

// DanglingReference reports that the entity of kind target with the given id
// could not be resolved.
func DanglingReference(target, id string) *Error {
	return &Error{Kind: KindDanglingReference, Message: fmt.Sprintf("%s with ID %s not found", target, id)}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
