// Package apperr classifies failures so the HTTP boundary can pick a status
// and a localized message without inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUpstream
	KindConfirmation
	KindUnauthorized
	KindUnavailable
	KindBusy
	KindMethodNotAllowed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindConfirmation:
		return "confirmation"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnavailable:
		return "unavailable"
	case KindBusy:
		return "busy"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "internal"
	}
}

// Error is a classified failure. MessageID and Data feed the localizer;
// Message is the English fallback.
type Error struct {
	Kind      Kind
	MessageID string
	Message   string
	Data      map[string]interface{}
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, messageID, message string) *Error {
	return &Error{Kind: kind, MessageID: messageID, Message: message}
}

func Wrap(kind Kind, messageID, message string, err error) *Error {
	return &Error{Kind: kind, MessageID: messageID, Message: message, Err: err}
}

// WithData attaches template data for the localized message.
func (e *Error) WithData(data map[string]interface{}) *Error {
	e.Data = data
	return e
}

func Validation(messageID, message string) *Error {
	return New(KindValidation, messageID, message)
}

func NotFound(messageID, message string) *Error {
	return New(KindNotFound, messageID, message)
}

func Upstream(messageID, message string, err error) *Error {
	return Wrap(KindUpstream, messageID, message, err)
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
