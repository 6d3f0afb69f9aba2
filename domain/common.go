package domain

import (
	"errors"
	"fmt"
)

const (
	RoleUser = "user"

	PartyRequester = "requester"
	PartyOwner     = "owner"
)

var (
	MessageFailedBodyRequest  = "failed to parse request body"
	MessageFailedGetToken     = "failed to get token"
	MessageFailedTokenInvalid = "failed to token invalid"

	ErrTokenNotFound = errors.New("failed to token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
)

// Error kinds. Every error returned by the tracking services wraps exactly one of these.
var (
	ErrValidation         = errors.New("validation error")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrTransientIO        = errors.New("transient io error")
	ErrNotFound           = errors.New("not found")
)

// FieldError attributes a rejected write to the actor and field involved.
type FieldError struct {
	Kind   error
	Actor  string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Actor == "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: actor %s on %s: %s", e.Kind, e.Actor, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func NewFieldError(kind error, actor, field, reason string) *FieldError {
	return &FieldError{Kind: kind, Actor: actor, Field: field, Reason: reason}
}

// kindError ties a feature sentinel to its taxonomy kind so errors.Is matches both.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

// Transient wraps an infrastructure failure as ErrTransientIO.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransientIO, err)
}
