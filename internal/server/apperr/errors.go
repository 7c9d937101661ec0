// Package apperr defines the typed errors returned by the policy layer.
// Each error carries a Kind that transports map to a status code and a
// stable slug, plus the human readable message surfaced to callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a policy failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindEntityNotFound
	KindDuplicateValue
	KindMembershipRequired
	KindChatOwnerRemoval
	KindInvalidCredentials
	KindAuthenticationRequired
	KindInvalidSession
	KindExpiredSession
	KindAccessDenied
	KindInvalidRequest
)

var slugs = map[Kind]string{
	KindEntityNotFound:         "entity_not_found",
	KindDuplicateValue:         "duplicate_entity_value",
	KindMembershipRequired:     "chat_membership_required",
	KindChatOwnerRemoval:       "chat_owner_removal",
	KindInvalidCredentials:     "invalid_credentials",
	KindAuthenticationRequired: "authentication_required",
	KindInvalidSession:         "invalid_access_token",
	KindExpiredSession:         "expired_access_token",
	KindAccessDenied:           "access_denied",
	KindInvalidRequest:         "invalid_request",
}

// Slug returns the machine readable identifier of the kind.
func (k Kind) Slug() string {
	if s, ok := slugs[k]; ok {
		return s
	}
	return "internal_error"
}

func (k Kind) String() string { return k.Slug() }

// Error is a terminal, non-retryable policy failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ChatOwnerRemoval())
// works regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func EntityNotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    KindEntityNotFound,
		Message: fmt.Sprintf("Unable to find %s with id=%d", entity, id),
	}
}

func DuplicateValue(entity, field, value string) *Error {
	return &Error{
		Kind:    KindDuplicateValue,
		Message: fmt.Sprintf("Duplicate value: %s with %s=%s already exists", entity, field, value),
	}
}

func MembershipRequired(accountID, chatID int64) *Error {
	return &Error{
		Kind:    KindMembershipRequired,
		Message: fmt.Sprintf("Account with id=%d must be a member of chat with id=%d", accountID, chatID),
	}
}

func ChatOwnerRemoval() *Error {
	return &Error{Kind: KindChatOwnerRemoval, Message: "Unable to remove the owner of a chat"}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Authentication failed: invalid username or password"}
}

func AuthenticationRequired() *Error {
	return &Error{Kind: KindAuthenticationRequired, Message: "Not authenticated"}
}

func InvalidSession() *Error {
	return &Error{Kind: KindInvalidSession, Message: "Authentication failed: invalid access token"}
}

func ExpiredSession() *Error {
	return &Error{Kind: KindExpiredSession, Message: "Authentication failed: expired access token"}
}

func AccessDenied(entity string) *Error {
	return &Error{
		Kind:    KindAccessDenied,
		Message: fmt.Sprintf("Cannot create %s on behalf of different account", entity),
	}
}

// InvalidRequest reports a malformed or invalid transport payload.
func InvalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}
