package services

import "errors"

// Reason is the machine-readable code of a domain failure.
type Reason string

const (
	ReasonCodeNotFound         Reason = "not_found"
	ReasonCodeExpired          Reason = "expired"
	ReasonCodeMismatch         Reason = "mismatch"
	ReasonAlreadyVerified      Reason = "already_verified"
	ReasonAccountNotEligible   Reason = "account_not_eligible"
	ReasonPasswordMismatch     Reason = "password_mismatch"
	ReasonSamePassword         Reason = "same_password"
	ReasonNotAcceptingMessages Reason = "not_accepting_messages"
	ReasonUserNotFound         Reason = "user_not_found"
	ReasonMessageNotFound      Reason = "message_not_found"
	ReasonUsernameTaken        Reason = "username_taken"
	ReasonEmailTaken           Reason = "email_taken"
	ReasonInvalidCredentials   Reason = "invalid_credentials"
	ReasonAccountNotVerified   Reason = "account_not_verified"
	ReasonNotificationFailed   Reason = "notification_failed"
)

// DomainError is an expected business-rule failure. It is reported to the
// caller with its Reason; anything that is not a DomainError is treated as an
// infrastructure failure.
type DomainError struct {
	Reason  Reason
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func newDomainError(reason Reason, msg string) *DomainError {
	return &DomainError{Reason: reason, Message: msg}
}

var (
	ErrCodeNotFound = newDomainError(ReasonCodeNotFound, "no active code, request a new one")
	ErrCodeExpired  = newDomainError(ReasonCodeExpired, "code has expired")
	ErrCodeMismatch = newDomainError(ReasonCodeMismatch, "invalid code")

	ErrAlreadyVerified    = newDomainError(ReasonAlreadyVerified, "account is already verified")
	ErrAccountNotEligible = newDomainError(ReasonAccountNotEligible, "account must be verified before resetting the password")
	ErrPasswordMismatch   = newDomainError(ReasonPasswordMismatch, "passwords do not match")
	ErrSamePassword       = newDomainError(ReasonSamePassword, "new password cannot be the same as the old password")

	ErrNotAcceptingMessages = newDomainError(ReasonNotAcceptingMessages, "user is not accepting messages")
	ErrUserNotFound         = newDomainError(ReasonUserNotFound, "user not found")
	ErrMessageNotFound      = newDomainError(ReasonMessageNotFound, "message not found")

	ErrUsernameTaken      = newDomainError(ReasonUsernameTaken, "username is already taken")
	ErrEmailTaken         = newDomainError(ReasonEmailTaken, "an account with this email already exists")
	ErrInvalidCredentials = newDomainError(ReasonInvalidCredentials, "invalid identifier or password")
	ErrAccountNotVerified = newDomainError(ReasonAccountNotVerified, "verify your account before signing in")
	ErrNotificationFailed = newDomainError(ReasonNotificationFailed, "failed to send the code, try again later")
)

// ErrInvalidPurpose is a programming error, not a domain failure.
var ErrInvalidPurpose = errors.New("invalid one-time code purpose")
