package models

import "time"

// Purpose selects one of the independent code slots of an account.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeReset  Purpose = "reset"
)

// Purposes lists every slot in a stable order.
var Purposes = []Purpose{PurposeSignup, PurposeReset}

func (p Purpose) Valid() bool {
	switch p {
	case PurposeSignup, PurposeReset:
		return true
	}
	return false
}

// OneTimeCode is an issued code. Code and ExpiresAt are always set together.
type OneTimeCode struct {
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
