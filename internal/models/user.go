package models

import "time"

type User struct {
	ID                  int       `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"` // не отдаём наружу
	IsVerified          bool      `json:"is_verified"`
	IsAcceptingMessages bool      `json:"is_accepting_messages"`
	CreatedAt           time.Time `json:"created_at"`

	// OneTimeCodes holds at most one active code per purpose.
	OneTimeCodes map[Purpose]OneTimeCode `json:"-"`

	// slots set or cleared since the account was loaded
	changedCodes map[Purpose]struct{}
}

// Code returns the active code for purpose, if any.
func (u *User) Code(purpose Purpose) (OneTimeCode, bool) {
	c, ok := u.OneTimeCodes[purpose]
	return c, ok
}

func (u *User) SetCode(purpose Purpose, code OneTimeCode) {
	if u.OneTimeCodes == nil {
		u.OneTimeCodes = make(map[Purpose]OneTimeCode, len(Purposes))
	}
	u.OneTimeCodes[purpose] = code
	u.markChanged(purpose)
}

func (u *User) ClearCode(purpose Purpose) {
	delete(u.OneTimeCodes, purpose)
	u.markChanged(purpose)
}

func (u *User) markChanged(purpose Purpose) {
	if u.changedCodes == nil {
		u.changedCodes = make(map[Purpose]struct{}, len(Purposes))
	}
	u.changedCodes[purpose] = struct{}{}
}

// ChangedCodes lists, in Purposes order, the slots set or cleared since the
// account was loaded or last saved. Only these slots are written back.
func (u *User) ChangedCodes() []Purpose {
	var out []Purpose
	for _, p := range Purposes {
		if _, ok := u.changedCodes[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// MarkCodesSaved forgets pending slot changes.
func (u *User) MarkCodesSaved() {
	u.changedCodes = nil
}

// Clone returns a deep copy, so callers may mutate it without touching the original.
func (u *User) Clone() *User {
	cp := *u
	if u.OneTimeCodes != nil {
		cp.OneTimeCodes = make(map[Purpose]OneTimeCode, len(u.OneTimeCodes))
		for p, c := range u.OneTimeCodes {
			cp.OneTimeCodes[p] = c
		}
	}
	if u.changedCodes != nil {
		cp.changedCodes = make(map[Purpose]struct{}, len(u.changedCodes))
		for p := range u.changedCodes {
			cp.changedCodes[p] = struct{}{}
		}
	}
	return &cp
}
