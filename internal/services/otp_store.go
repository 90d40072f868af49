package services

import (
	"crypto/subtle"
	"time"

	"whisperbox/internal/models"
	"whisperbox/internal/utils"
)

const (
	DefaultCodeTTL = 30 * time.Minute
	codeLength     = 6
)

// OTPStore manages the per-purpose one-time code slots of an account. It only
// mutates the in-memory aggregate; callers persist the result with
// UserRepository.Save so the slot change commits together with the account.
type OTPStore struct {
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewOTPStore(ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &OTPStore{
		ttl: ttl,
		now: time.Now,
		generate: func() (string, error) {
			return utils.NewNumericCode(codeLength)
		},
	}
}

// Issue generates a fresh code for purpose, replacing whatever the slot held.
func (s *OTPStore) Issue(user *models.User, purpose models.Purpose) (models.OneTimeCode, error) {
	if !purpose.Valid() {
		return models.OneTimeCode{}, ErrInvalidPurpose
	}
	code, err := s.generate()
	if err != nil {
		return models.OneTimeCode{}, err
	}
	otp := models.OneTimeCode{
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	user.SetCode(purpose, otp)
	return otp, nil
}

// Validate checks supplied against the slot. It never mutates the account.
func (s *OTPStore) Validate(user *models.User, purpose models.Purpose, supplied string) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	otp, ok := user.Code(purpose)
	if !ok {
		return ErrCodeNotFound
	}
	if otp.Expired(s.now()) {
		return ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(supplied)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}

func (s *OTPStore) Clear(user *models.User, purpose models.Purpose) {
	user.ClearCode(purpose)
}

func (s *OTPStore) TTL() time.Duration { return s.ttl }
