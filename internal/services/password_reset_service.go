package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/repositories"
)

type PasswordResetService interface {
	RequestReset(ctx context.Context, identifier string) error
	ResetPassword(ctx context.Context, identifier, code, newPassword, confirmPassword string) error
}

type passwordResetService struct {
	users    repositories.UserRepository
	otp      *OTPStore
	emails   EmailService
	auth     AuthService
	resetURL string
	logger   *zap.Logger
}

// NewPasswordResetService builds the reset flow. resetURL is the configured
// client page linked from reset emails; it may be empty.
func NewPasswordResetService(users repositories.UserRepository, otp *OTPStore, emails EmailService, auth AuthService, resetURL string, logger *zap.Logger) PasswordResetService {
	return &passwordResetService{
		users:    users,
		otp:      otp,
		emails:   emails,
		auth:     auth,
		resetURL: resetURL,
		logger:   logger.Named("password-reset"),
	}
}

// RequestReset emails a reset code to a verified account.
func (s *passwordResetService) RequestReset(ctx context.Context, identifier string) error {
	user, err := resolveUser(ctx, s.users, identifier)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return ErrAccountNotEligible
	}

	otp, err := s.otp.Issue(user, models.PurposeReset)
	if err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}
	if err := s.emails.SendPasswordResetCode(ctx, user.Email, user.Username, otp.Code, s.resetURL); err != nil {
		s.logger.Warn("reset code not delivered", zap.Int("user_id", user.ID), zap.Error(err))
		return ErrNotificationFailed
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}

	s.logger.Info("reset code issued", zap.Int("user_id", user.ID), zap.Time("expires_at", otp.ExpiresAt))
	return nil
}

// ResetPassword checks the code before anything else, so a wrong or stale
// code is reported even when the passwords are also invalid.
func (s *passwordResetService) ResetPassword(ctx context.Context, identifier, code, newPassword, confirmPassword string) error {
	user, err := resolveUser(ctx, s.users, identifier)
	if err != nil {
		return err
	}

	if err := s.otp.Validate(user, models.PurposeReset, code); err != nil {
		s.logger.Info("reset rejected", zap.Int("user_id", user.ID), zap.Error(err))
		return err
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if s.auth.ComparePassword(user.PasswordHash, newPassword) {
		return ErrSamePassword
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	s.otp.Clear(user, models.PurposeReset)
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save new password: %w", err)
	}

	s.logger.Info("password reset", zap.Int("user_id", user.ID))
	return nil
}
