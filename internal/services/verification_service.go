package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/repositories"
)

// VerificationService proves email ownership. An account moves from pending
// to verified exactly once.
type VerificationService interface {
	RequestCode(ctx context.Context, identifier string) error
	Confirm(ctx context.Context, identifier, code string) error
}

type verificationService struct {
	users  repositories.UserRepository
	otp    *OTPStore
	emails EmailService
	logger *zap.Logger
}

func NewVerificationService(users repositories.UserRepository, otp *OTPStore, emails EmailService, logger *zap.Logger) VerificationService {
	return &verificationService{
		users:  users,
		otp:    otp,
		emails: emails,
		logger: logger.Named("verification"),
	}
}

// RequestCode issues a fresh signup code and emails it. The code is stored
// only once the email has been handed to the provider.
func (s *verificationService) RequestCode(ctx context.Context, identifier string) error {
	user, err := resolveUser(ctx, s.users, identifier)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	otp, err := s.otp.Issue(user, models.PurposeSignup)
	if err != nil {
		return fmt.Errorf("issue signup code: %w", err)
	}
	if err := s.emails.SendVerificationCode(ctx, user.Email, user.Username, otp.Code); err != nil {
		s.logger.Warn("verification code not delivered", zap.Int("user_id", user.ID), zap.Error(err))
		return ErrNotificationFailed
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save signup code: %w", err)
	}

	s.logger.Info("verification code issued", zap.Int("user_id", user.ID), zap.Time("expires_at", otp.ExpiresAt))
	return nil
}

func (s *verificationService) Confirm(ctx context.Context, identifier, code string) error {
	user, err := resolveUser(ctx, s.users, identifier)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if err := s.otp.Validate(user, models.PurposeSignup, code); err != nil {
		s.logger.Info("verification rejected", zap.Int("user_id", user.ID), zap.Error(err))
		return err
	}

	user.IsVerified = true
	s.otp.Clear(user, models.PurposeSignup)
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save verified account: %w", err)
	}

	s.logger.Info("account verified", zap.Int("user_id", user.ID))
	return nil
}

// resolveUser looks an account up by username or email and maps a miss to
// ErrUserNotFound.
func resolveUser(ctx context.Context, users repositories.UserRepository, identifier string) (*models.User, error) {
	user, err := users.GetByIdentifier(ctx, identifier)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	return user, nil
}
