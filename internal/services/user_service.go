package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	SignIn(ctx context.Context, identifier, password string) (*Session, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type userService struct {
	users  repositories.UserRepository
	otp    *OTPStore
	emails EmailService
	auth   AuthService
	logger *zap.Logger
}

func NewUserService(users repositories.UserRepository, otp *OTPStore, emails EmailService, auth AuthService, logger *zap.Logger) UserService {
	return &userService{
		users:  users,
		otp:    otp,
		emails: emails,
		auth:   auth,
		logger: logger.Named("users"),
	}
}

// Register creates a pending account, or takes over a pending account that
// already owns the email, and sends it a signup code. A delivery failure
// leaves the account in place; the code can be re-requested.
func (s *userService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	byName, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil && byName.Email != email:
		return nil, ErrUsernameTaken
	case err != nil && !errors.Is(err, repositories.ErrUserNotFound):
		return nil, fmt.Errorf("check username: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && user.IsVerified:
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, repositories.ErrUserNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}
	existing := err == nil

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if !existing {
		user = &models.User{
			Email:               email,
			IsAcceptingMessages: true,
		}
	}
	user.Username = username
	user.PasswordHash = hash

	otp, err := s.otp.Issue(user, models.PurposeSignup)
	if err != nil {
		return nil, fmt.Errorf("issue signup code: %w", err)
	}

	if existing {
		err = s.users.Save(ctx, user)
	} else {
		err = s.users.Create(ctx, user)
	}
	switch {
	case errors.Is(err, repositories.ErrUsernameExists):
		return nil, ErrUsernameTaken
	case errors.Is(err, repositories.ErrEmailExists):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, fmt.Errorf("store account: %w", err)
	}

	if err := s.emails.SendVerificationCode(ctx, user.Email, user.Username, otp.Code); err != nil {
		s.logger.Warn("signup code not delivered", zap.Int("user_id", user.ID), zap.Error(err))
		return user, ErrNotificationFailed
	}

	s.logger.Info("account registered", zap.Int("user_id", user.ID), zap.Bool("reclaimed", existing))
	return user, nil
}

// IsUsernameAvailable reports whether no account holds username.
func (s *userService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	_, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return false, nil
}

func (s *userService) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	user, err := resolveUser(ctx, s.users, identifier)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.auth.ComparePassword(user.PasswordHash, password) {
		s.logger.Info("sign-in rejected", zap.Int("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}

	token, expiresAt, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
