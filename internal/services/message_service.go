package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"whisperbox/internal/models"
	"whisperbox/internal/repositories"
)

// MessageService is the inbox gate: anonymous senders append, owners read,
// delete and toggle acceptance.
type MessageService interface {
	SetAccepting(ctx context.Context, userID int, accept bool) error
	IsAccepting(ctx context.Context, userID int) (bool, error)
	Accept(ctx context.Context, username, content string) (*models.Message, error)
	List(ctx context.Context, userID, limit, offset int) ([]*models.Message, error)
	Delete(ctx context.Context, userID int, id uuid.UUID) error
}

type messageService struct {
	users    repositories.UserRepository
	messages repositories.MessageRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewMessageService(users repositories.UserRepository, messages repositories.MessageRepository, logger *zap.Logger) MessageService {
	return &messageService{
		users:    users,
		messages: messages,
		logger:   logger.Named("messages"),
		now:      time.Now,
	}
}

func (s *messageService) SetAccepting(ctx context.Context, userID int, accept bool) error {
	err := s.users.SetAcceptingMessages(ctx, userID, accept)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("set accepting messages: %w", err)
	}
	s.logger.Info("message acceptance changed", zap.Int("user_id", userID), zap.Bool("accept", accept))
	return nil
}

func (s *messageService) IsAccepting(ctx context.Context, userID int) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	return user.IsAcceptingMessages, nil
}

// Accept stores content in the inbox of username. Nothing about the sender is
// recorded.
func (s *messageService) Accept(ctx context.Context, username, content string) (*models.Message, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if !user.IsAcceptingMessages {
		return nil, ErrNotAcceptingMessages
	}

	msg := &models.Message{
		ID:        uuid.New(),
		UserID:    user.ID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	s.logger.Debug("message accepted", zap.Int("user_id", user.ID), zap.Stringer("message_id", msg.ID))
	return msg, nil
}

func (s *messageService) List(ctx context.Context, userID, limit, offset int) ([]*models.Message, error) {
	msgs, err := s.messages.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return msgs, nil
}

func (s *messageService) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	err := s.messages.Delete(ctx, userID, id)
	if errors.Is(err, repositories.ErrMessageNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
