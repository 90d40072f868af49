package repositories

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"whisperbox/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// ListByUser returns the owner's messages, newest first.
	ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Message, error)
	Delete(ctx context.Context, userID int, id uuid.UUID) error
}

type messageRepository struct {
	DB *sql.DB
	sb sq.StatementBuilderType
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{
		DB: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	q, args, err := r.sb.Insert("messages").
		Columns("id", "user_id", "content", "created_at").
		Values(msg.ID.String(), msg.UserID, msg.Content, msg.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert message: %w", err)
	}
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Message, error) {
	builder := r.sb.Select("id", "user_id", "content", "created_at").
		From("messages").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	q, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list messages: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var (
			m  models.Message
			id string
		)
		if err := rows.Scan(&id, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse message id: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *messageRepository) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	q, args, err := r.sb.Delete("messages").
		Where(sq.Eq{"id": id.String(), "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete message: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMessageNotFound
	}
	return nil
}
