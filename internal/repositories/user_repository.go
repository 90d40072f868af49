package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"whisperbox/internal/models"
)

// UserRepository persists accounts together with their one-time code slots.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByIdentifier resolves either a username or an email address.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	// Save writes the account row and the changed code slots in one
	// transaction. The accepting-messages flag is owned by SetAcceptingMessages.
	Save(ctx context.Context, user *models.User) error
	SetAcceptingMessages(ctx context.Context, userID int, accept bool) error
	DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const selectUser = `
	SELECT id, username, email, password_hash, is_verified, is_accepting_messages, created_at
	FROM users
`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (username, email, password_hash, is_verified, is_accepting_messages)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	user.Email = normalizeEmail(user.Email)
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, q,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsVerified,
			user.IsAcceptingMessages,
		).Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			return mapUserConstraint(err)
		}
		return saveCodes(ctx, tx, user)
	})
	if err != nil {
		return err
	}
	user.MarkCodesSaved()
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE username = $1`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE email = $1`, normalizeEmail(email))
}

func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(ctx, identifier)
	}
	return r.GetByUsername(ctx, identifier)
}

func (r *userRepository) getOne(ctx context.Context, q string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsVerified, &u.IsAcceptingMessages, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := r.loadCodes(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) loadCodes(ctx context.Context, u *models.User) error {
	const q = `SELECT purpose, code, expires_at FROM one_time_codes WHERE user_id = $1`
	rows, err := r.DB.QueryContext(ctx, q, u.ID)
	if err != nil {
		return fmt.Errorf("load codes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			purpose string
			otp     models.OneTimeCode
		)
		if err := rows.Scan(&purpose, &otp.Code, &otp.ExpiresAt); err != nil {
			return fmt.Errorf("scan code: %w", err)
		}
		u.SetCode(models.Purpose(purpose), otp)
	}
	u.MarkCodesSaved()
	return rows.Err()
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	const q = `
		UPDATE users
		SET username = $1,
			email = $2,
			password_hash = $3,
			is_verified = $4
		WHERE id = $5
	`
	user.Email = normalizeEmail(user.Email)
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsVerified,
			user.ID,
		)
		if err != nil {
			return mapUserConstraint(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrUserNotFound
		}
		return saveCodes(ctx, tx, user)
	})
	if err != nil {
		return err
	}
	user.MarkCodesSaved()
	return nil
}

// saveCodes writes the slots changed on the aggregate: set slots are upserted,
// cleared ones deleted. Untouched slots are left to whoever changed them.
func saveCodes(ctx context.Context, tx *sql.Tx, user *models.User) error {
	const upsert = `
		INSERT INTO one_time_codes (user_id, purpose, code, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, purpose) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`
	const remove = `DELETE FROM one_time_codes WHERE user_id = $1 AND purpose = $2`

	for _, p := range user.ChangedCodes() {
		otp, ok := user.Code(p)
		var err error
		if ok {
			_, err = tx.ExecContext(ctx, upsert, user.ID, string(p), otp.Code, otp.ExpiresAt)
		} else {
			_, err = tx.ExecContext(ctx, remove, user.ID, string(p))
		}
		if err != nil {
			return fmt.Errorf("save %s code: %w", p, err)
		}
	}
	return nil
}

func (r *userRepository) SetAcceptingMessages(ctx context.Context, userID int, accept bool) error {
	const q = `UPDATE users SET is_accepting_messages = $1 WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, q, accept, userID)
	if err != nil {
		return fmt.Errorf("set accepting messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) DeleteExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	const q = `DELETE FROM one_time_codes WHERE expires_at < $1`
	res, err := r.DB.ExecContext(ctx, q, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return res.RowsAffected()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
