package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"whisperbox/internal/models"
)

// MemoryUserRepository keeps accounts in process memory. Stored values are
// cloned on the way in and out so callers never share state with the store.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int]*models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	stored := user.Clone()
	stored.MarkCodesSaved()
	r.users[user.ID] = stored
	user.MarkCodesSaved()
	return nil
}

func (r *MemoryUserRepository) checkUnique(user *models.User) error {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return ErrUsernameExists
		}
		if u.Email == user.Email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(ctx, identifier)
	}
	return r.GetByUsername(ctx, identifier)
}

func (r *MemoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return u.Clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	user.Email = normalizeEmail(user.Email)
	if err := r.checkUnique(user); err != nil {
		return err
	}
	stored.Username = user.Username
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	stored.IsVerified = user.IsVerified
	for _, p := range user.ChangedCodes() {
		if otp, ok := user.Code(p); ok {
			stored.SetCode(p, otp)
		} else {
			stored.ClearCode(p)
		}
	}
	stored.MarkCodesSaved()
	user.MarkCodesSaved()
	return nil
}

func (r *MemoryUserRepository) SetAcceptingMessages(_ context.Context, userID int, accept bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.IsAcceptingMessages = accept
	return nil
}

func (r *MemoryUserRepository) DeleteExpiredCodes(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.users {
		for p, otp := range u.OneTimeCodes {
			if otp.ExpiresAt.Before(before) {
				delete(u.OneTimeCodes, p)
				n++
			}
		}
	}
	return n, nil
}

type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]models.Message
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{messages: make(map[uuid.UUID]models.Message)}
}

func (r *MemoryMessageRepository) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[msg.ID] = *msg
	return nil
}

func (r *MemoryMessageRepository) ListByUser(_ context.Context, userID, limit, offset int) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Message
	for _, m := range r.messages {
		if m.UserID == userID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryMessageRepository) Delete(_ context.Context, userID int, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok || m.UserID != userID {
		return ErrMessageNotFound
	}
	delete(r.messages, id)
	return nil
}

var (
	_ UserRepository    = (*MemoryUserRepository)(nil)
	_ MessageRepository = (*MemoryMessageRepository)(nil)
)
