package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisperbox/internal/models"
)

func newTestMessageRepo(t *testing.T) (MessageRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMessageRepository(db), mock
}

func TestMessageRepository_Create(t *testing.T) {
	repo, mock := newTestMessageRepo(t)
	msg := &models.Message{ID: uuid.New(), UserID: 1, Content: "hi there", CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO messages \(id,user_id,content,created_at\) VALUES \(\$1,\$2,\$3,\$4\)`).
		WithArgs(msg.ID.String(), 1, "hi there", msg.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_ListByUser(t *testing.T) {
	repo, mock := newTestMessageRepo(t)
	now := time.Now()
	newer, older := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT id, user_id, content, created_at FROM messages WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 5`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "created_at"}).
			AddRow(newer.String(), 1, "second", now).
			AddRow(older.String(), 1, "first", now.Add(-time.Minute)))

	msgs, err := repo.ListByUser(context.Background(), 1, 10, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, newer, msgs[0].ID)
	assert.Equal(t, "second", msgs[0].Content)
	assert.Equal(t, older, msgs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_ListByUser_NoPaging(t *testing.T) {
	repo, mock := newTestMessageRepo(t)

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC$`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "created_at"}))

	msgs, err := repo.ListByUser(context.Background(), 2, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("owned", func(t *testing.T) {
		repo, mock := newTestMessageRepo(t)
		mock.ExpectExec(`DELETE FROM messages WHERE id = \$1 AND user_id = \$2`).
			WithArgs(id.String(), 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), 1, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("someone else's", func(t *testing.T) {
		repo, mock := newTestMessageRepo(t)
		mock.ExpectExec("DELETE FROM messages").
			WithArgs(id.String(), 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 2, id), ErrMessageNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
