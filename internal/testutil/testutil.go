// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/lena210296/ProjectBlog/internal/database"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPassword is the plain-text password of every fixture user.
const DefaultPassword = "correct-horse-9"

// NewTestDB opens a private in-memory SQLite database with the schema applied.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts an active user with DefaultPassword.
func CreateUser(t testing.TB, db *gorm.DB, username string, staff bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	if username == "" {
		username = gofakeit.Username() + gofakeit.DigitN(4)
	}
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		IsStaff:  staff,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post by author with generated text.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, status models.PostStatus) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:            gofakeit.Sentence(4),
		ShortDescription: gofakeit.Sentence(10),
		FullDescription:  gofakeit.Paragraph(2, 3, 8, " "),
		Image:            "post_images/" + uuid.NewString() + ".jpg",
		AuthorID:         author.ID,
		Status:           status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateComment inserts a comment on post. author may be nil.
func CreateComment(t testing.TB, db *gorm.DB, post *models.Post, author *models.User, approved bool) *models.Comment {
	t.Helper()
	c := &models.Comment{
		PostID:     post.ID,
		Content:    gofakeit.Sentence(6),
		IsApproved: approved,
	}
	if author != nil {
		c.AuthorID = &author.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Call is one recorded Enqueue.
type Call struct {
	Job  string
	Args []string
}

// RecordingQueue implements tasks.Queue and remembers every call.
type RecordingQueue struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

func (q *RecordingQueue) Enqueue(_ context.Context, job string, args ...string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return "", q.Err
	}
	q.calls = append(q.calls, Call{Job: job, Args: append([]string(nil), args...)})
	return uuid.NewString(), nil
}

// Calls returns a copy of the recorded calls.
func (q *RecordingQueue) Calls() []Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Call(nil), q.calls...)
}

// Reset forgets all calls.
func (q *RecordingQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = nil
}
