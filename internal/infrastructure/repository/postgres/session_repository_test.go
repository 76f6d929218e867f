package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

func newSessionRepoWithMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SessionRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestSessionCreate(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("s1", "quarterly reports", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	session := &domain.Session{ID: "s1", Name: "quarterly reports", CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionGetReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, created_at").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSession(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionDeleteRemovesMessagesFirst(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM chat_messages").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteSession(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionDeleteUnknownIDReturnsNotFound(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM chat_messages").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteSession(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionAppendMessage(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("m1", "s1", domain.RoleUser, "What is the budget?", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg := domain.ChatMessage{ID: "m1", SessionID: "s1", Role: domain.RoleUser, Content: "What is the budget?"}
	if err := repo.AppendMessage(context.Background(), msg); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSessionListRecentMessagesDefaultsLimit(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, session_id, role, content FROM").
		WithArgs("s1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "role", "content"}).
			AddRow("m1", "s1", domain.RoleUser, "hello").
			AddRow("m2", "s1", domain.RoleAssistant, "hi"))

	messages, err := repo.ListRecentMessages(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("ListRecentMessages() error = %v", err)
	}
	if len(messages) != 2 || messages[0].ID != "m1" || messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected messages: %+v", messages)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
