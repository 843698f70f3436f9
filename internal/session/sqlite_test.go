package session

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func setupSQLiteMock(t *testing.T) (*SQLiteBackend, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	backend := NewSQLiteBackend(sqlx.NewDb(db, "sqlmock"))
	cleanup := func() { db.Close() }
	return backend, mock, cleanup
}

func TestSQLiteRead(t *testing.T) {
	backend, mock, cleanup := setupSQLiteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM session WHERE slot = ?`)).
		WithArgs(slotName).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"correo":"a@b.com"}`)))

	data, err := backend.Read(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"correo":"a@b.com"}` {
		t.Errorf("unexpected data: %s", data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSQLiteRead_NoRecord(t *testing.T) {
	backend, mock, cleanup := setupSQLiteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM session WHERE slot = ?`)).
		WithArgs(slotName).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	_, err := backend.Read(context.Background())
	if !errors.Is(err, ErrNoRecord) {
		t.Errorf("expected ErrNoRecord, got %v", err)
	}
}

func TestSQLiteWrite(t *testing.T) {
	backend, mock, cleanup := setupSQLiteMock(t)
	defer cleanup()

	record := []byte(`{"correo":"a@b.com"}`)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO session (slot, data) VALUES (?, ?)`)).
		WithArgs(slotName, record).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := backend.Write(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSQLiteDelete(t *testing.T) {
	backend, mock, cleanup := setupSQLiteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM session WHERE slot = ?`)).
		WithArgs(slotName).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := backend.Delete(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSQLiteWrite_Error(t *testing.T) {
	backend, mock, cleanup := setupSQLiteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO session (slot, data) VALUES (?, ?)`)).
		WillReturnError(errors.New("disk full"))

	if err := backend.Write(context.Background(), []byte("x")); err == nil {
		t.Error("expected error, got nil")
	}
}
