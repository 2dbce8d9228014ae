// services/interfaces_test.go
package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/beenruuu/mentha/internal/database"
	"github.com/jmoiron/sqlx"
)

func TestRepositoryManagerBeginTx(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	db := sqlx.NewDb(mockDB, "sqlmock")
	defer db.Close()

	rm := NewRepositoryManager(&database.Client{DB: db})

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := rm.BeginTx(context.Background())
	if err != nil {
		t.Fatalf("BeginTx returned error: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("Rollback returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
