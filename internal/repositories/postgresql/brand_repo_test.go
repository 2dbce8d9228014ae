package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/beenruuu/mentha/internal/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/beenruuu/mentha/internal/models"
)

func newMockClient(t *testing.T) (*database.Client, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	db := sqlx.NewDb(mockDB, "sqlmock")
	return &database.Client{DB: db}, mock
}

func TestBrandRepoCreate(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	repo := NewBrandRepo(client)
	now := time.Now()
	brand := &models.Brand{
		BrandID:     uuid.New(),
		UserID:      uuid.New(),
		Name:        "Acme Robotics",
		ScheduleDOW: 2,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO brands`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), brand); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBrandRepoGetByIDNotFound(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	repo := NewBrandRepo(client)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM brands`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"brand_id"}))

	brand, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if brand != nil {
		t.Errorf("expected nil brand for missing row, got %+v", brand)
	}
}

func TestBrandRepoGetIDsByScheduledDOW(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	repo := NewBrandRepo(client)
	want := []uuid.UUID{uuid.New(), uuid.New()}

	rows := sqlmock.NewRows([]string{"brand_id"})
	for _, id := range want {
		rows.AddRow(id)
	}
	mock.ExpectQuery(`SELECT brand_id FROM brands WHERE schedule_dow`).
		WithArgs(2).
		WillReturnRows(rows)

	got, err := repo.GetIDsByScheduledDOW(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetIDsByScheduledDOW returned error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPromptRunRepoUpdateLatestFlags(t *testing.T) {
	client, mock := newMockClient(t)
	defer client.Close()

	repo := NewPromptRunRepo(client)
	promptID := uuid.New()
	runID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE prompt_runs SET is_latest = FALSE`).
		WithArgs(promptID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE prompt_runs SET is_latest = TRUE`).
		WithArgs(runID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.UpdateLatestFlags(context.Background(), promptID, runID); err != nil {
		t.Fatalf("UpdateLatestFlags returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
