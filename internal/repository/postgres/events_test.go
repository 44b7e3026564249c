package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/HubertYGuan/FEINT/internal/core/domain"
	"github.com/HubertYGuan/FEINT/internal/repository"
)

func TestEventRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	at := time.Now().UTC()
	event := domain.Event{
		Timestamp:    at,
		RawTimestamp: float64(at.UnixNano()) / float64(time.Second),
		Description:  "Notification: water plants",
	}

	rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(3))

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(event.Timestamp, event.RawTimestamp, event.Description).
		WillReturnRows(rows)

	created, err := repo.Create(context.Background(), event)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 3 || created.Description != event.Description {
		t.Fatalf("unexpected event: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	at := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "timestamp", "raw_timestamp", "description"}).
		AddRow(int64(1), at, 1700000000.25, "Notification: first").
		AddRow(int64(2), at, 1700000060.50, "Notification: second")

	mock.ExpectQuery(`SELECT .*FROM events`).WillReturnRows(rows)

	events, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Description != "Notification: first" || events[1].ID != 2 {
		t.Fatalf("unexpected events: %+v", events)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_Latest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	at := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "timestamp", "raw_timestamp", "description"}).
		AddRow(int64(9), at, 1700000120.75, "Notification: latest")

	mock.ExpectQuery(`SELECT .*FROM events`).WillReturnRows(rows)

	event, err := repo.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if event.ID != 9 || event.Description != "Notification: latest" {
		t.Fatalf("unexpected event: %+v", event)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_LatestEmptyLog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "timestamp", "raw_timestamp", "description"})

	mock.ExpectQuery(`SELECT .*FROM events`).WillReturnRows(rows)

	if _, err := repo.Latest(context.Background()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want repository.ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventRepository_DeleteByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewEventRepository(mock)

	mock.ExpectExec(`DELETE FROM events`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.DeleteByID(context.Background(), 9); err != nil {
		t.Fatalf("DeleteByID returned error: %v", err)
	}

	mock.ExpectExec(`DELETE FROM events`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.DeleteByID(context.Background(), 9); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want repository.ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
