package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"papertrade/src/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestOrderRepositoryFindAllPending(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &OrderRepository{db: mockDB}

	createdAt := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "ref", "account_id", "symbol", "side", "kind", "quantity", "status", "created_at"}).
		AddRow(1, "ref-1", 1, "RELIANCE", "BUY", "LIMIT", 10, "PENDING", createdAt).
		AddRow(2, "ref-2", 2, "TCS", "SELL", "STOP_LOSS", 5, "PENDING", createdAt.Add(time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE status = $1 ORDER BY created_at ASC, id ASC`)).
		WithArgs(model.OrderStatusPending).
		WillReturnRows(rows)

	results, err := repo.FindAllPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error fetching pending orders: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(results))
	}

	if results[0].Symbol != "RELIANCE" || results[1].Symbol != "TCS" {
		t.Fatalf("orders not returned oldest first: %+v", results)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryClaimPending(t *testing.T) {
	t.Run("wins the claim", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		claimed, err := repo.ClaimPending(context.Background(), 7)
		if err != nil {
			t.Fatalf("unexpected error claiming order: %v", err)
		}
		if !claimed {
			t.Fatal("expected claim to succeed")
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
	})

	t.Run("loses the claim", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		claimed, err := repo.ClaimPending(context.Background(), 7)
		if err != nil {
			t.Fatalf("unexpected error claiming order: %v", err)
		}
		if claimed {
			t.Fatal("expected claim to lose when order is no longer PENDING")
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
	})
}

func TestOrderRepositoryMarkFilledRequiresClaim(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &OrderRepository{db: mockDB}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.MarkFilled(context.Background(), 7, decimal.NewFromInt(94), time.Now())
	if !errors.Is(err, model.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification for unclaimed order, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryCancelPendingRaces(t *testing.T) {
	t.Run("claimed by a running sweep", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		row := sqlmock.NewRows([]string{"id", "ref", "account_id", "symbol", "side", "kind", "quantity", "status"}).
			AddRow(7, "ref-7", 1, "INFY", "BUY", "LIMIT", 3, model.OrderStatusClaimed)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE "orders"."id" = $1 ORDER BY "orders"."id" LIMIT $2`)).
			WithArgs(uint(7), 1).
			WillReturnRows(row)

		err := repo.CancelPending(context.Background(), 7, "cancelled by user")
		if !errors.Is(err, model.ErrConcurrentModification) {
			t.Fatalf("expected ErrConcurrentModification, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
	})

	t.Run("already terminal", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		row := sqlmock.NewRows([]string{"id", "ref", "account_id", "symbol", "side", "kind", "quantity", "status"}).
			AddRow(7, "ref-7", 1, "INFY", "BUY", "LIMIT", 3, model.OrderStatusFilled)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE "orders"."id" = $1 ORDER BY "orders"."id" LIMIT $2`)).
			WithArgs(uint(7), 1).
			WillReturnRows(row)

		err := repo.CancelPending(context.Background(), 7, "cancelled by user")
		if !errors.Is(err, model.ErrNotPending) {
			t.Fatalf("expected ErrNotPending, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
	})
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}
