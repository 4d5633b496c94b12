package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestConfigure_AppliesPoolAndPings(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing()

	if err := configure(context.Background(), db, PoolOptions{MaxOpenConns: 3, MaxIdleConns: 1}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if got := db.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("expected 3 max open conns, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConfigure_PingFailureClosesPool(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	err = configure(context.Background(), db, PoolOptions{})
	if err == nil || err.Error() != "ping postgres: connection refused" {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPoolOptions_Defaults(t *testing.T) {
	got := PoolOptions{MaxOpenConns: 2, MaxIdleConns: 8}.withDefaults()
	if got.MaxOpenConns != 2 || got.MaxIdleConns != 2 {
		t.Fatalf("idle conns must not exceed open conns: %+v", got)
	}
	if got.ConnMaxLifetime != 30*time.Minute || got.PingTimeout != 3*time.Second {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	got = PoolOptions{}.withDefaults()
	if got.MaxOpenConns != 10 || got.MaxIdleConns != 5 || got.ConnMaxIdleTime != 5*time.Minute {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}
