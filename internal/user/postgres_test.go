package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"molsnab.ru/internal/auth"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "access", "active",
		"name", "inn", "contract_code", "address", "phone",
		"reset_token", "reset_expires", "created_at", "updated_at",
	})
}

func TestFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("select (.+) from users where email=").
		WithArgs("a@b.com").
		WillReturnRows(userRows().AddRow(
			int64(7), "a@b.com", "$2a$10$hash", "client", 1, true,
			"ACME", "7701234567", "C1", "", "",
			nil, nil, now, now,
		))

	store := NewPGStore(db)
	u, err := store.FindByEmail(context.Background(), "A@B.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != 7 || u.Role != auth.RoleClient || !u.Active {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select (.+) from users where email=").
		WithArgs("nobody@b.com").
		WillReturnRows(userRows())

	store := NewPGStore(db)
	if _, err := store.FindByEmail(context.Background(), "nobody@b.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	store := NewPGStore(db)
	u := &User{Email: "a@b.com", PasswordHash: "h", Role: auth.RoleClient, Access: 1, Active: true}
	if err := store.Create(context.Background(), u); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestConsumeResetTokenExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Expired tokens fall outside the predicate and return no rows.
	mock.ExpectQuery("update users set reset_token=null").
		WithArgs("stale-token").
		WillReturnRows(userRows())

	store := NewPGStore(db)
	if _, err := store.ConsumeResetToken(context.Background(), "stale-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePasswordRequiresRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("update users set password_hash=").
		WithArgs(int64(99), "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	if err := store.UpdatePassword(context.Background(), 99, "newhash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
