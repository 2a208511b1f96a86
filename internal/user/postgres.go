package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. Every query is parameterized;
// connections are pooled by database/sql and released on all exit paths.
type PGStore struct {
	db *sql.DB
}

// Open dials PostgreSQL and tunes the connection pool. The DSN is expected to
// carry a connect_timeout (the service default is 20 seconds).
func Open(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PGStore{db: db}, nil
}

// NewPGStore wraps an existing handle (used by tests and the migrate CLI).
func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) DB() *sql.DB { return s.db }

const userColumns = `id, email, password_hash, role, access, active, name, inn, contract_code, address, phone, reset_token, reset_expires, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, u *User) error {
	err := s.db.QueryRowContext(ctx, `
		insert into users(email, password_hash, role, access, active, name, inn, contract_code, address, phone)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		returning id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.Role, u.Access, u.Active, u.Name, u.INN, u.ContractCode, u.Address, u.Phone).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email=$1`, NormalizeEmail(email))
	return scanUser(row)
}

func (s *PGStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PGStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		update users set password_hash=$2, reset_token=null, reset_expires=null, updated_at=now()
		where id=$1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error {
	// A single active reset request at a time: the previous token is simply
	// overwritten.
	res, err := s.db.ExecContext(ctx, `
		update users set reset_token=$2, reset_expires=$3, updated_at=now()
		where id=$1
	`, id, token, expires)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) ConsumeResetToken(ctx context.Context, token string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		update users set reset_token=null, reset_expires=null, updated_at=now()
		where reset_token=$1 and reset_expires > now()
		returning `+userColumns, token)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u          User
		resetToken sql.NullString
		resetExp   sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Access, &u.Active,
		&u.Name, &u.INN, &u.ContractCode, &u.Address, &u.Phone,
		&resetToken, &resetExp, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if resetToken.Valid {
		u.ResetToken = &resetToken.String
	}
	if resetExp.Valid {
		u.ResetExpires = &resetExp.Time
	}
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
