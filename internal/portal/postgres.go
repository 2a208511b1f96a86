package portal

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

const contractColumns = `id, user_id, code, status, signed_at`

func (s *PGStore) ContractsByUser(ctx context.Context, userID int64) ([]Contract, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+contractColumns+` from contracts where user_id=$1 order by signed_at desc`, userID)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

func (s *PGStore) AllContracts(ctx context.Context) ([]Contract, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+contractColumns+` from contracts order by signed_at desc`)
	if err != nil {
		return nil, err
	}
	return scanContracts(rows)
}

func scanContracts(rows *sql.Rows) ([]Contract, error) {
	defer rows.Close()
	var res []Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Status, &c.SignedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

const orderColumns = `id, user_id, contract_id, status, total_kopecks, created_at`

func (s *PGStore) OrdersByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+orderColumns+` from orders where user_id=$1 order by created_at desc`, userID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (s *PGStore) AllOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+orderColumns+` from orders order by created_at desc`)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]Order, error) {
	defer rows.Close()
	var res []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ContractID, &o.Status, &o.TotalKopecks, &o.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (s *PGStore) PriceList(ctx context.Context) ([]PriceItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, sku, name, unit, price_kopecks, updated_at from price_items order by sku asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []PriceItem
	for rows.Next() {
		var p PriceItem
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Unit, &p.PriceKopecks, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
