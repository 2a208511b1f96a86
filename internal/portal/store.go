package portal

import "context"

// Store describes the catalog reads consumed by the protected endpoints.
// Admins list everything; clients and managers list rows they own.
type Store interface {
	ContractsByUser(ctx context.Context, userID int64) ([]Contract, error)
	AllContracts(ctx context.Context) ([]Contract, error)
	OrdersByUser(ctx context.Context, userID int64) ([]Order, error)
	AllOrders(ctx context.Context) ([]Order, error)
	PriceList(ctx context.Context) ([]PriceItem, error)
}
