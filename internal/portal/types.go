// Package portal holds the read-side of the business catalog: contracts,
// orders and the price list. Full business CRUD lives outside this service;
// these listings exist so that every protected endpoint applies the shared
// role/ownership rules against real data.
package portal

import "time"

// Contract links a client account to a supply agreement.
type Contract struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Code     string    `json:"code"`
	Status   string    `json:"status"`
	SignedAt time.Time `json:"signed_at"`
}

// Order is a purchase order placed against a contract.
type Order struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ContractID int64     `json:"contract_id"`
	Status     string    `json:"status"`
	// TotalKopecks keeps money integral; rendering is a client concern.
	TotalKopecks int64     `json:"total_kopecks"`
	CreatedAt    time.Time `json:"created_at"`
}

// PriceItem is one row of the current price list.
type PriceItem struct {
	ID           int64     `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	PriceKopecks int64     `json:"price_kopecks"`
	UpdatedAt    time.Time `json:"updated_at"`
}
