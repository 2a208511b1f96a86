package portal

import (
	"context"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by tests and local development.
type Memory struct {
	mu        sync.RWMutex
	contracts []Contract
	orders    []Order
	prices    []PriceItem
}

func NewMemory() *Memory { return &Memory{} }

// Seed replaces the catalog contents.
func (m *Memory) Seed(contracts []Contract, orders []Order, prices []PriceItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts = contracts
	m.orders = orders
	m.prices = prices
}

func (m *Memory) ContractsByUser(_ context.Context, userID int64) ([]Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []Contract
	for _, c := range m.contracts {
		if c.UserID == userID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (m *Memory) AllContracts(_ context.Context) ([]Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]Contract, len(m.contracts))
	copy(res, m.contracts)
	return res, nil
}

func (m *Memory) OrdersByUser(_ context.Context, userID int64) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []Order
	for _, o := range m.orders {
		if o.UserID == userID {
			res = append(res, o)
		}
	}
	return res, nil
}

func (m *Memory) AllOrders(_ context.Context) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]Order, len(m.orders))
	copy(res, m.orders)
	return res, nil
}

func (m *Memory) PriceList(_ context.Context) ([]PriceItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]PriceItem, len(m.prices))
	copy(res, m.prices)
	return res, nil
}
