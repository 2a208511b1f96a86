package user

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by tests and local development.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
	now    func() time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1, users: make(map[int64]*User), now: time.Now}
}

// WithClock overrides the time source for reset-token expiry checks.
func (m *Memory) WithClock(fn func() time.Time) *Memory {
	if fn != nil {
		m.now = fn
	}
	return m
}

func (m *Memory) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = m.now().UTC()
	u.UpdatedAt = u.CreatedAt
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

// Put overwrites a record in place; test helper.
func (m *Memory) Put(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *u
	m.users[u.ID] = &clone
}

func (m *Memory) Find(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) List(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		clone := *u
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetExpires = nil
	u.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Memory) SetResetToken(_ context.Context, id int64, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.ResetToken = &token
	u.ResetExpires = &expires
	u.UpdatedAt = m.now().UTC()
	return nil
}

func (m *Memory) ConsumeResetToken(_ context.Context, token string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetToken == nil || *u.ResetToken != token {
			continue
		}
		if u.ResetExpires == nil || m.now().After(*u.ResetExpires) {
			return nil, ErrNotFound
		}
		u.ResetToken = nil
		u.ResetExpires = nil
		clone := *u
		return &clone, nil
	}
	return nil, ErrNotFound
}
