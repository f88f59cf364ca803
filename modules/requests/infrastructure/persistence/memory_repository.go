package persistence

import (
	"context"
	"sync"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
)

// MemoryRepository keeps requests in process memory. Ids increase
// monotonically and are never reused, even after deletes.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	order  []int64
	byID   map[int64]request.Request
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		byID:   make(map[int64]request.Request),
	}
}

func (m *MemoryRepository) GetAll(ctx context.Context) ([]request.Request, error) {
	return m.filter(ctx, func(request.Request) bool { return true })
}

func (m *MemoryRepository) GetByRequester(ctx context.Context, requesterIdentity string) ([]request.Request, error) {
	return m.filter(ctx, func(r request.Request) bool {
		return r.RequesterIdentity() == requesterIdentity
	})
}

func (m *MemoryRepository) GetByID(ctx context.Context, id int64) (request.Request, error) {
	if err := ctx.Err(); err != nil {
		return request.Request{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return request.Request{}, request.ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepository) Create(ctx context.Context, r request.Request) (request.Request, error) {
	if err := ctx.Err(); err != nil {
		return request.Request{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := r.WithID(m.nextID)
	m.nextID++
	m.byID[stored.ID()] = stored
	m.order = append(m.order, stored.ID())
	return stored, nil
}

func (m *MemoryRepository) Update(ctx context.Context, r request.Request) (request.Request, error) {
	if err := ctx.Err(); err != nil {
		return request.Request{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[r.ID()]
	if !ok {
		return request.Request{}, request.ErrNotFound
	}
	updated := current.WithStatus(r.Status())
	m.byID[r.ID()] = updated
	return updated, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return nil
	}
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRepository) filter(ctx context.Context, keep func(request.Request) bool) ([]request.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]request.Request, 0, len(m.order))
	for _, id := range m.order {
		if r := m.byID[id]; keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
