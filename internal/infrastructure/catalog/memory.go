// Package catalog provides the read-only product collaborator. Two
// drivers exist: an in-process catalog seeded with the storefront's demo
// assortment, and an HTTP client for a standalone catalog service.
package catalog

import (
	"context"
	"sort"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
)

type Memory struct {
	byID  map[int64]domain.Product
	items []domain.Product // sorted by id for deterministic All()
}

func NewMemory(products []domain.Product) *Memory {
	m := &Memory{byID: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		if _, dup := m.byID[p.ID]; dup {
			continue
		}
		m.byID[p.ID] = p
		m.items = append(m.items, p)
	}
	sort.Slice(m.items, func(i, j int) bool { return m.items[i].ID < m.items[j].ID })
	return m
}

// NewSeeded returns the demo catalog the storefront ships with.
func NewSeeded() *Memory {
	return NewMemory(seedProducts())
}

func (m *Memory) Product(ctx context.Context, id int64) (domain.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// Products resolves a batch, silently skipping unknown ids: a stale id in
// the client's localStorage must not fail the whole batch.
func (m *Memory) Products(ctx context.Context, ids []int64) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) All(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(m.items))
	copy(out, m.items)
	return out, nil
}
