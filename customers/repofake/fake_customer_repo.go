package fakecustomerrepo

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jafsabakes/storefront/customers"
)

var _ customers.Repo = (*FakeCustomerRepo)(nil)

// FakeCustomerRepo is an in-memory customer repository for tests and
// development.
type FakeCustomerRepo struct {
	mu      sync.RWMutex
	records map[string]customers.Customer
}

func NewFakeCustomerRepo() *FakeCustomerRepo {
	return &FakeCustomerRepo{
		records: make(map[string]customers.Customer),
	}
}

func (r *FakeCustomerRepo) Upsert(ctx context.Context, customer *customers.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	r.records[customer.ID] = *customer
	return nil
}

func (r *FakeCustomerRepo) GetByID(ctx context.Context, id string) (*customers.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &record, nil
}

func (r *FakeCustomerRepo) List(ctx context.Context) ([]customers.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]customers.Customer, 0, len(r.records))
	for _, record := range r.records {
		list = append(list, record)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].RegisteredAt.Equal(list[j].RegisteredAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].RegisteredAt.Before(list[j].RegisteredAt)
	})
	return list, nil
}

func (r *FakeCustomerRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}
