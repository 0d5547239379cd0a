// Package customers holds the back-office customer registry: registration
// records, the in-memory report filters, and CSV export.
package customers

import (
	"context"
	"time"
)

// DisplayDateFormat is the dd/mm/yyyy format used in the back office and the
// CSV export.
const DisplayDateFormat = "02/01/2006"

// Customer is one registration record.
type Customer struct {
	ID            string
	FullName      string
	Place         string
	ContactNumber string
	DateOfBirth   time.Time
	RegisteredAt  time.Time
}

// Repo persists customer registrations.
type Repo interface {
	Upsert(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Delete(ctx context.Context, id string) error
}

// Filter narrows a customer listing. Zero values mean no constraint; dates
// compare on the day, inclusive on both ends.
type Filter struct {
	DOBMonth       time.Month
	RegisteredFrom time.Time
	RegisteredTo   time.Time
}

// Empty reports whether no constraint is set.
func (f Filter) Empty() bool {
	return f.DOBMonth == 0 && f.RegisteredFrom.IsZero() && f.RegisteredTo.IsZero()
}

// Matches applies the filter to one record.
func (f Filter) Matches(c Customer) bool {
	if f.DOBMonth != 0 && c.DateOfBirth.Month() != f.DOBMonth {
		return false
	}
	if !f.RegisteredFrom.IsZero() && dayOf(c.RegisteredAt).Before(dayOf(f.RegisteredFrom)) {
		return false
	}
	if !f.RegisteredTo.IsZero() && dayOf(c.RegisteredAt).After(dayOf(f.RegisteredTo)) {
		return false
	}
	return true
}

// Apply returns the records matching the filter, preserving order.
func (f Filter) Apply(all []Customer) []Customer {
	if f.Empty() {
		return all
	}
	matched := make([]Customer, 0, len(all))
	for _, c := range all {
		if f.Matches(c) {
			matched = append(matched, c)
		}
	}
	return matched
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
