package customers

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// SeedDemoData loads the demo registration rows into an empty repository.
// Repositories that already hold records are left untouched.
func SeedDemoData(ctx context.Context, repo Repo) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "[SeedDemoData] list")
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range demoCustomers() {
		customer := c
		if err := repo.Upsert(ctx, &customer); err != nil {
			return errors.Wrapf(err, "[SeedDemoData] upsert %s", c.FullName)
		}
	}
	return nil
}

func demoCustomers() []Customer {
	return []Customer{
		{
			ID:            "cust-0001",
			FullName:      "Rajesh Kumar",
			Place:         "Kochi",
			ContactNumber: "+91 9876543210",
			DateOfBirth:   time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
			RegisteredAt:  time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "cust-0002",
			FullName:      "Priya Nair",
			Place:         "Trivandrum",
			ContactNumber: "+91 9876543211",
			DateOfBirth:   time.Date(1985, time.December, 10, 0, 0, 0, 0, time.UTC),
			RegisteredAt:  time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}
