// Package sqliterepo is the SQLite-backed customer repository used in
// production deployments.
package sqliterepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/jafsabakes/storefront/customers"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id             TEXT PRIMARY KEY,
	full_name      TEXT NOT NULL,
	place          TEXT NOT NULL DEFAULT '',
	contact_number TEXT NOT NULL DEFAULT '',
	date_of_birth  TEXT NOT NULL,
	registered_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_customers_registered_at ON customers (registered_at);
`

// dateFormat stores dates as ISO days so lexical ordering matches
// chronological ordering.
const dateFormat = "2006-01-02"

var _ customers.Repo = (*Repo)(nil)

// Repo is a customers.Repo backed by SQLite.
type Repo struct {
	db *sql.DB
}

// Open opens (and creates when missing) the customer database at path.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "[sqliterepo.Open] open database")
	}
	// modernc.org/sqlite serialises writes internally; a single connection
	// avoids SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqliterepo.Open] apply schema")
	}
	return &Repo{db: db}, nil
}

// Close releases the database handle.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Upsert inserts or replaces a registration record, assigning an ID when
// absent.
func (r *Repo) Upsert(ctx context.Context, customer *customers.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, full_name, place, contact_number, date_of_birth, registered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			place = excluded.place,
			contact_number = excluded.contact_number,
			date_of_birth = excluded.date_of_birth,
			registered_at = excluded.registered_at`,
		customer.ID,
		customer.FullName,
		customer.Place,
		customer.ContactNumber,
		customer.DateOfBirth.Format(dateFormat),
		customer.RegisteredAt.Format(dateFormat),
	)
	return errors.Wrap(err, "[sqliterepo.Upsert]")
}

// GetByID fetches one record.
func (r *Repo) GetByID(ctx context.Context, id string) (*customers.Customer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, place, contact_number, date_of_birth, registered_at
		FROM customers WHERE id = ?`, id)

	customer, err := scanCustomer(row.Scan)
	if err != nil {
		return nil, errors.Wrap(err, "[sqliterepo.GetByID]")
	}
	return customer, nil
}

// List returns all records ordered by registration date.
func (r *Repo) List(ctx context.Context) ([]customers.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, place, contact_number, date_of_birth, registered_at
		FROM customers ORDER BY registered_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "[sqliterepo.List] query")
	}
	defer rows.Close()

	var list []customers.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "[sqliterepo.List] scan")
		}
		list = append(list, *customer)
	}
	return list, errors.Wrap(rows.Err(), "[sqliterepo.List] rows")
}

// Delete removes a record; deleting a missing record is a no-op.
func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	return errors.Wrap(err, "[sqliterepo.Delete]")
}

func scanCustomer(scan func(dest ...any) error) (*customers.Customer, error) {
	var c customers.Customer
	var dob, registered string
	if err := scan(&c.ID, &c.FullName, &c.Place, &c.ContactNumber, &dob, &registered); err != nil {
		return nil, err
	}

	var err error
	if c.DateOfBirth, err = time.Parse(dateFormat, dob); err != nil {
		return nil, err
	}
	if c.RegisteredAt, err = time.Parse(dateFormat, registered); err != nil {
		return nil, err
	}
	return &c, nil
}
