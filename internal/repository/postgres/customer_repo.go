// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-service/internal/domain/customer"
	xerrors "crm-service/internal/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const customerColumns = `id, first_name, last_name, email, phone, company, position,
	status, source, outlet, address_street, address_city, address_state, address_zip,
	address_country, notes, tags, deal_value, customer_type, registration_date,
	last_contact_date, external_client_id, sync_status, sync_date, sync_error,
	created_at, updated_at`

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Company, &c.Position,
		&c.Status, &c.Source, &c.Outlet, &c.Address.Street, &c.Address.City, &c.Address.State,
		&c.Address.ZipCode, &c.Address.Country, &c.Notes, &c.Tags, &c.DealValue, &c.CustomerType,
		&c.RegistrationDate, &c.LastContactDate, &c.ExternalClientID, &c.SyncStatus, &c.SyncDate,
		&c.SyncError, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func mapCustomerWriteError(err error) error {
	switch uniqueConstraint(err) {
	case "customers_email_key":
		return customer.ErrDuplicateEmail
	case "customers_external_client_id_key":
		return customer.ErrDuplicateExternalID
	}
	return err
}

// Create inserts a fully built customer, sync metadata included.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}

	_, err := r.db.Exec(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.Position,
		c.Status, c.Source, c.Outlet, c.Address.Street, c.Address.City, c.Address.State,
		c.Address.ZipCode, c.Address.Country, c.Notes, c.Tags, c.DealValue, c.CustomerType,
		c.RegistrationDate, c.LastContactDate, c.ExternalClientID, c.SyncStatus, c.SyncDate,
		c.SyncError, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if mapped := mapCustomerWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

// ExistsByEmail checks the unique email ahead of the external call.
func (r *CustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Update writes direct field edits. Sync metadata columns are left untouched.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4, company = $5,
		    position = $6, status = $7, source = $8, outlet = $9, address_street = $10,
		    address_city = $11, address_state = $12, address_zip = $13, address_country = $14,
		    notes = $15, tags = $16, deal_value = $17, customer_type = $18,
		    last_contact_date = $19, updated_at = $20
		WHERE id = $21
	`

	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}
	c.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Company,
		c.Position, c.Status, c.Source, c.Outlet, c.Address.Street,
		c.Address.City, c.Address.State, c.Address.ZipCode, c.Address.Country,
		c.Notes, c.Tags, c.DealValue, c.CustomerType,
		c.LastContactDate, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if mapped := mapCustomerWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// UpdateSyncState persists the sync metadata of c.
func (r *CustomerRepository) UpdateSyncState(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET external_client_id = $1, sync_status = $2, sync_date = $3, sync_error = $4, updated_at = $5
		WHERE id = $6
	`

	c.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(ctx, query,
		c.ExternalClientID, c.SyncStatus, c.SyncDate, c.SyncError, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if mapped := mapCustomerWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func applyCustomerFilters(stmt sq.SelectBuilder, f customer.ListFilters) sq.SelectBuilder {
	if f.Status != "" {
		stmt = stmt.Where(sq.Eq{"status": f.Status})
	}
	if f.Outlet != "" {
		stmt = stmt.Where(sq.Eq{"outlet": f.Outlet})
	}
	if f.SyncStatus != "" {
		stmt = stmt.Where(sq.Eq{"sync_status": f.SyncStatus})
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		stmt = stmt.Where(sq.Or{
			sq.ILike{"first_name": p},
			sq.ILike{"last_name": p},
			sq.ILike{"email": p},
			sq.ILike{"company": p},
		})
	}
	return stmt
}

// List returns one page of customers, newest first, and the filtered total.
// Page and Limit are expected to be normalized by the caller.
func (r *CustomerRepository) List(ctx context.Context, f customer.ListFilters) ([]customer.Customer, int64, error) {
	countSQL, countArgs, err := applyCustomerFilters(psql.Select("COUNT(*)").From("customers"), f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	stmt := applyCustomerFilters(psql.Select(customerColumns).From("customers"), f).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit))

	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []customer.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate customers: %w", err)
	}

	return customers, total, nil
}

// ListUnsynced returns the oldest customers still pending or failed.
func (r *CustomerRepository) ListUnsynced(ctx context.Context, limit int) ([]*customer.Customer, error) {
	query, args, err := psql.Select(customerColumns).
		From("customers").
		Where(sq.Eq{"sync_status": []string{string(customer.SyncPending), string(customer.SyncFailed)}}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build unsynced query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced customers: %w", err)
	}
	defer rows.Close()

	var out []*customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) GetStats(ctx context.Context) (*customer.Stats, error) {
	stats := &customer.Stats{
		ByStatus:     map[string]int64{},
		BySyncStatus: map[string]int64{},
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	groups := []struct {
		column string
		into   map[string]int64
	}{
		{"status", stats.ByStatus},
		{"sync_status", stats.BySyncStatus},
	}
	for _, g := range groups {
		rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM customers GROUP BY %s`, g.column, g.column))
		if err != nil {
			return nil, fmt.Errorf("failed to group customers by %s: %w", g.column, err)
		}
		for rows.Next() {
			var key string
			var n int64
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s group: %w", g.column, err)
			}
			g.into[key] = n
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return stats, nil
}
