// internal/repository/postgres/outlet_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-service/internal/domain/outlet"
	xerrors "crm-service/internal/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const outletColumns = `id, name, code, description, address_street, address_city,
	address_state, address_zip, address_country, phone, email, manager, status, type,
	created_at, updated_at`

type OutletRepository struct {
	db *pgxpool.Pool
}

func NewOutletRepository(db *pgxpool.Pool) *OutletRepository {
	return &OutletRepository{db: db}
}

func scanOutlet(row pgx.Row) (*outlet.Outlet, error) {
	var o outlet.Outlet
	err := row.Scan(
		&o.ID, &o.Name, &o.Code, &o.Description, &o.Address.Street, &o.Address.City,
		&o.Address.State, &o.Address.ZipCode, &o.Address.Country, &o.Phone, &o.Email, &o.Manager,
		&o.Status, &o.Type, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func mapOutletWriteError(err error) error {
	if uniqueConstraint(err) == "outlets_code_key" {
		return outlet.ErrDuplicateCode
	}
	return err
}

func (r *OutletRepository) Create(ctx context.Context, o *outlet.Outlet) error {
	query := `
		INSERT INTO outlets (` + outletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		o.ID, o.Name, o.Code, o.Description, o.Address.Street, o.Address.City,
		o.Address.State, o.Address.ZipCode, o.Address.Country, o.Phone, o.Email, o.Manager,
		o.Status, o.Type, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if mapped := mapOutletWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create outlet: %w", err)
	}
	return nil
}

// Upsert inserts the outlet or refreshes the row holding the same code.
func (r *OutletRepository) Upsert(ctx context.Context, o *outlet.Outlet) error {
	query := `
		INSERT INTO outlets (` + outletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description,
		    status = EXCLUDED.status, type = EXCLUDED.type, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		o.ID, o.Name, o.Code, o.Description, o.Address.Street, o.Address.City,
		o.Address.State, o.Address.ZipCode, o.Address.Country, o.Phone, o.Email, o.Manager,
		o.Status, o.Type, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert outlet %s: %w", o.Code, err)
	}
	return nil
}

func (r *OutletRepository) FindByID(ctx context.Context, id string) (*outlet.Outlet, error) {
	o, err := scanOutlet(r.db.QueryRow(ctx, `SELECT `+outletColumns+` FROM outlets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find outlet: %w", err)
	}
	return o, nil
}

func (r *OutletRepository) FindByCode(ctx context.Context, code string) (*outlet.Outlet, error) {
	o, err := scanOutlet(r.db.QueryRow(ctx, `SELECT `+outletColumns+` FROM outlets WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find outlet: %w", err)
	}
	return o, nil
}

func (r *OutletRepository) Update(ctx context.Context, o *outlet.Outlet) error {
	query := `
		UPDATE outlets
		SET name = $1, code = $2, description = $3, address_street = $4, address_city = $5,
		    address_state = $6, address_zip = $7, address_country = $8, phone = $9,
		    email = $10, manager = $11, status = $12, type = $13, updated_at = $14
		WHERE id = $15
	`

	o.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(ctx, query,
		o.Name, o.Code, o.Description, o.Address.Street, o.Address.City,
		o.Address.State, o.Address.ZipCode, o.Address.Country, o.Phone,
		o.Email, o.Manager, o.Status, o.Type, o.UpdatedAt, o.ID,
	)
	if err != nil {
		if mapped := mapOutletWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update outlet: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *OutletRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM outlets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete outlet: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// List returns outlets ordered by name.
func (r *OutletRepository) List(ctx context.Context, f outlet.ListFilters) ([]outlet.Outlet, error) {
	stmt := psql.Select(outletColumns).From("outlets")
	if f.Status != "" {
		stmt = stmt.Where(sq.Eq{"status": f.Status})
	}
	if f.Type != "" {
		stmt = stmt.Where(sq.Eq{"type": f.Type})
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		stmt = stmt.Where(sq.Or{sq.ILike{"name": p}, sq.ILike{"code": p}})
	}

	query, args, err := stmt.OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build outlet query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outlets: %w", err)
	}
	defer rows.Close()

	outlets := []outlet.Outlet{}
	for rows.Next() {
		o, err := scanOutlet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outlet: %w", err)
		}
		outlets = append(outlets, *o)
	}
	return outlets, rows.Err()
}

func (r *OutletRepository) GetStats(ctx context.Context) (*outlet.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'inactive'),
			COUNT(*) FILTER (WHERE status = 'maintenance')
		FROM outlets
	`

	stats := &outlet.Stats{ByType: map[string]int64{}}
	if err := r.db.QueryRow(ctx, query).Scan(&stats.Total, &stats.Active, &stats.Inactive, &stats.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to get outlet stats: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT type, COUNT(*) FROM outlets GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to group outlets by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outlet type: %w", err)
		}
		stats.ByType[t] = n
	}
	return stats, rows.Err()
}
