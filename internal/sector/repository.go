// internal/sector/repository.go
//
// SQL access for sectors and their geography lookups.
//
// Context
// -------
// The schema lives in the CRM database:
//
//	department    (id PK, name)
//	municipality  (id PK, department_id FK, name)
//	sector        (id PK, name, description NULL, municipality_id NULL, updated_at)
//
// Queries are parameterised and scoped by the caller's context so request
// deadlines propagate.  UpdateSector relies on the DSN flag clientFoundRows
// so a no-op update still reports one affected row.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package sector

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a sector or municipality id has no row.
var ErrNotFound = errors.New("sector: not found")

//go:embed migrations/*.sql
var migrationFS embed.FS

// Repository wraps a *sqlx.DB scoped to the CRM database.
type Repository struct {
	db *sqlx.DB
}

// NewRepository returns a Repository over db.
func NewRepository(db *sqlx.DB) *Repository { return &Repository{db: db} }

// Migrations returns the goose migration files for this package's tables.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		panic(err) // static path, cannot fail
	}
	return sub
}

// SectorByID fetches one sector.
func (r *Repository) SectorByID(ctx context.Context, id int64) (*Sector, error) {
	const q = `
        SELECT id, name, description, municipality_id, updated_at
        FROM   sector
        WHERE  id = ?
        LIMIT  1`
	var s Sector
	if err := r.db.GetContext(ctx, &s, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sector %d: %w", id, err)
	}
	return &s, nil
}

// Sectors lists up to limit sectors ordered by name.
func (r *Repository) Sectors(ctx context.Context, limit int) ([]Sector, error) {
	const q = `
        SELECT id, name, description, municipality_id, updated_at
        FROM   sector
        ORDER  BY name
        LIMIT  ?`
	rows := make([]Sector, 0, 64)
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("sectors: %w", err)
	}
	return rows, nil
}

// UpdateSector writes the patch.  ErrNotFound when p.ID matches no row.
func (r *Repository) UpdateSector(ctx context.Context, p Patch) error {
	const q = `
        UPDATE sector
        SET    name = ?, description = ?, municipality_id = ?, updated_at = ?
        WHERE  id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.MunicipalityID, time.Now().UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update sector %d: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sector %d: %w", p.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Departments lists every department ordered by name.
func (r *Repository) Departments(ctx context.Context) ([]Department, error) {
	const q = `SELECT id, name FROM department ORDER BY name`
	rows := make([]Department, 0, 32)
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("departments: %w", err)
	}
	return rows, nil
}

// MunicipalitiesByDepartment lists the municipalities of one department
// ordered by name.
func (r *Repository) MunicipalitiesByDepartment(ctx context.Context, departmentID int64) ([]Municipality, error) {
	const q = `
        SELECT id, name, department_id
        FROM   municipality
        WHERE  department_id = ?
        ORDER  BY name`
	rows := make([]Municipality, 0, 64)
	if err := r.db.SelectContext(ctx, &rows, q, departmentID); err != nil {
		return nil, fmt.Errorf("municipalities of department %d: %w", departmentID, err)
	}
	return rows, nil
}

// MunicipalityByID fetches one municipality, used to infer the department
// of a sector when the dialog opens.
func (r *Repository) MunicipalityByID(ctx context.Context, id int64) (*Municipality, error) {
	const q = `SELECT id, name, department_id FROM municipality WHERE id = ? LIMIT 1`
	var m Municipality
	if err := r.db.GetContext(ctx, &m, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("municipality %d: %w", id, err)
	}
	return &m, nil
}
