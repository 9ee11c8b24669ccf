package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/space-reservation/internal/model"
)

// TypeRepo provides access to the `types` reference table.  Types are
// created and renamed by admins but never deleted, since spaces hold
// foreign keys into the table.
type TypeRepo struct {
	db *sql.DB
}

// NewTypeRepo returns a new TypeRepo bound to the given database.
func NewTypeRepo(db *sql.DB) *TypeRepo { return &TypeRepo{db: db} }

// ListAll returns every space type ordered by ID ascending.
func (r *TypeRepo) ListAll(ctx context.Context) ([]model.SpaceType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM types ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.SpaceType, 0)
	for rows.Next() {
		var t model.SpaceType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

// GetByID returns a single space type, or ErrTypeNotFound.
func (r *TypeRepo) GetByID(ctx context.Context, id uint64) (model.SpaceType, error) {
	var t model.SpaceType
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM types WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return model.SpaceType{}, ErrTypeNotFound
	}
	return t, err
}

// Exists reports whether a type row with the given ID is present.
func (r *TypeRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM types WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// Create inserts a type and populates its generated ID.
func (r *TypeRepo) Create(ctx context.Context, t *model.SpaceType) error {
	result, err := r.db.ExecContext(ctx, `INSERT INTO types (name) VALUES (?)`, t.Name)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// Update renames a type.  Returns ErrTypeNotFound when no row matches.
func (r *TypeRepo) Update(ctx context.Context, t *model.SpaceType) error {
	result, err := r.db.ExecContext(ctx, `UPDATE types SET name = ? WHERE id = ?`, t.Name, t.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM types WHERE id = ?)`, t.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrTypeNotFound
		}
	}
	return nil
}
