package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/space-reservation/internal/model"
)

// SpaceRepo provides CRUD operations for the space catalog.  Spaces
// are read-mostly reference data; the only non-trivial write is the
// cascading delete, which removes a space's reservations and the
// space itself in one transaction.
type SpaceRepo struct {
	db           *sql.DB
	reservations *ReservationRepo
}

// NewSpaceRepo returns a new SpaceRepo bound to the given database.
// The reservation repository is needed for the cascading delete.
func NewSpaceRepo(db *sql.DB, reservations *ReservationRepo) *SpaceRepo {
	return &SpaceRepo{db: db, reservations: reservations}
}

// SpaceDetail is a space with its type expanded, as returned by list
// and get operations.
type SpaceDetail struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Capacity    int32    `json:"capacity"`
	Photos      *string  `json:"photos"`
	Status      *bool    `json:"status"`
	Type        TypeView `json:"type"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

const spaceSelect = `SELECT s.id, s.name, s.description, s.capacity, s.photos, s.status,
                            t.id, t.name,
                            DATE_FORMAT(s.created_at, '%Y-%m-%dT%H:%i:%sZ'),
                            DATE_FORMAT(s.updated_at, '%Y-%m-%dT%H:%i:%sZ')
                     FROM spaces s
                     JOIN types t ON t.id = s.type_id`

func scanSpace(row interface{ Scan(...any) error }) (SpaceDetail, error) {
	var d SpaceDetail
	var desc, photos sql.NullString
	var status sql.NullBool
	err := row.Scan(
		&d.ID, &d.Name, &desc, &d.Capacity, &photos, &status,
		&d.Type.ID, &d.Type.Name, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return SpaceDetail{}, err
	}
	if desc.Valid {
		v := desc.String
		d.Description = &v
	}
	if photos.Valid {
		v := photos.String
		d.Photos = &v
	}
	if status.Valid {
		v := status.Bool
		d.Status = &v
	}
	return d, nil
}

// Create inserts a space and populates its generated ID.
func (r *SpaceRepo) Create(ctx context.Context, s *model.Space) error {
	const q = `INSERT INTO spaces (name, description, capacity, type_id, photos, status)
               VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, s.Name, s.Description, s.Capacity, s.TypeID, s.Photos, s.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update overwrites a space's attributes.  Returns ErrSpaceNotFound
// when no row matches the ID.
func (r *SpaceRepo) Update(ctx context.Context, s *model.Space) error {
	const q = `UPDATE spaces
               SET name = ?, description = ?, capacity = ?, type_id = ?, photos = ?, status = ?,
                   updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, s.Name, s.Description, s.Capacity, s.TypeID, s.Photos, s.Status, s.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM spaces WHERE id = ?)`, s.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrSpaceNotFound
		}
	}
	return nil
}

// GetByID returns a space with its type expanded, or ErrSpaceNotFound.
func (r *SpaceRepo) GetByID(ctx context.Context, id uint64) (SpaceDetail, error) {
	row := r.db.QueryRowContext(ctx, spaceSelect+` WHERE s.id = ?`, id)
	d, err := scanSpace(row)
	if err == sql.ErrNoRows {
		return SpaceDetail{}, ErrSpaceNotFound
	}
	return d, err
}

// Exists reports whether a space row with the given ID is present.
func (r *SpaceRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM spaces WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// ListAll returns every space with its type expanded, ordered by ID
// ascending.
func (r *SpaceRepo) ListAll(ctx context.Context) ([]SpaceDetail, error) {
	rows, err := r.db.QueryContext(ctx, spaceSelect+` ORDER BY s.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	spaces := make([]SpaceDetail, 0)
	for rows.Next() {
		d, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return spaces, nil
}

// NameExists reports whether another space already uses the given name
// (case-sensitive exact match).  Pass excludeID 0 to consider every
// row.
func (r *SpaceRepo) NameExists(ctx context.Context, name string, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM spaces WHERE name = BINARY ? AND id <> ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, name, excludeID).Scan(&exists)
	return exists, err
}

// DeleteCascade removes a space together with all of its reservations
// in one transaction.  The cascade is explicit rather than delegated
// to a foreign-key action so the count of removed reservations can be
// reported.  Returns ErrSpaceNotFound when the space does not exist.
func (r *SpaceRepo) DeleteCascade(ctx context.Context, id uint64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock the space row first so no reservation can slip in between
	// the cascade and the delete.
	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM spaces WHERE id = ? FOR UPDATE`, id).Scan(&locked)
	if err == sql.ErrNoRows {
		return 0, ErrSpaceNotFound
	}
	if err != nil {
		return 0, err
	}
	removed, err := r.reservations.DeleteBySpaceTx(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM spaces WHERE id = ?`, id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return removed, nil
}
