package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// ReservationRepo provides CRUD operations and availability checks for
// reservations.  Dates and time-of-day values travel as strings in
// model.DateLayout / model.TimeLayout; DATE and TIME columns are
// formatted in SQL so scanning stays free of driver time conversions.
// All timestamp fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning multiple repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// UserView is the trimmed user representation embedded in a
// reservation response.
type UserView struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SpaceView is the space representation embedded in a reservation
// response, with its type expanded.
type SpaceView struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Capacity    int32    `json:"capacity"`
	Photos      *string  `json:"photos"`
	Status      *bool    `json:"status"`
	Type        TypeView `json:"type"`
}

// TypeView is the space-type representation embedded in a space
// response.
type TypeView struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ReservationDetail is a reservation with its user and space expanded,
// as returned by list and get operations.  Status serializes in its
// upper-case canonical form.
type ReservationDetail struct {
	ID        uint64       `json:"id"`
	User      UserView     `json:"user"`
	Space     SpaceView    `json:"space"`
	EventName string       `json:"event_name"`
	Date      string       `json:"date"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Status    model.Status `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

const detailSelect = `SELECT r.id, r.event_name, DATE_FORMAT(r.date, '%Y-%m-%d'),
                             TIME_FORMAT(r.start_time, '%H:%i'), TIME_FORMAT(r.end_time, '%H:%i'),
                             r.status, r.created_at, r.updated_at,
                             u.id, u.name, u.email,
                             s.id, s.name, s.description, s.capacity, s.photos, s.status,
                             t.id, t.name
                      FROM reservations r
                      JOIN users u ON u.id = r.user_id
                      JOIN spaces s ON s.id = r.space_id
                      JOIN types t ON t.id = s.type_id`

func scanDetail(row interface{ Scan(...any) error }) (ReservationDetail, error) {
	var d ReservationDetail
	var desc, photos sql.NullString
	var status sql.NullBool
	err := row.Scan(
		&d.ID, &d.EventName, &d.Date, &d.StartTime, &d.EndTime,
		&d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.User.ID, &d.User.Name, &d.User.Email,
		&d.Space.ID, &d.Space.Name, &desc, &d.Space.Capacity, &photos, &status,
		&d.Space.Type.ID, &d.Space.Type.Name,
	)
	if err != nil {
		return ReservationDetail{}, err
	}
	if desc.Valid {
		v := desc.String
		d.Space.Description = &v
	}
	if photos.Valid {
		v := photos.String
		d.Space.Photos = &v
	}
	if status.Valid {
		v := status.Bool
		d.Space.Status = &v
	}
	return d, nil
}

// HasConflict reports whether any active reservation on the given
// space and date overlaps the half-open window [start,end).  Rows in
// CANCELED, COMPLETED or NO_SHOW status never conflict.  excludeID
// removes one reservation from consideration so an update does not
// conflict with itself; pass 0 to exclude nothing.  The query is
// read-only: writes re-run the same predicate under a row lock.
func (r *ReservationRepo) HasConflict(ctx context.Context, spaceID uint64, date, start, end string, excludeID uint64) (bool, error) {
	return hasConflict(ctx, r.db, spaceID, date, start, end, excludeID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasConflict(ctx context.Context, q querier, spaceID uint64, date, start, end string, excludeID uint64) (bool, error) {
	// Two windows overlap unless one ends at or before the other
	// starts.  TIME columns compare correctly against 'HH:MM' strings.
	const query = `SELECT EXISTS(
                       SELECT 1 FROM reservations
                       WHERE space_id = ? AND date = ? AND id <> ?
                         AND status IN ('PENDING','CONFIRMED')
                         AND NOT (end_time <= ? OR start_time >= ?))`
	var exists bool
	if err := q.QueryRowContext(ctx, query, spaceID, date, excludeID, start, end).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// EventNameExists reports whether any reservation other than excludeID
// already uses the given event name.  Uniqueness is global, not per
// space or date.  Pass excludeID 0 to consider every row.
func (r *ReservationRepo) EventNameExists(ctx context.Context, name string, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM reservations WHERE event_name = ? AND id <> ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, name, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a reservation after re-verifying availability inside
// a transaction that holds a row lock on the target space.  The lock
// serializes concurrent check-then-write sequences per space, so two
// requests for overlapping windows cannot both commit.  On success the
// generated ID and timestamps are populated on res.  Returns
// ErrSpaceNotFound when the space row has disappeared and
// ErrTimeSlotTaken when the window is no longer free.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := lockSpaceTx(ctx, tx, res.SpaceID); err != nil {
		return err
	}
	conflict, err := hasConflict(ctx, tx, res.SpaceID, res.Date, res.StartTime, res.EndTime, 0)
	if err != nil {
		return err
	}
	if conflict {
		return ErrTimeSlotTaken
	}
	const ins = `INSERT INTO reservations (user_id, space_id, event_name, status, date, start_time, end_time)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins, res.UserID, res.SpaceID, res.EventName, res.Status, res.Date, res.StartTime, res.EndTime)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the row to populate the generated timestamps.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update overwrites every field of an existing reservation (full
// replace, not a partial patch).  When recheck is true the
// availability predicate is re-run under the space row lock with the
// reservation's own ID excluded before the write.  Returns
// ErrReservationNotFound when no row matches, ErrTimeSlotTaken on
// conflict.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation, recheck bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if recheck {
		if err := lockSpaceTx(ctx, tx, res.SpaceID); err != nil {
			return err
		}
		conflict, err := hasConflict(ctx, tx, res.SpaceID, res.Date, res.StartTime, res.EndTime, res.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrTimeSlotTaken
		}
	}
	const upd = `UPDATE reservations
                 SET user_id = ?, space_id = ?, event_name = ?, status = ?,
                     date = ?, start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP
                 WHERE id = ?`
	result, err := tx.ExecContext(ctx, upd, res.UserID, res.SpaceID, res.EventName, res.Status, res.Date, res.StartTime, res.EndTime, res.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "row missing" from "row unchanged": MySQL reports
		// zero affected rows for both, but updated_at always changes.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`, res.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrReservationNotFound
		}
	}
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete hard-deletes a reservation.  Returns ErrReservationNotFound
// when no row had the given ID.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// GetByID returns a single reservation with its user and space
// expanded, or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (ReservationDetail, error) {
	row := r.db.QueryRowContext(ctx, detailSelect+` WHERE r.id = ?`, id)
	d, err := scanDetail(row)
	if err == sql.ErrNoRows {
		return ReservationDetail{}, ErrReservationNotFound
	}
	return d, err
}

// GetRow returns the bare reservation row without expansion.  The
// service layer uses it during updates to compare the stored space,
// date and window against the incoming values.
func (r *ReservationRepo) GetRow(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT id, user_id, space_id, event_name, status,
                      DATE_FORMAT(date, '%Y-%m-%d'),
                      TIME_FORMAT(start_time, '%H:%i'), TIME_FORMAT(end_time, '%H:%i'),
                      created_at, updated_at
               FROM reservations WHERE id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.UserID, &res.SpaceID, &res.EventName, &res.Status,
		&res.Date, &res.StartTime, &res.EndTime, &res.CreatedAt, &res.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// ListAll returns every reservation with user and space expanded,
// ordered by ID ascending so repeated calls are stable absent writes.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	return r.list(ctx, detailSelect+` ORDER BY r.id ASC`)
}

// ListByUser returns the reservations owned by one user, ordered by ID
// ascending.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	return r.list(ctx, detailSelect+` WHERE r.user_id = ? ORDER BY r.id ASC`, userID)
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// DeleteBySpaceTx removes every reservation referencing a space within
// the scope of an existing transaction.  It backs the space catalog's
// cascading delete; the caller commits or rolls back.
func (r *ReservationRepo) DeleteBySpaceTx(ctx context.Context, tx *sql.Tx, spaceID uint64) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE space_id = ?`, spaceID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// lockSpaceTx takes a row lock on the space for the duration of the
// surrounding transaction.  Concurrent reservation writes against the
// same space queue up behind it, making check-then-insert atomic.
func lockSpaceTx(ctx context.Context, tx *sql.Tx, spaceID uint64) error {
	var id uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM spaces WHERE id = ? FOR UPDATE`, spaceID).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrSpaceNotFound
	}
	return err
}
