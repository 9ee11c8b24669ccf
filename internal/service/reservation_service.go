package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/queue"
	"github.com/iliyamo/space-reservation/internal/repository"
)

// ReservationRepository is the persistence contract the lifecycle
// manager runs against.  Create and Update are atomic: they re-run the
// availability predicate under a per-space row lock before writing and
// return repository.ErrTimeSlotTaken when the window is contested.
type ReservationRepository interface {
	HasConflict(ctx context.Context, spaceID uint64, date, start, end string, excludeID uint64) (bool, error)
	EventNameExists(ctx context.Context, name string, excludeID uint64) (bool, error)
	Create(ctx context.Context, res *model.Reservation) error
	Update(ctx context.Context, res *model.Reservation, recheck bool) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (repository.ReservationDetail, error)
	GetRow(ctx context.Context, id uint64) (model.Reservation, error)
	ListAll(ctx context.Context) ([]repository.ReservationDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
}

// UserRepository is the slice of user persistence the reservation
// service needs: reference validation only.
type UserRepository interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// EventPublisher delivers domain events to the message broker.  A nil
// publisher disables messaging; publish failures never fail the
// request that triggered them.
type EventPublisher interface {
	ReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// ReservationService owns creation, update, deletion and status
// transitions of reservations, consulting the availability check
// before any state-changing write.
type ReservationService struct {
	reservations ReservationRepository
	spaces       SpaceRepository
	users        UserRepository
	publisher    EventPublisher
}

// NewReservationService constructs the service.  The publisher may be
// nil when no broker is configured.
func NewReservationService(reservations ReservationRepository, spaces SpaceRepository, users UserRepository, publisher EventPublisher) *ReservationService {
	if reservations == nil || spaces == nil || users == nil {
		panic("nil repository passed to NewReservationService")
	}
	return &ReservationService{reservations: reservations, spaces: spaces, users: users, publisher: publisher}
}

// CreateReservationInput carries the fields a client may supply when
// creating a reservation.  Status is deliberately absent: every
// reservation starts PENDING no matter what the request body said.
type CreateReservationInput struct {
	UserID    uint64
	SpaceID   uint64
	EventName string
	Date      string
	StartTime string
	EndTime   string
}

// UpdateReservationInput carries the full replacement state for an
// existing reservation, including its status.
type UpdateReservationInput struct {
	UserID    uint64
	SpaceID   uint64
	EventName string
	Date      string
	StartTime string
	EndTime   string
	Status    string
}

// Create validates the input, verifies the window is free and persists
// a new PENDING reservation.  The availability predicate runs twice:
// once here for a precise field-level error, and again inside the
// insert transaction while the space row is locked, so concurrent
// requests for overlapping windows cannot both commit.
func (s *ReservationService) Create(ctx context.Context, principal model.Principal, in CreateReservationInput) (repository.ReservationDetail, error) {
	fields := make(FieldErrors)
	if err := s.validateCommon(ctx, &in, 0, fields); err != nil {
		return repository.ReservationDetail{}, err
	}
	if len(fields) > 0 {
		return repository.ReservationDetail{}, &ValidationError{Fields: fields}
	}

	conflict, err := s.reservations.HasConflict(ctx, in.SpaceID, in.Date, in.StartTime, in.EndTime, 0)
	if err != nil {
		return repository.ReservationDetail{}, err
	}
	if conflict {
		return repository.ReservationDetail{}, conflictError()
	}

	res := model.Reservation{
		UserID:    in.UserID,
		SpaceID:   in.SpaceID,
		EventName: strings.TrimSpace(in.EventName),
		Status:    model.StatusPending,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if err := s.reservations.Create(ctx, &res); err != nil {
		if errors.Is(err, repository.ErrTimeSlotTaken) {
			return repository.ReservationDetail{}, conflictError()
		}
		if errors.Is(err, repository.ErrSpaceNotFound) {
			fields.Add("space_id", "The selected space is not valid.")
			return repository.ReservationDetail{}, &ValidationError{Fields: fields}
		}
		return repository.ReservationDetail{}, err
	}
	log.Printf("reservation %d created by user %d (%s)", res.ID, principal.UserID, principal.Role)
	return s.reservations.GetByID(ctx, res.ID)
}

// Update replaces every field of an existing reservation.  The
// availability re-check runs whenever the space, date or time window
// differs from the stored row, with the reservation's own ID excluded
// so it never conflicts with itself.  A transition into CONFIRMED
// publishes a ReservationConfirmed event after the write commits.
func (s *ReservationService) Update(ctx context.Context, principal model.Principal, id uint64, in UpdateReservationInput) (repository.ReservationDetail, error) {
	current, err := s.reservations.GetRow(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return repository.ReservationDetail{}, ErrNotFound
		}
		return repository.ReservationDetail{}, err
	}

	fields := make(FieldErrors)
	create := CreateReservationInput{
		UserID:    in.UserID,
		SpaceID:   in.SpaceID,
		EventName: in.EventName,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if err := s.validateCommon(ctx, &create, id, fields); err != nil {
		return repository.ReservationDetail{}, err
	}
	status, statusErr := model.ParseStatus(in.Status)
	if strings.TrimSpace(in.Status) == "" {
		fields.Add("status", "The status field is required.")
	} else if statusErr != nil {
		fields.Add("status", "The status must be one of: "+statusValues()+".")
	}
	if len(fields) > 0 {
		return repository.ReservationDetail{}, &ValidationError{Fields: fields}
	}

	recheck := in.SpaceID != current.SpaceID ||
		in.Date != current.Date ||
		in.StartTime != current.StartTime ||
		in.EndTime != current.EndTime
	if recheck {
		conflict, err := s.reservations.HasConflict(ctx, in.SpaceID, in.Date, in.StartTime, in.EndTime, id)
		if err != nil {
			return repository.ReservationDetail{}, err
		}
		if conflict {
			return repository.ReservationDetail{}, conflictError()
		}
	}

	res := model.Reservation{
		ID:        id,
		UserID:    in.UserID,
		SpaceID:   in.SpaceID,
		EventName: strings.TrimSpace(in.EventName),
		Status:    status,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if err := s.reservations.Update(ctx, &res, recheck); err != nil {
		switch {
		case errors.Is(err, repository.ErrTimeSlotTaken):
			return repository.ReservationDetail{}, conflictError()
		case errors.Is(err, repository.ErrReservationNotFound):
			return repository.ReservationDetail{}, ErrNotFound
		case errors.Is(err, repository.ErrSpaceNotFound):
			fields.Add("space_id", "The selected space is not valid.")
			return repository.ReservationDetail{}, &ValidationError{Fields: fields}
		}
		return repository.ReservationDetail{}, err
	}
	log.Printf("reservation %d updated by user %d (%s)", id, principal.UserID, principal.Role)

	detail, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return repository.ReservationDetail{}, err
	}
	if s.publisher != nil && status == model.StatusConfirmed && current.Status != model.StatusConfirmed {
		ev := queue.ReservationConfirmedEvent{
			ReservationID: detail.ID,
			UserID:        detail.User.ID,
			UserName:      detail.User.Name,
			SpaceID:       detail.Space.ID,
			SpaceName:     detail.Space.Name,
			EventName:     detail.EventName,
			Date:          detail.Date,
			StartTime:     detail.StartTime,
			EndTime:       detail.EndTime,
			ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.ReservationConfirmed(ctx, ev); err != nil {
			log.Printf("reservation %d: publish confirmed event failed: %v", id, err)
		}
	}
	return detail, nil
}

// Delete hard-deletes a reservation.  There is no tombstone: a deleted
// ID answers NotFound from then on.
func (s *ReservationService) Delete(ctx context.Context, principal model.Principal, id uint64) error {
	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return ErrNotFound
		}
		return err
	}
	log.Printf("reservation %d deleted by user %d (%s)", id, principal.UserID, principal.Role)
	return nil
}

// Get returns one reservation with its user and space expanded.
func (s *ReservationService) Get(ctx context.Context, principal model.Principal, id uint64) (repository.ReservationDetail, error) {
	detail, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return repository.ReservationDetail{}, ErrNotFound
		}
		return repository.ReservationDetail{}, err
	}
	return detail, nil
}

// List returns every reservation for admins and only the principal's
// own for everyone else, ordered by ID ascending.
func (s *ReservationService) List(ctx context.Context, principal model.Principal) ([]repository.ReservationDetail, error) {
	if principal.CanSeeAllReservations() {
		return s.reservations.ListAll(ctx)
	}
	return s.reservations.ListByUser(ctx, principal.UserID)
}

// Statuses returns the five valid status strings.
func (s *ReservationService) Statuses() []model.Status {
	return model.Statuses()
}

// validateCommon checks the fields shared by create and update,
// collecting every failure so clients see the full picture in one
// round trip.  excludeID removes a reservation from the event-name
// uniqueness check on update.  Reference lookup failures abort the
// validation rather than letting an unverified value through.
func (s *ReservationService) validateCommon(ctx context.Context, in *CreateReservationInput, excludeID uint64, fields FieldErrors) error {
	if in.UserID == 0 {
		fields.Add("user_id", "The user field is required.")
	} else if ok, err := s.users.Exists(ctx, in.UserID); err != nil {
		return err
	} else if !ok {
		fields.Add("user_id", "The selected user is not valid.")
	}
	if in.SpaceID == 0 {
		fields.Add("space_id", "The space field is required.")
	} else if ok, err := s.spaces.Exists(ctx, in.SpaceID); err != nil {
		return err
	} else if !ok {
		fields.Add("space_id", "The selected space is not valid.")
	}

	name := strings.TrimSpace(in.EventName)
	switch {
	case name == "":
		fields.Add("event_name", "The event name field is required.")
	case utf8.RuneCountInString(name) > 50:
		fields.Add("event_name", "The event name may not be greater than 50 characters.")
	default:
		taken, err := s.reservations.EventNameExists(ctx, name, excludeID)
		if err != nil {
			return err
		}
		if taken {
			fields.Add("event_name", "The event name is already in use. Please choose a different one.")
		}
	}

	if in.Date == "" {
		fields.Add("date", "The date field is required.")
	} else if _, err := time.Parse(model.DateLayout, in.Date); err != nil {
		fields.Add("date", "The date must be a valid date in the format YYYY-MM-DD.")
	}

	startOK := false
	if in.StartTime == "" {
		fields.Add("start_time", "The start time field is required.")
	} else if _, err := time.Parse(model.TimeLayout, in.StartTime); err != nil {
		fields.Add("start_time", "The start time must be in the format HH:MM.")
	} else {
		startOK = true
	}
	if in.EndTime == "" {
		fields.Add("end_time", "The end time field is required.")
	} else if _, err := time.Parse(model.TimeLayout, in.EndTime); err != nil {
		fields.Add("end_time", "The end time must be in the format HH:MM.")
	} else if startOK && in.EndTime <= in.StartTime {
		fields.Add("end_time", "The end time must be after the start time.")
	}
	return nil
}

func conflictError() *ConflictError {
	return &ConflictError{
		Field:   "space_id",
		Message: "The space is already reserved for this date and time.",
	}
}

func statusValues() string {
	all := model.Statuses()
	parts := make([]string, len(all))
	for i, st := range all {
		parts[i] = string(st)
	}
	return strings.Join(parts, ", ")
}
