package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/repository"
)

// SpaceRepository is the persistence contract for the space catalog.
// DeleteCascade removes the space together with its reservations in
// one transaction and reports how many reservations went with it.
type SpaceRepository interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	Create(ctx context.Context, s *model.Space) error
	Update(ctx context.Context, s *model.Space) error
	GetByID(ctx context.Context, id uint64) (repository.SpaceDetail, error)
	ListAll(ctx context.Context) ([]repository.SpaceDetail, error)
	NameExists(ctx context.Context, name string, excludeID uint64) (bool, error)
	DeleteCascade(ctx context.Context, id uint64) (int64, error)
}

// TypeRepository is the slice of space-type persistence the catalog
// needs: reference validation only.
type TypeRepository interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// SpaceService owns the space catalog: create, read, update and
// cascading delete of bookable spaces.
type SpaceService struct {
	spaces SpaceRepository
	types  TypeRepository
}

// NewSpaceService constructs the catalog service.
func NewSpaceService(spaces SpaceRepository, types TypeRepository) *SpaceService {
	if spaces == nil || types == nil {
		panic("nil repository passed to NewSpaceService")
	}
	return &SpaceService{spaces: spaces, types: types}
}

// CreateSpaceInput carries the fields accepted when creating a space.
// Capacity is unconstrained on creation; the minimum of 1 applies only
// on update.
type CreateSpaceInput struct {
	Name        string
	Description *string
	Capacity    int32
	TypeID      uint64
	Photos      *string
}

// UpdateSpaceInput carries the full replacement state for a space,
// including the optional active flag.
type UpdateSpaceInput struct {
	Name        string
	Description *string
	Capacity    int32
	TypeID      uint64
	Photos      *string
	Status      *bool
}

// Create validates and persists a new space.
func (s *SpaceService) Create(ctx context.Context, principal model.Principal, in CreateSpaceInput) (repository.SpaceDetail, error) {
	fields := make(FieldErrors)
	if err := s.validateName(ctx, in.Name, 0, fields); err != nil {
		return repository.SpaceDetail{}, err
	}
	if err := s.validateType(ctx, in.TypeID, fields); err != nil {
		return repository.SpaceDetail{}, err
	}
	if len(fields) > 0 {
		return repository.SpaceDetail{}, &ValidationError{Fields: fields}
	}

	space := model.Space{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Capacity:    in.Capacity,
		TypeID:      in.TypeID,
		Photos:      in.Photos,
	}
	if err := s.spaces.Create(ctx, &space); err != nil {
		return repository.SpaceDetail{}, err
	}
	log.Printf("space %d created by user %d (%s)", space.ID, principal.UserID, principal.Role)
	return s.spaces.GetByID(ctx, space.ID)
}

// Update replaces a space's attributes.  Unlike creation, capacity
// must be at least 1 here.
func (s *SpaceService) Update(ctx context.Context, principal model.Principal, id uint64, in UpdateSpaceInput) (repository.SpaceDetail, error) {
	if ok, err := s.spaces.Exists(ctx, id); err != nil {
		return repository.SpaceDetail{}, err
	} else if !ok {
		return repository.SpaceDetail{}, ErrNotFound
	}

	fields := make(FieldErrors)
	if err := s.validateName(ctx, in.Name, id, fields); err != nil {
		return repository.SpaceDetail{}, err
	}
	if err := s.validateType(ctx, in.TypeID, fields); err != nil {
		return repository.SpaceDetail{}, err
	}
	if in.Capacity < 1 {
		fields.Add("capacity", "The capacity must be at least 1.")
	}
	if len(fields) > 0 {
		return repository.SpaceDetail{}, &ValidationError{Fields: fields}
	}

	space := model.Space{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Capacity:    in.Capacity,
		TypeID:      in.TypeID,
		Photos:      in.Photos,
		Status:      in.Status,
	}
	if err := s.spaces.Update(ctx, &space); err != nil {
		if errors.Is(err, repository.ErrSpaceNotFound) {
			return repository.SpaceDetail{}, ErrNotFound
		}
		return repository.SpaceDetail{}, err
	}
	log.Printf("space %d updated by user %d (%s)", id, principal.UserID, principal.Role)
	return s.spaces.GetByID(ctx, id)
}

// Get returns one space with its type expanded.
func (s *SpaceService) Get(ctx context.Context, id uint64) (repository.SpaceDetail, error) {
	detail, err := s.spaces.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSpaceNotFound) {
			return repository.SpaceDetail{}, ErrNotFound
		}
		return repository.SpaceDetail{}, err
	}
	return detail, nil
}

// List returns every space with its type expanded.
func (s *SpaceService) List(ctx context.Context) ([]repository.SpaceDetail, error) {
	return s.spaces.ListAll(ctx)
}

// Delete removes a space and cascades the deletion to all of its
// reservations.  The cascade is deliberate: reservations for a space
// that no longer exists are meaningless.
func (s *SpaceService) Delete(ctx context.Context, principal model.Principal, id uint64) error {
	removed, err := s.spaces.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSpaceNotFound) {
			return ErrNotFound
		}
		return err
	}
	log.Printf("space %d deleted by user %d (%s), %d reservations removed", id, principal.UserID, principal.Role, removed)
	return nil
}

func (s *SpaceService) validateName(ctx context.Context, name string, excludeID uint64, fields FieldErrors) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		fields.Add("name", "The name field is required.")
	case utf8.RuneCountInString(trimmed) > 255:
		fields.Add("name", "The name may not be greater than 255 characters.")
	default:
		taken, err := s.spaces.NameExists(ctx, trimmed, excludeID)
		if err != nil {
			return err
		}
		if taken {
			fields.Add("name", "The name has already been taken.")
		}
	}
	return nil
}

func (s *SpaceService) validateType(ctx context.Context, typeID uint64, fields FieldErrors) error {
	if typeID == 0 {
		fields.Add("type_id", "The type field is required.")
		return nil
	}
	ok, err := s.types.Exists(ctx, typeID)
	if err != nil {
		return err
	}
	if !ok {
		fields.Add("type_id", "The selected type is not valid.")
	}
	return nil
}
