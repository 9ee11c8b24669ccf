package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/space-reservation/internal/model"
)

type reservationFixture struct {
	svc       *ReservationService
	repo      *fakeReservationRepo
	spaces    *fakeSpaceRepo
	users     *fakeUserRepo
	publisher *fakePublisher
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	users := newFakeUserRepo()
	users.add(1, "Alice", "alice@example.com")
	users.add(2, "Bob", "bob@example.com")

	types := newFakeTypeRepo()
	types.add(1, "Hall")

	spaces := newFakeSpaceRepo(types)
	spaces.add(1, "Main Hall", 1)
	spaces.add(2, "Annex", 1)

	repo := newFakeReservationRepo(spaces, users)
	publisher := &fakePublisher{}
	return &reservationFixture{
		svc:       NewReservationService(repo, spaces, users, publisher),
		repo:      repo,
		spaces:    spaces,
		users:     users,
		publisher: publisher,
	}
}

var admin = model.Principal{UserID: 1, Role: model.RoleAdmin}
var assistant = model.Principal{UserID: 2, Role: model.RoleAssistant}

func validCreate() CreateReservationInput {
	return CreateReservationInput{
		UserID:    1,
		SpaceID:   1,
		EventName: "Team Offsite",
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestCreateReservationStartsPending(t *testing.T) {
	f := newReservationFixture(t)

	got, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "Team Offsite", got.EventName)
	assert.Equal(t, uint64(1), got.User.ID)
	assert.Equal(t, "Main Hall", got.Space.Name)
	assert.Equal(t, "Hall", got.Space.Type.Name)
}

func TestCreateReservationCollectsFieldErrors(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.Create(context.Background(), admin, CreateReservationInput{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	for _, field := range []string{"user_id", "space_id", "event_name", "date", "start_time", "end_time"} {
		assert.Contains(t, ve.Fields, field)
	}
}

func TestCreateReservationRejectsUnknownReferences(t *testing.T) {
	f := newReservationFixture(t)

	in := validCreate()
	in.UserID = 99
	in.SpaceID = 99

	_, err := f.svc.Create(context.Background(), admin, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"The selected user is not valid."}, ve.Fields["user_id"])
	assert.Equal(t, []string{"The selected space is not valid."}, ve.Fields["space_id"])
}

func TestCreateReservationRejectsBadWindow(t *testing.T) {
	f := newReservationFixture(t)

	in := validCreate()
	in.StartTime = "11:00"
	in.EndTime = "11:00"

	_, err := f.svc.Create(context.Background(), admin, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"The end time must be after the start time."}, ve.Fields["end_time"])
}

func TestCreateReservationRejectsMalformedDateAndTimes(t *testing.T) {
	f := newReservationFixture(t)

	in := validCreate()
	in.Date = "10-09-2026"
	in.StartTime = "10am"
	in.EndTime = "25:99"

	_, err := f.svc.Create(context.Background(), admin, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "date")
	assert.Contains(t, ve.Fields, "start_time")
	assert.Contains(t, ve.Fields, "end_time")
}

func TestCreateReservationEventNameUniqueAcrossSpaces(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	in := validCreate()
	in.SpaceID = 2 // different space, same event name
	in.StartTime = "14:00"
	in.EndTime = "15:00"

	_, err = f.svc.Create(context.Background(), admin, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"The event name is already in use. Please choose a different one."}, ve.Fields["event_name"])
}

func TestCreateReservationRejectsOverlap(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	in := validCreate()
	in.EventName = "Second Event"
	in.StartTime = "10:30"
	in.EndTime = "11:30"

	_, err = f.svc.Create(context.Background(), admin, in)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "space_id", ce.Field)
}

func TestCreateReservationAllowsTouchingWindows(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	// [10:00,11:00) then [11:00,12:00): shared boundary, no overlap.
	in := validCreate()
	in.EventName = "Back To Back"
	in.StartTime = "11:00"
	in.EndTime = "12:00"

	_, err = f.svc.Create(context.Background(), admin, in)
	assert.NoError(t, err)
}

func TestCreateReservationRejectsContainedWindow(t *testing.T) {
	f := newReservationFixture(t)

	first := validCreate()
	first.StartTime = "09:00"
	first.EndTime = "17:00"
	_, err := f.svc.Create(context.Background(), admin, first)
	require.NoError(t, err)

	in := validCreate()
	in.EventName = "Nested"
	in.StartTime = "12:00"
	in.EndTime = "13:00"

	_, err = f.svc.Create(context.Background(), admin, in)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
}

func TestCreateReservationIgnoresInactiveRows(t *testing.T) {
	f := newReservationFixture(t)

	got, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	upd := UpdateReservationInput{
		UserID:    1,
		SpaceID:   1,
		EventName: "Team Offsite",
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
		Status:    "CANCELED",
	}
	_, err = f.svc.Update(context.Background(), admin, got.ID, upd)
	require.NoError(t, err)

	// Same window as the canceled reservation is free again.
	in := validCreate()
	in.EventName = "Replacement Event"
	_, err = f.svc.Create(context.Background(), admin, in)
	assert.NoError(t, err)
}

func TestUpdateReservationNotFound(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.Update(context.Background(), admin, 42, UpdateReservationInput{
		UserID: 1, SpaceID: 1, EventName: "X",
		Date: "2026-09-10", StartTime: "10:00", EndTime: "11:00", Status: "PENDING",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReservationKeepingSlotSkipsConflictCheck(t *testing.T) {
	f := newReservationFixture(t)

	got, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	// Same slot, same event name: must not conflict with itself.
	upd := UpdateReservationInput{
		UserID:    1,
		SpaceID:   1,
		EventName: "Team Offsite",
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
		Status:    "confirmed", // case-insensitive
	}
	detail, err := f.svc.Update(context.Background(), admin, got.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, detail.Status)
}

func TestUpdateReservationMovedSlotChecksConflict(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	second := validCreate()
	second.EventName = "Afternoon Session"
	second.StartTime = "14:00"
	second.EndTime = "15:00"
	got, err := f.svc.Create(context.Background(), admin, second)
	require.NoError(t, err)

	// Move the afternoon session onto the morning one.
	upd := UpdateReservationInput{
		UserID:    1,
		SpaceID:   1,
		EventName: "Afternoon Session",
		Date:      "2026-09-10",
		StartTime: "10:30",
		EndTime:   "11:30",
		Status:    "PENDING",
	}
	_, err = f.svc.Update(context.Background(), admin, got.ID, upd)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
}

func TestUpdateReservationRejectsInvalidStatus(t *testing.T) {
	f := newReservationFixture(t)

	got, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	upd := UpdateReservationInput{
		UserID: 1, SpaceID: 1, EventName: "Team Offsite",
		Date: "2026-09-10", StartTime: "10:00", EndTime: "11:00",
		Status: "APPROVED",
	}
	_, err = f.svc.Update(context.Background(), admin, got.ID, upd)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "status")
}

func TestUpdateReservationPublishesOnConfirm(t *testing.T) {
	f := newReservationFixture(t)

	got, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	upd := UpdateReservationInput{
		UserID: 1, SpaceID: 1, EventName: "Team Offsite",
		Date: "2026-09-10", StartTime: "10:00", EndTime: "11:00",
		Status: "CONFIRMED",
	}
	_, err = f.svc.Update(context.Background(), admin, got.ID, upd)
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, got.ID, ev.ReservationID)
	assert.Equal(t, "Alice", ev.UserName)
	assert.Equal(t, "Main Hall", ev.SpaceName)

	// Confirming an already confirmed reservation publishes nothing.
	_, err = f.svc.Update(context.Background(), admin, got.ID, upd)
	require.NoError(t, err)
	assert.Len(t, f.publisher.events, 1)
}

func TestUpdateReservationPublishFailureIsSwallowed(t *testing.T) {
	f := newReservationFixture(t)
	f.publisher.err = assert.AnError

	got, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	upd := UpdateReservationInput{
		UserID: 1, SpaceID: 1, EventName: "Team Offsite",
		Date: "2026-09-10", StartTime: "10:00", EndTime: "11:00",
		Status: "CONFIRMED",
	}
	detail, err := f.svc.Update(context.Background(), admin, got.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, detail.Status)
}

func TestDeleteReservation(t *testing.T) {
	f := newReservationFixture(t)

	got, err := f.svc.Create(context.Background(), admin, validCreate())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), admin, got.ID))

	_, err = f.svc.Get(context.Background(), admin, got.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), admin, got.ID), ErrNotFound)
}

func TestListReservationsScopedByRole(t *testing.T) {
	f := newReservationFixture(t)

	mine := validCreate()
	mine.UserID = 2
	_, err := f.svc.Create(context.Background(), assistant, mine)
	require.NoError(t, err)

	other := validCreate()
	other.EventName = "Board Meeting"
	other.StartTime = "13:00"
	other.EndTime = "14:00"
	_, err = f.svc.Create(context.Background(), admin, other)
	require.NoError(t, err)

	all, err := f.svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// Stable ascending order by ID.
	assert.Less(t, all[0].ID, all[1].ID)

	own, err := f.svc.List(context.Background(), assistant)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, uint64(2), own[0].User.ID)
}

func TestCreateReservationUserLookupFailurePropagates(t *testing.T) {
	f := newReservationFixture(t)
	f.users.existsErr = assert.AnError

	_, err := f.svc.Create(context.Background(), admin, validCreate())
	require.ErrorIs(t, err, assert.AnError)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

func TestCreateReservationEventNameLookupFailurePropagates(t *testing.T) {
	f := newReservationFixture(t)
	f.repo.eventNameErr = assert.AnError

	_, err := f.svc.Create(context.Background(), admin, validCreate())
	require.ErrorIs(t, err, assert.AnError)
}

func TestCreateReservationEventNameLimitCountsCharacters(t *testing.T) {
	f := newReservationFixture(t)

	in := validCreate()
	in.EventName = strings.Repeat("é", 50) // 100 bytes, 50 characters
	_, err := f.svc.Create(context.Background(), admin, in)
	require.NoError(t, err)

	in = validCreate()
	in.EventName = strings.Repeat("é", 51)
	in.StartTime = "14:00"
	in.EndTime = "15:00"
	_, err = f.svc.Create(context.Background(), admin, in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"The event name may not be greater than 50 characters."}, ve.Fields["event_name"])
}

func TestStatusesListsAllFive(t *testing.T) {
	f := newReservationFixture(t)

	got := f.svc.Statuses()
	assert.Equal(t, []model.Status{
		model.StatusPending,
		model.StatusConfirmed,
		model.StatusCanceled,
		model.StatusCompleted,
		model.StatusNoShow,
	}, got)
}
