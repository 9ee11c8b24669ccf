package service

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/queue"
	"github.com/iliyamo/space-reservation/internal/repository"
)

// In-memory fakes implementing the service repository contracts,
// mirroring the SQL repositories' behavior closely enough to exercise
// the services without a database.

type fakeUserRepo struct {
	users     map[uint64]model.User
	existsErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]model.User)}
}

func (f *fakeUserRepo) add(id uint64, name, email string) {
	f.users[id] = model.User{ID: id, Name: name, Email: email}
}

func (f *fakeUserRepo) Exists(_ context.Context, id uint64) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.users[id]
	return ok, nil
}

type fakeTypeRepo struct {
	types     map[uint64]model.SpaceType
	existsErr error
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[uint64]model.SpaceType)}
}

func (f *fakeTypeRepo) add(id uint64, name string) {
	f.types[id] = model.SpaceType{ID: id, Name: name}
}

func (f *fakeTypeRepo) Exists(_ context.Context, id uint64) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.types[id]
	return ok, nil
}

type fakeReservationRepo struct {
	rows         map[uint64]model.Reservation
	nextID       uint64
	spaces       *fakeSpaceRepo
	users        *fakeUserRepo
	eventNameErr error
}

func newFakeReservationRepo(spaces *fakeSpaceRepo, users *fakeUserRepo) *fakeReservationRepo {
	f := &fakeReservationRepo{rows: make(map[uint64]model.Reservation), spaces: spaces, users: users}
	spaces.reservations = f
	return f
}

func (f *fakeReservationRepo) HasConflict(_ context.Context, spaceID uint64, date, start, end string, excludeID uint64) (bool, error) {
	for _, r := range f.rows {
		if r.ID == excludeID || r.SpaceID != spaceID || r.Date != date {
			continue
		}
		if !r.Status.IsActive() {
			continue
		}
		if model.Overlaps(start, end, r.StartTime, r.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) EventNameExists(_ context.Context, name string, excludeID uint64) (bool, error) {
	if f.eventNameErr != nil {
		return false, f.eventNameErr
	}
	for _, r := range f.rows {
		if r.ID != excludeID && r.EventName == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if _, ok := f.spaces.spaces[res.SpaceID]; !ok {
		return repository.ErrSpaceNotFound
	}
	if conflict, _ := f.HasConflict(ctx, res.SpaceID, res.Date, res.StartTime, res.EndTime, 0); conflict {
		return repository.ErrTimeSlotTaken
	}
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	f.rows[res.ID] = *res
	return nil
}

func (f *fakeReservationRepo) Update(ctx context.Context, res *model.Reservation, recheck bool) error {
	old, ok := f.rows[res.ID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if recheck {
		if _, ok := f.spaces.spaces[res.SpaceID]; !ok {
			return repository.ErrSpaceNotFound
		}
		if conflict, _ := f.HasConflict(ctx, res.SpaceID, res.Date, res.StartTime, res.EndTime, res.ID); conflict {
			return repository.ErrTimeSlotTaken
		}
	}
	res.CreatedAt = old.CreatedAt
	res.UpdatedAt = time.Now().UTC()
	f.rows[res.ID] = *res
	return nil
}

func (f *fakeReservationRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id uint64) (repository.ReservationDetail, error) {
	r, ok := f.rows[id]
	if !ok {
		return repository.ReservationDetail{}, repository.ErrReservationNotFound
	}
	return f.detail(r), nil
}

func (f *fakeReservationRepo) GetRow(_ context.Context, id uint64) (model.Reservation, error) {
	r, ok := f.rows[id]
	if !ok {
		return model.Reservation{}, repository.ErrReservationNotFound
	}
	return r, nil
}

func (f *fakeReservationRepo) ListAll(_ context.Context) ([]repository.ReservationDetail, error) {
	return f.listWhere(func(model.Reservation) bool { return true }), nil
}

func (f *fakeReservationRepo) ListByUser(_ context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	return f.listWhere(func(r model.Reservation) bool { return r.UserID == userID }), nil
}

func (f *fakeReservationRepo) listWhere(keep func(model.Reservation) bool) []repository.ReservationDetail {
	out := make([]repository.ReservationDetail, 0)
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, f.detail(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeReservationRepo) detail(r model.Reservation) repository.ReservationDetail {
	d := repository.ReservationDetail{
		ID:        r.ID,
		EventName: r.EventName,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if u, ok := f.users.users[r.UserID]; ok {
		d.User = repository.UserView{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	if s, ok := f.spaces.spaces[r.SpaceID]; ok {
		d.Space = repository.SpaceView{
			ID: s.ID, Name: s.Name, Description: s.Description,
			Capacity: s.Capacity, Photos: s.Photos, Status: s.Status,
		}
		if t, ok := f.spaces.types.types[s.TypeID]; ok {
			d.Space.Type = repository.TypeView{ID: t.ID, Name: t.Name}
		}
	}
	return d
}

type fakeSpaceRepo struct {
	spaces       map[uint64]model.Space
	nextID       uint64
	types        *fakeTypeRepo
	reservations *fakeReservationRepo
	existsErr    error
	nameErr      error
}

func newFakeSpaceRepo(types *fakeTypeRepo) *fakeSpaceRepo {
	return &fakeSpaceRepo{spaces: make(map[uint64]model.Space), types: types}
}

func (f *fakeSpaceRepo) add(id uint64, name string, typeID uint64) {
	f.spaces[id] = model.Space{ID: id, Name: name, Capacity: 10, TypeID: typeID}
	if id > f.nextID {
		f.nextID = id
	}
}

func (f *fakeSpaceRepo) Exists(_ context.Context, id uint64) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.spaces[id]
	return ok, nil
}

func (f *fakeSpaceRepo) Create(_ context.Context, s *model.Space) error {
	f.nextID++
	s.ID = f.nextID
	f.spaces[s.ID] = *s
	return nil
}

func (f *fakeSpaceRepo) Update(_ context.Context, s *model.Space) error {
	if _, ok := f.spaces[s.ID]; !ok {
		return repository.ErrSpaceNotFound
	}
	f.spaces[s.ID] = *s
	return nil
}

func (f *fakeSpaceRepo) GetByID(_ context.Context, id uint64) (repository.SpaceDetail, error) {
	s, ok := f.spaces[id]
	if !ok {
		return repository.SpaceDetail{}, repository.ErrSpaceNotFound
	}
	d := repository.SpaceDetail{
		ID: s.ID, Name: s.Name, Description: s.Description,
		Capacity: s.Capacity, Photos: s.Photos, Status: s.Status,
	}
	if t, ok := f.types.types[s.TypeID]; ok {
		d.Type = repository.TypeView{ID: t.ID, Name: t.Name}
	}
	return d, nil
}

func (f *fakeSpaceRepo) ListAll(ctx context.Context) ([]repository.SpaceDetail, error) {
	ids := make([]uint64, 0, len(f.spaces))
	for id := range f.spaces {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]repository.SpaceDetail, 0, len(ids))
	for _, id := range ids {
		d, _ := f.GetByID(ctx, id)
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeSpaceRepo) NameExists(_ context.Context, name string, excludeID uint64) (bool, error) {
	if f.nameErr != nil {
		return false, f.nameErr
	}
	for _, s := range f.spaces {
		if s.ID != excludeID && s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSpaceRepo) DeleteCascade(_ context.Context, id uint64) (int64, error) {
	if _, ok := f.spaces[id]; !ok {
		return 0, repository.ErrSpaceNotFound
	}
	var removed int64
	if f.reservations != nil {
		for rid, r := range f.reservations.rows {
			if r.SpaceID == id {
				delete(f.reservations.rows, rid)
				removed++
			}
		}
	}
	delete(f.spaces, id)
	return removed, nil
}

type fakePublisher struct {
	events []queue.ReservationConfirmedEvent
	err    error
}

func (f *fakePublisher) ReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}
