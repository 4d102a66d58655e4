package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/01moynul/carlisting-golang/internal/filter"
	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/repository"
)

type fakeItemRepo struct {
	mu      sync.Mutex
	items   []models.Item
	updates int
	err     error
}

func (f *fakeItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeItemRepo) Create(ctx context.Context, item *models.Item) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeItemRepo) CreateBatch(ctx context.Context, items []*models.Item) error {
	for _, item := range items {
		if err := f.Create(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeItemRepo) Update(ctx context.Context, item *models.Item) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i] = *item
			f.updates++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeItemRepo) matching(p filter.Predicate) []models.Item {
	var out []models.Item
	for i := range f.items {
		if p.Match(&f.items[i]) {
			out = append(out, f.items[i])
		}
	}
	return out
}

func (f *fakeItemRepo) List(ctx context.Context, p filter.Predicate, offset, limit int) ([]models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	matched := f.matching(p)
	out := []models.Item{}
	for i := offset; i < len(matched) && len(out) < limit; i++ {
		out = append(out, matched[i])
	}
	return out, nil
}

func (f *fakeItemRepo) Count(ctx context.Context, p filter.Predicate) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.matching(p))), nil
}

func (f *fakeItemRepo) ListByPopularity(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]models.Item, error) {
	return nil, errors.New("not used")
}

type fakeEventRepo struct {
	events []models.Event
	err    error
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) CountByItem(ctx context.Context, userID *uuid.UUID) ([]models.ItemPopularity, error) {
	counts := map[uuid.UUID]int64{}
	var order []uuid.UUID
	for _, e := range f.events {
		if e.ItemID == nil || (userID != nil && (e.UserID == nil || *e.UserID != *userID)) {
			continue
		}
		if counts[*e.ItemID] == 0 {
			order = append(order, *e.ItemID)
		}
		counts[*e.ItemID]++
	}
	out := []models.ItemPopularity{}
	for _, id := range order {
		out = append(out, models.ItemPopularity{ItemID: id, EventCount: counts[id]})
	}
	return out, nil
}

type fakePublisher struct {
	keys []string
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, key string, value any) error {
	f.keys = append(f.keys, key)
	return f.err
}

type fakeUserRepo struct {
	users map[uuid.UUID]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]models.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}
