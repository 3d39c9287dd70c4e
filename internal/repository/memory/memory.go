// Package memory is a process-local store implementing the repository
// contracts. It backs tests and the STORE_BACKEND=memory mode.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"tablebook/internal/repository"
	"tablebook/pkg/model"
)

// Store holds every record behind one RWMutex. Returned records are copies.
type Store struct {
	mu           sync.RWMutex
	restaurants  map[string]model.Restaurant
	tables       map[string]model.Table
	reservations map[string]model.Reservation

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		restaurants:  make(map[string]model.Restaurant),
		tables:       make(map[string]model.Table),
		reservations: make(map[string]model.Reservation),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Restaurants() repository.RestaurantRepository {
	return &restaurantRepository{s}
}

func (s *Store) Tables() repository.TableRepository {
	return &tableRepository{s}
}

func (s *Store) Reservations() repository.ReservationRepository {
	return &reservationRepository{s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type restaurantRepository struct{ s *Store }

func (r *restaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.restaurants[restaurant.ID]; ok {
		return fmt.Errorf("%w: restaurant %s", repository.ErrDuplicate, restaurant.ID)
	}
	for _, existing := range r.s.restaurants {
		if existing.Slug == restaurant.Slug {
			return fmt.Errorf("%w: restaurant slug %s", repository.ErrDuplicate, restaurant.Slug)
		}
	}
	restaurant.CreatedAt = r.s.now()
	restaurant.UpdatedAt = restaurant.CreatedAt
	r.s.restaurants[restaurant.ID] = *restaurant
	return nil
}

func (r *restaurantRepository) FindByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	restaurant, ok := r.s.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("%w: restaurant %s", repository.ErrNotFound, id)
	}
	return &restaurant, nil
}

func (r *restaurantRepository) FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, restaurant := range r.s.restaurants {
		if restaurant.Slug == slug {
			return &restaurant, nil
		}
	}
	return nil, fmt.Errorf("%w: restaurant %s", repository.ErrNotFound, slug)
}

func (r *restaurantRepository) Update(ctx context.Context, restaurant *model.Restaurant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.restaurants[restaurant.ID]
	if !ok {
		return fmt.Errorf("%w: restaurant %s", repository.ErrNotFound, restaurant.ID)
	}
	restaurant.Slug = existing.Slug
	restaurant.CreatedAt = existing.CreatedAt
	restaurant.UpdatedAt = r.s.now()
	r.s.restaurants[restaurant.ID] = *restaurant
	return nil
}

func (r *restaurantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, slug)
	if err == nil {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, err
	}
	return false, nil
}

type tableRepository struct{ s *Store }

func (r *tableRepository) numberTaken(table *model.Table) bool {
	for _, existing := range r.s.tables {
		if existing.ID != table.ID && existing.RestaurantID == table.RestaurantID && existing.Number == table.Number {
			return true
		}
	}
	return false
}

func (r *tableRepository) Create(ctx context.Context, table *model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tables[table.ID]; ok || r.numberTaken(table) {
		return fmt.Errorf("%w: table number %s", repository.ErrDuplicate, table.Number)
	}
	table.CreatedAt = r.s.now()
	table.UpdatedAt = table.CreatedAt
	r.s.tables[table.ID] = *table
	return nil
}

func (r *tableRepository) FindByID(ctx context.Context, id string) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	table, ok := r.s.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: table %s", repository.ErrNotFound, id)
	}
	return &table, nil
}

func (r *tableRepository) FindByRestaurant(ctx context.Context, restaurantID string, activeOnly bool) ([]*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tables := []*model.Table{}
	for _, table := range r.s.tables {
		if table.RestaurantID != restaurantID || (activeOnly && !table.IsActive) {
			continue
		}
		tables = append(tables, &table)
	}
	slices.SortFunc(tables, func(a, b *model.Table) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.Number, b.Number))
	})
	return tables, nil
}

func (r *tableRepository) Update(ctx context.Context, table *model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tables[table.ID]
	if !ok {
		return fmt.Errorf("%w: table %s", repository.ErrNotFound, table.ID)
	}
	if r.numberTaken(table) {
		return fmt.Errorf("%w: table number %s", repository.ErrDuplicate, table.Number)
	}
	table.RestaurantID = existing.RestaurantID
	table.CreatedAt = existing.CreatedAt
	table.UpdatedAt = r.s.now()
	r.s.tables[table.ID] = *table
	return nil
}

type reservationRepository struct{ s *Store }

func (r *reservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reservations[res.ID]; ok {
		return fmt.Errorf("%w: reservation %s", repository.ErrDuplicate, res.ID)
	}
	res.CreatedAt = r.s.now()
	res.UpdatedAt = res.CreatedAt
	r.s.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", repository.ErrNotFound, id)
	}
	return &res, nil
}

func (r *reservationRepository) FindActiveByTableAndDate(ctx context.Context, tableID, date string) ([]*model.Reservation, error) {
	return r.filter(ctx, func(res model.Reservation) bool {
		return res.TableID == tableID && res.Date == date && res.Status.IsActive()
	})
}

func (r *reservationRepository) FindActiveByRestaurantAndDate(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error) {
	return r.filter(ctx, func(res model.Reservation) bool {
		return res.RestaurantID == restaurantID && res.Date == date && res.Status.IsActive()
	})
}

func (r *reservationRepository) FindByRestaurantAndDate(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error) {
	return r.filter(ctx, func(res model.Reservation) bool {
		return res.RestaurantID == restaurantID && res.Date == date
	})
}

func (r *reservationRepository) filter(ctx context.Context, keep func(model.Reservation) bool) ([]*model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.Reservation{}
	for _, res := range r.s.reservations {
		if keep(res) {
			out = append(out, &res)
		}
	}
	slices.SortFunc(out, func(a, b *model.Reservation) int {
		return cmp.Or(cmp.Compare(a.StartTime, b.StartTime), cmp.Compare(a.TableID, b.TableID), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, expected, next model.ReservationStatus, notes *string) (*model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", repository.ErrNotFound, id)
	}
	if res.Status != expected {
		return nil, fmt.Errorf("%w: reservation %s is no longer %s", repository.ErrStatusChanged, id, expected)
	}
	res.Status = next
	if notes != nil {
		res.Notes = *notes
	}
	res.UpdatedAt = r.s.now()
	r.s.reservations[id] = res
	return &res, nil
}

// ExecuteTransaction runs fn without store-wide exclusion. Callers hold the
// per table and date lock across their check and insert.
func (r *reservationRepository) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
