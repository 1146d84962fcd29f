package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"staybook/pkg/common/config"
	apperr "staybook/pkg/common/errors"
	bookingmodel "staybook/pkg/core/booking/model"
	placemodel "staybook/pkg/core/place/model"
	usermodel "staybook/pkg/core/user/model"
)

// NewMemory 进程内存储，用于本地开发和测试
func NewMemory() *Store {
	return &Store{
		Users:    &memoryUsers{byID: map[string]usermodel.User{}},
		Places:   &memoryPlaces{byID: map[string]placemodel.Place{}},
		Bookings: &memoryBookings{},
		driver:   config.DriverMemory,
		ping:     func(context.Context) error { return nil },
		close:    func(context.Context) error { return nil },
	}
}

type memoryUsers struct {
	mu   sync.RWMutex
	byID map[string]usermodel.User
}

func (m *memoryUsers) Create(ctx context.Context, user *usermodel.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if u.Email == user.Email {
			return apperr.ErrDuplicateEntry
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) FindByID(ctx context.Context, id string) (*usermodel.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (m *memoryUsers) IsEmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case apperr.Is(err, apperr.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

type memoryPlaces struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]placemodel.Place
}

func (m *memoryPlaces) Create(ctx context.Context, place *placemodel.Place) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	place.ID = uuid.NewString()
	place.CreatedAt, place.UpdatedAt = now, now
	m.byID[place.ID] = clonePlace(*place)
	m.order = append(m.order, place.ID)
	return nil
}

func (m *memoryPlaces) Update(ctx context.Context, place *placemodel.Place) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[place.ID]; !ok {
		return apperr.ErrPlaceNotFound
	}
	place.UpdatedAt = time.Now().UTC()
	m.byID[place.ID] = clonePlace(*place)
	return nil
}

func (m *memoryPlaces) FindByID(ctx context.Context, id string) (*placemodel.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return nil, apperr.ErrPlaceNotFound
	}
	p = clonePlace(p)
	return &p, nil
}

func (m *memoryPlaces) FindAll(ctx context.Context) ([]placemodel.Place, error) {
	return m.filter(ctx, func(placemodel.Place) bool { return true })
}

func (m *memoryPlaces) FindByOwner(ctx context.Context, ownerID string) ([]placemodel.Place, error) {
	return m.filter(ctx, func(p placemodel.Place) bool { return p.Owner == ownerID })
}

func (m *memoryPlaces) filter(ctx context.Context, keep func(placemodel.Place) bool) ([]placemodel.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	places := []placemodel.Place{}
	for _, id := range m.order {
		if p := m.byID[id]; keep(p) {
			places = append(places, clonePlace(p))
		}
	}
	return places, nil
}

// 切片字段需要拷贝，避免调用方修改存储内的数据
func clonePlace(p placemodel.Place) placemodel.Place {
	p.Photos = append([]string{}, p.Photos...)
	p.Perks = append([]string{}, p.Perks...)
	return p
}

type memoryBookings struct {
	mu       sync.RWMutex
	bookings []bookingmodel.Booking
}

func (m *memoryBookings) Create(ctx context.Context, booking *bookingmodel.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	booking.ID = uuid.NewString()
	booking.CreatedAt = time.Now().UTC()
	m.bookings = append(m.bookings, *booking)
	return nil
}

func (m *memoryBookings) FindByUser(ctx context.Context, userID string) ([]bookingmodel.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	bookings := []bookingmodel.Booking{}
	for _, b := range m.bookings {
		if b.User == userID {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}
