// Package reservations keeps the session's reservation list and the edits
// the reservation screens make to it.
package reservations

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/markadai/taxidispatch/internal/models"
)

var (
	// ErrNotFound is returned when no reservation has the given id.
	ErrNotFound = errors.New("reservation not found")
	// ErrInvalidStatus is returned for a status outside Statuses.
	ErrInvalidStatus = errors.New("invalid reservation status")
	// ErrInvalidStars is returned for a rating outside 1..5.
	ErrInvalidStars = errors.New("stars must be between 1 and 5")
	// ErrInvalidBanner is returned for a banner outside Banners.
	ErrInvalidBanner = errors.New("unknown banner image")
)

// Statuses lists the accepted reservation statuses.
var Statuses = []string{
	string(models.ReservationActive),
	string(models.ReservationPending),
	string(models.ReservationCompleted),
}

// Banners lists the selectable banner images. The empty string clears it.
var Banners = []string{"banner1", "banner2", "banner3"}

// MaxStars is the top rating.
const MaxStars = 5

// Edit describes a change to a reservation. Nil fields are left untouched.
type Edit struct {
	Name        *string
	Phone       *string
	Status      *string
	Comment     *string
	BannerImage *string
}

// Book is an in-memory, session-local list of reservations.
type Book struct {
	mu    sync.Mutex
	items []models.Reservation
}

// New returns a book holding items. Items without an id get a fresh one and
// ratings are clamped to 0..MaxStars.
func New(items ...models.Reservation) *Book {
	b := &Book{items: make([]models.Reservation, 0, len(items))}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.Stars = min(max(it.Stars, 0), MaxStars)
		b.items = append(b.items, it)
	}
	return b
}

// SampleReservations returns the demo reservations.
func SampleReservations() []models.Reservation {
	return []models.Reservation{
		{ID: uuid.New(), Number: 1, Name: "John Doe", Phone: "123-456-7890", Status: "Active", Stars: 4, Comment: "Great customer"},
		{ID: uuid.New(), Number: 2, Name: "Jane Smith", Phone: "098-765-4321", Status: "Pending", Stars: 3},
		{ID: uuid.New(), Number: 3, Name: "Alice Johnson", Phone: "555-555-5555", Status: "Completed", Stars: 5, Comment: "Excellent experience"},
	}
}

// List returns a copy of the reservations in insertion order.
func (b *Book) List() []models.Reservation {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Reservation, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of reservations.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Add appends a new reservation numbered after the current count, with no
// stars and no comment.
func (b *Book) Add(name, phone, status string) (models.Reservation, error) {
	if !slices.Contains(Statuses, status) {
		return models.Reservation{}, ErrInvalidStatus
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r := models.Reservation{
		ID:     uuid.New(),
		Number: len(b.items) + 1,
		Name:   name,
		Phone:  phone,
		Status: status,
	}
	b.items = append(b.items, r)
	return r, nil
}

// Get returns the reservation with id.
func (b *Book) Get(id uuid.UUID) (models.Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return models.Reservation{}, ErrNotFound
	}
	return b.items[i], nil
}

// At returns the reservation at list position i.
func (b *Book) At(i int) (models.Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.items) {
		return models.Reservation{}, ErrNotFound
	}
	return b.items[i], nil
}

// Delete removes the reservations with the given ids and returns how many
// were removed.
func (b *Book) Delete(ids ...uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	before := len(b.items)
	b.items = slices.DeleteFunc(b.items, func(r models.Reservation) bool {
		return slices.Contains(ids, r.ID)
	})
	return before - len(b.items)
}

// DeleteAt removes reservations by list position. Offsets refer to the list
// before any removal; out-of-range offsets are ignored.
func (b *Book) DeleteAt(offsets ...int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	drop := make(map[int]bool, len(offsets))
	for _, o := range offsets {
		if o >= 0 && o < len(b.items) {
			drop[o] = true
		}
	}
	kept := b.items[:0]
	for i, r := range b.items {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	b.items = kept
	return len(drop)
}

// Update applies e to the reservation with id and returns the result.
// Nothing changes if any field of e is invalid.
func (b *Book) Update(id uuid.UUID, e Edit) (models.Reservation, error) {
	if e.Status != nil && !slices.Contains(Statuses, *e.Status) {
		return models.Reservation{}, ErrInvalidStatus
	}
	if e.BannerImage != nil && *e.BannerImage != "" && !slices.Contains(Banners, *e.BannerImage) {
		return models.Reservation{}, ErrInvalidBanner
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return models.Reservation{}, ErrNotFound
	}
	r := &b.items[i]
	if e.Name != nil {
		r.Name = *e.Name
	}
	if e.Phone != nil {
		r.Phone = *e.Phone
	}
	if e.Status != nil {
		r.Status = *e.Status
	}
	if e.Comment != nil {
		r.Comment = *e.Comment
	}
	if e.BannerImage != nil {
		r.BannerImage = *e.BannerImage
	}
	return *r, nil
}

// Rate sets the star rating of the reservation with id.
func (b *Book) Rate(id uuid.UUID, stars int) (models.Reservation, error) {
	if stars < 1 || stars > MaxStars {
		return models.Reservation{}, ErrInvalidStars
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return models.Reservation{}, ErrNotFound
	}
	b.items[i].Stars = stars
	return b.items[i], nil
}

// StatusColor returns the colour name the list uses for a status badge.
func StatusColor(status string) string {
	switch models.ReservationStatus(status) {
	case models.ReservationActive:
		return "green"
	case models.ReservationPending:
		return "orange"
	case models.ReservationCompleted:
		return "blue"
	default:
		return "gray"
	}
}

func (b *Book) index(id uuid.UUID) int {
	return slices.IndexFunc(b.items, func(r models.Reservation) bool { return r.ID == id })
}
