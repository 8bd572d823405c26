// Package roster holds the admin panel's driver list for the current session
// and answers the panel's search, filter and stats queries.
package roster

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/markadai/taxidispatch/internal/models"
)

// FilterAll is the status filter that matches every driver.
const FilterAll = "All"

// FilterOptions lists the status filters offered by the panel.
var FilterOptions = []string{FilterAll, string(models.DriverActive), string(models.DriverInactive)}

// Stats summarises the roster for the panel header.
type Stats struct {
	Total  int
	Online int
	Active int
}

// Roster is an in-memory, session-local driver list.
type Roster struct {
	mu      sync.Mutex
	drivers []models.Driver
}

// New returns a roster holding drivers.
func New(drivers ...models.Driver) *Roster {
	r := &Roster{}
	r.Load(drivers)
	return r
}

// SampleDrivers returns the demo data the panel shows before a backend exists.
func SampleDrivers() []models.Driver {
	return []models.Driver{
		{ID: uuid.New(), Number: 1, Phone: "123-456-7890", Name: "John Doe", Status: string(models.DriverActive), Type: "Full-time", IsOnline: true},
		{ID: uuid.New(), Number: 2, Phone: "234-567-8901", Name: "Jane Smith", Status: string(models.DriverInactive), Type: "Part-time", IsOnline: false},
	}
}

// Load replaces the roster content. Drivers without an id get a fresh one.
func (r *Roster) Load(drivers []models.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers = make([]models.Driver, 0, len(drivers))
	for _, d := range drivers {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		r.drivers = append(r.drivers, d)
	}
}

// Add appends a driver and returns it with its id set.
func (r *Roster) Add(d models.Driver) models.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.drivers = append(r.drivers, d)
	return d
}

// Get returns the driver with id, if any.
func (r *Roster) Get(id uuid.UUID) (models.Driver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drivers {
		if d.ID == id {
			return d, true
		}
	}
	return models.Driver{}, false
}

// Delete removes the driver with id and reports whether it existed.
func (r *Roster) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.drivers {
		if d.ID == id {
			r.drivers = append(r.drivers[:i], r.drivers[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a copy of every driver in roster order.
func (r *Roster) All() []models.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// Filter returns the drivers whose status equals status (unless status is
// "All" or empty) and whose name or phone contains query, ignoring case
// (unless query is empty). Roster order is kept.
func (r *Roster) Filter(query, status string) []models.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := strings.ToLower(query)
	out := []models.Driver{}
	for _, d := range r.drivers {
		if status != "" && status != FilterAll && d.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Phone), q) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Stats counts all, online and active drivers.
func (r *Roster) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{Total: len(r.drivers)}
	for _, d := range r.drivers {
		if d.IsOnline {
			s.Online++
		}
		if d.Status == string(models.DriverActive) {
			s.Active++
		}
	}
	return s
}

// ValidFilter reports whether status is one of FilterOptions.
func ValidFilter(status string) bool {
	return slices.Contains(FilterOptions, status)
}
