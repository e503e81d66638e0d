package checkin

import (
	"sort"
	"sync"

	"checkpoint-backend/internal/domain"
)

// Catalog holds the ordered list of enabled stations and the main
// (gating) station. It is a read-only consumer of the is_main flag;
// uniqueness of that flag is the station DAO's job.
type Catalog struct {
	mu       sync.RWMutex
	stations []domain.Station
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

// Replace swaps in a fresh load, keeping only enabled stations sorted
// by sort order.
func (c *Catalog) Replace(stations []domain.Station) {
	enabled := make([]domain.Station, 0, len(stations))
	for _, st := range stations {
		if st.IsEnabled {
			enabled = append(enabled, st)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].SortOrder < enabled[j].SortOrder
	})

	c.mu.Lock()
	c.stations = enabled
	c.mu.Unlock()
}

// Stations returns a copy of the enabled stations in display order.
func (c *Catalog) Stations() []domain.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Station, len(c.stations))
	copy(out, c.stations)

	return out
}

// Get returns an enabled station by id.
func (c *Catalog) Get(id uint) (domain.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, st := range c.stations {
		if st.ID == id {
			return st, true
		}
	}

	return domain.Station{}, false
}

// Main returns the gating station, if one is designated and enabled.
func (c *Catalog) Main() (domain.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, st := range c.stations {
		if st.IsMain {
			return st, true
		}
	}

	return domain.Station{}, false
}
