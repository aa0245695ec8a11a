package domain

import "time"

// Resident is the read-only directory view of a person living in a building.
// The directory owns this entity; the core only reads membership and badge
// state and appends badge identifiers through the repository.
type Resident struct {
	ID           string
	Name         string
	BuildingID   string
	Block        string
	RoomNumber   int
	Badges       []string
	LastActivity time.Time
}

// HasBadge reports whether the resident already holds the badge.
func (r Resident) HasBadge(badgeType string) bool {
	for _, b := range r.Badges {
		if b == badgeType {
			return true
		}
	}
	return false
}

// Building is the external-owned structure the core reads to validate group
// formation. Block list and resident membership are the only fields consulted
// by the registry; capacity figures feed the rotation report.
type Building struct {
	ID            string
	Name          string
	ChiefID       string
	Blocks        []string
	RoomsPerBlock int
	PeoplePerRoom int
	Residents     []string
	Areas         []string
	LastUpdate    time.Time
}

// TotalCapacity returns the number of beds in the building.
func (b Building) TotalCapacity() int {
	return len(b.Blocks) * b.RoomsPerBlock * b.PeoplePerRoom
}

// OccupancyRate returns occupied beds over capacity, 0 for an empty layout.
func (b Building) OccupancyRate() float64 {
	capacity := b.TotalCapacity()
	if capacity == 0 {
		return 0
	}
	return float64(len(b.Residents)) / float64(capacity)
}

// CleaningAreas returns the building's custom area list, falling back to the
// default campus areas when none are configured.
func (b Building) CleaningAreas() []string {
	if len(b.Areas) > 0 {
		return b.Areas
	}
	return DefaultAreas()
}
