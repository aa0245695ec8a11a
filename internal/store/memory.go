// Package store provides an in-memory snapshot repository for local
// development and tests.
package store

import (
	"context"
	"sync"

	"example.com/rotation/internal/domain"
)

// InMemoryRepository holds the building/resident/group snapshot in memory.
type InMemoryRepository struct {
	mu        sync.RWMutex
	buildings map[string]domain.Building
	residents map[string]domain.Resident
	groups    map[string]domain.CleaningGroup
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		buildings: make(map[string]domain.Building),
		residents: make(map[string]domain.Resident),
		groups:    make(map[string]domain.CleaningGroup),
	}
}

// PutBuilding stores or replaces a building snapshot.
func (r *InMemoryRepository) PutBuilding(building domain.Building) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildings[building.ID] = building
}

// PutResident stores or replaces a resident snapshot and registers them on
// their building.
func (r *InMemoryRepository) PutResident(resident domain.Resident) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.residents[resident.ID] = resident

	building, ok := r.buildings[resident.BuildingID]
	if !ok {
		return
	}
	for _, id := range building.Residents {
		if id == resident.ID {
			return
		}
	}
	building.Residents = append(building.Residents, resident.ID)
	r.buildings[building.ID] = building
}

// GetBuilding implements domain.Repository.
func (r *InMemoryRepository) GetBuilding(ctx context.Context, id string) (*domain.Building, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	building, ok := r.buildings[id]
	if !ok {
		return nil, nil
	}
	return &building, nil
}

// GetResident implements domain.Repository.
func (r *InMemoryRepository) GetResident(ctx context.Context, id string) (*domain.Resident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resident, ok := r.residents[id]
	if !ok {
		return nil, nil
	}
	out := resident
	out.Badges = append([]string(nil), resident.Badges...)
	return &out, nil
}

// ListResidents returns the residents of one building in insertion order of
// the building's resident list.
func (r *InMemoryRepository) ListResidents(ctx context.Context, buildingID string) ([]domain.Resident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	building, ok := r.buildings[buildingID]
	if !ok {
		return nil, nil
	}

	out := make([]domain.Resident, 0, len(building.Residents))
	for _, id := range building.Residents {
		if resident, ok := r.residents[id]; ok {
			out = append(out, resident)
		}
	}
	return out, nil
}

// GetGroup implements domain.Repository.
func (r *InMemoryRepository) GetGroup(ctx context.Context, id string) (*domain.CleaningGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	out := cloneGroup(group)
	return &out, nil
}

// ListGroups returns all groups of one building.
func (r *InMemoryRepository) ListGroups(ctx context.Context, buildingID string) ([]domain.CleaningGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CleaningGroup, 0)
	for _, group := range r.groups {
		if group.BuildingID == buildingID {
			out = append(out, cloneGroup(group))
		}
	}
	return out, nil
}

// ListGroupsByMember returns all groups the resident belongs to.
func (r *InMemoryRepository) ListGroupsByMember(ctx context.Context, residentID string) ([]domain.CleaningGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CleaningGroup, 0)
	for _, group := range r.groups {
		g := group
		if g.HasMember(residentID) {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

// SaveGroup stores or replaces a group.
func (r *InMemoryRepository) SaveGroup(ctx context.Context, group domain.CleaningGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group.ID] = cloneGroup(group)
	return nil
}

// AddBadge appends a badge to the resident's set if not already held.
func (r *InMemoryRepository) AddBadge(ctx context.Context, residentID, badgeType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	resident, ok := r.residents[residentID]
	if !ok {
		return domain.ErrResidentNotFound
	}
	for _, b := range resident.Badges {
		if b == badgeType {
			return nil
		}
	}
	resident.Badges = append(resident.Badges, badgeType)
	r.residents[residentID] = resident
	return nil
}

// cloneGroup deep-copies the mutable parts so callers can mutate their copy
// without racing the stored snapshot.
func cloneGroup(group domain.CleaningGroup) domain.CleaningGroup {
	out := group
	out.Members = append([]string(nil), group.Members...)
	out.AssignedAreas = append([]string(nil), group.AssignedAreas...)
	out.CompletedTasks = append([]domain.TaskRecord(nil), group.CompletedTasks...)
	out.MissedTasks = append([]domain.TaskRecord(nil), group.MissedTasks...)

	if group.Schedule != nil {
		schedule := make(domain.RotationSchedule, len(group.Schedule))
		for date, day := range group.Schedule {
			copied := *day
			copied.Areas = append([]string(nil), day.Areas...)
			copied.AssignedMembers = make(map[string][]string, len(day.AssignedMembers))
			for area, members := range day.AssignedMembers {
				copied.AssignedMembers[area] = append([]string(nil), members...)
			}
			schedule[date] = &copied
		}
		out.Schedule = schedule
	}
	return out
}
