package domain

import (
	"fmt"
	"time"
)

// ResidentAssignment is one upcoming duty in a resident's personal view.
type ResidentAssignment struct {
	Date      string     `json:"date"`
	Day       string     `json:"day"`
	GroupID   string     `json:"group_id"`
	GroupName string     `json:"group_name"`
	Area      string     `json:"area"`
	TimeSlot  string     `json:"time_slot"`
	Status    TaskStatus `json:"status"`
}

// UpcomingAssignments walks the stored schedules of the resident's groups and
// collects the duties assigned to them over the next days, starting at from.
func UpcomingAssignments(residentID string, groups []CleaningGroup, from time.Time, days int) []ResidentAssignment {
	assignments := make([]ResidentAssignment, 0)

	for day := 0; day < days; day++ {
		date := from.UTC().AddDate(0, 0, day)
		dateStr := date.Format(dateLayout)

		for i := range groups {
			group := &groups[i]
			if !group.HasMember(residentID) {
				continue
			}
			daySchedule, ok := group.Schedule[dateStr]
			if !ok {
				continue
			}
			// Walk the ordered area list, not the assignment map, so the
			// output order is stable across runs.
			for _, area := range daySchedule.Areas {
				for _, member := range daySchedule.AssignedMembers[area] {
					if member != residentID {
						continue
					}
					assignments = append(assignments, ResidentAssignment{
						Date:      dateStr,
						Day:       date.Weekday().String(),
						GroupID:   group.ID,
						GroupName: group.Name,
						Area:      area,
						TimeSlot:  TimeSlotFor(area),
						Status:    daySchedule.Status,
					})
					break
				}
			}
		}
	}
	return assignments
}

// RotationReport summarises rotation coverage for a building.
type RotationReport struct {
	BuildingID        string  `json:"building_id"`
	BuildingName      string  `json:"building_name"`
	ActiveGroups      int     `json:"active_groups"`
	TotalResidents    int     `json:"total_residents"`
	AreasCovered      int     `json:"areas_covered"`
	OccupancyRate     float64 `json:"occupancy_rate"`
	RotationFrequency string  `json:"rotation_frequency"`
	LastUpdate        string  `json:"last_update,omitempty"`
}

// BuildRotationReport derives the report from a building snapshot and its
// groups.
func BuildRotationReport(building Building, groups []CleaningGroup, rotationPeriodDays int) RotationReport {
	active := 0
	covered := make(map[string]struct{})
	for i := range groups {
		if !groups[i].Active {
			continue
		}
		active++
		for _, area := range groups[i].AssignedAreas {
			covered[area] = struct{}{}
		}
	}

	report := RotationReport{
		BuildingID:        building.ID,
		BuildingName:      building.Name,
		ActiveGroups:      active,
		TotalResidents:    len(building.Residents),
		AreasCovered:      len(covered),
		OccupancyRate:     building.OccupancyRate(),
		RotationFrequency: rotationFrequency(rotationPeriodDays),
	}
	if !building.LastUpdate.IsZero() {
		report.LastUpdate = building.LastUpdate.UTC().Format(time.RFC3339)
	}
	return report
}

func rotationFrequency(days int) string {
	if days == 1 {
		return "Every day"
	}
	return fmt.Sprintf("Every %d days", days)
}
