package domain

// Default cleaning zones used when a building has no custom area list.
var defaultAreas = []string{"Rooms", "Showers", "Kitchen", "Living Room", "Terrace", "Hallway"}

var areaTimeSlots = map[string]string{
	"Rooms":       "08:00-09:00",
	"Showers":     "09:00-10:00",
	"Kitchen":     "10:00-11:00",
	"Living Room": "14:00-15:00",
	"Terrace":     "15:00-16:00",
	"Hallway":     "16:00-17:00",
}

var areaPriorities = map[string]string{
	"Rooms":       "high",
	"Showers":     "high",
	"Kitchen":     "medium",
	"Living Room": "medium",
	"Terrace":     "low",
	"Hallway":     "medium",
}

// DefaultAreas returns a copy of the default area list.
func DefaultAreas() []string {
	out := make([]string, len(defaultAreas))
	copy(out, defaultAreas)
	return out
}

// TimeSlotFor returns the working window for an area, with a morning fallback
// for unknown areas.
func TimeSlotFor(area string) string {
	if slot, ok := areaTimeSlots[area]; ok {
		return slot
	}
	return "08:00-09:00"
}

// PriorityFor returns the cleaning priority label for an area.
func PriorityFor(area string) string {
	if priority, ok := areaPriorities[area]; ok {
		return priority
	}
	return "medium"
}
