package domain

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Engine computes deterministic weekly rotation schedules. It is pure: the
// same group and week always produce the same output, and a valid group is
// assumed (block validation belongs to the registry).
type Engine struct {
	settings Settings
}

// NewEngine constructs an Engine.
func NewEngine(settings Settings) *Engine {
	return &Engine{settings: settings}
}

// WeekStart normalizes t to the Monday midnight (UTC) opening its week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeWeeklySchedule produces the full 7-day schedule for one group. Every
// assigned area appears exactly once across the week, per-day counts differ by
// at most one, and the area order is a fixed (group, ISO week) shuffle so the
// plan changes week to week but never between two calls.
func (e *Engine) ComputeWeeklySchedule(group *CleaningGroup, weekStart time.Time) RotationSchedule {
	weekStart = WeekStart(weekStart)
	_, week := weekStart.ISOWeek()
	shuffled := shuffleAreas(group.AssignedAreas, scheduleSeed(group.ID, week))

	schedule := make(RotationSchedule, 7)
	start := 0
	for day := 0; day < 7; day++ {
		count := e.areasForDayCount(len(shuffled), day)
		areas := shuffled[start : start+count]
		start += count

		assigned := make(map[string][]string, len(areas))
		for _, area := range areas {
			assigned[area] = e.AssignMembersToArea(group, area)
		}

		date := weekStart.AddDate(0, 0, day).Format(dateLayout)
		schedule[date] = &DaySchedule{
			Areas:           append([]string(nil), areas...),
			AssignedMembers: assigned,
			Status:          TaskStatusPending,
		}
	}
	return schedule
}

// areasForDayCount spreads n areas across the week by integer division, with
// the first n%7 days receiving one extra.
func (e *Engine) areasForDayCount(total, day int) int {
	count := total / 7
	if day < total%7 {
		count++
	}
	return count
}

// AreasForDate returns the areas the group cleans on one specific date,
// consistent with the weekly schedule containing that date.
func (e *Engine) AreasForDate(group *CleaningGroup, date time.Time) []string {
	if len(group.AssignedAreas) == 0 {
		return nil
	}

	weekStart := WeekStart(date)
	_, week := weekStart.ISOWeek()
	shuffled := shuffleAreas(group.AssignedAreas, scheduleSeed(group.ID, week))

	dayOfWeek := (int(date.UTC().Weekday()) + 6) % 7
	start := 0
	for day := 0; day < dayOfWeek; day++ {
		start += e.areasForDayCount(len(shuffled), day)
	}
	count := e.areasForDayCount(len(shuffled), dayOfWeek)
	return shuffled[start : start+count]
}

// AssignMembersToArea picks min(membersPerArea, N) consecutive members
// starting at an offset derived from the area name's hash. The offset differs
// between areas so load spreads without randomness collisions on one day.
func (e *Engine) AssignMembersToArea(group *CleaningGroup, area string) []string {
	n := len(group.Members)
	if n == 0 {
		return []string{}
	}

	perArea := e.settings.MembersPerArea
	if perArea > n {
		perArea = n
	}

	offset := int(hashString(area) % uint64(n))
	assigned := make([]string, 0, perArea)
	for i := 0; i < perArea; i++ {
		assigned = append(assigned, group.Members[(offset+i)%n])
	}
	return assigned
}

// GroupDueOn is the coarse building-wide filter deciding whether a group works
// at all on a given day: the group id's hash modulo the rotation period must
// match the date's offset within that period. Independent of the per-day area
// distribution above.
func (e *Engine) GroupDueOn(group *CleaningGroup, date time.Time) bool {
	period := e.settings.RotationPeriodDays
	if period <= 0 {
		return true
	}
	dayNumber := int(date.UTC().Truncate(24*time.Hour).Unix() / 86400)
	return int(hashString(group.ID)%uint64(period)) == dayNumber%period
}

// DailyTask is a building-wide view of one area assignment on one date.
type DailyTask struct {
	ID              string     `json:"id"`
	GroupID         string     `json:"group_id"`
	GroupName       string     `json:"group_name"`
	Area            string     `json:"area"`
	AssignedMembers []string   `json:"assigned_members"`
	Date            string     `json:"date"`
	TimeSlot        string     `json:"time_slot"`
	Priority        string     `json:"priority"`
	Status          TaskStatus `json:"status"`
}

// BuildDailyTasks assembles the whole-building task list for one date from
// the groups due to work that day.
func (e *Engine) BuildDailyTasks(groups []CleaningGroup, date time.Time) []DailyTask {
	dateStr := date.UTC().Format(dateLayout)
	tasks := make([]DailyTask, 0)

	for i := range groups {
		group := &groups[i]
		if !group.Active || !e.GroupDueOn(group, date) {
			continue
		}

		for _, area := range e.AreasForDate(group, date) {
			status := TaskStatusPending
			if day, ok := group.Schedule[dateStr]; ok {
				status = day.Status
			}
			tasks = append(tasks, DailyTask{
				ID:              fmt.Sprintf("%s::%s::%s", group.ID, dateStr, area),
				GroupID:         group.ID,
				GroupName:       group.Name,
				Area:            area,
				AssignedMembers: e.AssignMembersToArea(group, area),
				Date:            dateStr,
				TimeSlot:        TimeSlotFor(area),
				Priority:        PriorityFor(area),
				Status:          status,
			})
		}
	}
	return tasks
}
