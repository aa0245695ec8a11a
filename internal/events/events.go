// Package events defines the payloads crossing the notification boundary.
package events

import "time"

// Event type identifiers carried in message headers.
const (
	TypeTaskCompleted   = "rota.task.completed"
	TypeBadgeAwarded    = "rota.badge.awarded"
	TypeScheduleUpdated = "rota.schedule.updated"
)

// TaskCompleted is emitted once per completion transition. A quality-score
// correction re-emits it with the corrected score.
type TaskCompleted struct {
	EventID      string    `json:"event_id"`
	GroupID      string    `json:"group_id"`
	GroupName    string    `json:"group_name"`
	BuildingID   string    `json:"building_id"`
	Area         string    `json:"area"`
	Date         string    `json:"date"`
	PerformedBy  []string  `json:"performed_by"`
	QualityScore int       `json:"quality_score"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BadgeAwarded is emitted exactly once per newly crossed badge threshold.
type BadgeAwarded struct {
	EventID    string    `json:"event_id"`
	ResidentID string    `json:"resident_id"`
	BuildingID string    `json:"building_id"`
	BadgeType  string    `json:"badge_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ScheduleUpdated is emitted when a group's weekly rotation is regenerated.
type ScheduleUpdated struct {
	EventID    string    `json:"event_id"`
	GroupID    string    `json:"group_id"`
	BuildingID string    `json:"building_id"`
	WeekStart  string    `json:"week_start"`
	OccurredAt time.Time `json:"occurred_at"`
}
