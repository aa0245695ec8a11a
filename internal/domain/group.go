// Package domain implements the cleaning rotation core: group registry,
// rotation engine, task ledger, and badge evaluation.
package domain

import "time"

// TaskStatus tracks the lifecycle of a scheduled cleaning day.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusMissed    TaskStatus = "missed"
)

// DaySchedule holds the assignments for one calendar day of a group's week.
type DaySchedule struct {
	Areas           []string            `json:"areas"`
	AssignedMembers map[string][]string `json:"assigned_members"`
	Status          TaskStatus          `json:"status"`
	QualityScore    int                 `json:"quality_score,omitempty"`
}

// RotationSchedule maps ISO calendar dates (2006-01-02) to day schedules. It
// is regenerated wholesale by the rotation engine and mutated in place by the
// task ledger on validation events.
type RotationSchedule map[string]*DaySchedule

// TaskRecord is the append-only ground truth for a completed or missed task.
// QualityScore is set for completed records, Reason for missed ones.
type TaskRecord struct {
	Date         string    `json:"date"`
	Area         string    `json:"area"`
	GroupID      string    `json:"group_id"`
	Members      []string  `json:"members"`
	RecordedAt   time.Time `json:"recorded_at"`
	QualityScore int       `json:"quality_score,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// CleaningGroup owns a set of members, their assigned areas, and the history
// the performance score is derived from. Member order matters: it is the
// rotation key used when spreading members across areas.
type CleaningGroup struct {
	ID               string
	Name             string
	BuildingID       string
	Members          []string
	AssignedAreas    []string
	BlockRestriction string
	Active           bool
	CreatedAt        time.Time
	Schedule         RotationSchedule
	CompletedTasks   []TaskRecord
	MissedTasks      []TaskRecord
	PerformanceScore float64
}

// HasMember reports whether the resident belongs to the group.
func (g *CleaningGroup) HasMember(residentID string) bool {
	for _, m := range g.Members {
		if m == residentID {
			return true
		}
	}
	return false
}

// ComputePerformanceScore blends completion rate and average quality:
// 0.7*completionRate + 0.3*(meanQuality/5). Returns 0 when there is no
// history at all.
func ComputePerformanceScore(completed, missed []TaskRecord) float64 {
	total := len(completed) + len(missed)
	if total == 0 {
		return 0
	}
	completionRate := float64(len(completed)) / float64(total)

	qualityAverage := 0.0
	if len(completed) > 0 {
		sum := 0
		for _, rec := range completed {
			sum += rec.QualityScore
		}
		qualityAverage = float64(sum) / float64(len(completed)) / 5.0
	}

	return 0.7*completionRate + 0.3*qualityAverage
}

// RecomputePerformance refreshes the derived score from the task lists.
func (g *CleaningGroup) RecomputePerformance() {
	g.PerformanceScore = ComputePerformanceScore(g.CompletedTasks, g.MissedTasks)
}

// PerformanceSummary aggregates a group's history for reporting.
type PerformanceSummary struct {
	GroupID          string
	GroupName        string
	MemberCount      int
	CompletionRate   float64
	PerformanceScore float64
	TotalTasks       int
	CompletedTasks   int
	MissedTasks      int
	AssignedAreas    int
}

// Summary derives the reporting view from the group's current history.
func (g *CleaningGroup) Summary() PerformanceSummary {
	total := len(g.CompletedTasks) + len(g.MissedTasks)
	completionRate := 0.0
	if total > 0 {
		completionRate = float64(len(g.CompletedTasks)) / float64(total)
	}
	return PerformanceSummary{
		GroupID:          g.ID,
		GroupName:        g.Name,
		MemberCount:      len(g.Members),
		CompletionRate:   completionRate,
		PerformanceScore: g.PerformanceScore,
		TotalTasks:       total,
		CompletedTasks:   len(g.CompletedTasks),
		MissedTasks:      len(g.MissedTasks),
		AssignedAreas:    len(g.AssignedAreas),
	}
}
