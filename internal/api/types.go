package api

import (
	"errors"
	"strings"
	"time"

	"example.com/rotation/internal/domain"
)

// CreateGroupRequest is the payload for POST /v1/groups.
type CreateGroupRequest struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	BuildingID       string   `json:"building_id"`
	Members          []string `json:"members"`
	Areas            []string `json:"areas,omitempty"`
	BlockRestriction string   `json:"block_restriction,omitempty"`
}

// Validate ensures request correctness.
func (r CreateGroupRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.BuildingID) == "" {
		return errors.New("building_id is required")
	}
	return nil
}

// AutoFormRequest is the payload for POST /v1/groups/auto-form.
type AutoFormRequest struct {
	BuildingID string `json:"building_id"`
}

// AutoFormResponse lists the created groups.
type AutoFormResponse struct {
	Groups []GroupView `json:"groups"`
}

// ValidateTaskRequest is the payload for POST /v1/groups/{id}/tasks/validate.
type ValidateTaskRequest struct {
	Date         string   `json:"date"`
	Area         string   `json:"area"`
	PerformedBy  []string `json:"performed_by,omitempty"`
	QualityScore int      `json:"quality_score"`
}

// Validate ensures request correctness. The quality range itself is enforced
// by the ledger.
func (r ValidateTaskRequest) Validate() error {
	if strings.TrimSpace(r.Date) == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return errors.New("date must be formatted YYYY-MM-DD")
	}
	if strings.TrimSpace(r.Area) == "" {
		return errors.New("area is required")
	}
	return nil
}

// MarkMissedRequest is the payload for POST /v1/groups/{id}/tasks/miss.
type MarkMissedRequest struct {
	Date            string   `json:"date"`
	Area            string   `json:"area"`
	AssignedMembers []string `json:"assigned_members,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

// Validate ensures request correctness.
func (r MarkMissedRequest) Validate() error {
	if strings.TrimSpace(r.Date) == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return errors.New("date must be formatted YYYY-MM-DD")
	}
	if strings.TrimSpace(r.Area) == "" {
		return errors.New("area is required")
	}
	return nil
}

// GroupView exposes a cleaning group to API clients.
type GroupView struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	BuildingID       string    `json:"building_id"`
	Members          []string  `json:"members"`
	AssignedAreas    []string  `json:"assigned_areas"`
	BlockRestriction string    `json:"block_restriction,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	PerformanceScore float64   `json:"performance_score"`
}

// SummaryView exposes the performance summary.
type SummaryView struct {
	GroupID          string  `json:"group_id"`
	GroupName        string  `json:"group_name"`
	MemberCount      int     `json:"member_count"`
	CompletionRate   float64 `json:"completion_rate"`
	PerformanceScore float64 `json:"performance_score"`
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	MissedTasks      int     `json:"missed_tasks"`
	AssignedAreas    int     `json:"assigned_areas"`
}

// ScheduleResponse packages a group's rotation schedule.
type ScheduleResponse struct {
	GroupID  string                  `json:"group_id"`
	Schedule domain.RotationSchedule `json:"schedule"`
}

// TaskRecordView exposes a single ledger record.
type TaskRecordView struct {
	Date         string    `json:"date"`
	Area         string    `json:"area"`
	GroupID      string    `json:"group_id"`
	Members      []string  `json:"members"`
	RecordedAt   time.Time `json:"recorded_at"`
	QualityScore int       `json:"quality_score,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// TaskRecordResponse couples a ledger record with the recomputed score.
type TaskRecordResponse struct {
	Record           TaskRecordView `json:"record"`
	PerformanceScore float64        `json:"performance_score"`
}

// ResidentScheduleResponse packages a resident's upcoming assignments.
type ResidentScheduleResponse struct {
	ResidentID  string                      `json:"resident_id"`
	Assignments []domain.ResidentAssignment `json:"assignments"`
}

// DailyTasksResponse packages the building-wide daily task list.
type DailyTasksResponse struct {
	BuildingID string             `json:"building_id"`
	Date       string             `json:"date"`
	Tasks      []domain.DailyTask `json:"tasks"`
}

func toGroupView(group domain.CleaningGroup) GroupView {
	return GroupView{
		ID:               group.ID,
		Name:             group.Name,
		BuildingID:       group.BuildingID,
		Members:          group.Members,
		AssignedAreas:    group.AssignedAreas,
		BlockRestriction: group.BlockRestriction,
		Active:           group.Active,
		CreatedAt:        group.CreatedAt,
		PerformanceScore: group.PerformanceScore,
	}
}

func toSummaryView(summary domain.PerformanceSummary) SummaryView {
	return SummaryView{
		GroupID:          summary.GroupID,
		GroupName:        summary.GroupName,
		MemberCount:      summary.MemberCount,
		CompletionRate:   summary.CompletionRate,
		PerformanceScore: summary.PerformanceScore,
		TotalTasks:       summary.TotalTasks,
		CompletedTasks:   summary.CompletedTasks,
		MissedTasks:      summary.MissedTasks,
		AssignedAreas:    summary.AssignedAreas,
	}
}

func toRecordView(record domain.TaskRecord) TaskRecordView {
	return TaskRecordView{
		Date:         record.Date,
		Area:         record.Area,
		GroupID:      record.GroupID,
		Members:      record.Members,
		RecordedAt:   record.RecordedAt,
		QualityScore: record.QualityScore,
		Reason:       record.Reason,
	}
}
