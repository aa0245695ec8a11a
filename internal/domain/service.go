package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/rotation/internal/events"
)

// Repository captures persistence operations for the rotation core. The
// service never loads or saves files itself; an external store supplies the
// snapshot and persists the results.
type Repository interface {
	GetBuilding(ctx context.Context, id string) (*Building, error)
	GetResident(ctx context.Context, id string) (*Resident, error)
	ListResidents(ctx context.Context, buildingID string) ([]Resident, error)
	GetGroup(ctx context.Context, id string) (*CleaningGroup, error)
	ListGroups(ctx context.Context, buildingID string) ([]CleaningGroup, error)
	ListGroupsByMember(ctx context.Context, residentID string) ([]CleaningGroup, error)
	SaveGroup(ctx context.Context, group CleaningGroup) error
	AddBadge(ctx context.Context, residentID, badgeType string) error
}

// EventSink receives the notification events produced by state transitions.
type EventSink interface {
	TaskCompleted(ctx context.Context, event events.TaskCompleted) error
	BadgeAwarded(ctx context.Context, event events.BadgeAwarded) error
	ScheduleUpdated(ctx context.Context, event events.ScheduleUpdated) error
}

// NopSink discards events; useful for tests and offline tooling.
type NopSink struct{}

func (NopSink) TaskCompleted(context.Context, events.TaskCompleted) error     { return nil }
func (NopSink) BadgeAwarded(context.Context, events.BadgeAwarded) error       { return nil }
func (NopSink) ScheduleUpdated(context.Context, events.ScheduleUpdated) error { return nil }

// Service orchestrates the rotation workflows: group registry, schedule
// regeneration, task validation, and badge awarding.
type Service struct {
	repo      Repository
	sink      EventSink
	settings  Settings
	engine    *Engine
	ledger    *Ledger
	evaluator *Evaluator
	now       func() time.Time
}

// ServiceOption configures optional behaviour for the Service.
type ServiceOption func(*Service)

// WithClock overrides the time source for the service and its ledger and
// evaluator, used by tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
		s.ledger = NewLedger(WithLedgerClock(now))
		s.evaluator = NewEvaluator(s.settings, WithEvaluatorClock(now))
	}
}

// WithEvaluator replaces the badge evaluator, letting callers plug cleaner or
// punctual rules.
func WithEvaluator(evaluator *Evaluator) ServiceOption {
	return func(s *Service) {
		s.evaluator = evaluator
	}
}

// NewService constructs a Service.
func NewService(repo Repository, sink EventSink, settings Settings, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		sink:      sink,
		settings:  settings,
		engine:    NewEngine(settings),
		ledger:    NewLedger(),
		evaluator: NewEvaluator(settings),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the rotation engine for read-only schedule math.
func (s *Service) Engine() *Engine {
	return s.engine
}

// CreateGroupInput captures the payload for group creation.
type CreateGroupInput struct {
	ID               string
	Name             string
	BuildingID       string
	Members          []string
	Areas            []string
	BlockRestriction string
}

// CreateGroup validates and stores a new cleaning group. Member order is
// preserved: it is the group's rotation key.
func (s *Service) CreateGroup(ctx context.Context, input CreateGroupInput) (*CleaningGroup, error) {
	building, err := s.repo.GetBuilding(ctx, input.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, ErrBuildingNotFound
	}

	// Group ids are the storage key across all buildings, so an id taken
	// anywhere is taken everywhere; saving over it would destroy the other
	// building's schedule and history.
	if existing, err := s.repo.GetGroup(ctx, input.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateGroup
	}

	if len(input.Members) > s.settings.MaxGroupSize {
		return nil, ErrTooManyMembers
	}

	residents, err := s.repo.ListResidents(ctx, input.BuildingID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Resident, len(residents))
	for _, r := range residents {
		byID[r.ID] = r
	}

	for _, memberID := range input.Members {
		resident, ok := byID[memberID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMemberNotInBuilding, memberID)
		}
		if input.BlockRestriction != "" && resident.Block != input.BlockRestriction {
			return nil, fmt.Errorf("%w: %s", ErrBlockMismatch, memberID)
		}
	}

	areas := input.Areas
	if len(areas) == 0 {
		areas = building.CleaningAreas()
	}

	group := CleaningGroup{
		ID:               input.ID,
		Name:             input.Name,
		BuildingID:       input.BuildingID,
		Members:          append([]string(nil), input.Members...),
		AssignedAreas:    append([]string(nil), areas...),
		BlockRestriction: input.BlockRestriction,
		Active:           true,
		CreatedAt:        s.now().UTC(),
		Schedule:         make(RotationSchedule),
	}

	if err := s.repo.SaveGroup(ctx, group); err != nil {
		return nil, err
	}
	return &group, nil
}

// AutoFormGroups partitions a building's residents by block and chunks each
// block list into consecutive groups of the configured size. Blocks with
// fewer than two residents are skipped; input order is preserved so the
// outcome is reproducible.
func (s *Service) AutoFormGroups(ctx context.Context, buildingID string) ([]CleaningGroup, error) {
	building, err := s.repo.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, ErrBuildingNotFound
	}

	residents, err := s.repo.ListResidents(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	created := make([]CleaningGroup, 0)
	for _, block := range building.Blocks {
		blockResidents := make([]Resident, 0)
		for _, r := range residents {
			if r.Block == block {
				blockResidents = append(blockResidents, r)
			}
		}
		if len(blockResidents) < 2 {
			continue
		}

		for i, chunk := range chunkResidents(blockResidents, s.settings.MaxGroupSize) {
			members := make([]string, len(chunk))
			for j, r := range chunk {
				members[j] = r.ID
			}
			group := CleaningGroup{
				ID:               fmt.Sprintf("building_%s_block_%s_group_%d", building.ID, block, i+1),
				Name:             fmt.Sprintf("Group %s%d - Building %s", block, i+1, building.Name),
				BuildingID:       building.ID,
				Members:          members,
				AssignedAreas:    building.CleaningAreas(),
				BlockRestriction: block,
				Active:           true,
				CreatedAt:        s.now().UTC(),
				Schedule:         make(RotationSchedule),
			}
			if err := s.repo.SaveGroup(ctx, group); err != nil {
				return nil, err
			}
			created = append(created, group)
		}
	}
	return created, nil
}

// chunkResidents splits the list into consecutive chunks of at most size,
// without shuffling. The trailing chunk may be smaller.
func chunkResidents(residents []Resident, size int) [][]Resident {
	if size <= 0 {
		return nil
	}
	chunks := make([][]Resident, 0, (len(residents)+size-1)/size)
	for start := 0; start < len(residents); start += size {
		end := start + size
		if end > len(residents) {
			end = len(residents)
		}
		chunks = append(chunks, residents[start:end])
	}
	return chunks
}

// RetireGroup marks the group inactive. History stays queryable.
func (s *Service) RetireGroup(ctx context.Context, groupID string) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}
	group.Active = false
	return s.repo.SaveGroup(ctx, *group)
}

// RegenerateSchedule replaces the group's rotation wholesale for the week
// containing weekStart and emits a schedule.updated event.
func (s *Service) RegenerateSchedule(ctx context.Context, groupID string, weekStart time.Time) (RotationSchedule, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	group.Schedule = s.engine.ComputeWeeklySchedule(group, weekStart)
	if err := s.repo.SaveGroup(ctx, *group); err != nil {
		return nil, err
	}

	event := events.ScheduleUpdated{
		EventID:    uuid.NewString(),
		GroupID:    group.ID,
		BuildingID: group.BuildingID,
		WeekStart:  WeekStart(weekStart).Format(dateLayout),
		OccurredAt: s.now().UTC(),
	}
	if err := s.sink.ScheduleUpdated(ctx, event); err != nil {
		return nil, err
	}
	return group.Schedule, nil
}

// ValidateTaskInput captures a completion event from the API layer.
type ValidateTaskInput struct {
	GroupID      string
	Date         string
	Area         string
	PerformedBy  []string
	QualityScore int
}

// ValidateTask applies the completion transition and emits a task.completed
// event. Corrections (re-validating a completed task) re-emit with the
// corrected score but never duplicate the record.
func (s *Service) ValidateTask(ctx context.Context, input ValidateTaskInput) (*TaskRecord, error) {
	group, err := s.repo.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	record, err := s.ledger.ValidateTask(group, input.Date, input.Area, input.PerformedBy, input.QualityScore)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveGroup(ctx, *group); err != nil {
		return nil, err
	}

	event := events.TaskCompleted{
		EventID:      uuid.NewString(),
		GroupID:      group.ID,
		GroupName:    group.Name,
		BuildingID:   group.BuildingID,
		Area:         record.Area,
		Date:         record.Date,
		PerformedBy:  append([]string(nil), record.Members...),
		QualityScore: record.QualityScore,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.sink.TaskCompleted(ctx, event); err != nil {
		return nil, err
	}
	return record, nil
}

// MarkMissedInput captures a miss report from the API layer.
type MarkMissedInput struct {
	GroupID         string
	Date            string
	Area            string
	AssignedMembers []string
	Reason          string
}

// MarkMissed applies the missed transition. No event crosses the notification
// boundary for misses; escalation is an external concern.
func (s *Service) MarkMissed(ctx context.Context, input MarkMissedInput) (*TaskRecord, error) {
	group, err := s.repo.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	record, err := s.ledger.MarkMissed(group, input.Date, input.Area, input.AssignedMembers, input.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveGroup(ctx, *group); err != nil {
		return nil, err
	}
	return record, nil
}

// AwardBadges evaluates a resident's history and persists every newly crossed
// badge, emitting one badge.awarded event per badge. Held badges are never
// re-awarded or re-notified.
func (s *Service) AwardBadges(ctx context.Context, residentID string) ([]string, error) {
	resident, err := s.repo.GetResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	if resident == nil {
		return nil, ErrResidentNotFound
	}

	groups, err := s.repo.ListGroupsByMember(ctx, residentID)
	if err != nil {
		return nil, err
	}

	newly := s.evaluator.Evaluate(*resident, groups)
	for _, badgeType := range newly {
		if err := s.repo.AddBadge(ctx, residentID, badgeType); err != nil {
			return nil, err
		}
		event := events.BadgeAwarded{
			EventID:    uuid.NewString(),
			ResidentID: residentID,
			BuildingID: resident.BuildingID,
			BadgeType:  badgeType,
			OccurredAt: s.now().UTC(),
		}
		if err := s.sink.BadgeAwarded(ctx, event); err != nil {
			return nil, err
		}
	}
	return newly, nil
}

// GroupSummary returns the performance summary for one group.
func (s *Service) GroupSummary(ctx context.Context, groupID string) (*PerformanceSummary, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	summary := group.Summary()
	return &summary, nil
}

// GetGroup returns the stored group.
func (s *Service) GetGroup(ctx context.Context, groupID string) (*CleaningGroup, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// ResidentSchedule lists the resident's upcoming assignments across all their
// groups for the next days, starting at from.
func (s *Service) ResidentSchedule(ctx context.Context, residentID string, from time.Time, days int) ([]ResidentAssignment, error) {
	groups, err := s.repo.ListGroupsByMember(ctx, residentID)
	if err != nil {
		return nil, err
	}
	return UpcomingAssignments(residentID, groups, from, days), nil
}

// DailyTasks returns the building-wide task list for one date.
func (s *Service) DailyTasks(ctx context.Context, buildingID string, date time.Time) ([]DailyTask, error) {
	building, err := s.repo.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, ErrBuildingNotFound
	}
	groups, err := s.repo.ListGroups(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return s.engine.BuildDailyTasks(groups, date), nil
}

// RotationReport summarises rotation coverage for one building.
func (s *Service) RotationReport(ctx context.Context, buildingID string) (*RotationReport, error) {
	building, err := s.repo.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, ErrBuildingNotFound
	}
	groups, err := s.repo.ListGroups(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	report := BuildRotationReport(*building, groups, s.settings.RotationPeriodDays)
	return &report, nil
}
