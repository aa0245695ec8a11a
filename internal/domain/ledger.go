package domain

import "time"

// Ledger owns the per-task state machine: a scheduled day transitions to
// completed (with a quality score) or missed, and every transition feeds the
// group's task history and performance score.
type Ledger struct {
	now func() time.Time
}

// LedgerOption configures optional behaviour for the Ledger.
type LedgerOption func(*Ledger)

// WithLedgerClock overrides the time source, used by tests.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger constructs a Ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ValidateTask marks the (date, area) task completed with the given quality.
// A missing date synthesizes a same-day pending entry first, modelling ad-hoc
// validation of unscheduled work. Re-validating an already-completed task is
// a correction: the existing record's quality is overwritten, never
// duplicated. The returned record reflects the final state.
func (l *Ledger) ValidateTask(group *CleaningGroup, date, area string, performedBy []string, quality int) (*TaskRecord, error) {
	if quality < 1 || quality > 5 {
		return nil, ErrInvalidQuality
	}

	day, ok := group.Schedule[date]
	if !ok {
		day = &DaySchedule{
			Areas:           []string{area},
			AssignedMembers: map[string][]string{},
			Status:          TaskStatusPending,
		}
		if group.Schedule == nil {
			group.Schedule = make(RotationSchedule)
		}
		group.Schedule[date] = day
	}

	if len(performedBy) == 0 {
		performedBy = day.AssignedMembers[area]
	}
	if len(performedBy) == 0 {
		performedBy = group.Members
	}

	now := l.now().UTC()

	if existing := findRecord(group.CompletedTasks, date, area); existing != nil {
		existing.QualityScore = quality
		existing.RecordedAt = now
		day.Status = TaskStatusCompleted
		day.QualityScore = quality
		group.RecomputePerformance()
		return existing, nil
	}

	day.Status = TaskStatusCompleted
	day.QualityScore = quality

	record := TaskRecord{
		Date:         date,
		Area:         area,
		GroupID:      group.ID,
		Members:      append([]string(nil), performedBy...),
		RecordedAt:   now,
		QualityScore: quality,
	}
	group.CompletedTasks = append(group.CompletedTasks, record)
	group.RecomputePerformance()
	return &group.CompletedTasks[len(group.CompletedTasks)-1], nil
}

// MarkMissed records the (date, area) task as missed with an optional reason.
// The day's status flips to missed when the date is on the schedule; the miss
// record is appended either way.
func (l *Ledger) MarkMissed(group *CleaningGroup, date, area string, assignedMembers []string, reason string) (*TaskRecord, error) {
	if len(assignedMembers) == 0 {
		if day, ok := group.Schedule[date]; ok {
			assignedMembers = day.AssignedMembers[area]
		}
	}
	if len(assignedMembers) == 0 {
		assignedMembers = group.Members
	}

	record := TaskRecord{
		Date:       date,
		Area:       area,
		GroupID:    group.ID,
		Members:    append([]string(nil), assignedMembers...),
		RecordedAt: l.now().UTC(),
		Reason:     reason,
	}
	group.MissedTasks = append(group.MissedTasks, record)

	if day, ok := group.Schedule[date]; ok {
		day.Status = TaskStatusMissed
	}

	group.RecomputePerformance()
	return &group.MissedTasks[len(group.MissedTasks)-1], nil
}

func findRecord(records []TaskRecord, date, area string) *TaskRecord {
	for i := range records {
		if records[i].Date == date && records[i].Area == area {
			return &records[i]
		}
	}
	return nil
}
