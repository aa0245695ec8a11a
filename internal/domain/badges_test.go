package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func completedRecords(groupID, residentID string, count int, recordedAt time.Time) []TaskRecord {
	records := make([]TaskRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, TaskRecord{
			Date:         recordedAt.AddDate(0, 0, -i).Format(dateLayout),
			Area:         "Kitchen",
			GroupID:      groupID,
			Members:      []string{residentID},
			RecordedAt:   recordedAt,
			QualityScore: 4,
		})
	}
	return records
}

func TestConsistentBadgeRollingWindow(t *testing.T) {
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)
	evaluator := NewEvaluator(DefaultSettings(), WithEvaluatorClock(fixedClock(now)))

	resident := Resident{ID: "r1", Name: "Ana"}
	group := testGroup("g1", []string{"r1", "r2"}, nil)

	// 9 recent completions are one short of the threshold.
	group.CompletedTasks = completedRecords("g1", "r1", 9, now.AddDate(0, 0, -5))
	require.Empty(t, evaluator.Evaluate(resident, []CleaningGroup{*group}))

	// A 10th completion outside the 30-day window must not count.
	stale := completedRecords("g1", "r1", 1, now.AddDate(0, 0, -31))
	group.CompletedTasks = append(group.CompletedTasks, stale...)
	require.Empty(t, evaluator.Evaluate(resident, []CleaningGroup{*group}))

	// A 10th recent completion crosses the threshold.
	group.CompletedTasks = append(group.CompletedTasks, completedRecords("g1", "r1", 1, now.AddDate(0, 0, -1))...)
	require.Equal(t, []string{BadgeConsistent}, evaluator.Evaluate(resident, []CleaningGroup{*group}))
}

func TestEvaluateSkipsHeldBadges(t *testing.T) {
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)
	evaluator := NewEvaluator(DefaultSettings(), WithEvaluatorClock(fixedClock(now)))

	resident := Resident{ID: "r1", Name: "Ana", Badges: []string{BadgeConsistent}}
	group := testGroup("g1", []string{"r1"}, nil)
	group.CompletedTasks = completedRecords("g1", "r1", 15, now.AddDate(0, 0, -2))

	require.Empty(t, evaluator.Evaluate(resident, []CleaningGroup{*group}))
}

func TestEvaluateIgnoresOtherResidentsHistory(t *testing.T) {
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)
	evaluator := NewEvaluator(DefaultSettings(), WithEvaluatorClock(fixedClock(now)))

	resident := Resident{ID: "r1", Name: "Ana"}
	group := testGroup("g1", []string{"r1", "r2"}, nil)
	group.CompletedTasks = completedRecords("g1", "r2", 20, now.AddDate(0, 0, -1))

	require.Empty(t, evaluator.Evaluate(resident, []CleaningGroup{*group}))
}

func TestCleanerRulePluggableAggregate(t *testing.T) {
	settings := DefaultSettings()
	aggregate := func(resident Resident, history []TaskRecord) float64 {
		return float64(len(history)) / 10.0
	}
	evaluator := NewEvaluator(settings,
		WithBadgeRule(BadgeCleaner, CleanerRule(settings.CleanerBadgeThreshold, aggregate)))

	resident := Resident{ID: "r1", Name: "Ana"}
	now := time.Now().UTC()

	group := testGroup("g1", []string{"r1"}, nil)
	group.CompletedTasks = completedRecords("g1", "r1", 9, now)
	require.Empty(t, evaluator.Evaluate(resident, []CleaningGroup{*group}), "0.9 is not strictly above the threshold")

	group.CompletedTasks = completedRecords("g1", "r1", 10, now)
	got := evaluator.Evaluate(resident, []CleaningGroup{*group})
	require.Contains(t, got, BadgeCleaner)
}

func TestResidentHistorySpansGroups(t *testing.T) {
	now := time.Now().UTC()

	g1 := testGroup("g1", []string{"r1", "r2"}, nil)
	g1.CompletedTasks = completedRecords("g1", "r1", 2, now)
	g2 := testGroup("g2", []string{"r1"}, nil)
	g2.CompletedTasks = completedRecords("g2", "r1", 3, now)
	g3 := testGroup("g3", []string{"r2"}, nil)
	g3.CompletedTasks = completedRecords("g3", "r2", 4, now)

	history := ResidentHistory("r1", []CleaningGroup{*g1, *g2, *g3})
	require.Len(t, history, 5)
}
