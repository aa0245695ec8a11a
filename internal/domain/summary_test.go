package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpcomingAssignmentsFollowAreaOrder(t *testing.T) {
	group := testGroup("g1", []string{"r1", "r2"}, []string{"Kitchen", "Showers", "Hallway"})
	group.Schedule["2025-10-28"] = &DaySchedule{
		Areas: []string{"Showers", "Kitchen", "Hallway"},
		AssignedMembers: map[string][]string{
			"Showers": {"r1"},
			"Kitchen": {"r1", "r2"},
			"Hallway": {"r2"},
		},
		Status: TaskStatusPending,
	}

	for i := 0; i < 20; i++ {
		got := UpcomingAssignments("r1", []CleaningGroup{*group}, mondayWeekStart, 7)
		require.Len(t, got, 2)
		require.Equal(t, "Showers", got[0].Area)
		require.Equal(t, "Kitchen", got[1].Area)
	}
}

func TestBuildRotationReport(t *testing.T) {
	building := Building{
		ID:            "b1",
		Name:          "Norte",
		Blocks:        []string{"A", "B"},
		RoomsPerBlock: 5,
		PeoplePerRoom: 2,
		Residents:     []string{"r1", "r2", "r3", "r4", "r5"},
	}

	active := *testGroup("g1", []string{"r1", "r2"}, []string{"Kitchen", "Showers"})
	retired := *testGroup("g2", []string{"r3"}, []string{"Terrace"})
	retired.Active = false

	report := BuildRotationReport(building, []CleaningGroup{active, retired}, 3)
	require.Equal(t, 1, report.ActiveGroups)
	require.Equal(t, 5, report.TotalResidents)
	require.Equal(t, 2, report.AreasCovered, "retired groups do not count toward coverage")
	require.InDelta(t, 0.25, report.OccupancyRate, 1e-9)
	require.Equal(t, "Every 3 days", report.RotationFrequency)
}
