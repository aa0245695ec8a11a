package domain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/rotation/internal/events"
)

type stubRepo struct {
	buildings map[string]*Building
	residents map[string]*Resident
	groups    map[string]*CleaningGroup
	saveErr   error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		buildings: make(map[string]*Building),
		residents: make(map[string]*Resident),
		groups:    make(map[string]*CleaningGroup),
	}
}

func (r *stubRepo) GetBuilding(_ context.Context, id string) (*Building, error) {
	return r.buildings[id], nil
}

func (r *stubRepo) GetResident(_ context.Context, id string) (*Resident, error) {
	return r.residents[id], nil
}

func (r *stubRepo) ListResidents(_ context.Context, buildingID string) ([]Resident, error) {
	building, ok := r.buildings[buildingID]
	if !ok {
		return nil, nil
	}
	out := make([]Resident, 0)
	for _, id := range building.Residents {
		if res, ok := r.residents[id]; ok {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *stubRepo) GetGroup(_ context.Context, id string) (*CleaningGroup, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	copied := *group
	return &copied, nil
}

func (r *stubRepo) ListGroups(_ context.Context, buildingID string) ([]CleaningGroup, error) {
	out := make([]CleaningGroup, 0)
	for _, g := range r.groups {
		if g.BuildingID == buildingID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *stubRepo) ListGroupsByMember(_ context.Context, residentID string) ([]CleaningGroup, error) {
	out := make([]CleaningGroup, 0)
	for _, g := range r.groups {
		if g.HasMember(residentID) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *stubRepo) SaveGroup(_ context.Context, group CleaningGroup) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := group
	r.groups[group.ID] = &copied
	return nil
}

func (r *stubRepo) AddBadge(_ context.Context, residentID, badgeType string) error {
	res, ok := r.residents[residentID]
	if !ok {
		return ErrResidentNotFound
	}
	if !res.HasBadge(badgeType) {
		res.Badges = append(res.Badges, badgeType)
	}
	return nil
}

type captureSink struct {
	tasks     []events.TaskCompleted
	badges    []events.BadgeAwarded
	schedules []events.ScheduleUpdated
}

func (c *captureSink) TaskCompleted(_ context.Context, e events.TaskCompleted) error {
	c.tasks = append(c.tasks, e)
	return nil
}

func (c *captureSink) BadgeAwarded(_ context.Context, e events.BadgeAwarded) error {
	c.badges = append(c.badges, e)
	return nil
}

func (c *captureSink) ScheduleUpdated(_ context.Context, e events.ScheduleUpdated) error {
	c.schedules = append(c.schedules, e)
	return nil
}

func seedBuilding(repo *stubRepo, buildingID string, blocks []string, residentsPerBlock int) {
	building := &Building{
		ID:            buildingID,
		Name:          "Norte",
		Blocks:        blocks,
		RoomsPerBlock: 10,
		PeoplePerRoom: 2,
	}
	for _, block := range blocks {
		for i := 1; i <= residentsPerBlock; i++ {
			id := fmt.Sprintf("%s-%s-r%d", buildingID, block, i)
			repo.residents[id] = &Resident{
				ID:         id,
				Name:       id,
				BuildingID: buildingID,
				Block:      block,
				RoomNumber: i,
			}
			building.Residents = append(building.Residents, id)
		}
	}
	repo.buildings[buildingID] = building
}

func TestCreateGroupValidation(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	seedBuilding(repo, "b1", []string{"A", "B"}, 5)
	service := NewService(repo, NopSink{}, DefaultSettings())

	t.Run("unknown building", func(t *testing.T) {
		_, err := service.CreateGroup(ctx, CreateGroupInput{ID: "g1", BuildingID: "nope"})
		require.ErrorIs(t, err, ErrBuildingNotFound)
	})

	t.Run("happy path uses building areas", func(t *testing.T) {
		group, err := service.CreateGroup(ctx, CreateGroupInput{
			ID:         "g1",
			Name:       "Block A crew",
			BuildingID: "b1",
			Members:    []string{"b1-A-r1", "b1-A-r2"},
		})
		require.NoError(t, err)
		require.True(t, group.Active)
		require.Equal(t, DefaultAreas(), group.AssignedAreas)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := service.CreateGroup(ctx, CreateGroupInput{
			ID:         "g1",
			BuildingID: "b1",
			Members:    []string{"b1-A-r3"},
		})
		require.ErrorIs(t, err, ErrDuplicateGroup)
	})

	t.Run("duplicate id in another building", func(t *testing.T) {
		seedBuilding(repo, "b2", []string{"A"}, 2)

		_, err := service.CreateGroup(ctx, CreateGroupInput{
			ID:         "g1",
			Name:       "B2 crew",
			BuildingID: "b2",
			Members:    []string{"b2-A-r1"},
		})
		require.ErrorIs(t, err, ErrDuplicateGroup)

		// The original group must be untouched.
		stored, err := service.GetGroup(ctx, "g1")
		require.NoError(t, err)
		require.Equal(t, "b1", stored.BuildingID)
		require.Equal(t, []string{"b1-A-r1", "b1-A-r2"}, stored.Members)
	})

	t.Run("too many members", func(t *testing.T) {
		_, err := service.CreateGroup(ctx, CreateGroupInput{
			ID:         "g2",
			BuildingID: "b1",
			Members:    []string{"b1-A-r1", "b1-A-r2", "b1-A-r3", "b1-A-r4", "b1-A-r5"},
		})
		require.ErrorIs(t, err, ErrTooManyMembers)
	})

	t.Run("member outside building", func(t *testing.T) {
		_, err := service.CreateGroup(ctx, CreateGroupInput{
			ID:         "g2",
			BuildingID: "b1",
			Members:    []string{"stranger"},
		})
		require.ErrorIs(t, err, ErrMemberNotInBuilding)
	})

	t.Run("block restriction", func(t *testing.T) {
		_, err := service.CreateGroup(ctx, CreateGroupInput{
			ID:               "g2",
			BuildingID:       "b1",
			Members:          []string{"b1-A-r1", "b1-B-r1"},
			BlockRestriction: "A",
		})
		require.ErrorIs(t, err, ErrBlockMismatch)
	})
}

func TestAutoFormGroupsChunking(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	seedBuilding(repo, "b1", []string{"A", "B"}, 0)

	// Block A: 9 residents, block B: 1 resident (skipped).
	building := repo.buildings["b1"]
	for i := 1; i <= 9; i++ {
		id := fmt.Sprintf("a%d", i)
		repo.residents[id] = &Resident{ID: id, BuildingID: "b1", Block: "A"}
		building.Residents = append(building.Residents, id)
	}
	repo.residents["lonely"] = &Resident{ID: "lonely", BuildingID: "b1", Block: "B"}
	building.Residents = append(building.Residents, "lonely")

	service := NewService(repo, NopSink{}, DefaultSettings())
	created, err := service.AutoFormGroups(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, created, 3, "9 residents at size 4 form chunks of 4, 4 and 1")

	require.Equal(t, "building_b1_block_A_group_1", created[0].ID)
	require.Equal(t, []string{"a1", "a2", "a3", "a4"}, created[0].Members)
	require.Equal(t, []string{"a5", "a6", "a7", "a8"}, created[1].Members)
	require.Equal(t, []string{"a9"}, created[2].Members)
	for _, g := range created {
		require.Equal(t, "A", g.BlockRestriction)
		require.True(t, g.Active)
	}
}

func TestRetireGroupKeepsHistory(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	group := testGroup("g1", []string{"r1"}, nil)
	group.CompletedTasks = completedRecords("g1", "r1", 3, time.Now().UTC())
	require.NoError(t, repo.SaveGroup(ctx, *group))

	service := NewService(repo, NopSink{}, DefaultSettings())
	require.NoError(t, service.RetireGroup(ctx, "g1"))

	stored, err := service.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.False(t, stored.Active)
	require.Len(t, stored.CompletedTasks, 3, "retiring must not drop history")

	require.ErrorIs(t, service.RetireGroup(ctx, "missing"), ErrGroupNotFound)
}

func TestRegenerateScheduleEmitsEvent(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	group := testGroup("g1", []string{"r1", "r2"}, []string{"Kitchen", "Showers", "Rooms"})
	require.NoError(t, repo.SaveGroup(ctx, *group))

	sink := &captureSink{}
	service := NewService(repo, sink, DefaultSettings())

	schedule, err := service.RegenerateSchedule(ctx, "g1", mondayWeekStart)
	require.NoError(t, err)
	require.Len(t, schedule, 7)

	require.Len(t, sink.schedules, 1)
	require.Equal(t, "g1", sink.schedules[0].GroupID)
	require.Equal(t, mondayWeekStart.Format(dateLayout), sink.schedules[0].WeekStart)
	require.NotEmpty(t, sink.schedules[0].EventID)

	stored, err := service.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, stored.Schedule, 7, "regenerated schedule must be persisted")
}

func TestValidateTaskEmitsCompletedEvent(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	group := testGroup("g1", []string{"r1", "r2"}, nil)
	require.NoError(t, repo.SaveGroup(ctx, *group))

	sink := &captureSink{}
	service := NewService(repo, sink, DefaultSettings())

	_, err := service.ValidateTask(ctx, ValidateTaskInput{
		GroupID:      "g1",
		Date:         "2025-10-28",
		Area:         "Kitchen",
		PerformedBy:  []string{"r1"},
		QualityScore: 4,
	})
	require.NoError(t, err)
	require.Len(t, sink.tasks, 1)
	require.Equal(t, 4, sink.tasks[0].QualityScore)
	require.Equal(t, []string{"r1"}, sink.tasks[0].PerformedBy)

	// A correction re-emits with the new score but keeps a single record.
	_, err = service.ValidateTask(ctx, ValidateTaskInput{
		GroupID:      "g1",
		Date:         "2025-10-28",
		Area:         "Kitchen",
		PerformedBy:  []string{"r1"},
		QualityScore: 5,
	})
	require.NoError(t, err)
	require.Len(t, sink.tasks, 2)
	require.Equal(t, 5, sink.tasks[1].QualityScore)
	require.NotEqual(t, sink.tasks[0].EventID, sink.tasks[1].EventID)

	stored, err := service.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, stored.CompletedTasks, 1)
}

func TestMarkMissedEmitsNothing(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	group := testGroup("g1", []string{"r1"}, nil)
	require.NoError(t, repo.SaveGroup(ctx, *group))

	sink := &captureSink{}
	service := NewService(repo, sink, DefaultSettings())

	_, err := service.MarkMissed(ctx, MarkMissedInput{
		GroupID: "g1",
		Date:    "2025-10-28",
		Area:    "Kitchen",
		Reason:  "sick",
	})
	require.NoError(t, err)
	require.Empty(t, sink.tasks)
	require.Empty(t, sink.badges)
	require.Empty(t, sink.schedules)
}

func TestAwardBadgesIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)

	repo := newStubRepo()
	repo.residents["r1"] = &Resident{ID: "r1", BuildingID: "b1"}
	group := testGroup("g1", []string{"r1"}, nil)
	group.CompletedTasks = completedRecords("g1", "r1", 12, now.AddDate(0, 0, -3))
	require.NoError(t, repo.SaveGroup(ctx, *group))

	sink := &captureSink{}
	service := NewService(repo, sink, DefaultSettings(), WithClock(fixedClock(now)))

	awarded, err := service.AwardBadges(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, []string{BadgeConsistent}, awarded)
	require.Equal(t, []string{BadgeConsistent}, repo.residents["r1"].Badges)
	require.Len(t, sink.badges, 1)
	require.Equal(t, BadgeConsistent, sink.badges[0].BadgeType)

	// The badge is now held; a second pass awards and notifies nothing.
	awarded, err = service.AwardBadges(ctx, "r1")
	require.NoError(t, err)
	require.Empty(t, awarded)
	require.Len(t, sink.badges, 1)

	_, err = service.AwardBadges(ctx, "ghost")
	require.ErrorIs(t, err, ErrResidentNotFound)
}

func TestResidentScheduleSpansGroups(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	service := NewService(repo, NopSink{}, DefaultSettings())

	g1 := testGroup("g1", []string{"r1", "r2"}, []string{"Kitchen", "Showers"})
	g1.Schedule = service.Engine().ComputeWeeklySchedule(g1, mondayWeekStart)
	require.NoError(t, repo.SaveGroup(ctx, *g1))

	assignments, err := service.ResidentSchedule(ctx, "r1", mondayWeekStart, 7)
	require.NoError(t, err)
	for _, a := range assignments {
		require.Equal(t, "g1", a.GroupID)
		require.Contains(t, []string{"Kitchen", "Showers"}, a.Area)
	}
}
