// Package postgres provides pgx-backed persistence for the rotation service.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rotation/internal/domain"
)

// Repository persists buildings, residents, and cleaning groups. Schedules
// and task histories are stored as jsonb documents keyed by group id.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetBuilding implements domain.Repository.
func (r *Repository) GetBuilding(ctx context.Context, id string) (*domain.Building, error) {
	const query = `SELECT building_id, name, chief_id, blocks, rooms_per_block, people_per_room, areas, last_update
        FROM buildings WHERE building_id=$1`

	var b domain.Building
	row := r.pool.QueryRow(ctx, query, id)
	if err := row.Scan(&b.ID, &b.Name, &b.ChiefID, &b.Blocks, &b.RoomsPerBlock, &b.PeoplePerRoom, &b.Areas, &b.LastUpdate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	const residentQuery = `SELECT resident_id FROM residents WHERE building_id=$1 ORDER BY block, room_number, resident_id`
	rows, err := r.pool.Query(ctx, residentQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var residentID string
		if err := rows.Scan(&residentID); err != nil {
			return nil, err
		}
		b.Residents = append(b.Residents, residentID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetResident implements domain.Repository.
func (r *Repository) GetResident(ctx context.Context, id string) (*domain.Resident, error) {
	const query = `SELECT resident_id, name, building_id, block, room_number, badges, last_activity
        FROM residents WHERE resident_id=$1`

	var res domain.Resident
	row := r.pool.QueryRow(ctx, query, id)
	if err := row.Scan(&res.ID, &res.Name, &res.BuildingID, &res.Block, &res.RoomNumber, &res.Badges, &res.LastActivity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// ListResidents implements domain.Repository.
func (r *Repository) ListResidents(ctx context.Context, buildingID string) ([]domain.Resident, error) {
	const query = `SELECT resident_id, name, building_id, block, room_number, badges, last_activity
        FROM residents WHERE building_id=$1 ORDER BY block, room_number, resident_id`

	rows, err := r.pool.Query(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	residents := make([]domain.Resident, 0)
	for rows.Next() {
		var res domain.Resident
		if err := rows.Scan(&res.ID, &res.Name, &res.BuildingID, &res.Block, &res.RoomNumber, &res.Badges, &res.LastActivity); err != nil {
			return nil, err
		}
		residents = append(residents, res)
	}
	return residents, rows.Err()
}

const groupColumns = `group_id, name, building_id, members, assigned_areas, block_restriction, active, created_at, schedule, completed_tasks, missed_tasks, performance_score`

// GetGroup implements domain.Repository.
func (r *Repository) GetGroup(ctx context.Context, id string) (*domain.CleaningGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM cleaning_groups WHERE group_id=$1`, groupColumns)

	row := r.pool.QueryRow(ctx, query, id)
	group, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return group, nil
}

// ListGroups implements domain.Repository.
func (r *Repository) ListGroups(ctx context.Context, buildingID string) ([]domain.CleaningGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM cleaning_groups WHERE building_id=$1 ORDER BY group_id`, groupColumns)
	return r.queryGroups(ctx, query, buildingID)
}

// ListGroupsByMember implements domain.Repository.
func (r *Repository) ListGroupsByMember(ctx context.Context, residentID string) ([]domain.CleaningGroup, error) {
	query := fmt.Sprintf(`SELECT %s FROM cleaning_groups WHERE $1 = ANY(members) ORDER BY group_id`, groupColumns)
	return r.queryGroups(ctx, query, residentID)
}

func (r *Repository) queryGroups(ctx context.Context, query string, arg any) ([]domain.CleaningGroup, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]domain.CleaningGroup, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

// SaveGroup upserts the group document.
func (r *Repository) SaveGroup(ctx context.Context, group domain.CleaningGroup) error {
	schedule, err := json.Marshal(group.Schedule)
	if err != nil {
		return err
	}
	completed, err := json.Marshal(group.CompletedTasks)
	if err != nil {
		return err
	}
	missed, err := json.Marshal(group.MissedTasks)
	if err != nil {
		return err
	}

	const query = `INSERT INTO cleaning_groups
        (group_id, name, building_id, members, assigned_areas, block_restriction, active, created_at, schedule, completed_tasks, missed_tasks, performance_score)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (group_id) DO UPDATE SET
            name=EXCLUDED.name,
            members=EXCLUDED.members,
            assigned_areas=EXCLUDED.assigned_areas,
            block_restriction=EXCLUDED.block_restriction,
            active=EXCLUDED.active,
            schedule=EXCLUDED.schedule,
            completed_tasks=EXCLUDED.completed_tasks,
            missed_tasks=EXCLUDED.missed_tasks,
            performance_score=EXCLUDED.performance_score`

	_, err = r.pool.Exec(ctx, query,
		group.ID, group.Name, group.BuildingID, group.Members, group.AssignedAreas,
		group.BlockRestriction, group.Active, group.CreatedAt, schedule, completed, missed,
		group.PerformanceScore)
	return err
}

// AddBadge appends the badge to the resident's set if not already present.
func (r *Repository) AddBadge(ctx context.Context, residentID, badgeType string) error {
	const query = `UPDATE residents
        SET badges = array_append(badges, $2)
        WHERE resident_id=$1 AND NOT ($2 = ANY(badges))`

	tag, err := r.pool.Exec(ctx, query, residentID, badgeType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the badge is already held (fine) or the resident is unknown.
		exists, err := r.residentExists(ctx, residentID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrResidentNotFound
		}
	}
	return nil
}

func (r *Repository) residentExists(ctx context.Context, residentID string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM residents WHERE resident_id=$1`, residentID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanGroup(row pgx.Row) (*domain.CleaningGroup, error) {
	var group domain.CleaningGroup
	var schedule, completed, missed []byte

	if err := row.Scan(&group.ID, &group.Name, &group.BuildingID, &group.Members, &group.AssignedAreas,
		&group.BlockRestriction, &group.Active, &group.CreatedAt, &schedule, &completed, &missed,
		&group.PerformanceScore); err != nil {
		return nil, err
	}

	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &group.Schedule); err != nil {
			return nil, err
		}
	}
	if group.Schedule == nil {
		group.Schedule = make(domain.RotationSchedule)
	}
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &group.CompletedTasks); err != nil {
			return nil, err
		}
	}
	if len(missed) > 0 {
		if err := json.Unmarshal(missed, &group.MissedTasks); err != nil {
			return nil, err
		}
	}
	return &group, nil
}
