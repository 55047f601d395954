package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type TeamRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTeamRepository(db *pgxpool.Pool, logger *zap.Logger) *TeamRepository {
	return &TeamRepository{db: db, logger: logger}
}

func (r *TeamRepository) Insert(ctx context.Context, t *model.Team) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO teams (id, project_id, name, members)
        VALUES ($1, $2, $3, $4)
    `, t.ID, t.ProjectID, t.Name, nonNil(t.Members))
	if err != nil {
		r.logger.Error("Failed to insert team", zap.String("project_id", t.ProjectID), zap.Error(err))
		return err
	}
	r.logger.Info("Team inserted", zap.String("team_id", t.ID), zap.Int("members", len(t.Members)))
	return nil
}

// AddMember appends userID to the team's members unless it is already there, and returns
// the updated team.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string) (*model.Team, error) {
	var t model.Team
	err := r.db.QueryRow(ctx, `
        UPDATE teams
        SET members = CASE WHEN $2 = ANY(members) THEN members ELSE array_append(members, $2) END
        WHERE id = $1
        RETURNING id, project_id, name, members
    `, teamID, userID).Scan(&t.ID, &t.ProjectID, &t.Name, &t.Members)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Failed to add team member",
				zap.String("team_id", teamID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) ListByProject(ctx context.Context, projectID string) ([]model.Team, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, project_id, name, members
        FROM teams
        WHERE project_id = $1
        ORDER BY name ASC, id ASC
    `, projectID)
	if err != nil {
		r.logger.Error("Failed to query teams", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Members); err != nil {
			r.logger.Error("Failed to scan team row", zap.Error(err))
			return nil, err
		}
		if t.Members == nil {
			t.Members = []string{}
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
