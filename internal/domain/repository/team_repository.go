package repository

import (
	"context"
	"database/sql"
	"debug_contest/internal/common"
	"debug_contest/internal/domain/model"
	"errors"
	"fmt"
)

type TeamRepository interface {
	FindByID(ctx context.Context, id string) (*model.Team, error)
	FindByName(ctx context.Context, name string) (*model.Team, error)
	// FindOrCreate registers candidate under its unique team_name, or loads
	// the existing team of that name. The bool reports whether a new team
	// was created. The whole operation is one transaction so two concurrent
	// first logins with the same name resolve to a single team.
	FindOrCreate(ctx context.Context, candidate *model.Team) (*model.Team, bool, error)
	// SeedProgress points an unstarted team (null pointer, zero score) at a
	// question. A no-op for teams that have already started or finished.
	SeedProgress(ctx context.Context, teamID, qid string) error
	// AdvanceProgress moves a team's pointer from fromQID to nextQID and adds
	// points in a single atomic update: score and pointer change together or
	// not at all. The update is guarded on the pointer still holding fromQID
	// and fails with common.ErrConflict otherwise, which is how a concurrent
	// duplicate advance is detected instead of double-counted.
	AdvanceProgress(ctx context.Context, tx *sql.Tx, teamID string, fromQID, nextQID *string, points int) error
	ListTopTeams(ctx context.Context, limit int) ([]model.Team, error)
	ListTeamsByScore(ctx context.Context) ([]model.Team, error)
}

type pgTeamRepository struct {
	db *sql.DB
}

func NewPgTeamRepository(db *sql.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

const teamColumns = `id, team_name, score, current_qid, created_at`

func scanTeam(row interface{ Scan(...interface{}) error }, t *model.Team) error {
	return row.Scan(&t.ID, &t.TeamName, &t.Score, &t.CurrentQID, &t.CreatedAt)
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	team := &model.Team{}
	if err := scanTeam(r.db.QueryRowContext(ctx, query, id), team); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.FindByID: %w", err)
	}
	return team, nil
}

func (r *pgTeamRepository) FindByName(ctx context.Context, name string) (*model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_name = $1`
	team := &model.Team{}
	if err := scanTeam(r.db.QueryRowContext(ctx, query, name), team); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.FindByName: %w", err)
	}
	return team, nil
}

func (r *pgTeamRepository) FindOrCreate(ctx context.Context, candidate *model.Team) (*model.Team, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("pgTeamRepository.FindOrCreate begin: %w", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO teams (id, team_name, current_qid)
	           VALUES ($1, $2, $3)
	           ON CONFLICT (team_name) DO NOTHING
	           RETURNING ` + teamColumns
	team := &model.Team{}
	err = scanTeam(tx.QueryRowContext(ctx, insert, candidate.ID, candidate.TeamName, candidate.CurrentQID), team)
	created := true
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the insert race or the team already existed: load it.
		created = false
		query := `SELECT ` + teamColumns + ` FROM teams WHERE team_name = $1`
		err = scanTeam(tx.QueryRowContext(ctx, query, candidate.TeamName), team)
	}
	if err != nil {
		return nil, false, fmt.Errorf("pgTeamRepository.FindOrCreate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("pgTeamRepository.FindOrCreate commit: %w", err)
	}
	return team, created, nil
}

func (r *pgTeamRepository) SeedProgress(ctx context.Context, teamID, qid string) error {
	query := `UPDATE teams SET current_qid = $1
	          WHERE id = $2 AND current_qid IS NULL AND score = 0`
	if _, err := r.db.ExecContext(ctx, query, qid, teamID); err != nil {
		return fmt.Errorf("pgTeamRepository.SeedProgress: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) AdvanceProgress(ctx context.Context, tx *sql.Tx, teamID string, fromQID, nextQID *string, points int) error {
	// IS NOT DISTINCT FROM makes the pointer guard null-safe: fromQID is nil
	// for a team advancing off an unassigned pointer.
	query := `UPDATE teams SET score = score + $1, current_qid = $2
	          WHERE id = $3 AND current_qid IS NOT DISTINCT FROM $4`

	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, points, nextQID, teamID, fromQID)
	} else {
		res, err = r.db.ExecContext(ctx, query, points, nextQID, teamID, fromQID)
	}
	if err != nil {
		return fmt.Errorf("pgTeamRepository.AdvanceProgress: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTeamRepository.AdvanceProgress rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("team %s progress changed concurrently: %w", teamID, common.ErrConflict)
	}
	return nil
}

func (r *pgTeamRepository) ListTopTeams(ctx context.Context, limit int) ([]model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams
	          ORDER BY score DESC, created_at ASC, id ASC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListTopTeams query: %w", err)
	}
	defer rows.Close()
	return collectTeams(rows, "ListTopTeams")
}

func (r *pgTeamRepository) ListTeamsByScore(ctx context.Context) ([]model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams
	          ORDER BY score DESC, created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListTeamsByScore query: %w", err)
	}
	defer rows.Close()
	return collectTeams(rows, "ListTeamsByScore")
}

func collectTeams(rows *sql.Rows, op string) ([]model.Team, error) {
	teams := []model.Team{}
	for rows.Next() {
		var t model.Team
		if err := scanTeam(rows, &t); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.%s scan: %w", op, err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.%s rows.Err: %w", op, err)
	}
	return teams, nil
}
