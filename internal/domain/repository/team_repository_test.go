package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debug_contest/internal/common"
	"debug_contest/internal/domain/model"
)

var teamTestCols = []string{"id", "team_name", "score", "current_qid", "created_at"}

func TestPgTeamRepository_FindOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesWhenNameIsFree", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewPgTeamRepository(db)

		qid := "q1"
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO teams").
			WithArgs("team-1", "Alpha", &qid).
			WillReturnRows(sqlmock.NewRows(teamTestCols).AddRow("team-1", "Alpha", 0, "q1", time.Now()))
		mock.ExpectCommit()

		team, created, err := repo.FindOrCreate(ctx, &model.Team{ID: "team-1", TeamName: "Alpha", CurrentQID: &qid})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "team-1", team.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LoadsExistingWhenInsertLosesConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewPgTeamRepository(db)

		qid := "q1"
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO teams").
			WillReturnRows(sqlmock.NewRows(teamTestCols)) // DO NOTHING returned no row
		mock.ExpectQuery("SELECT id, team_name, score, current_qid, created_at FROM teams WHERE team_name").
			WithArgs("Alpha").
			WillReturnRows(sqlmock.NewRows(teamTestCols).AddRow("team-0", "Alpha", 40, nil, time.Now()))
		mock.ExpectCommit()

		team, created, err := repo.FindOrCreate(ctx, &model.Team{ID: "team-1", TeamName: "Alpha", CurrentQID: &qid})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "team-0", team.ID)
		assert.Equal(t, 40, team.Score)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgTeamRepository_AdvanceProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("AtomicScoreAndPointerUpdate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewPgTeamRepository(db)

		from, next := "q1", "q2"
		mock.ExpectExec("UPDATE teams SET score").
			WithArgs(10, &next, "team-1", &from).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.AdvanceProgress(ctx, nil, "team-1", &from, &next, 10))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("PointerMovedConcurrentlyIsConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewPgTeamRepository(db)

		from, next := "q1", "q2"
		mock.ExpectExec("UPDATE teams SET score").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.AdvanceProgress(ctx, nil, "team-1", &from, &next, 10)
		require.ErrorIs(t, err, common.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CompletionClearsPointer", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewPgTeamRepository(db)

		from := "q2"
		mock.ExpectExec("UPDATE teams SET score").
			WithArgs(20, nil, "team-1", &from).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.AdvanceProgress(ctx, nil, "team-1", &from, nil, 20))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
