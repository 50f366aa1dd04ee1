package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debug_contest/internal/common"
	"debug_contest/internal/domain/model"
	"debug_contest/internal/domain/repository"
)

var (
	teamCols     = []string{"id", "team_name", "score", "current_qid", "created_at"}
	questionCols = []string{
		"id", "title", "slug", "description", "max_points",
		"buggy_code_c", "buggy_code_python", "buggy_code_java",
		"correct_answer_c", "correct_answer_python", "correct_answer_java",
		"created_at",
	}
)

type fakeFeed struct {
	updates []model.TeamScoreUpdate
	err     error
}

func (f *fakeFeed) Publish(_ context.Context, update model.TeamScoreUpdate) error {
	f.updates = append(f.updates, update)
	return f.err
}

func newContestService(db *sql.DB, feed TeamFeedPublisher) *ContestService {
	return NewContestService(
		repository.NewPgQuestionRepository(db),
		repository.NewPgTeamRepository(db),
		repository.NewPgSubmissionRepository(db),
		feed,
		db,
	)
}

func questionRow(rows *sqlmock.Rows, id, title string, points int, answerPython string) *sqlmock.Rows {
	return rows.AddRow(
		id, title, title, "desc", points,
		"buggy c", "buggy python", "buggy java",
		"fixed c", answerPython, "fixed java",
		time.Now(),
	)
}

func expectTeam(mock sqlmock.Sqlmock, teamID string, score int, currentQID *string) {
	mock.ExpectQuery("SELECT id, team_name, score, current_qid, created_at FROM teams WHERE id").
		WithArgs(teamID).
		WillReturnRows(sqlmock.NewRows(teamCols).AddRow(teamID, "Alpha", score, currentQID, time.Now()))
}

func expectQuestions(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT id, title, slug, description, max_points").WillReturnRows(rows)
}

func TestContestService_ActiveQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("ResumesAtStoredPointer", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		q2 := "q2"
		expectTeam(mock, "team-1", 10, &q2)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "fix one")
		questionRow(rows, "q2", "second", 20, "fix two")
		expectQuestions(mock, rows)

		resp, err := svc.ActiveQuestion(ctx, "team-1")
		require.NoError(t, err)
		require.NotNil(t, resp.Question)
		assert.Equal(t, "q2", resp.Question.ID)
		assert.Equal(t, 1, resp.Index)
		assert.Equal(t, 2, resp.Total)
		assert.False(t, resp.Completed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ResolutionIsRepeatable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		q1 := "q1"
		for i := 0; i < 2; i++ {
			expectTeam(mock, "team-1", 0, &q1)
			rows := sqlmock.NewRows(questionCols)
			questionRow(rows, "q1", "first", 10, "fix one")
			expectQuestions(mock, rows)
		}

		first, err := svc.ActiveQuestion(ctx, "team-1")
		require.NoError(t, err)
		second, err := svc.ActiveQuestion(ctx, "team-1")
		require.NoError(t, err)
		assert.Equal(t, first.Question.ID, second.Question.ID)
		assert.Equal(t, first.Index, second.Index)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StalePointerFallsBackToFirst", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		gone := "deleted-question"
		expectTeam(mock, "team-1", 0, &gone)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "fix one")
		questionRow(rows, "q2", "second", 20, "fix two")
		expectQuestions(mock, rows)

		resp, err := svc.ActiveQuestion(ctx, "team-1")
		require.NoError(t, err)
		require.NotNil(t, resp.Question)
		assert.Equal(t, "q1", resp.Question.ID)
		assert.Equal(t, 0, resp.Index)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NullPointerWithScoreIsCompleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		expectTeam(mock, "team-1", 30, nil)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "fix one")
		expectQuestions(mock, rows)

		resp, err := svc.ActiveQuestion(ctx, "team-1")
		require.NoError(t, err)
		assert.True(t, resp.Completed)
		assert.Nil(t, resp.Question)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoQuestionsConfigured", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		expectTeam(mock, "team-1", 0, nil)
		expectQuestions(mock, sqlmock.NewRows(questionCols))

		resp, err := svc.ActiveQuestion(ctx, "team-1")
		require.NoError(t, err)
		assert.Nil(t, resp.Question)
		assert.Equal(t, 0, resp.Total)
		assert.False(t, resp.Completed)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("CorrectSubmissionAdvancesAndScores", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		feed := &fakeFeed{}
		svc := newContestService(db, feed)

		q1 := "q1"
		expectTeam(mock, "team-1", 0, &q1)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "def add(a, b):\n    return a + b")
		questionRow(rows, "q2", "second", 20, "fix two")
		expectQuestions(mock, rows)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO submissions").
			WithArgs(sqlmock.AnyArg(), "team-1", "q1", "python", sqlmock.AnyArg(), true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE teams SET score").
			WithArgs(10, "q2", "team-1", "q1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Whitespace drift from the editor must not matter.
		result, err := svc.Submit(ctx, "team-1", SubmitRequest{
			Language: "python",
			Code:     "  def add(a, b):  \r\n\r\n      return a + b\n",
		})
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
		assert.Equal(t, 10, result.PointsAwarded)
		assert.False(t, result.Completed)
		require.NotNil(t, result.NextQuestion)
		assert.Equal(t, "q2", result.NextQuestion.ID)

		require.Len(t, feed.updates, 1)
		assert.Equal(t, model.TeamScoreUpdate{TeamID: "team-1", TeamName: "Alpha", Score: 10}, feed.updates[0])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LastQuestionCompletesContest", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		feed := &fakeFeed{}
		svc := newContestService(db, feed)

		q2 := "q2"
		expectTeam(mock, "team-1", 10, &q2)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "fix one")
		questionRow(rows, "q2", "second", 20, "print('ok')")
		expectQuestions(mock, rows)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO submissions").
			WithArgs(sqlmock.AnyArg(), "team-1", "q2", "python", sqlmock.AnyArg(), true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE teams SET score").
			WithArgs(20, nil, "team-1", "q2").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := svc.Submit(ctx, "team-1", SubmitRequest{Language: "python", Code: "print('ok')"})
		require.NoError(t, err)
		assert.True(t, result.IsCorrect)
		assert.True(t, result.Completed)
		assert.Nil(t, result.NextQuestion)
		assert.Equal(t, 20, result.PointsAwarded)

		require.Len(t, feed.updates, 1)
		assert.Equal(t, 30, feed.updates[0].Score)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IncorrectSubmissionKeepsState", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		feed := &fakeFeed{}
		svc := newContestService(db, feed)

		q1 := "q1"
		expectTeam(mock, "team-1", 0, &q1)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "def add(a, b):\n    return a + b")
		expectQuestions(mock, rows)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO submissions").
			WithArgs(sqlmock.AnyArg(), "team-1", "q1", "python", sqlmock.AnyArg(), false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := svc.Submit(ctx, "team-1", SubmitRequest{
			Language: "python",
			Code:     "def add(a, b):\n    return a - b",
		})
		require.NoError(t, err)
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0, result.PointsAwarded)
		assert.Empty(t, feed.updates)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CompletedTeamIsRejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		expectTeam(mock, "team-1", 30, nil)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "fix one")
		expectQuestions(mock, rows)

		_, err = svc.Submit(ctx, "team-1", SubmitRequest{Language: "c", Code: "int main() {}"})
		require.ErrorIs(t, err, common.ErrContestComplete)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnsupportedLanguageRejectedBeforeStore", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		_, err = svc.Submit(ctx, "team-1", SubmitRequest{Language: "rust", Code: "fn main() {}"})
		require.ErrorIs(t, err, common.ErrValidation)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyCodeRejectedBeforeStore", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		svc := newContestService(db, &fakeFeed{})

		_, err = svc.Submit(ctx, "team-1", SubmitRequest{Language: "java", Code: "   \n  "})
		require.ErrorIs(t, err, common.ErrValidation)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ConcurrentAdvanceRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		feed := &fakeFeed{}
		svc := newContestService(db, feed)

		q1 := "q1"
		expectTeam(mock, "team-1", 0, &q1)
		rows := sqlmock.NewRows(questionCols)
		questionRow(rows, "q1", "first", 10, "print('ok')")
		questionRow(rows, "q2", "second", 20, "fix two")
		expectQuestions(mock, rows)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO submissions").
			WillReturnResult(sqlmock.NewResult(0, 1))
		// Another submission from the same team already moved the pointer.
		mock.ExpectExec("UPDATE teams SET score").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err = svc.Submit(ctx, "team-1", SubmitRequest{Language: "python", Code: "print('ok')"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrConflict))
		assert.Empty(t, feed.updates)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
