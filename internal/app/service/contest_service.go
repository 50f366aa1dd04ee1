package service

import (
	"context"
	"database/sql"
	"debug_contest/internal/app/judge"
	"debug_contest/internal/common"
	"debug_contest/internal/domain/model"
	"debug_contest/internal/domain/repository"
	"log"
	"strings"

	"github.com/google/uuid"
)

// TeamFeedPublisher emits the new row image of a team whose score just
// committed. The leaderboard projector consumes these on the other end.
type TeamFeedPublisher interface {
	Publish(ctx context.Context, update model.TeamScoreUpdate) error
}

// ContestService is the contest progression engine: it resolves each team's
// active question, judges submissions against the stored answers and advances
// team state, one question at a time in the global contest order.
type ContestService struct {
	questionRepo   repository.QuestionRepository
	teamRepo       repository.TeamRepository
	submissionRepo repository.SubmissionRepository
	feed           TeamFeedPublisher
	db             *sql.DB // For transactions
}

func NewContestService(
	questionRepo repository.QuestionRepository,
	teamRepo repository.TeamRepository,
	submissionRepo repository.SubmissionRepository,
	feed TeamFeedPublisher,
	db *sql.DB,
) *ContestService {
	return &ContestService{
		questionRepo:   questionRepo,
		teamRepo:       teamRepo,
		submissionRepo: submissionRepo,
		feed:           feed,
		db:             db,
	}
}

type ActiveQuestionResponse struct {
	Question  *model.Question `json:"question,omitempty"`
	Index     int             `json:"index"`
	Total     int             `json:"total"`
	Completed bool            `json:"completed"`
}

type SubmitRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type SubmitResult struct {
	IsCorrect     bool            `json:"is_correct"`
	PointsAwarded int             `json:"points_awarded"`
	Completed     bool            `json:"completed"`
	NextQuestion  *model.Question `json:"next_question,omitempty"`
}

// ActiveQuestion resolves the question a team should currently be solving.
// Resolution is pure and side-effect free, safe to call on every page load:
// a team always resumes exactly where it left off.
func (s *ContestService) ActiveQuestion(ctx context.Context, teamID string) (*ActiveQuestionResponse, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, common.Errorf("failed to load team: %w", err)
	}
	questions, err := s.questionRepo.ListQuestions(ctx)
	if err != nil {
		return nil, common.Errorf("failed to load questions: %w", err)
	}

	resp := &ActiveQuestionResponse{Total: len(questions)}
	if len(questions) == 0 {
		return resp, nil // no contest configured
	}

	idx, done := resolveIndex(team, questions)
	if done {
		resp.Completed = true
		return resp, nil
	}
	resp.Question = &questions[idx]
	resp.Index = idx
	return resp, nil
}

// Submit judges one attempt against the team's active question and, when
// correct, advances the team and credits the question's points. Every
// attempt, correct or not, lands in the submissions audit trail.
func (s *ContestService) Submit(ctx context.Context, teamID string, req SubmitRequest) (*SubmitResult, error) {
	lang, ok := model.ParseLanguage(req.Language)
	if !ok {
		return nil, common.Errorf("unsupported language %q: %w", req.Language, common.ErrValidation)
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, common.Errorf("code is required: %w", common.ErrValidation)
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, common.Errorf("failed to load team: %w", err)
	}
	questions, err := s.questionRepo.ListQuestions(ctx)
	if err != nil {
		return nil, common.Errorf("failed to load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, common.Errorf("no contest configured: %w", common.ErrNotFound)
	}

	idx, done := resolveIndex(team, questions)
	if done {
		return nil, common.ErrContestComplete
	}
	question := &questions[idx]

	isCorrect := judge.Evaluate(req.Code, question.CorrectAnswer(lang))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	submission := &model.Submission{
		ID:         uuid.NewString(),
		TeamID:     team.ID,
		QuestionID: question.ID,
		Language:   lang,
		Code:       req.Code,
		IsCorrect:  isCorrect,
	}
	if err := s.submissionRepo.CreateSubmission(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to record submission: %w", err)
	}

	result := &SubmitResult{IsCorrect: isCorrect}
	if isCorrect {
		var nextQID *string
		if idx+1 < len(questions) {
			nextQID = &questions[idx+1].ID
			result.NextQuestion = &questions[idx+1]
		} else {
			result.Completed = true
		}
		if err := s.teamRepo.AdvanceProgress(ctx, tx, team.ID, team.CurrentQID, nextQID, question.MaxPoints); err != nil {
			return nil, common.Errorf("failed to advance team: %w", err)
		}
		result.PointsAwarded = question.MaxPoints
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	if isCorrect {
		update := model.TeamScoreUpdate{
			TeamID:   team.ID,
			TeamName: team.TeamName,
			Score:    team.Score + question.MaxPoints,
		}
		if err := s.feed.Publish(ctx, update); err != nil {
			// The score is committed; a lost event only leaves the
			// leaderboard stale until the next reseed.
			log.Printf("WARN: Failed to publish score update for team %s: %v", team.ID, err)
		}
	}
	return result, nil
}

// resolveIndex locates a team's position in the ordered question sequence.
// A pointer matching a question resolves to it; a stale pointer (question
// since removed from the store) falls back to the first question, as does an
// unassigned pointer on a team that has not scored yet. A nil pointer on a
// team with points means every question was solved: the terminal state.
func resolveIndex(team *model.Team, questions []model.Question) (idx int, done bool) {
	if team.CurrentQID == nil {
		if team.Score > 0 {
			return 0, true
		}
		return 0, false
	}
	for i := range questions {
		if questions[i].ID == *team.CurrentQID {
			return i, false
		}
	}
	return 0, false
}
