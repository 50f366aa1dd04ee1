package service

import (
	"context"
	"database/sql"
	"debug_contest/internal/common"
	"debug_contest/internal/domain/model"
	"debug_contest/internal/domain/repository"
	"errors"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// AdminService backs the operator surface: question authoring and read-only
// views over teams and their submission history. Questions are immutable
// once created, so there is no update or delete path here.
type AdminService struct {
	questionRepo   repository.QuestionRepository
	teamRepo       repository.TeamRepository
	submissionRepo repository.SubmissionRepository
	db             *sql.DB
}

func NewAdminService(
	questionRepo repository.QuestionRepository,
	teamRepo repository.TeamRepository,
	submissionRepo repository.SubmissionRepository,
	db *sql.DB,
) *AdminService {
	return &AdminService{
		questionRepo:   questionRepo,
		teamRepo:       teamRepo,
		submissionRepo: submissionRepo,
		db:             db,
	}
}

type CreateQuestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MaxPoints   int    `json:"max_points"`

	BuggyCodeC      string `json:"buggy_code_c"`
	BuggyCodePython string `json:"buggy_code_python"`
	BuggyCodeJava   string `json:"buggy_code_java"`

	CorrectAnswerC      string `json:"correct_answer_c"`
	CorrectAnswerPython string `json:"correct_answer_python"`
	CorrectAnswerJava   string `json:"correct_answer_java"`
}

// AdminQuestion is the operator view of a question: unlike the contestant
// serialization it includes the stored correct answers.
type AdminQuestion struct {
	model.Question
	CorrectAnswerC      string `json:"correct_answer_c"`
	CorrectAnswerPython string `json:"correct_answer_python"`
	CorrectAnswerJava   string `json:"correct_answer_java"`
}

func adminView(q model.Question) AdminQuestion {
	return AdminQuestion{
		Question:            q,
		CorrectAnswerC:      q.CorrectAnswerC,
		CorrectAnswerPython: q.CorrectAnswerPython,
		CorrectAnswerJava:   q.CorrectAnswerJava,
	}
}

func (s *AdminService) CreateQuestion(ctx context.Context, req CreateQuestionRequest) (*AdminQuestion, error) {
	if req.Title == "" || req.Description == "" {
		return nil, common.Errorf("title and description are required: %w", common.ErrValidation)
	}
	if req.MaxPoints <= 0 {
		return nil, common.Errorf("max_points must be a positive integer: %w", common.ErrValidation)
	}
	// An empty canonical answer would let a blank submission score.
	if req.CorrectAnswerC == "" || req.CorrectAnswerPython == "" || req.CorrectAnswerJava == "" {
		return nil, common.Errorf("a correct answer is required for every language: %w", common.ErrValidation)
	}

	question := &model.Question{
		ID:                  uuid.NewString(),
		Title:               req.Title,
		Slug:                slug.Make(req.Title),
		Description:         req.Description,
		MaxPoints:           req.MaxPoints,
		BuggyCodeC:          req.BuggyCodeC,
		BuggyCodePython:     req.BuggyCodePython,
		BuggyCodeJava:       req.BuggyCodeJava,
		CorrectAnswerC:      req.CorrectAnswerC,
		CorrectAnswerPython: req.CorrectAnswerPython,
		CorrectAnswerJava:   req.CorrectAnswerJava,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.questionRepo.CreateQuestion(ctx, tx, question); err != nil {
		return nil, common.Errorf("failed to create question: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	view := adminView(*question)
	return &view, nil
}

func (s *AdminService) ListQuestions(ctx context.Context) ([]AdminQuestion, error) {
	questions, err := s.questionRepo.ListQuestions(ctx)
	if err != nil {
		return nil, common.Errorf("failed to list questions: %w", err)
	}
	views := make([]AdminQuestion, 0, len(questions))
	for _, q := range questions {
		views = append(views, adminView(q))
	}
	return views, nil
}

func (s *AdminService) ListTeams(ctx context.Context) ([]model.Team, error) {
	teams, err := s.teamRepo.ListTeamsByScore(ctx)
	if err != nil {
		return nil, common.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *AdminService) ListTeamSubmissions(ctx context.Context, teamID string, page, pageSize int) ([]model.Submission, error) {
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.Errorf("failed to load team: %w", err)
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	submissions, err := s.submissionRepo.ListByTeam(ctx, teamID, pageSize, offset)
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}
