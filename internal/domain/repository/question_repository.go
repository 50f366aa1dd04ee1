package repository

import (
	"context"
	"database/sql"
	"debug_contest/internal/common"
	"debug_contest/internal/domain/model"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type QuestionRepository interface {
	CreateQuestion(ctx context.Context, tx *sql.Tx, q *model.Question) error
	FindQuestionByID(ctx context.Context, id string) (*model.Question, error)
	// ListQuestions returns every question in canonical contest order:
	// created_at ascending, id as the store-assigned tie break.
	ListQuestions(ctx context.Context) ([]model.Question, error)
	// FirstQuestion returns the first question in canonical order, or
	// common.ErrNotFound when no contest is configured.
	FirstQuestion(ctx context.Context) (*model.Question, error)
}

type pgQuestionRepository struct {
	db *sql.DB
}

func NewPgQuestionRepository(db *sql.DB) QuestionRepository {
	return &pgQuestionRepository{db: db}
}

const questionColumns = `id, title, slug, description, max_points,
	       buggy_code_c, buggy_code_python, buggy_code_java,
	       correct_answer_c, correct_answer_python, correct_answer_java,
	       created_at`

func scanQuestion(row interface{ Scan(...interface{}) error }, q *model.Question) error {
	return row.Scan(
		&q.ID, &q.Title, &q.Slug, &q.Description, &q.MaxPoints,
		&q.BuggyCodeC, &q.BuggyCodePython, &q.BuggyCodeJava,
		&q.CorrectAnswerC, &q.CorrectAnswerPython, &q.CorrectAnswerJava,
		&q.CreatedAt,
	)
}

func (r *pgQuestionRepository) CreateQuestion(ctx context.Context, tx *sql.Tx, q *model.Question) error {
	query := `INSERT INTO questions (id, title, slug, description, max_points,
	              buggy_code_c, buggy_code_python, buggy_code_java,
	              correct_answer_c, correct_answer_python, correct_answer_java)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, q.ID, q.Title, q.Slug, q.Description, q.MaxPoints,
			q.BuggyCodeC, q.BuggyCodePython, q.BuggyCodeJava,
			q.CorrectAnswerC, q.CorrectAnswerPython, q.CorrectAnswerJava)
	} else {
		_, err = r.db.ExecContext(ctx, query, q.ID, q.Title, q.Slug, q.Description, q.MaxPoints,
			q.BuggyCodeC, q.BuggyCodePython, q.BuggyCodeJava,
			q.CorrectAnswerC, q.CorrectAnswerPython, q.CorrectAnswerJava)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("question with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgQuestionRepository.CreateQuestion: %w", err)
	}
	return nil
}

func (r *pgQuestionRepository) FindQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	q := &model.Question{}
	err := scanQuestion(r.db.QueryRowContext(ctx, query, id), q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindQuestionByID: %w", err)
	}
	return q, nil
}

func (r *pgQuestionRepository) ListQuestions(ctx context.Context) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListQuestions query: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.ListQuestions scan: %w", err)
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListQuestions rows.Err: %w", err)
	}
	return questions, nil
}

func (r *pgQuestionRepository) FirstQuestion(ctx context.Context) (*model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions ORDER BY created_at ASC, id ASC LIMIT 1`
	q := &model.Question{}
	err := scanQuestion(r.db.QueryRowContext(ctx, query), q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FirstQuestion: %w", err)
	}
	return q, nil
}
