package service

import (
	"context"
	"debug_contest/internal/common"
	"debug_contest/internal/common/security"
	"debug_contest/internal/domain/model"
	"debug_contest/internal/domain/repository"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

type AuthService struct {
	teamRepo     repository.TeamRepository
	questionRepo repository.QuestionRepository
}

func NewAuthService(teamRepo repository.TeamRepository, questionRepo repository.QuestionRepository) *AuthService {
	return &AuthService{teamRepo: teamRepo, questionRepo: questionRepo}
}

type LoginRequest struct {
	TeamName string `json:"team_name"`
}

type AuthResponse struct {
	Team    *model.Team `json:"team"`
	Token   string      `json:"token"`
	Created bool        `json:"created"`
}

// Login registers a team on first sight of its name and resumes it on every
// later login. New teams start at the first question in contest order; when
// no question is configured yet they start unassigned and are pointed at the
// first question on their next login after the contest is set up.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.TeamName)
	if name == "" {
		return nil, fmt.Errorf("team name is required: %w", common.ErrValidation)
	}

	firstQID, err := s.firstQuestionID(ctx)
	if err != nil {
		return nil, err
	}

	candidate := &model.Team{
		ID:         uuid.NewString(),
		TeamName:   name,
		CurrentQID: firstQID,
	}
	team, created, err := s.teamRepo.FindOrCreate(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to log team in: %w", err)
	}

	// A returning team that registered before any question existed gets
	// pointed at the first question now. Teams that have started (or
	// finished) are untouched.
	if !created && team.CurrentQID == nil && team.Score == 0 && firstQID != nil {
		if err := s.teamRepo.SeedProgress(ctx, team.ID, *firstQID); err != nil {
			return nil, fmt.Errorf("failed to seed team progress: %w", err)
		}
		team.CurrentQID = firstQID
	}

	token, err := security.GenerateToken(team.ID, team.TeamName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if created {
		log.Printf("Team %q registered (id %s)", team.TeamName, team.ID)
	}
	return &AuthResponse{Team: team, Token: token, Created: created}, nil
}

func (s *AuthService) firstQuestionID(ctx context.Context) (*string, error) {
	first, err := s.questionRepo.FirstQuestion(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil // no contest configured yet
		}
		return nil, fmt.Errorf("failed to load first question: %w", err)
	}
	return &first.ID, nil
}
