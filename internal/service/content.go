package service

import (
	"context"
	"errors"
	"fmt"
	"prepdeck-server/internal/dto"
	"prepdeck-server/internal/model"
	"prepdeck-server/internal/modkey"
	"prepdeck-server/internal/repository"

	"gorm.io/gorm"
)

// ErrContentLocked means the question is paid content the caller has no
// entitlement for.
var ErrContentLocked = errors.New("content locked")

var ErrQuestionNotFound = errors.New("question not found")

type ContentService interface {
	ListQuestions(ctx context.Context, userID, moduleTitle string) ([]*dto.QuestionSummary, error)
	GetQuestion(ctx context.Context, userID, questionID string) (*dto.QuestionDetail, error)
}

type contentServiceImpl struct {
	questionRepo       repository.QuestionRepository
	entitlementService EntitlementService
}

func NewContentService(questionRepo repository.QuestionRepository, entitlementService EntitlementService) ContentService {
	return &contentServiceImpl{
		questionRepo:       questionRepo,
		entitlementService: entitlementService,
	}
}

func (s *contentServiceImpl) ListQuestions(ctx context.Context, userID, moduleTitle string) ([]*dto.QuestionSummary, error) {
	key := modkey.Normalize(moduleTitle)

	questions, err := s.questionRepo.FindByModule(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}

	// One access decision covers the whole module listing.
	paidAccess, err := s.entitlementService.HasAccess(ctx, userID, model.TierPaid, key)
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}

	summaries := make([]*dto.QuestionSummary, len(questions))
	for i, q := range questions {
		summaries[i] = &dto.QuestionSummary{
			ID:     q.ID,
			Title:  q.Title,
			Tier:   q.Tier,
			Locked: q.Tier == model.TierPaid && !paidAccess,
		}
	}

	return summaries, nil
}

func (s *contentServiceImpl) GetQuestion(ctx context.Context, userID, questionID string) (*dto.QuestionDetail, error) {
	question, err := s.questionRepo.FindByID(ctx, questionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}

	ok, err := s.entitlementService.HasAccess(ctx, userID, question.Tier, question.ModuleKey)
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	if !ok {
		return nil, ErrContentLocked
	}

	return &dto.QuestionDetail{
		ID:        question.ID,
		ModuleKey: question.ModuleKey,
		Title:     question.Title,
		Tier:      question.Tier,
		Body:      question.Body,
	}, nil
}
