package repository

import (
	"context"
	"prepdeck-server/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByModule(ctx context.Context, moduleKey string) ([]*model.Question, error)
	FindByID(ctx context.Context, id string) (*model.Question, error)
}

type questionRepoImpl struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepoImpl{
		db: db,
	}
}

func (r *questionRepoImpl) FindByModule(ctx context.Context, moduleKey string) ([]*model.Question, error) {
	var questions []*model.Question
	err := r.db.WithContext(ctx).
		Where("module_key = ?", moduleKey).
		Order("id").
		Find(&questions).Error

	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepoImpl) FindByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&question).Error

	if err != nil {
		return nil, err
	}

	return &question, nil
}
