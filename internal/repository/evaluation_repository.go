package repository

import (
	"course_advisor_backend/internal/model"

	"gorm.io/gorm"
)

type EvaluationRepository struct {
	DB *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db}
}

func (r *EvaluationRepository) Create(e *model.Evaluation) error {
	return r.DB.Create(e).Error
}

func (r *EvaluationRepository) FindByID(id string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.DB.Where("id = ?", id).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EvaluationRepository) ListByUser(userID uint) ([]model.Evaluation, error) {
	var es []model.Evaluation
	err := r.DB.Where("user_id = ?", userID).Order("submission_date desc").Find(&es).Error
	return es, err
}

func (r *EvaluationRepository) List(page, limit int) ([]model.Evaluation, int64, error) {
	var es []model.Evaluation
	var total int64
	query := r.DB.Model(&model.Evaluation{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("submission_date desc").Offset(offset).Limit(limit).Find(&es).Error
	return es, total, err
}

func (r *EvaluationRepository) Delete(id string) error {
	res := r.DB.Where("id = ?", id).Delete(&model.Evaluation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
