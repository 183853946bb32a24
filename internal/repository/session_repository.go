package repository

import (
	"course_advisor_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

// ErrStaleVersion 乐观锁版本不匹配，说明会话在读取之后被其他请求改写过。
// service 层负责重读并重试。
var ErrStaleVersion = errors.New("stale session version")

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(s *model.AssessmentSession) error {
	return r.DB.Create(s).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) ListByUser(userID uint) ([]model.AssessmentSession, error) {
	var sessions []model.AssessmentSession
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&sessions).Error
	return sessions, err
}

// UpdateVersioned 带版本检查的整体更新。WHERE 条件携带读取时的版本号，
// 没有命中任何行即说明版本已过期。写入成功后递增内存中的版本号。
func (r *SessionRepository) UpdateVersioned(s *model.AssessmentSession) error {
	res := r.DB.Model(&model.AssessmentSession{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]interface{}{
			"answers":                s.Answers,
			"program_scores":         s.ProgramScores,
			"current_section":        s.CurrentSection,
			"current_question_index": s.CurrentQuestionIndex,
			"completed":              s.Completed,
			"results":                s.Results,
			"version":                s.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	s.Version++
	return nil
}
