package service

import (
	"context"
	"course_advisor_backend/internal/model"
	"course_advisor_backend/internal/repository"
	"course_advisor_backend/internal/util"
	"course_advisor_backend/pkg/logger"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	studentQuestionsCacheKey = "questions:student"
	studentQuestionsCacheTTL = 10 * time.Minute
)

type QuestionService struct {
	Repo  *repository.QuestionRepository
	Redis *redis.Client
}

func NewQuestionService(repo *repository.QuestionRepository, rdb *redis.Client) *QuestionService {
	return &QuestionService{Repo: repo, Redis: rdb}
}

type QuestionRequest struct {
	Section    model.SessionSection `json:"section" binding:"required"`
	Label      string               `json:"label" binding:"required"`
	Content    string               `json:"content" binding:"required"`
	AnswerKind model.AnswerKind     `json:"answerKind"`
	Options    json.RawMessage      `json:"options"`
	Weights    json.RawMessage      `json:"weights"`
	Order      int                  `json:"order"`
	Enabled    *bool                `json:"enabled"`
}

func (s *QuestionService) CreateQuestion(req QuestionRequest) (*model.Question, error) {
	if !req.Section.Valid() {
		return nil, fmt.Errorf("%w: unknown section %q", util.ErrValidation, req.Section)
	}

	q := &model.Question{
		Section:    req.Section,
		Label:      req.Label,
		Content:    req.Content,
		AnswerKind: req.AnswerKind,
		Options:    req.Options,
		Weights:    req.Weights,
		Order:      req.Order,
		Enabled:    true,
	}
	if req.AnswerKind == "" {
		q.AnswerKind = model.AnswerNumeric
	}
	if req.Enabled != nil {
		q.Enabled = *req.Enabled
	}
	if err := s.Repo.Create(q); err != nil {
		return nil, fmt.Errorf("%w: create question: %v", util.ErrPersistence, err)
	}
	s.invalidateStudentCache()
	return q, nil
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question %d", util.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load question: %v", util.ErrPersistence, err)
	}
	return q, nil
}

func (s *QuestionService) ListQuestions(section model.SessionSection, page, limit int) ([]model.Question, int64, error) {
	return s.Repo.List(section, page, limit)
}

func (s *QuestionService) UpdateQuestion(id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.GetQuestion(id)
	if err != nil {
		return nil, err
	}
	if !req.Section.Valid() {
		return nil, fmt.Errorf("%w: unknown section %q", util.ErrValidation, req.Section)
	}

	q.Section = req.Section
	q.Label = req.Label
	q.Content = req.Content
	if req.AnswerKind != "" {
		q.AnswerKind = req.AnswerKind
	}
	q.Options = req.Options
	q.Weights = req.Weights
	q.Order = req.Order
	if req.Enabled != nil {
		q.Enabled = *req.Enabled
	}
	if err := s.Repo.Update(q); err != nil {
		return nil, fmt.Errorf("%w: update question: %v", util.ErrPersistence, err)
	}
	s.invalidateStudentCache()
	return q, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	if err := s.Repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: question %d", util.ErrNotFound, id)
		}
		return fmt.Errorf("%w: delete question: %v", util.ErrPersistence, err)
	}
	s.invalidateStudentCache()
	return nil
}

// StudentQuestion 学生端视图，不下发计分权重
type StudentQuestion struct {
	ID         uint                 `json:"id"`
	Section    model.SessionSection `json:"section"`
	Label      string               `json:"label"`
	Content    string               `json:"content"`
	AnswerKind model.AnswerKind     `json:"answerKind"`
	Options    json.RawMessage      `json:"options,omitempty"`
	Order      int                  `json:"order"`
}

// ListStudentQuestions 学生端题目列表，优先读缓存，缓存失效时回源并回填。
// 缓存故障只记日志，不影响主流程。
func (s *QuestionService) ListStudentQuestions(ctx context.Context) ([]StudentQuestion, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, studentQuestionsCacheKey).Result()
		if err == nil {
			var res []StudentQuestion
			if err := json.Unmarshal([]byte(cached), &res); err == nil {
				return res, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("Question cache read failed", zap.Error(err))
		}
	}

	qs, err := s.Repo.ListEnabled()
	if err != nil {
		return nil, fmt.Errorf("%w: list questions: %v", util.ErrPersistence, err)
	}

	res := make([]StudentQuestion, len(qs))
	for i, q := range qs {
		res[i] = StudentQuestion{
			ID:         q.ID,
			Section:    q.Section,
			Label:      q.Label,
			Content:    q.Content,
			AnswerKind: q.AnswerKind,
			Options:    q.Options,
			Order:      q.Order,
		}
	}

	if s.Redis != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := s.Redis.Set(ctx, studentQuestionsCacheKey, data, studentQuestionsCacheTTL).Err(); err != nil {
				logger.Log.Warn("Question cache write failed", zap.Error(err))
			}
		}
	}

	return res, nil
}

func (s *QuestionService) invalidateStudentCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), studentQuestionsCacheKey).Err(); err != nil {
		logger.Log.Warn("Question cache invalidation failed", zap.Error(err))
	}
}
