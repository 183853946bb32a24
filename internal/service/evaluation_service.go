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
	"sort"
	"strings"
	"time"

	"course_advisor_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EvaluationService struct {
	Repo      *repository.EvaluationRepository
	Generator TextGenerator
}

func NewEvaluationService(repo *repository.EvaluationRepository, generator TextGenerator) *EvaluationService {
	return &EvaluationService{Repo: repo, Generator: generator}
}

// SectionAnswers 自由结构的作答：四个命名小节，每节是题目标签到数值/布尔/文本的映射。
type SectionAnswers map[string]map[string]interface{}

type EvaluateRequest struct {
	UserID          uint                          `json:"userId"`
	FullName        string                        `json:"fullName" binding:"required"`
	Email           string                        `json:"email" binding:"required"`
	PreferredCourse model.CourseID                `json:"preferredCourse"`
	Answers         SectionAnswers                `json:"answers" binding:"required"`
	ProgramScores   map[model.ProgramCode]float64 `json:"programScores"`
}

type EvaluateResponse struct {
	Evaluation       *model.Evaluation         `json:"evaluation"`
	Percent          map[model.CourseID]float64 `json:"percent"`
	CategoryInsights map[string]string         `json:"categoryInsights,omitempty"`
}

// aiEvaluationPayload 协作方应返回的结构。recommendedCourse 和 percent
// 是硬性字段，缺失即判定响应不完整。
type aiEvaluationPayload struct {
	Evaluation         string                     `json:"evaluation"`
	DetailedEvaluation string                     `json:"detailedEvaluation"`
	Recommendations    string                     `json:"recommendations"`
	RecommendedCourse  model.CourseID             `json:"recommendedCourse"`
	Percent            map[model.CourseID]float64 `json:"percent"`
	CategoryInsights   map[string]string          `json:"categoryInsights"`
}

// Evaluate 调用文本生成协作方产出定性评估，校验后落库。
// 协作方返回的内容一律按不可信输入处理：格式异常或缺少硬性字段时
// 以 ExternalServiceError 上报，什么都不持久化。
func (s *EvaluationService) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	lines := FlattenAnswers(req.Answers)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: answers contain no usable entries", util.ErrValidation)
	}

	prompt := buildEvaluationPrompt(req, lines)

	raw, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		monitoring.EvaluationCounter.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("%w: text generation failed: %v", util.ErrExternalService, err)
	}

	// 调用方超时后到达的迟到响应直接丢弃，避免产生重复的评估记录
	if ctx.Err() != nil {
		logger.Log.Warn("Discarding late AI response after caller cancellation", zap.Uint("userId", req.UserID))
		return nil, fmt.Errorf("%w: %v", util.ErrExternalService, ctx.Err())
	}

	payload, err := parseEvaluationPayload(raw)
	if err != nil {
		monitoring.EvaluationCounter.WithLabelValues("parse_error").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrExternalService, err)
	}

	evaluation := &model.Evaluation{
		UserID:             req.UserID,
		FullName:           req.FullName,
		Email:              req.Email,
		EvaluationText:     payload.Evaluation,
		DetailedEvaluation: payload.DetailedEvaluation,
		Recommendations:    payload.Recommendations,
		RecommendedCourse:  payload.RecommendedCourse,
		SubmissionDate:     time.Now(),
	}
	if err := evaluation.EncodePercent(payload.Percent); err != nil {
		return nil, err
	}
	if len(req.ProgramScores) > 0 {
		data, err := json.Marshal(req.ProgramScores)
		if err != nil {
			return nil, err
		}
		evaluation.ProgramScores = data
	}

	if err := s.Repo.Create(evaluation); err != nil {
		monitoring.EvaluationCounter.WithLabelValues("persist_error").Inc()
		return nil, fmt.Errorf("%w: save evaluation: %v", util.ErrPersistence, err)
	}

	monitoring.EvaluationCounter.WithLabelValues("success").Inc()
	return &EvaluateResponse{
		Evaluation:       evaluation,
		Percent:          payload.Percent,
		CategoryInsights: payload.CategoryInsights,
	}, nil
}

type SaveEvaluationRequest struct {
	UserID             uint                          `json:"userId"`
	FullName           string                        `json:"fullName" binding:"required"`
	Email              string                        `json:"email" binding:"required"`
	Evaluation         string                        `json:"evaluation" binding:"required"`
	DetailedEvaluation string                        `json:"detailedEvaluation" binding:"required"`
	Recommendations    string                        `json:"recommendations" binding:"required"`
	RecommendedCourse  model.CourseID                `json:"recommendedCourse" binding:"required"`
	Percent            map[model.CourseID]float64    `json:"percent" binding:"required"`
	ProgramScores      map[model.ProgramCode]float64 `json:"programScores"`
}

// SaveEvaluation 调用方自带叙述与置信度的直接落库入口，不触发协作方调用。
func (s *EvaluationService) SaveEvaluation(req SaveEvaluationRequest) (*model.Evaluation, error) {
	if !req.RecommendedCourse.Valid() {
		return nil, fmt.Errorf("%w: unknown course %q", util.ErrValidation, req.RecommendedCourse)
	}
	if strings.TrimSpace(req.Evaluation) == "" ||
		strings.TrimSpace(req.DetailedEvaluation) == "" ||
		strings.TrimSpace(req.Recommendations) == "" {
		return nil, fmt.Errorf("%w: narrative fields must not be empty", util.ErrValidation)
	}
	percent, err := normalizePercentKeys(req.Percent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrValidation, err)
	}

	evaluation := &model.Evaluation{
		UserID:             req.UserID,
		FullName:           req.FullName,
		Email:              req.Email,
		EvaluationText:     req.Evaluation,
		DetailedEvaluation: req.DetailedEvaluation,
		Recommendations:    req.Recommendations,
		RecommendedCourse:  req.RecommendedCourse,
		SubmissionDate:     time.Now(),
	}
	if err := evaluation.EncodePercent(percent); err != nil {
		return nil, err
	}
	if len(req.ProgramScores) > 0 {
		data, err := json.Marshal(req.ProgramScores)
		if err != nil {
			return nil, err
		}
		evaluation.ProgramScores = data
	}

	if err := s.Repo.Create(evaluation); err != nil {
		return nil, fmt.Errorf("%w: save evaluation: %v", util.ErrPersistence, err)
	}
	return evaluation, nil
}

func (s *EvaluationService) GetEvaluation(id string) (*model.Evaluation, error) {
	e, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: evaluation %s", util.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load evaluation: %v", util.ErrPersistence, err)
	}
	return e, nil
}

func (s *EvaluationService) ListByUser(userID uint) ([]model.Evaluation, error) {
	es, err := s.Repo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list evaluations: %v", util.ErrPersistence, err)
	}
	return es, nil
}

func (s *EvaluationService) ListEvaluations(page, limit int) ([]model.Evaluation, int64, error) {
	return s.Repo.List(page, limit)
}

func (s *EvaluationService) DeleteEvaluation(id string) error {
	err := s.Repo.Delete(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: evaluation %s", util.ErrNotFound, id)
		}
		return fmt.Errorf("%w: delete evaluation: %v", util.ErrPersistence, err)
	}
	return nil
}

// FlattenAnswers 把嵌套作答压平为 "小节.题目标签: 值" 的点分文本行。
// 小节和题目都按字典序排序，保证同样的作答产生同样的提示词。
// 空文本和 nil 值跳过。
func FlattenAnswers(answers SectionAnswers) []string {
	sections := make([]string, 0, len(answers))
	for name := range answers {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	var lines []string
	for _, section := range sections {
		labels := make([]string, 0, len(answers[section]))
		for label := range answers[section] {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			value := answers[section][label]
			text := formatAnswerValue(value)
			if text == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s.%s: %s", section, label, text))
		}
	}
	return lines
}

func formatAnswerValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func buildEvaluationPrompt(req EvaluateRequest, lines []string) string {
	var b strings.Builder

	b.WriteString("你是升学指导顾问，请基于学生的问卷作答评估其与以下课程的匹配度。\n\n")

	b.WriteString("【候选课程】\n")
	for _, id := range model.CourseIDs {
		b.WriteString(fmt.Sprintf("- %s: %s\n", id, model.CourseDescriptions[id]))
	}

	b.WriteString("\n【评估权重】学业表现 40%，技术能力 30%，职业倾向 20%，现实条件 10%。\n")

	if req.PreferredCourse != "" {
		b.WriteString(fmt.Sprintf("\n学生自述的意向课程：%s（仅作参考，不得直接照抄为结论）。\n", req.PreferredCourse))
	}

	b.WriteString("\n【学生作答】\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n【打分规则】\n")
	b.WriteString("- 每个课程的 percent 是独立置信度（0-100），不要求相加等于 100。\n")
	b.WriteString("- 契合度最高的课程给 70-95，次优课程给 30-60，明显不匹配的给 15 或 25 以下。\n")
	b.WriteString("- 超过 60 分的课程不得多于两个。\n")

	b.WriteString("\n【输出格式】只输出一个 JSON 对象，不要输出其他任何文字，字段如下：\n")
	b.WriteString(`{"evaluation": "总体评估（2-3句）", "detailedEvaluation": "逐项详细分析", "recommendations": "给学生的具体建议", "recommendedCourse": "五个课程标识之一", "percent": {"BSCS": 0, "BSIT": 0, "BSIS": 0, "BSEE": 0, "ACT": 0}, "categoryInsights": {"academic": "", "technical": "", "career": "", "logistics": ""}}`)
	b.WriteString("\n")

	return b.String()
}

// parseEvaluationPayload 剥掉代码围栏后解析协作方返回的JSON，
// 校验硬性字段并把 percent 的键规整为恰好五个课程标识。
func parseEvaluationPayload(raw string) (*aiEvaluationPayload, error) {
	cleaned := StripCodeFence(raw)

	var payload aiEvaluationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("unparsable AI response: %v", err)
	}

	if payload.RecommendedCourse == "" {
		return nil, fmt.Errorf("AI response missing recommendedCourse")
	}
	if !payload.RecommendedCourse.Valid() {
		return nil, fmt.Errorf("AI response has unknown course %q", payload.RecommendedCourse)
	}
	if len(payload.Percent) == 0 {
		return nil, fmt.Errorf("AI response missing percent")
	}
	// 三段叙述缺一不可，落库的评估记录不允许有空叙述
	if strings.TrimSpace(payload.Evaluation) == "" ||
		strings.TrimSpace(payload.DetailedEvaluation) == "" ||
		strings.TrimSpace(payload.Recommendations) == "" {
		return nil, fmt.Errorf("AI response missing narrative fields")
	}

	percent, err := normalizePercentKeys(payload.Percent)
	if err != nil {
		return nil, fmt.Errorf("AI response percent invalid: %v", err)
	}
	payload.Percent = percent

	return &payload, nil
}

// normalizePercentKeys 未知键丢弃，缺失键补 0，保证键集恰好是五个课程标识。
func normalizePercentKeys(percent map[model.CourseID]float64) (map[model.CourseID]float64, error) {
	if len(percent) == 0 {
		return nil, fmt.Errorf("percent is empty")
	}
	known := 0
	normalized := make(map[model.CourseID]float64, len(model.CourseIDs))
	for _, id := range model.CourseIDs {
		if v, ok := percent[id]; ok {
			normalized[id] = v
			known++
		} else {
			normalized[id] = 0
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("percent has no recognized course keys")
	}
	return normalized, nil
}

// StripCodeFence 去掉 ```json ... ``` 这类围栏装饰，返回中间的内容。
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// 围栏起始行可能带语言标记，比如 ```json
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
