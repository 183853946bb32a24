package service

import (
	"course_advisor_backend/internal/model"
	"course_advisor_backend/internal/repository"
	"course_advisor_backend/internal/util"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// maxVersionRetries 乐观锁冲突后的重读重试次数上限
const maxVersionRetries = 3

type SessionService struct {
	Repo *repository.SessionRepository
}

func NewSessionService(repo *repository.SessionRepository) *SessionService {
	return &SessionService{Repo: repo}
}

func (s *SessionService) CreateSession(userID uint) (*model.AssessmentSession, error) {
	session := &model.AssessmentSession{
		UserID:         userID,
		CurrentSection: model.SectionAcademic,
	}
	if err := session.EncodeAnswers([]model.SessionAnswer{}); err != nil {
		return nil, err
	}
	scores := make(map[model.ProgramCode]float64, len(model.ProgramCodes))
	for _, p := range model.ProgramCodes {
		scores[p] = 0
	}
	if err := session.EncodeProgramScores(scores); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(session); err != nil {
		return nil, fmt.Errorf("%w: create session: %v", util.ErrPersistence, err)
	}
	return session, nil
}

// GetSession 只返回属主本人的会话。属主不匹配按 NotFound 处理，
// 不向其他用户暴露会话是否存在。
func (s *SessionService) GetSession(id, userID uint) (*model.AssessmentSession, error) {
	session, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %d", util.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load session: %v", util.ErrPersistence, err)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("%w: session %d", util.ErrNotFound, id)
	}
	return session, nil
}

type SubmitAnswerRequest struct {
	QuestionID uint              `json:"questionId" binding:"required"`
	Answer     model.AnswerValue `json:"answer" binding:"required"`
	Score      float64           `json:"score"`
	Program    model.ProgramCode `json:"program" binding:"required"`
}

// SubmitAnswer 单题作答。同一 questionId 重复提交时覆盖旧作答，
// 旧得分先从对应课程总分中扣除再加新分，保证每题只计一次。
// 每次作答都立即落库，落库即持久化边界。
func (s *SessionService) SubmitAnswer(sessionID, userID uint, req SubmitAnswerRequest) (*model.AssessmentSession, error) {
	if !req.Program.Valid() {
		return nil, fmt.Errorf("%w: unknown program code %q", util.ErrValidation, req.Program)
	}

	var session *model.AssessmentSession
	err := s.withVersionRetry(sessionID, userID, func(sess *model.AssessmentSession) error {
		if sess.Completed {
			return fmt.Errorf("%w: session %d is already completed", util.ErrConflict, sessionID)
		}

		answers, err := sess.DecodeAnswers()
		if err != nil {
			return err
		}
		scores, err := sess.DecodeProgramScores()
		if err != nil {
			return err
		}

		replaced := false
		for i, a := range answers {
			if a.QuestionID == req.QuestionID {
				// 撤销旧作答的贡献，原地覆盖
				scores[a.Program] -= a.Score
				answers[i] = model.SessionAnswer{
					QuestionID: req.QuestionID,
					Answer:     req.Answer,
					Score:      req.Score,
					Program:    req.Program,
				}
				replaced = true
				break
			}
		}
		if !replaced {
			answers = append(answers, model.SessionAnswer{
				QuestionID: req.QuestionID,
				Answer:     req.Answer,
				Score:      req.Score,
				Program:    req.Program,
			})
		}
		scores[req.Program] += req.Score

		if err := sess.EncodeAnswers(answers); err != nil {
			return err
		}
		if err := sess.EncodeProgramScores(scores); err != nil {
			return err
		}
		session = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

type UpdateProgressRequest struct {
	CurrentSection       model.SessionSection `json:"currentSection" binding:"required"`
	CurrentQuestionIndex int                  `json:"currentQuestionIndex"`
}

// UpdateProgress 无条件覆写客户端上报的进度，允许回退，支持自由导航。
// 会话完成后拒绝任何进度变更。
func (s *SessionService) UpdateProgress(sessionID, userID uint, req UpdateProgressRequest) (*model.AssessmentSession, error) {
	if !req.CurrentSection.Valid() {
		return nil, fmt.Errorf("%w: unknown section %q", util.ErrValidation, req.CurrentSection)
	}
	if req.CurrentQuestionIndex < 0 {
		return nil, fmt.Errorf("%w: currentQuestionIndex must be non-negative", util.ErrValidation)
	}

	var session *model.AssessmentSession
	err := s.withVersionRetry(sessionID, userID, func(sess *model.AssessmentSession) error {
		if sess.Completed {
			return fmt.Errorf("%w: session %d is already completed", util.ErrConflict, sessionID)
		}
		sess.CurrentSection = req.CurrentSection
		sess.CurrentQuestionIndex = req.CurrentQuestionIndex
		session = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitSession 终结会话：归一化百分比、选出推荐课程、写入结果并置完成标记。
// 结果和完成标记在同一次版本化更新中写入。重复提交返回 Conflict。
func (s *SessionService) SubmitSession(sessionID, userID uint) (*model.SessionResults, error) {
	var results *model.SessionResults
	err := s.withVersionRetry(sessionID, userID, func(sess *model.AssessmentSession) error {
		if sess.Completed {
			return fmt.Errorf("%w: session %d is already submitted", util.ErrConflict, sessionID)
		}

		scores, err := sess.DecodeProgramScores()
		if err != nil {
			return err
		}

		percentages := ComputePercentages(scores)
		winner := PickRecommendedProgram(percentages)

		results = &model.SessionResults{
			RecommendedProgram:       winner,
			CompatibilityPercentages: percentages,
			Evaluation:               evaluationSummary(winner, percentages[winner]),
			Recommendations:          recommendationSummary(winner),
		}
		if err := sess.EncodeResults(results); err != nil {
			return err
		}
		sess.Completed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *SessionService) ListHistory(userID uint) ([]model.AssessmentSession, error) {
	sessions, err := s.Repo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", util.ErrPersistence, err)
	}
	return sessions, nil
}

// withVersionRetry 读取-修改-版本化写入的骨架。版本过期说明并发请求先写入，
// 重读最新状态再执行一次修改，超过重试上限按 Conflict 上报。
func (s *SessionService) withVersionRetry(sessionID, userID uint, mutate func(*model.AssessmentSession) error) error {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		session, err := s.GetSession(sessionID, userID)
		if err != nil {
			return err
		}
		if err := mutate(session); err != nil {
			return err
		}
		err = s.Repo.UpdateVersioned(session)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrStaleVersion) {
			return fmt.Errorf("%w: update session: %v", util.ErrPersistence, err)
		}
	}
	return fmt.Errorf("%w: session %d is being modified concurrently", util.ErrConflict, sessionID)
}

func evaluationSummary(winner model.ProgramCode, percent float64) string {
	return fmt.Sprintf("根据问卷作答，你与 %s 的契合度最高（%.0f%%）。", winner, percent)
}

func recommendationSummary(winner model.ProgramCode) string {
	switch winner {
	case model.ProgramBSCS:
		return "建议提前巩固数学基础，尝试一门入门编程课程。"
	case model.ProgramBSIT:
		return "建议多做系统与网络方向的动手实验，熟悉常用运维工具。"
	case model.ProgramBSIS:
		return "建议关注业务流程分析类课程，兼顾技术与管理能力。"
	case model.ProgramEE:
		return "建议加强物理与电路基础，可从简单的嵌入式套件入手。"
	default:
		return "建议结合兴趣与成绩进一步咨询升学顾问。"
	}
}
