package service

import (
	"course_advisor_backend/internal/model"
	"course_advisor_backend/internal/repository"
	"course_advisor_backend/internal/util"
	"errors"
	"testing"
	"time"
)

func newSessionService(t *testing.T) *SessionService {
	t.Helper()
	return NewSessionService(repository.NewSessionRepository(newTestDB(t)))
}

func answerReq(questionID uint, program model.ProgramCode, score float64) SubmitAnswerRequest {
	return SubmitAnswerRequest{
		QuestionID: questionID,
		Answer:     model.NumericAnswer(score),
		Score:      score,
		Program:    program,
	}
}

func TestCreateSession_StartsZeroed(t *testing.T) {
	svc := newSessionService(t)

	session, err := svc.CreateSession(1)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Completed {
		t.Error("new session must not be completed")
	}
	if session.CurrentSection != model.SectionAcademic {
		t.Errorf("CurrentSection = %s, want %s", session.CurrentSection, model.SectionAcademic)
	}

	scores, err := session.DecodeProgramScores()
	if err != nil {
		t.Fatalf("DecodeProgramScores: %v", err)
	}
	for _, p := range model.ProgramCodes {
		if scores[p] != 0 {
			t.Errorf("score[%s] = %v, want 0", p, scores[p])
		}
	}
}

func TestSubmitAnswer_AccumulatesPerProgram(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	if _, err := svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramBSCS, 3)); err != nil {
		t.Fatalf("SubmitAnswer q1: %v", err)
	}
	if _, err := svc.SubmitAnswer(session.ID, 1, answerReq(2, model.ProgramBSCS, 2)); err != nil {
		t.Fatalf("SubmitAnswer q2: %v", err)
	}
	updated, err := svc.SubmitAnswer(session.ID, 1, answerReq(3, model.ProgramBSIT, 4))
	if err != nil {
		t.Fatalf("SubmitAnswer q3: %v", err)
	}

	scores, _ := updated.DecodeProgramScores()
	if scores[model.ProgramBSCS] != 5 {
		t.Errorf("BSCS = %v, want 5", scores[model.ProgramBSCS])
	}
	if scores[model.ProgramBSIT] != 4 {
		t.Errorf("BSIT = %v, want 4", scores[model.ProgramBSIT])
	}

	answers, _ := updated.DecodeAnswers()
	if len(answers) != 3 {
		t.Errorf("answer count = %d, want 3", len(answers))
	}
}

func TestSubmitAnswer_ReplacementDoesNotDoubleCount(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	if _, err := svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramBSCS, 3)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	updated, err := svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramBSCS, 5))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	scores, _ := updated.DecodeProgramScores()
	if scores[model.ProgramBSCS] != 5 {
		t.Errorf("BSCS = %v, want 5 (old score must be subtracted first)", scores[model.ProgramBSCS])
	}
	answers, _ := updated.DecodeAnswers()
	if len(answers) != 1 {
		t.Errorf("answer count = %d, want 1", len(answers))
	}
}

func TestSubmitAnswer_ReplacementMovesProgram(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramBSCS, 3))
	updated, err := svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramBSIT, 4))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	scores, _ := updated.DecodeProgramScores()
	if scores[model.ProgramBSCS] != 0 {
		t.Errorf("BSCS = %v, want 0 after answer moved to BSIT", scores[model.ProgramBSCS])
	}
	if scores[model.ProgramBSIT] != 4 {
		t.Errorf("BSIT = %v, want 4", scores[model.ProgramBSIT])
	}
}

func TestSubmitAnswer_UnknownProgramRejected(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	_, err := svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramCode("NURSING"), 3))
	if !errors.Is(err, util.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}

	// 被拒绝的作答不能留下任何痕迹
	fresh, _ := svc.GetSession(session.ID, 1)
	answers, _ := fresh.DecodeAnswers()
	if len(answers) != 0 {
		t.Errorf("answer count = %d, want 0", len(answers))
	}
}

func TestSubmitAnswer_MissingSessionNotFound(t *testing.T) {
	svc := newSessionService(t)

	_, err := svc.SubmitAnswer(999, 1, answerReq(1, model.ProgramBSCS, 3))
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProgress_AllowsRegression(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	if _, err := svc.UpdateProgress(session.ID, 1, UpdateProgressRequest{
		CurrentSection:       model.SectionCareer,
		CurrentQuestionIndex: 4,
	}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	updated, err := svc.UpdateProgress(session.ID, 1, UpdateProgressRequest{
		CurrentSection:       model.SectionAcademic,
		CurrentQuestionIndex: 0,
	})
	if err != nil {
		t.Fatalf("regress: %v", err)
	}
	if updated.CurrentSection != model.SectionAcademic || updated.CurrentQuestionIndex != 0 {
		t.Errorf("progress = %s/%d, want academic/0", updated.CurrentSection, updated.CurrentQuestionIndex)
	}
}

func TestUpdateProgress_Validation(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	if _, err := svc.UpdateProgress(session.ID, 1, UpdateProgressRequest{
		CurrentSection: model.SessionSection("bogus"),
	}); !errors.Is(err, util.ErrValidation) {
		t.Errorf("unknown section err = %v, want ErrValidation", err)
	}
	if _, err := svc.UpdateProgress(session.ID, 1, UpdateProgressRequest{
		CurrentSection:       model.SectionAcademic,
		CurrentQuestionIndex: -1,
	}); !errors.Is(err, util.ErrValidation) {
		t.Errorf("negative index err = %v, want ErrValidation", err)
	}
}

func TestSubmitSession_ComputesResults(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramBSCS, 30))
	svc.SubmitAnswer(session.ID, 1, answerReq(2, model.ProgramBSIT, 10))

	results, err := svc.SubmitSession(session.ID, 1)
	if err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}
	if results.RecommendedProgram != model.ProgramBSCS {
		t.Errorf("RecommendedProgram = %s, want BSCS", results.RecommendedProgram)
	}
	if results.CompatibilityPercentages[model.ProgramBSCS] != 75 {
		t.Errorf("BSCS = %v, want 75", results.CompatibilityPercentages[model.ProgramBSCS])
	}
	if results.CompatibilityPercentages[model.ProgramBSIT] != 25 {
		t.Errorf("BSIT = %v, want 25", results.CompatibilityPercentages[model.ProgramBSIT])
	}
	if results.Evaluation == "" || results.Recommendations == "" {
		t.Error("results must carry evaluation and recommendations text")
	}

	// 结果和完成标记落在同一份持久化状态里
	stored, _ := svc.GetSession(session.ID, 1)
	if !stored.Completed {
		t.Error("session must be completed after submit")
	}
	storedResults, err := stored.DecodeResults()
	if err != nil {
		t.Fatalf("DecodeResults: %v", err)
	}
	if storedResults == nil || storedResults.RecommendedProgram != model.ProgramBSCS {
		t.Error("stored results must match returned results")
	}
}

func TestSubmitSession_UniformFallbackWithoutAnswers(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	results, err := svc.SubmitSession(session.ID, 1)
	if err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}
	for _, p := range model.ProgramCodes {
		if results.CompatibilityPercentages[p] != 25 {
			t.Errorf("percentage[%s] = %v, want 25", p, results.CompatibilityPercentages[p])
		}
	}
	if results.RecommendedProgram != model.ProgramBSCS {
		t.Errorf("RecommendedProgram = %s, want BSCS (first declared)", results.RecommendedProgram)
	}
}

func TestCompletedSession_RejectsFurtherMutation(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	if _, err := svc.SubmitSession(session.ID, 1); err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}

	if _, err := svc.SubmitSession(session.ID, 1); !errors.Is(err, util.ErrConflict) {
		t.Errorf("second submit err = %v, want ErrConflict", err)
	}
	if _, err := svc.SubmitAnswer(session.ID, 1, answerReq(1, model.ProgramBSCS, 3)); !errors.Is(err, util.ErrConflict) {
		t.Errorf("answer after submit err = %v, want ErrConflict", err)
	}
	if _, err := svc.UpdateProgress(session.ID, 1, UpdateProgressRequest{
		CurrentSection: model.SectionTechnical,
	}); !errors.Is(err, util.ErrConflict) {
		t.Errorf("progress after submit err = %v, want ErrConflict", err)
	}
}

func TestSession_OwnershipEnforced(t *testing.T) {
	svc := newSessionService(t)
	session, _ := svc.CreateSession(1)

	// 其他用户按不存在处理，不暴露会话归属
	if _, err := svc.GetSession(session.ID, 2); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("get by other user err = %v, want ErrNotFound", err)
	}
	if _, err := svc.SubmitAnswer(session.ID, 2, answerReq(1, model.ProgramBSCS, 3)); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("answer by other user err = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateProgress(session.ID, 2, UpdateProgressRequest{
		CurrentSection: model.SectionTechnical,
	}); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("progress by other user err = %v, want ErrNotFound", err)
	}
	if _, err := svc.SubmitSession(session.ID, 2); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("submit by other user err = %v, want ErrNotFound", err)
	}

	// 属主不受影响
	if _, err := svc.GetSession(session.ID, 1); err != nil {
		t.Fatalf("get by owner: %v", err)
	}
	fresh, _ := svc.GetSession(session.ID, 1)
	if fresh.Completed {
		t.Error("foreign submit must not complete the session")
	}
}

func TestListHistory_NewestFirst(t *testing.T) {
	svc := newSessionService(t)

	first, _ := svc.CreateSession(7)
	time.Sleep(10 * time.Millisecond)
	second, _ := svc.CreateSession(7)
	svc.CreateSession(8)

	sessions, err := svc.ListHistory(7)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2 (other users excluded)", len(sessions))
	}
	if sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Errorf("order = [%d, %d], want [%d, %d]", sessions[0].ID, sessions[1].ID, second.ID, first.ID)
	}
}
