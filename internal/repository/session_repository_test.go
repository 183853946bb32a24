package repository

import (
	"course_advisor_backend/internal/model"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *SessionRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.AssessmentSession{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSessionRepository(db)
}

func newStoredSession(t *testing.T, repo *SessionRepository) *model.AssessmentSession {
	t.Helper()
	s := &model.AssessmentSession{UserID: 1, CurrentSection: model.SectionAcademic}
	if err := s.EncodeAnswers([]model.SessionAnswer{}); err != nil {
		t.Fatalf("encode answers: %v", err)
	}
	if err := s.EncodeProgramScores(map[model.ProgramCode]float64{}); err != nil {
		t.Fatalf("encode scores: %v", err)
	}
	if err := repo.Create(s); err != nil {
		t.Fatalf("create: %v", err)
	}
	return s
}

func TestUpdateVersioned_BumpsVersion(t *testing.T) {
	repo := newTestRepo(t)
	s := newStoredSession(t, repo)

	s.CurrentQuestionIndex = 2
	if err := repo.UpdateVersioned(s); err != nil {
		t.Fatalf("UpdateVersioned: %v", err)
	}
	if s.Version != 1 {
		t.Errorf("in-memory version = %d, want 1", s.Version)
	}

	stored, err := repo.FindByID(s.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Version != 1 {
		t.Errorf("stored version = %d, want 1", stored.Version)
	}
	if stored.CurrentQuestionIndex != 2 {
		t.Errorf("CurrentQuestionIndex = %d, want 2", stored.CurrentQuestionIndex)
	}
}

func TestUpdateVersioned_StaleCopyRejected(t *testing.T) {
	repo := newTestRepo(t)
	s := newStoredSession(t, repo)

	// 两个请求各持一份同版本快照，后写的一方必须失败
	stale, err := repo.FindByID(s.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	s.CurrentQuestionIndex = 1
	if err := repo.UpdateVersioned(s); err != nil {
		t.Fatalf("first write: %v", err)
	}

	stale.CurrentQuestionIndex = 9
	err = repo.UpdateVersioned(stale)
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("stale write err = %v, want ErrStaleVersion", err)
	}

	stored, _ := repo.FindByID(s.ID)
	if stored.CurrentQuestionIndex != 1 {
		t.Errorf("CurrentQuestionIndex = %d, want 1 (stale write must not land)", stored.CurrentQuestionIndex)
	}
}
