package model

import (
	"encoding/json"
	"fmt"
)

// SessionSection 问卷的四个固定阶段，默认从 academic 开始。
type SessionSection string

const (
	SectionAcademic  SessionSection = "academic"
	SectionTechnical SessionSection = "technical"
	SectionCareer    SessionSection = "career"
	SectionLogistics SessionSection = "logistics"
)

var SessionSections = []SessionSection{SectionAcademic, SectionTechnical, SectionCareer, SectionLogistics}

func (s SessionSection) Valid() bool {
	for _, sec := range SessionSections {
		if s == sec {
			return true
		}
	}
	return false
}

// AnswerKind 答案值的标签，配合 AnswerValue 做穷举分派。
type AnswerKind string

const (
	AnswerNumeric AnswerKind = "numeric" // 0-5 量表
	AnswerText    AnswerKind = "text"
	AnswerBoolean AnswerKind = "boolean"
)

// AnswerValue 带标签的答案值。三种取值只会有一个有效，Kind 决定读哪个字段，
// 下游格式化逻辑按 Kind 分派，不做运行时类型探测。
type AnswerValue struct {
	Kind    AnswerKind `json:"kind"`
	Number  float64    `json:"number,omitempty"`
	Text    string     `json:"text,omitempty"`
	Boolean bool       `json:"boolean,omitempty"`
}

func NumericAnswer(n float64) AnswerValue {
	return AnswerValue{Kind: AnswerNumeric, Number: n}
}

func TextAnswer(s string) AnswerValue {
	return AnswerValue{Kind: AnswerText, Text: s}
}

func BooleanAnswer(b bool) AnswerValue {
	return AnswerValue{Kind: AnswerBoolean, Boolean: b}
}

func (v AnswerValue) String() string {
	switch v.Kind {
	case AnswerNumeric:
		return fmt.Sprintf("%g", v.Number)
	case AnswerBoolean:
		return fmt.Sprintf("%t", v.Boolean)
	default:
		return v.Text
	}
}

// SessionAnswer 会话内一条作答记录。QuestionID 在会话内唯一，重复提交覆盖旧值。
type SessionAnswer struct {
	QuestionID uint        `json:"questionId"`
	Answer     AnswerValue `json:"answer"`
	Score      float64     `json:"score"`
	Program    ProgramCode `json:"program"`
}

// SessionResults 提交时一次性写入，之后不再变化。
type SessionResults struct {
	RecommendedProgram       ProgramCode             `json:"recommendedProgram"`
	CompatibilityPercentages map[ProgramCode]float64 `json:"compatibilityPercentages"`
	Evaluation               string                  `json:"evaluation"`
	Recommendations          string                  `json:"recommendations"`
}

// swagger:model AssessmentSession
type AssessmentSession struct {
	BaseModel
	UserID               uint            `gorm:"index;not null;type:bigint unsigned" json:"userId"`
	User                 *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Answers              json.RawMessage `gorm:"type:json" json:"answers"`       // []SessionAnswer
	ProgramScores        json.RawMessage `gorm:"type:json" json:"programScores"` // map[ProgramCode]float64
	CurrentSection       SessionSection  `gorm:"size:20;default:'academic'" json:"currentSection"`
	CurrentQuestionIndex int             `gorm:"default:0" json:"currentQuestionIndex"`
	Completed            bool            `gorm:"default:false" json:"completed"`
	Results              json.RawMessage `gorm:"type:json" json:"results,omitempty"` // SessionResults
	// 乐观锁版本号，防止同一会话并发读改写互相覆盖
	Version int `gorm:"default:0" json:"-"`
}

func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}

// DecodeAnswers 反序列化作答列表，空列为空切片。
func (s *AssessmentSession) DecodeAnswers() ([]SessionAnswer, error) {
	if len(s.Answers) == 0 {
		return []SessionAnswer{}, nil
	}
	var answers []SessionAnswer
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *AssessmentSession) EncodeAnswers(answers []SessionAnswer) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	s.Answers = data
	return nil
}

// DecodeProgramScores 四个代码的键全部补齐，缺失的记 0。
func (s *AssessmentSession) DecodeProgramScores() (map[ProgramCode]float64, error) {
	scores := make(map[ProgramCode]float64, len(ProgramCodes))
	for _, p := range ProgramCodes {
		scores[p] = 0
	}
	if len(s.ProgramScores) == 0 {
		return scores, nil
	}
	var stored map[ProgramCode]float64
	if err := json.Unmarshal(s.ProgramScores, &stored); err != nil {
		return nil, err
	}
	for p, v := range stored {
		scores[p] = v
	}
	return scores, nil
}

func (s *AssessmentSession) EncodeProgramScores(scores map[ProgramCode]float64) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	s.ProgramScores = data
	return nil
}

func (s *AssessmentSession) DecodeResults() (*SessionResults, error) {
	if len(s.Results) == 0 {
		return nil, nil
	}
	var results SessionResults
	if err := json.Unmarshal(s.Results, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// EncodeResults results 子结构整体写入，不做部分更新。
func (s *AssessmentSession) EncodeResults(results *SessionResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	s.Results = data
	return nil
}
