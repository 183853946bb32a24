package model

import (
	"encoding/json"
	"time"
)

// Evaluation AI辅助评估的最终记录。创建后除显式删除外不再修改。
// Percent 是五个课程标识各自独立的置信度，不要求相加等于 100。
// swagger:model Evaluation
type Evaluation struct {
	UUIDBase
	UserID             uint            `gorm:"index;not null;type:bigint unsigned" json:"userId"`
	FullName           string          `gorm:"size:100;not null" json:"fullName"` // 写入时冗余，便于列表展示
	Email              string          `gorm:"size:100;not null" json:"email"`
	EvaluationText     string          `gorm:"type:text;not null" json:"evaluation"`
	DetailedEvaluation string          `gorm:"type:text;not null" json:"detailedEvaluation"`
	Recommendations    string          `gorm:"type:text;not null" json:"recommendations"`
	RecommendedCourse  CourseID        `gorm:"size:20;not null" json:"recommendedCourse"`
	Percent            json.RawMessage `gorm:"type:json;not null" json:"percent"`        // map[CourseID]float64
	ProgramScores      json.RawMessage `gorm:"type:json" json:"programScores,omitempty"` // 可选的确定性分数镜像，用于审计
	SubmissionDate     time.Time       `gorm:"not null" json:"submissionDate"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

func (e *Evaluation) DecodePercent() (map[CourseID]float64, error) {
	var percent map[CourseID]float64
	if err := json.Unmarshal(e.Percent, &percent); err != nil {
		return nil, err
	}
	return percent, nil
}

func (e *Evaluation) EncodePercent(percent map[CourseID]float64) error {
	data, err := json.Marshal(percent)
	if err != nil {
		return err
	}
	e.Percent = data
	return nil
}
