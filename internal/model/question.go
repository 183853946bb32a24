package model

import "encoding/json"

// swagger:model Question
type Question struct {
	BaseModel
	Section    SessionSection  `gorm:"size:20;index;not null" json:"section"`
	Label      string          `gorm:"size:255;not null" json:"label"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	AnswerKind AnswerKind      `gorm:"size:20;not null;default:'numeric'" json:"answerKind"`
	Options    json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	// 每个课程代码的计分权重，学生端列表不下发
	Weights json.RawMessage `gorm:"type:json" json:"weights,omitempty"` // map[ProgramCode]float64
	Order   int             `gorm:"default:0" json:"order"`
	Enabled bool            `gorm:"default:true" json:"enabled"`
}

func (Question) TableName() string {
	return "questions"
}
