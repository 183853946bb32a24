package model

import (
	"time"
)

type UserRole string

const (
	Student   UserRole = "student"
	Counselor UserRole = "counselor"
	Admin     UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	// 角色取值由 UserRole 常量约束，不依赖数据库枚举类型
	Role      UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
