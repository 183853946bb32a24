package database

import (
	"course_advisor_backend/internal/model"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 模型的列定义必须能在 sqlite 上建表，不能依赖 MySQL 专有 DDL
func TestMigratePortable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_portable?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := &model.User{Name: "测试用户", Email: "portable@example.com", Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	var stored model.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Role != model.Student {
		t.Errorf("default role = %q, want %q", stored.Role, model.Student)
	}
}
