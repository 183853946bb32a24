package database

import (
	"course_advisor_backend/internal/config"
	"course_advisor_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedQuestions(db)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.AssessmentSession{},
		&model.Evaluation{},
	)
}

// seedQuestions 题库为空时插入每个阶段的示例题，方便首次部署联调
func seedQuestions(db *gorm.DB) {
	var count int64
	db.Model(&model.Question{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Question{
		{Section: model.SectionAcademic, Label: "math_interest", Content: "你对数学课程的兴趣程度如何？", AnswerKind: model.AnswerNumeric, Order: 1, Enabled: true},
		{Section: model.SectionAcademic, Label: "science_grades", Content: "你的理科成绩处于什么水平？", AnswerKind: model.AnswerNumeric, Order: 2, Enabled: true},
		{Section: model.SectionTechnical, Label: "programming_experience", Content: "你是否写过程序？", AnswerKind: model.AnswerBoolean, Order: 1, Enabled: true},
		{Section: model.SectionTechnical, Label: "hardware_tinkering", Content: "你对拆装电脑或电子设备的兴趣程度如何？", AnswerKind: model.AnswerNumeric, Order: 2, Enabled: true},
		{Section: model.SectionCareer, Label: "career_goal", Content: "简单描述你理想中的职业方向", AnswerKind: model.AnswerText, Order: 1, Enabled: true},
		{Section: model.SectionLogistics, Label: "study_duration", Content: "你能接受的学习年限是？", AnswerKind: model.AnswerText, Order: 1, Enabled: true},
	}
	for _, q := range defaults {
		db.Create(&q)
	}
}
