package service

import (
	"context"
	"course_advisor_backend/internal/config"
	"course_advisor_backend/internal/model"
	"course_advisor_backend/internal/repository"
	"course_advisor_backend/internal/util"
	"course_advisor_backend/pkg/logger"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verifyTokenPrefix = "verify:"
	verifyTokenTTL    = 24 * time.Hour
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Redis    *redis.Client
	Mailer   MailSender
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, mailer MailSender, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Redis:    rdb,
		Mailer:   mailer,
		Cfg:      cfg,
	}
}

// Register 注册新账号并下发验证邮件。
// 邮箱唯一性预检查失败时降级为"未知"继续走注册，由数据库唯一约束兜底，
// 不因为一次查询故障卡死注册流程。
func (s *AuthService) Register(ctx context.Context, user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("Email availability pre-check failed, proceeding", zap.Error(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)

	if err := s.UserRepo.Create(user); err != nil {
		return fmt.Errorf("%w: create user: %v", util.ErrPersistence, err)
	}

	s.sendVerificationMail(ctx, user)
	return nil
}

// sendVerificationMail 验证令牌写入 redis 后投递邮件，两步都尽力而为：
// 失败只记日志，之后可以通过重发接口补投。
func (s *AuthService) sendVerificationMail(ctx context.Context, user *model.User) {
	token := uuid.New().String()
	if err := s.Redis.Set(ctx, verifyTokenPrefix+token, user.ID, verifyTokenTTL).Err(); err != nil {
		logger.Log.Error("Failed to store verification token", zap.Error(err), zap.Uint("userId", user.ID))
		return
	}

	body := fmt.Sprintf("你好 %s，请点击以下链接完成邮箱验证（24小时内有效）：\n/api/verify?token=%s", user.Name, token)
	if err := s.Mailer.Send(ctx, user.Email, "Course Advisor 邮箱验证", body); err != nil {
		logger.Log.Error("Failed to send verification mail", zap.Error(err), zap.Uint("userId", user.ID))
	}
}

// ResendVerification 重新下发验证邮件。
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user with email %s", util.ErrNotFound, email)
		}
		return fmt.Errorf("%w: load user: %v", util.ErrPersistence, err)
	}
	if user.Verified {
		return fmt.Errorf("%w: email already verified", util.ErrConflict)
	}
	s.sendVerificationMail(ctx, user)
	return nil
}

// VerifyEmail 校验令牌并标记账号已验证，令牌一次性使用。
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", util.ErrValidation)
	}

	key := verifyTokenPrefix + token
	userID, err := s.Redis.Get(ctx, key).Uint64()
	if err == redis.Nil {
		return fmt.Errorf("%w: verification token", util.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w: read verification token: %v", util.ErrPersistence, err)
	}

	if err := s.UserRepo.MarkVerified(uint(userID)); err != nil {
		return fmt.Errorf("%w: mark verified: %v", util.ErrPersistence, err)
	}
	s.Redis.Del(ctx, key)
	return nil
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}
	if user.Disabled {
		return "", util.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	user.LastLogin = time.Now()
	if err := s.UserRepo.Update(user); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Error(err))
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetUser(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", util.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load user: %v", util.ErrPersistence, err)
	}
	return user, nil
}
