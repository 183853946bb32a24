package service

import (
	"bytes"
	"context"
	"course_advisor_backend/internal/config"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MailSender 邮件投递协作方，测试里用记录桩替换。
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailService sendgrid 风格的HTTP邮件网关客户端，只做单次尽力投递。
type EmailService struct {
	config config.MailConfig
	client *http.Client
}

func NewEmailService(cfg config.MailConfig) *EmailService {
	return &EmailService{
		config: cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type mailRequest struct {
	From    mailAddress `json:"from"`
	To      mailAddress `json:"to"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (s *EmailService) Send(ctx context.Context, to, subject, body string) error {
	payload := mailRequest{
		From:    mailAddress{Email: s.config.FromEmail, Name: s.config.FromName},
		To:      mailAddress{Email: to},
		Subject: subject,
		Body:    body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/v3/mail/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
