// Package sender собирает и отправляет письма аккаунтов по SMTP.
// Задания приходят из RabbitMQ в виде models.EmailJob.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/lib/smtp"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Service отправляет письма подтверждения почты и восстановления пароля.
type Service struct {
	transport  smtp.TransportInterface
	rootDomain string
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, rootDomain string, log *slog.Logger) *Service {
	return &Service{
		transport:  transport,
		rootDomain: rootDomain,
		log:        log,
	}
}

// HandleJob обрабатывает одно задание из очереди.
func (s *Service) HandleJob(body []byte) error {
	var job models.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal email job", sl.Err(err))
		return fmt.Errorf("error unmarshalling email job: %w", err)
	}

	subject, text, err := s.compose(job)
	if err != nil {
		return err
	}
	return s.sendEmail([]string{job.To}, subject, text)
}

func (s *Service) compose(job models.EmailJob) (subject, text string, err error) {
	switch job.Kind {
	case "verification":
		subject = "Your verification code"
		text = fmt.Sprintf("Hello!\n\nYour verification code is: %s\n\nEnter it on the site to confirm your email address.", job.Code)
	case "lost_password":
		subject = "Restore your password"
		text = fmt.Sprintf("Hello!\n\nTo set a new password, follow the link:\n%s/restore-password?token=%s\n\nThe link is valid for 24 hours. If you did not request this, ignore this email.",
			s.rootDomain, job.Token)
	default:
		return "", "", fmt.Errorf("unknown email job kind: %s", job.Kind)
	}
	return subject, text, nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
