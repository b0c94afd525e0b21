// Package account содержит бизнес-логику жизненного цикла учётной записи:
// регистрация, вход, подтверждение почты, восстановление и смена пароля,
// списание кредитов, отмена подписки и удаление аккаунта.
//
// Ожидаемые отказы возвращаются списком ключей переводов, а не текстами:
// страница подставляет локализованный текст по ключу. Ошибка error
// зарезервирована за инфраструктурными сбоями (база, очередь).
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/speechtospeechai/accounts-service/internal/lib/cooldown"
	"github.com/speechtospeechai/accounts-service/internal/lib/jwt"
	"github.com/speechtospeechai/accounts-service/internal/lib/password"
	"github.com/speechtospeechai/accounts-service/internal/lib/secrets"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Ключи переводов для ожидаемых отказов.
const (
	ErrMissingEmail      = "missing_email"
	ErrMissingPassword   = "missing_password"
	ErrMissingCode       = "missing_code"
	ErrInvalidEmail      = "invalid_email"
	ErrWeakPassword      = "weak_password"
	ErrEmailTaken        = "email_taken"
	ErrWrongCredentials  = "wrong_credentials"
	ErrInvalidCode       = "invalid_code"
	ErrEmailSentWait     = "email_sent_wait"
	ErrNoUserEmail       = "no_user_email"
	ErrWrongRestoreToken = "wrong_restore_token"
	ErrPasswordsMismatch = "passwords_mismatch"
	ErrWrongPassword     = "wrong_password"
	ErrNoUser            = "no_user"
)

// EmailCooldown окно повторной отправки писем подтверждения
// и восстановления пароля.
const EmailCooldown = 3 * time.Minute

// RestoreTokenTTL срок жизни токена восстановления пароля.
const RestoreTokenTTL = 24 * time.Hour

// Repository описывает контракт для работы с аккаунтами в базе данных.
type Repository interface {
	CreateAccount(ctx context.Context, account models.Account) (string, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccount(ctx context.Context, uid string) (*models.Account, error)
	GetAccountByRestoreToken(ctx context.Context, token string) (*models.Account, error)
	ConfirmAccount(ctx context.Context, uid string) error
	MarkVerificationSent(ctx context.Context, uid string, sentAt time.Time) error
	SetRestoreToken(ctx context.Context, uid, token string, sentAt time.Time) error
	UpdatePasswordHash(ctx context.Context, uid, passwordHash string) error
	ConsumeCredit(ctx context.Context, uid string) (int, error)
	CancelSubscription(ctx context.Context, uid string) error
	DeleteAccount(ctx context.Context, uid string) error
	CreateExtraEmail(ctx context.Context, accountUID, email string) (int, error)
	ExtraEmailExists(ctx context.Context, accountUID, email string) (bool, error)
}

// EmailQueue публикует почтовые задания для воркера email-sender.
type EmailQueue interface {
	Publish(job models.EmailJob) error
}

// Service реализует операции жизненного цикла аккаунта.
type Service struct {
	repo     Repository
	emails   EmailQueue
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, emails EmailQueue, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		emails:   emails,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// NormalizeEmail приводит адрес к канонической форме: обрезанный и целиком
// в нижнем регистре. Исходный код нормализовал регистрацию и вход по-разному,
// здесь выбрана одна форма для всех операций.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}

// Register создает неподтвержденный аккаунт и ставит в очередь письмо
// с кодом подтверждения.
func (s *Service) Register(ctx context.Context, email, rawPassword, locale string) (*models.Account, []string, error) {
	const op = "account.Register"
	email = NormalizeEmail(email)

	var errKeys []string
	if email == "" {
		errKeys = append(errKeys, ErrMissingEmail)
	} else if !validEmail(email) {
		errKeys = append(errKeys, ErrInvalidEmail)
	}
	if rawPassword == "" {
		errKeys = append(errKeys, ErrMissingPassword)
	} else if !password.IsStrong(rawPassword) {
		errKeys = append(errKeys, ErrWeakPassword)
	}
	if len(errKeys) > 0 {
		return nil, errKeys, nil
	}

	if _, err := s.repo.GetAccountByEmail(ctx, email); err == nil {
		return nil, []string{ErrEmailTaken}, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	apiToken, err := secrets.NewAPIToken()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	code, err := secrets.NewVerificationCode()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	acc := models.Account{
		Email:              email,
		PasswordHash:       hashed,
		APIToken:           apiToken,
		VerificationCode:   code,
		VerificationSentAt: &now,
		Locale:             locale,
	}
	uid, err := s.repo.CreateAccount(ctx, acc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	acc.UID = uid

	if err := s.emails.Publish(models.EmailJob{
		Kind:   "verification",
		To:     email,
		Locale: locale,
		Code:   code,
	}); err != nil {
		// Аккаунт уже создан, письмо можно перезапросить вручную.
		s.log.Error("failed to queue verification email", sl.Err(err))
	}

	s.log.Info("account registered", slog.String("uid", uid))
	return &acc, nil, nil
}

// Login проверяет учетные данные и выдает JWT сессии. Неизвестная почта
// и неверный пароль дают один и тот же ключ, чтобы не раскрывать
// существование аккаунта.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.Account, string, []string, error) {
	const op = "account.Login"
	email = NormalizeEmail(email)

	if email == "" || rawPassword == "" {
		return nil, "", []string{ErrWrongCredentials}, nil
	}

	acc, err := s.repo.GetAccountByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", []string{ErrWrongCredentials}, nil
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(acc.PasswordHash, rawPassword); err != nil {
		return nil, "", []string{ErrWrongCredentials}, nil
	}

	token, err := s.jwtMaker.GenerateToken(acc.Email, acc.UID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, token, nil, nil
}

// VerifyCode сравнивает код с кодом текущего аккаунта. Совпадение
// подтверждает почту и сжигает код, несовпадение ничего не меняет.
func (s *Service) VerifyCode(ctx context.Context, acc *models.Account, code string) (*models.Account, []string, error) {
	const op = "account.VerifyCode"
	if acc == nil {
		return nil, []string{ErrNoUser}, nil
	}
	if code == "" {
		return nil, []string{ErrMissingCode}, nil
	}
	if acc.IsConfirm {
		// Подтвержденный аккаунт — терминальное состояние.
		return acc, nil, nil
	}
	if acc.VerificationCode == "" || code != acc.VerificationCode {
		return nil, []string{ErrInvalidCode}, nil
	}

	if err := s.repo.ConfirmAccount(ctx, acc.UID); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	acc.IsConfirm = true
	acc.VerificationCode = ""
	return acc, nil, nil
}

// ResendVerification повторно ставит в очередь письмо с кодом подтверждения.
// Анонимный вызов — тихий no-op, слишком частый — ключ email_sent_wait.
func (s *Service) ResendVerification(ctx context.Context, acc *models.Account) ([]string, error) {
	const op = "account.ResendVerification"
	if acc == nil || acc.IsConfirm {
		return nil, nil
	}

	if res := cooldown.Check(acc.VerificationSentAt, EmailCooldown); !res.Allowed {
		return []string{ErrEmailSentWait}, nil
	}

	if err := s.emails.Publish(models.EmailJob{
		Kind:   "verification",
		To:     acc.Email,
		Locale: acc.Locale,
		Code:   acc.VerificationCode,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.MarkVerificationSent(ctx, acc.UID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, nil
}

// LostPassword генерирует токен восстановления и ставит в очередь письмо.
// Повторный запрос внутри окна кулдауна отклоняется.
func (s *Service) LostPassword(ctx context.Context, email string) ([]string, error) {
	const op = "account.LostPassword"
	email = NormalizeEmail(email)
	if !validEmail(email) {
		return []string{ErrInvalidEmail}, nil
	}

	acc, err := s.repo.GetAccountByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{ErrNoUserEmail}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res := cooldown.Check(acc.RestoreSentAt, EmailCooldown); !res.Allowed {
		return []string{ErrEmailSentWait}, nil
	}

	token, err := secrets.NewRestoreToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetRestoreToken(ctx, acc.UID, token, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.emails.Publish(models.EmailJob{
		Kind:   "lost_password",
		To:     acc.Email,
		Locale: acc.Locale,
		Token:  token,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, nil
}

// RestorePassword меняет пароль по токену восстановления и сжигает токен.
func (s *Service) RestorePassword(ctx context.Context, token, newPassword, confirmPassword string) ([]string, error) {
	const op = "account.RestorePassword"

	var errKeys []string
	if newPassword != confirmPassword {
		errKeys = append(errKeys, ErrPasswordsMismatch)
	}
	if !password.IsStrong(newPassword) {
		errKeys = append(errKeys, ErrWeakPassword)
	}

	if token == "" {
		return append(errKeys, ErrWrongRestoreToken), nil
	}
	acc, err := s.repo.GetAccountByRestoreToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return append(errKeys, ErrWrongRestoreToken), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if acc.RestoreSentAt == nil || time.Since(*acc.RestoreSentAt) > RestoreTokenTTL {
		return append(errKeys, ErrWrongRestoreToken), nil
	}
	if len(errKeys) > 0 {
		return errKeys, nil
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, acc.UID, hashed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, nil
}

// UpdatePassword меняет пароль аутентифицированного пользователя.
// Все невыполненные условия возвращаются одним списком, без короткого
// замыкания на первом.
func (s *Service) UpdatePassword(ctx context.Context, acc *models.Account, current, newPassword, confirmPassword string) ([]string, error) {
	const op = "account.UpdatePassword"
	if acc == nil {
		return []string{ErrNoUser}, nil
	}

	var errKeys []string
	if err := password.CompareHash(acc.PasswordHash, current); err != nil {
		errKeys = append(errKeys, ErrWrongPassword)
	}
	if newPassword != confirmPassword {
		errKeys = append(errKeys, ErrPasswordsMismatch)
	}
	if !password.IsStrong(newPassword) {
		errKeys = append(errKeys, ErrWeakPassword)
	}
	if len(errKeys) > 0 {
		return errKeys, nil
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, acc.UID, hashed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, nil
}

// ConsumeCredits списывает один кредит, не опуская баланс ниже нуля.
// Без аккаунта (анонимный вызов) ничего не делает.
func (s *Service) ConsumeCredits(ctx context.Context, acc *models.Account) (int, error) {
	const op = "account.ConsumeCredits"
	if acc == nil {
		return 0, nil
	}
	credits, err := s.repo.ConsumeCredit(ctx, acc.UID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	acc.Credits = credits
	return credits, nil
}

// CancelSubscription сбрасывает платную подписку и платежные атрибуты.
// Операция идемпотентна.
func (s *Service) CancelSubscription(ctx context.Context, acc *models.Account) ([]string, error) {
	const op = "account.CancelSubscription"
	if acc == nil {
		return []string{ErrNoUser}, nil
	}
	if err := s.repo.CancelSubscription(ctx, acc.UID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	acc.IsPlanActive = false
	acc.Processor = ""
	acc.PaymentToken = ""
	acc.CardToken = ""
	acc.NextBillingDate = nil
	return nil, nil
}

// DeleteAccount безвозвратно удаляет аккаунт вместе с дополнительными
// адресами почты.
func (s *Service) DeleteAccount(ctx context.Context, acc *models.Account) ([]string, error) {
	const op = "account.DeleteAccount"
	if acc == nil {
		return []string{ErrNoUser}, nil
	}
	if err := s.repo.DeleteAccount(ctx, acc.UID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("account deleted", slog.String("uid", acc.UID))
	return nil, nil
}

// AddExtraEmail регистрирует дополнительный адрес аккаунта.
func (s *Service) AddExtraEmail(ctx context.Context, acc *models.Account, email string) (*models.ExtraEmail, []string, error) {
	const op = "account.AddExtraEmail"
	if acc == nil {
		return nil, []string{ErrNoUser}, nil
	}
	email = NormalizeEmail(email)
	if !validEmail(email) {
		return nil, []string{ErrInvalidEmail}, nil
	}

	exists, err := s.repo.ExtraEmailExists(ctx, acc.UID, email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, []string{ErrEmailTaken}, nil
	}

	id, err := s.repo.CreateExtraEmail(ctx, acc.UID, email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.ExtraEmail{ID: id, AccountUID: acc.UID, Email: email}, nil, nil
}

// GetByUID возвращает аккаунт по UID, nil для неизвестного UID.
func (s *Service) GetByUID(ctx context.Context, uid string) (*models.Account, error) {
	const op = "account.GetByUID"
	acc, err := s.repo.GetAccount(ctx, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}
