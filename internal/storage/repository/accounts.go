package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

const accountColumns = `uid, email, password_hash, api_token, verification_code,
	      verification_sent_at, is_confirm, credits, locale, plan_code,
	      is_plan_active, processor, payment_token, card_token,
	      next_billing_date, restore_password_token, restore_sent_at, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	a := &models.Account{}
	var verificationSentAt, nextBillingDate, restoreSentAt sql.NullTime
	var planCode, processor, paymentToken, cardToken, restoreToken sql.NullString

	if err := row.Scan(&a.UID, &a.Email, &a.PasswordHash, &a.APIToken,
		&a.VerificationCode, &verificationSentAt, &a.IsConfirm, &a.Credits,
		&a.Locale, &planCode, &a.IsPlanActive, &processor, &paymentToken,
		&cardToken, &nextBillingDate, &restoreToken, &restoreSentAt,
		&a.CreatedAt); err != nil {
		return nil, err
	}

	if verificationSentAt.Valid {
		a.VerificationSentAt = &verificationSentAt.Time
	}
	if nextBillingDate.Valid {
		a.NextBillingDate = &nextBillingDate.Time
	}
	if restoreSentAt.Valid {
		a.RestoreSentAt = &restoreSentAt.Time
	}
	a.PlanCode = planCode.String
	a.Processor = processor.String
	a.PaymentToken = paymentToken.String
	a.CardToken = cardToken.String
	a.RestorePasswordToken = restoreToken.String
	return a, nil
}

// CreateAccount сохраняет новый аккаунт в базу данных и возвращает его UID.
func (s *Storage) CreateAccount(ctx context.Context, account models.Account) (string, error) {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO accounts (email, password_hash, api_token, verification_code,
			      verification_sent_at, locale)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		account.Email, account.PasswordHash, account.APIToken,
		account.VerificationCode, account.VerificationSentAt,
		account.Locale).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetAccountByEmail возвращает аккаунт по почте. Почта сравнивается
// в нижнем регистре, вызывающий обязан нормализовать её заранее.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE email = $1`
	a, err := scanAccount(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetAccount возвращает аккаунт по его UID.
func (s *Storage) GetAccount(ctx context.Context, uid string) (*models.Account, error) {
	const op = "storage.GetAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE uid = $1`
	a, err := scanAccount(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetAccountByRestoreToken возвращает аккаунт по токену восстановления пароля.
func (s *Storage) GetAccountByRestoreToken(ctx context.Context, token string) (*models.Account, error) {
	const op = "storage.GetAccountByRestoreToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE restore_password_token = $1`
	a, err := scanAccount(s.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// ConfirmAccount помечает почту подтвержденной и сжигает код подтверждения.
func (s *Storage) ConfirmAccount(ctx context.Context, uid string) error {
	const op = "storage.ConfirmAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET is_confirm = TRUE,
			      verification_code = ''
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkVerificationSent обновляет время последней отправки кода подтверждения.
func (s *Storage) MarkVerificationSent(ctx context.Context, uid string, sentAt time.Time) error {
	const op = "storage.MarkVerificationSent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET verification_sent_at = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, sentAt, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetRestoreToken сохраняет токен восстановления пароля и время отправки письма.
func (s *Storage) SetRestoreToken(ctx context.Context, uid, token string, sentAt time.Time) error {
	const op = "storage.SetRestoreToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET restore_password_token = $1,
			      restore_sent_at = $2
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, token, sentAt, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePasswordHash меняет хэш пароля и сжигает токен восстановления.
func (s *Storage) UpdatePasswordHash(ctx context.Context, uid, passwordHash string) error {
	const op = "storage.UpdatePasswordHash"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET password_hash = $1,
			      restore_password_token = NULL
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, passwordHash, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeCredit списывает один кредит, не опуская баланс ниже нуля,
// и возвращает новый баланс.
func (s *Storage) ConsumeCredit(ctx context.Context, uid string) (int, error) {
	const op = "storage.ConsumeCredit"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var credits int
	query := `UPDATE accounts
			  SET credits = GREATEST(credits - 1, 0)
			  WHERE uid = $1
			  RETURNING credits`
	if err := s.DB.QueryRowContext(ctx, query, uid).Scan(&credits); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return credits, nil
}

// ApplyPurchase начисляет кредиты тарифа и, для подписочных тарифов,
// сохраняет платежные атрибуты и дату следующего списания.
func (s *Storage) ApplyPurchase(ctx context.Context, uid string, plan models.Plan,
	processor, paymentToken, cardToken string, nextBilling *time.Time) error {
	const op = "storage.ApplyPurchase"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET credits = credits + $1,
			      plan_code = $2,
			      is_plan_active = $3,
			      processor = NULLIF($4, ''),
			      payment_token = NULLIF($5, ''),
			      card_token = NULLIF($6, ''),
			      next_billing_date = $7
			  WHERE uid = $8`
	if _, err := s.DB.ExecContext(ctx, query, plan.Credits, plan.CodeName,
		plan.IsSubscription, processor, paymentToken, cardToken,
		nextBilling, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CancelSubscription сбрасывает признак активной подписки и все платежные
// атрибуты. Повторный вызов оставляет те же значения.
func (s *Storage) CancelSubscription(ctx context.Context, uid string) error {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET is_plan_active = FALSE,
			      processor = NULL,
			      payment_token = NULL,
			      card_token = NULL,
			      next_billing_date = NULL
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAccount удаляет аккаунт. Дополнительные адреса удаляются каскадом.
func (s *Storage) DeleteAccount(ctx context.Context, uid string) error {
	const op = "storage.DeleteAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM accounts WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
