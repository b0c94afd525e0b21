// Package payment применяет покупки тарифов к аккаунтам. Вызывается
// из вебхуков платежных процессоров и из создания заказов.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Ключи переводов для ожидаемых отказов.
const (
	ErrWrongPlan = "wrong_plan"
	ErrNoUser    = "no_user"
)

// Repository описывает методы хранилища, нужные обработке платежей.
type Repository interface {
	GetPlan(ctx context.Context, codeName string) (*models.Plan, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccount(ctx context.Context, uid string) (*models.Account, error)
	ApplyPurchase(ctx context.Context, uid string, plan models.Plan,
		processor, paymentToken, cardToken string, nextBilling *time.Time) error
}

// Service применяет покупки тарифов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// GetPlan возвращает тариф по коду, ключ wrong_plan для неизвестного кода.
func (s *Service) GetPlan(ctx context.Context, codeName string) (*models.Plan, []string, error) {
	const op = "payment.GetPlan"
	plan, err := s.repo.GetPlan(ctx, codeName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, []string{ErrWrongPlan}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil, nil
}

// ApplyPurchaseByUID начисляет тариф аккаунту по UID. Для подписочных
// тарифов сохраняются процессор, платежные токены и дата следующего
// списания (now + plan.Days).
func (s *Service) ApplyPurchaseByUID(ctx context.Context, accountUID, planCode, processor, paymentToken, cardToken string) ([]string, error) {
	const op = "payment.ApplyPurchaseByUID"

	plan, errKeys, err := s.GetPlan(ctx, planCode)
	if err != nil || len(errKeys) > 0 {
		return errKeys, err
	}

	acc, err := s.repo.GetAccount(ctx, accountUID)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{ErrNoUser}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.apply(ctx, acc, plan, processor, paymentToken, cardToken)
}

// ApplyPurchaseByEmail начисляет тариф аккаунту по почте. Используется
// вебхуками, передающими почту в metadata (Coinbase).
func (s *Service) ApplyPurchaseByEmail(ctx context.Context, email, planCode, processor string) ([]string, error) {
	const op = "payment.ApplyPurchaseByEmail"

	plan, errKeys, err := s.GetPlan(ctx, planCode)
	if err != nil || len(errKeys) > 0 {
		return errKeys, err
	}

	acc, err := s.repo.GetAccountByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{ErrNoUser}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.apply(ctx, acc, plan, processor, "", "")
}

func (s *Service) apply(ctx context.Context, acc *models.Account, plan *models.Plan, processor, paymentToken, cardToken string) ([]string, error) {
	const op = "payment.apply"

	var nextBilling *time.Time
	if plan.IsSubscription {
		t := time.Now().UTC().AddDate(0, 0, plan.Days)
		nextBilling = &t
	} else {
		// Разовая покупка не несет платежных атрибутов подписки.
		processor, paymentToken, cardToken = "", "", ""
	}

	if err := s.repo.ApplyPurchase(ctx, acc.UID, *plan, processor,
		paymentToken, cardToken, nextBilling); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("purchase applied",
		slog.String("account_uid", acc.UID),
		slog.String("plan", plan.CodeName),
		slog.String("processor", processor))
	return nil, nil
}
