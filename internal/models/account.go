// Package models описывает сущности сервиса аккаунтов.
package models

import "time"

// Платежные процессоры, закрепляемые за подпиской аккаунта.
const (
	ProcessorStripe   = "stripe"
	ProcessorPaypal   = "paypal"
	ProcessorCoinbase = "coinbase"
)

// Account — аккаунт пользователя. Почта хранится в нижнем регистре.
// Поля подписки (Processor, токены, NextBillingDate) заполнены только
// при активной подписке.
type Account struct {
	UID                  string     `json:"uid"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	APIToken             string     `json:"api_token"`
	VerificationCode     string     `json:"-"`
	VerificationSentAt   *time.Time `json:"-"`
	IsConfirm            bool       `json:"is_confirm"`
	Credits              int        `json:"credits"`
	Locale               string     `json:"locale"`
	PlanCode             string     `json:"plan_code"`
	IsPlanActive         bool       `json:"is_plan_active"`
	Processor            string     `json:"-"`
	PaymentToken         string     `json:"-"`
	CardToken            string     `json:"-"`
	NextBillingDate      *time.Time `json:"next_billing_date,omitempty"`
	RestorePasswordToken string     `json:"-"`
	RestoreSentAt        *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
}

// ExtraEmail — дополнительный адрес, привязанный к аккаунту.
type ExtraEmail struct {
	ID         int    `json:"id"`
	AccountUID string `json:"account_uid"`
	Email      string `json:"email"`
}
