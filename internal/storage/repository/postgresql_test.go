package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

func TestCreateAndGetAccount(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	sentAt := time.Now().UTC()
	uid, err := storage.CreateAccount(ctx, models.Account{
		Email:              "user@example.com",
		PasswordHash:       "hash",
		APIToken:           "api-token-1",
		VerificationCode:   "123456",
		VerificationSentAt: &sentAt,
		Locale:             "de",
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	byEmail, err := storage.GetAccountByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, byEmail.UID)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.Equal(t, "123456", byEmail.VerificationCode)
	assert.Equal(t, "de", byEmail.Locale)
	assert.False(t, byEmail.IsConfirm)
	assert.Zero(t, byEmail.Credits)
	require.NotNil(t, byEmail.VerificationSentAt)

	byUID, err := storage.GetAccount(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, byEmail.Email, byUID.Email)
}

func TestGetAccountByEmail_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.GetAccountByEmail(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestConfirmAccount(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateAccount(t, "user@example.com", "hash")

	require.NoError(t, storage.ConfirmAccount(ctx, uid))

	acc, err := storage.GetAccount(ctx, uid)
	require.NoError(t, err)
	assert.True(t, acc.IsConfirm)
	// Код подтверждения сжигается.
	assert.Empty(t, acc.VerificationCode)
}

func TestMarkVerificationSent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateAccount(t, "user@example.com", "hash")
	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, storage.MarkVerificationSent(ctx, uid, sentAt))

	acc, err := storage.GetAccount(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, acc.VerificationSentAt)
	assert.True(t, acc.VerificationSentAt.Equal(sentAt))
}

func TestRestoreTokenFlow(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateAccount(t, "user@example.com", "old-hash")
	sentAt := time.Now().UTC()

	require.NoError(t, storage.SetRestoreToken(ctx, uid, "restore-token", sentAt))

	acc, err := storage.GetAccountByRestoreToken(ctx, "restore-token")
	require.NoError(t, err)
	assert.Equal(t, uid, acc.UID)
	require.NotNil(t, acc.RestoreSentAt)

	require.NoError(t, storage.UpdatePasswordHash(ctx, uid, "new-hash"))

	acc, err = storage.GetAccount(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", acc.PasswordHash)
	// Токен восстановления одноразовый.
	assert.Empty(t, acc.RestorePasswordToken)

	_, err = storage.GetAccountByRestoreToken(ctx, "restore-token")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestConsumeCredit(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateAccount(t, "user@example.com", "hash")
	factory.SetCredits(t, uid, 2)

	credits, err := storage.ConsumeCredit(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, credits)

	credits, err = storage.ConsumeCredit(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 0, credits)

	// Баланс не уходит в минус.
	credits, err = storage.ConsumeCredit(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 0, credits)
}

func TestApplyPurchase_Subscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	factory.CreatePlan(t, "pro-monthly", 990, 100, 31, true)
	uid := factory.CreateAccount(t, "user@example.com", "hash")
	factory.SetCredits(t, uid, 5)

	nextBilling := time.Now().UTC().AddDate(0, 0, 31)
	plan := models.Plan{CodeName: "pro-monthly", Price: 990, Credits: 100, Days: 31, IsSubscription: true}
	require.NoError(t, storage.ApplyPurchase(ctx, uid, plan,
		models.ProcessorStripe, "pay-token", "card-token", &nextBilling))

	acc, err := storage.GetAccount(ctx, uid)
	require.NoError(t, err)
	// Кредиты накапливаются, а не перезаписываются.
	assert.Equal(t, 105, acc.Credits)
	assert.Equal(t, "pro-monthly", acc.PlanCode)
	assert.True(t, acc.IsPlanActive)
	assert.Equal(t, models.ProcessorStripe, acc.Processor)
	assert.Equal(t, "pay-token", acc.PaymentToken)
	assert.Equal(t, "card-token", acc.CardToken)
	require.NotNil(t, acc.NextBillingDate)
}

func TestApplyPurchase_OneShot(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	factory.CreatePlan(t, "credits-pack", 490, 50, 0, false)
	uid := factory.CreateAccount(t, "user@example.com", "hash")

	plan := models.Plan{CodeName: "credits-pack", Price: 490, Credits: 50, Days: 0, IsSubscription: false}
	require.NoError(t, storage.ApplyPurchase(ctx, uid, plan,
		models.ProcessorCoinbase, "", "", nil))

	acc, err := storage.GetAccount(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 50, acc.Credits)
	assert.Equal(t, "credits-pack", acc.PlanCode)
	assert.False(t, acc.IsPlanActive)
	assert.Equal(t, models.ProcessorCoinbase, acc.Processor)
	assert.Empty(t, acc.PaymentToken)
	assert.Nil(t, acc.NextBillingDate)
}

func TestCancelSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	factory.CreatePlan(t, "pro-monthly", 990, 100, 31, true)
	uid := factory.CreateAccount(t, "user@example.com", "hash")

	nextBilling := time.Now().UTC().AddDate(0, 0, 31)
	plan := models.Plan{CodeName: "pro-monthly", Price: 990, Credits: 100, Days: 31, IsSubscription: true}
	require.NoError(t, storage.ApplyPurchase(ctx, uid, plan,
		models.ProcessorPaypal, "pay-token", "card-token", &nextBilling))

	require.NoError(t, storage.CancelSubscription(ctx, uid))
	// Повторная отмена безвредна.
	require.NoError(t, storage.CancelSubscription(ctx, uid))

	acc, err := storage.GetAccount(ctx, uid)
	require.NoError(t, err)
	assert.False(t, acc.IsPlanActive)
	assert.Empty(t, acc.Processor)
	assert.Empty(t, acc.PaymentToken)
	assert.Empty(t, acc.CardToken)
	assert.Nil(t, acc.NextBillingDate)
	// Остаток кредитов и код тарифа сохраняются.
	assert.Equal(t, 100, acc.Credits)
	assert.Equal(t, "pro-monthly", acc.PlanCode)
}

func TestDeleteAccount_CascadesExtraEmails(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)

	uid := factory.CreateAccount(t, "user@example.com", "hash")
	_, err := storage.CreateExtraEmail(ctx, uid, "second@example.com")
	require.NoError(t, err)
	verify.VerifyExtraEmailCount(t, uid, 1)

	require.NoError(t, storage.DeleteAccount(ctx, uid))

	verify.VerifyAccountDeleted(t, uid)
	verify.VerifyExtraEmailCount(t, uid, 0)
}

func TestExtraEmails(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateAccount(t, "user@example.com", "hash")

	exists, err := storage.ExtraEmailExists(ctx, uid, "second@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := storage.CreateExtraEmail(ctx, uid, "second@example.com")
	require.NoError(t, err)
	assert.Positive(t, id)

	exists, err = storage.ExtraEmailExists(ctx, uid, "second@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	// Дубликат в пределах аккаунта запрещен схемой.
	_, err = storage.CreateExtraEmail(ctx, uid, "second@example.com")
	require.Error(t, err)

	list, err := storage.ListExtraEmails(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second@example.com", list[0].Email)
	assert.Equal(t, uid, list[0].AccountUID)
}

func TestPlans(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	factory.CreatePlan(t, "pro-monthly", 990, 100, 31, true)
	factory.CreatePlan(t, "credits-pack", 490, 50, 0, false)

	plan, err := storage.GetPlan(ctx, "pro-monthly")
	require.NoError(t, err)
	assert.Equal(t, 990, plan.Price)
	assert.Equal(t, 100, plan.Credits)
	assert.True(t, plan.IsSubscription)

	_, err = storage.GetPlan(ctx, "ghost")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	plans, err := storage.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	// Каталог отсортирован по цене.
	assert.Equal(t, "credits-pack", plans[0].CodeName)
	assert.Equal(t, "pro-monthly", plans[1].CodeName)
}

func TestTranslations(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	factory.CreateLanguage(t, "de", "Deutsch")
	factory.CreateTranslation(t, "en", "welcome", "Welcome")
	factory.CreateTranslation(t, "de", "welcome", "Willkommen")

	languages, err := storage.ListLanguages(ctx)
	require.NoError(t, err)
	require.Len(t, languages, 2)
	assert.Equal(t, "de", languages[0].ISO)
	assert.Equal(t, "en", languages[1].ISO)

	catalog, err := storage.GetTextByLang(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"welcome": "Willkommen"}, catalog)

	empty, err := storage.GetTextByLang(ctx, "fr")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestContextCancellation(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.GetAccount(ctx, "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
