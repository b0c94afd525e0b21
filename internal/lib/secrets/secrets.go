// Package secrets генерирует секреты учётной записи: API-токен,
// 6-значный код подтверждения почты и токен восстановления пароля.
// Все значения строятся на crypto/rand.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const digits = "1234567890"

// APITokenLength длина API-токена в байтах до hex-кодирования.
// Итоговая строка — 48 символов.
const APITokenLength = 24

// VerificationCodeLength число цифр в коде подтверждения почты.
const VerificationCodeLength = 6

// NewAPIToken возвращает новый API-токен для доступа к speech API.
func NewAPIToken() (string, error) {
	const op = "secrets.NewAPIToken"
	buf := make([]byte, APITokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}

// NewVerificationCode возвращает случайный 6-значный код подтверждения.
func NewVerificationCode() (string, error) {
	const op = "secrets.NewVerificationCode"
	buf := make([]byte, VerificationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf), nil
}

// NewRestoreToken возвращает токен восстановления пароля.
func NewRestoreToken() (string, error) {
	const op = "secrets.NewRestoreToken"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
