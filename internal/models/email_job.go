package models

// Виды писем, публикуемых в очередь.
const (
	EmailKindVerification = "verification"
	EmailKindLostPassword = "lost_password"
)

// EmailJob — задание на отправку письма, уходящее в RabbitMQ.
// Code заполнен для писем подтверждения, Token — для восстановления пароля.
type EmailJob struct {
	Kind   string `json:"kind"`
	To     string `json:"to"`
	Locale string `json:"locale"`
	Code   string `json:"code,omitempty"`
	Token  string `json:"token,omitempty"`
}
