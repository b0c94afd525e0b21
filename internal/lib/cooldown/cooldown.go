// Package cooldown реализует общую политику "не чаще, чем раз в окно"
// для повторной отправки писем: подтверждение почты и восстановление пароля
// используют один и тот же механизм вместо двух разрозненных проверок.
package cooldown

import "time"

// Result результат проверки кулдауна.
type Result struct {
	Allowed bool          // Можно ли выполнять действие сейчас
	Wait    time.Duration // Сколько осталось ждать, 0 если Allowed
}

// Check сравнивает время последней отправки с окном кулдауна.
// lastSent == nil означает, что отправок еще не было.
func Check(lastSent *time.Time, window time.Duration) Result {
	return CheckAt(lastSent, window, time.Now())
}

// CheckAt то же, что Check, с явным текущим временем.
func CheckAt(lastSent *time.Time, window time.Duration, now time.Time) Result {
	if lastSent == nil {
		return Result{Allowed: true}
	}
	passed := now.Sub(*lastSent)
	if passed >= window {
		return Result{Allowed: true}
	}
	return Result{Allowed: false, Wait: window - passed}
}
