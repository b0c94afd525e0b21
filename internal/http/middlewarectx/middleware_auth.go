// Package middlewarectx содержит HTTP middleware аккаунтов: разбор JWT
// сессии с загрузкой аккаунта в контекст запроса и общий ограничитель
// частоты запросов.
//
// LoadAccount мягкий: анонимный запрос проходит дальше без аккаунта —
// лимиты для анонимных пользователей решает бизнес-логика, а не транспорт.
// RequireAccount возвращает 401 без валидной сессии.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/speechtospeechai/accounts-service/internal/http/response"
	"github.com/speechtospeechai/accounts-service/internal/lib/jwt"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// Account — ключ аккаунта в контексте.
const Account Key = "account"

// SessionCookie имя cookie с JWT сессии.
const SessionCookie = "session"

// AccountProvider загружает аккаунт по UID из хранилища.
type AccountProvider interface {
	GetByUID(ctx context.Context, uid string) (*models.Account, error)
}

// FromContext возвращает аккаунт текущего запроса, nil для анонимного.
func FromContext(ctx context.Context) *models.Account {
	acc, _ := ctx.Value(Account).(*models.Account)
	return acc
}

func sessionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// LoadAccount возвращает middleware, который разбирает JWT сессии
// (заголовок Authorization или cookie) и кладет аккаунт в контекст.
// Запрос без токена или с невалидным токеном проходит как анонимный.
func LoadAccount(maker jwt.Maker, accounts AccountProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.LoadAccount"

			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := maker.ParseToken(token)
			if err != nil {
				log.Warn("invalid session token",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			acc, err := accounts.GetByUID(r.Context(), claims.AccountUID)
			if err != nil {
				log.Error("failed to load account", slog.String("op", op), sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if acc == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), Account, acc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAccount возвращает middleware, пропускающий только запросы
// с загруженным аккаунтом. Ставится после LoadAccount.
func RequireAccount(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()) == nil {
				log.Error("unauthorized request",
					slog.String("request_id", middleware.GetReqID(r.Context())))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authorization required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
