// Package logout реализует выход: сброс cookie сессии и редирект на главную.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
)

// Handler обрабатывает GET /logout.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
