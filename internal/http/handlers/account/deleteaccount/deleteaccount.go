// Package deleteaccount реализует удаление аккаунта вместе с
// дополнительными адресами и сброс сессии.
package deleteaccount

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/http/response"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Service описывает интерфейс удаления аккаунта.
type Service interface {
	DeleteAccount(ctx context.Context, acc *models.Account) ([]string, error)
}

// Handler обрабатывает POST /api/accounts/delete.
type Handler struct {
	log      *slog.Logger
	accounts Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, accounts Service) *Handler {
	return &Handler{
		log:      log,
		accounts: accounts,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.deleteaccount"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	acc := middlewarectx.FromContext(r.Context())
	errKeys, err := h.accounts.DeleteAccount(r.Context(), acc)
	if err != nil {
		log.Error("failed to delete account", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if len(errKeys) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorKeys(errKeys))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("account deleted", slog.String("uid", acc.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "account_deleted",
	}))
}
