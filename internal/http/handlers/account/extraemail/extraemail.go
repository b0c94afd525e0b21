// Package extraemail реализует привязку дополнительной почты к аккаунту.
package extraemail

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/http/response"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Request — дополнительный адрес почты.
type Request struct {
	Email string `json:"email"`
}

// Service описывает интерфейс управления дополнительными адресами.
type Service interface {
	AddExtraEmail(ctx context.Context, acc *models.Account, email string) (*models.ExtraEmail, []string, error)
}

// Handler обрабатывает POST /api/accounts/extra-email.
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
	const op = "handlers.account.extraemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	acc := middlewarectx.FromContext(r.Context())
	extra, errKeys, err := h.accounts.AddExtraEmail(r.Context(), acc, req.Email)
	if err != nil {
		log.Error("failed to add extra email", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if len(errKeys) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorKeys(errKeys))
		return
	}

	render.JSON(w, r, response.OKWithData(extra))
}
