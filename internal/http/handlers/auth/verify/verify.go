// Package verify реализует подтверждение почты по 6-значному коду.
// Код сверяется только с кодом текущего аккаунта; уже подтвержденный
// аккаунт получает редирект без обращения к бизнес-логике.
package verify

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

// Request — код подтверждения из письма.
type Request struct {
	Code string `json:"code"`
}

// Service описывает интерфейс бизнес-логики подтверждения.
type Service interface {
	VerifyCode(ctx context.Context, acc *models.Account, code string) (*models.Account, []string, error)
}

// Handler обрабатывает POST /verify.
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
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	acc := middlewarectx.FromContext(r.Context())
	if acc != nil && acc.IsConfirm {
		// Подтверждение — терминальное состояние.
		http.Redirect(w, r, "/account", http.StatusFound)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	verified, errKeys, err := h.accounts.VerifyCode(r.Context(), acc, req.Code)
	if err != nil {
		log.Error("verification failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if len(errKeys) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorKeys(errKeys))
		return
	}

	log.Info("email verified", slog.String("uid", verified.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"is_confirm": verified.IsConfirm,
	}))
}
