// Package cancelsubscription реализует отмену подписки. Операция
// идемпотентна: повторный вызов без активной подписки тоже отвечает 200.
package cancelsubscription

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

// Service описывает интерфейс отмены подписки.
type Service interface {
	CancelSubscription(ctx context.Context, acc *models.Account) ([]string, error)
}

// Handler обрабатывает POST /api/accounts/cancel-subscription.
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
	const op = "handlers.account.cancelsubscription"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	acc := middlewarectx.FromContext(r.Context())
	errKeys, err := h.accounts.CancelSubscription(r.Context(), acc)
	if err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if len(errKeys) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorKeys(errKeys))
		return
	}

	log.Info("subscription cancelled", slog.String("uid", acc.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "subscription_cancelled",
	}))
}
