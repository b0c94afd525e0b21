// Package consume реализует списание одного кредита после успешной
// обработки. У анонимного клиента списывать нечего, ответ остается 200.
package consume

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

// Service описывает интерфейс списания кредитов.
type Service interface {
	ConsumeCredits(ctx context.Context, acc *models.Account) (int, error)
}

// Handler обрабатывает POST /api/accounts/consume.
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
	const op = "handlers.account.consume"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	acc := middlewarectx.FromContext(r.Context())
	credits, err := h.accounts.ConsumeCredits(r.Context(), acc)
	if err != nil {
		log.Error("failed to consume credit", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"credits": credits,
	}))
}
