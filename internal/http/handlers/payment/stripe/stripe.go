// Package stripe обслуживает оплату через Stripe: создание checkout-сессии
// по коду тарифа и вебхук checkout.session.completed, начисляющий покупку
// по metadata сессии.
package stripe

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
	"github.com/speechtospeechai/accounts-service/internal/paymentprovider"
)

// Request — создание сессии: код тарифа. Вебхуки различаются полем type.
type Request struct {
	Plan string `json:"plan"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Metadata struct {
				Plan       string `json:"plan"`
				AccountUID string `json:"account_uid"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Provider описывает методы клиента Stripe.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, planCode string, priceUSD int, accountUID, successURL, cancelURL string) (*paymentprovider.StripeCheckoutSession, error)
}

// Payments описывает интерфейс начисления покупок.
type Payments interface {
	GetPlan(ctx context.Context, codeName string) (*models.Plan, []string, error)
	ApplyPurchaseByUID(ctx context.Context, accountUID, planCode, processor, paymentToken, cardToken string) ([]string, error)
}

// Handler обрабатывает POST /ipns/stripe.
type Handler struct {
	log        *slog.Logger
	provider   Provider
	payments   Payments
	rootDomain string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, provider Provider, payments Payments, rootDomain string) *Handler {
	return &Handler{
		log:        log,
		provider:   provider,
		payments:   payments,
		rootDomain: rootDomain,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.stripe"

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

	if req.Type != "" {
		h.webhook(w, r, log, req)
		return
	}
	h.checkout(w, r, log, req.Plan)
}

// checkout создает checkout-сессию для аутентифицированного пользователя.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request, log *slog.Logger, planCode string) {
	acc := middlewarectx.FromContext(r.Context())
	if acc == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	plan, errKeys, err := h.payments.GetPlan(r.Context(), planCode)
	if err != nil {
		log.Error("failed to load plan", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if len(errKeys) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorKeys(errKeys))
		return
	}

	session, err := h.provider.CreateCheckoutSession(r.Context(), plan.CodeName,
		plan.Price, acc.UID, h.rootDomain+"/account", h.rootDomain+"/pricing")
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("stripe checkout session created",
		slog.String("session_id", session.ID),
		slog.String("plan", plan.CodeName))
	render.JSON(w, r, map[string]any{"id": session.ID, "url": session.URL})
}

// webhook начисляет покупку по завершенной checkout-сессии. Неизвестные
// типы событий подтверждаются без изменений.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request, log *slog.Logger, req Request) {
	if req.Type != "checkout.session.completed" {
		log.Info("stripe event skipped", slog.String("type", req.Type))
		render.JSON(w, r, response.OKWithData(nil))
		return
	}

	meta := req.Data.Object.Metadata
	errKeys, err := h.payments.ApplyPurchaseByUID(r.Context(), meta.AccountUID,
		meta.Plan, models.ProcessorStripe, req.Data.Object.ID, "")
	if err != nil {
		log.Error("failed to apply purchase", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if len(errKeys) > 0 {
		log.Error("stripe webhook rejected", slog.Any("errors", errKeys))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorKeys(errKeys))
		return
	}

	render.JSON(w, r, response.OKWithData(nil))
}
