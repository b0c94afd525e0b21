// Package paypalorder реализует серверную часть PayPal-оплаты: создание
// заказа по коду тарифа и захват одобренного заказа с начислением покупки.
// custom_id заказа несет UID аккаунта и код тарифа через "|".
package paypalorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/http/response"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
	"github.com/speechtospeechai/accounts-service/internal/paymentprovider"
)

// Request — код тарифа для создания заказа либо order_id для захвата.
type Request struct {
	Plan    string `json:"plan"`
	OrderID string `json:"order_id"`
}

// Provider описывает методы клиента PayPal.
type Provider interface {
	CreateOrder(ctx context.Context, price int, customID string) (*paymentprovider.PaypalOrderResponse, error)
	CaptureOrder(ctx context.Context, orderID string) (*paymentprovider.PaypalCaptureResponse, error)
}

// Payments описывает интерфейс начисления покупок.
type Payments interface {
	GetPlan(ctx context.Context, codeName string) (*models.Plan, []string, error)
	ApplyPurchaseByUID(ctx context.Context, accountUID, planCode, processor, paymentToken, cardToken string) ([]string, error)
}

// Handler обрабатывает POST /ipns/paypal-order.
type Handler struct {
	log      *slog.Logger
	provider Provider
	payments Payments
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, provider Provider, payments Payments) *Handler {
	return &Handler{
		log:      log,
		provider: provider,
		payments: payments,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paypalorder"

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

	if req.OrderID != "" {
		h.capture(w, r, log, req.OrderID)
		return
	}
	h.create(w, r, log, req.Plan)
}

// create создает заказ PayPal на цену тарифа.
func (h *Handler) create(w http.ResponseWriter, r *http.Request, log *slog.Logger, planCode string) {
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

	customID := acc.UID + "|" + plan.CodeName
	order, err := h.provider.CreateOrder(r.Context(), plan.Price, customID)
	if err != nil {
		log.Error("failed to create paypal order", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	log.Info("paypal order created",
		slog.String("order_id", order.ID),
		slog.String("plan", plan.CodeName))
	render.JSON(w, r, map[string]any{"id": order.ID})
}

// capture захватывает одобренный заказ и начисляет покупку по custom_id.
func (h *Handler) capture(w http.ResponseWriter, r *http.Request, log *slog.Logger, orderID string) {
	captured, err := h.provider.CaptureOrder(r.Context(), orderID)
	if err != nil {
		log.Error("failed to capture paypal order", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	accountUID, planCode, ok := strings.Cut(captured.CustomID(), "|")
	if !ok {
		log.Error("capture without custom_id", slog.String("order_id", orderID))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing custom_id"))
		return
	}

	errKeys, err := h.payments.ApplyPurchaseByUID(r.Context(), accountUID, planCode,
		models.ProcessorPaypal, orderID, "")
	if err != nil {
		log.Error("failed to apply purchase", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if len(errKeys) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ErrorKeys(errKeys))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"order_id": orderID,
		"status":   captured.Status,
	}))
}
