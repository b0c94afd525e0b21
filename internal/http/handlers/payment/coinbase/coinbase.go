// Package coinbase обслуживает вебхук Coinbase Commerce. Подтвержденный
// платеж несет почту аккаунта в metadata.custom и код тарифа в имени
// charge. Неуспешные и незнакомые события подтверждаются без изменений.
package coinbase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/speechtospeechai/accounts-service/internal/http/response"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
	"github.com/speechtospeechai/accounts-service/internal/paymentprovider"
)

// Payments описывает интерфейс начисления покупок.
type Payments interface {
	ApplyPurchaseByEmail(ctx context.Context, email, planCode, processor string) ([]string, error)
}

// Handler обрабатывает POST /ipns/coinbase.
type Handler struct {
	log      *slog.Logger
	payments Payments
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, payments Payments) *Handler {
	return &Handler{
		log:      log,
		payments: payments,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.coinbase"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var event paymentprovider.CoinbaseEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	switch event.Event.Type {
	case paymentprovider.CoinbaseChargeConfirmed:
		errKeys, err := h.payments.ApplyPurchaseByEmail(r.Context(),
			event.Event.Data.Metadata.Custom, event.Event.Data.Name,
			models.ProcessorCoinbase)
		if err != nil {
			log.Error("failed to apply purchase", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal service error"))
			return
		}
		if len(errKeys) > 0 {
			log.Error("coinbase webhook rejected",
				slog.String("charge", event.Event.Data.Code),
				slog.Any("errors", errKeys))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ErrorKeys(errKeys))
			return
		}
	case paymentprovider.CoinbaseChargeFailed:
		log.Info("coinbase charge failed",
			slog.String("charge", event.Event.Data.Code))
	default:
		log.Info("coinbase event skipped", slog.String("type", event.Event.Type))
	}

	render.JSON(w, r, response.OKWithData(nil))
}
