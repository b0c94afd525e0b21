// Package logerror принимает отчеты об ошибках клиентского JS и пишет их
// в журнал сервиса. Пустое тело допустимо, битый JSON отклоняется.
package logerror

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/http/response"
	"github.com/speechtospeechai/accounts-service/internal/lib/fingerprint"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
)

// Handler обрабатывает POST /api/log-error.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.logerror"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var report map[string]any
	err := json.NewDecoder(r.Body).Decode(&report)
	if err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	attrs := []any{
		slog.String("ip", fingerprint.ClientIP(r)),
		slog.String("user_agent", r.UserAgent()),
	}
	if acc := middlewarectx.FromContext(r.Context()); acc != nil {
		attrs = append(attrs, slog.String("account_uid", acc.UID))
	}
	if len(report) > 0 {
		attrs = append(attrs, slog.Any("report", report))
	}
	log.Error("client error", attrs...)

	render.JSON(w, r, map[string]string{"status": "logged"})
}
