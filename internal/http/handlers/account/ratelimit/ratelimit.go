// Package ratelimit реализует проверку допуска запроса на обработку
// файлов: активный план, лимит суммарного размера и счетчик бесплатных
// запросов по отпечатку клиента.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/http/response"
	"github.com/speechtospeechai/accounts-service/internal/lib/fingerprint"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
	"github.com/speechtospeechai/accounts-service/internal/services/ratelimit"
)

// FileData — размер одного файла; клиент передает размер строкой.
type FileData struct {
	Size string `json:"size"`
}

// Request — список файлов предстоящей обработки.
type Request struct {
	FilesData []FileData `json:"files_data"`
}

// Gate описывает интерфейс политики допуска.
type Gate interface {
	Check(ip, userAgent string, acc *models.Account, totalSize int64) (ratelimit.Decision, error)
}

// Handler обрабатывает POST /api/accounts/rate_limit.
type Handler struct {
	log  *slog.Logger
	gate Gate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, gate Gate) *Handler {
	return &Handler{
		log:  log,
		gate: gate,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.ratelimit"

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

	var totalSize int64
	for _, fd := range req.FilesData {
		size, err := strconv.ParseInt(fd.Size, 10, 64)
		if err != nil {
			log.Error("failed to parse file size", sl.Err(err), slog.String("size", fd.Size))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid file size"))
			return
		}
		totalSize += size
	}

	acc := middlewarectx.FromContext(r.Context())
	ip := fingerprint.ClientIP(r)

	decision, err := h.gate.Check(ip, r.UserAgent(), acc, totalSize)
	if err != nil {
		log.Error("rate limit check failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	body := map[string]any{
		"ip":        decision.IP,
		"cache_key": decision.CacheKey,
		"counter":   decision.Counter,
	}
	if decision.Allowed {
		body["status"] = true
		render.JSON(w, r, body)
		return
	}

	// Отказ: вместо общего status выставляется флаг причины.
	body[decision.Reason] = true
	if decision.Until != "" {
		body["until"] = decision.Until
	}
	if decision.NextBilling != nil {
		body["next_billing"] = decision.NextBilling.Format("2006-01-02")
	}
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, body)
}
