// Package pages отдает HTML-страницы сайта. Каждая страница получает
// язык запроса, каталог переводов, версию статики и, для вошедшего
// пользователя, его API-ключ.
package pages

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/lib/sl"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Translations описывает интерфейс определения языка и каталога переводов.
type Translations interface {
	RequestLanguage(r *http.Request) string
	Resolve(ctx context.Context, iso string) (*models.Language, error)
	Catalog(ctx context.Context, iso string) (map[string]string, error)
	Languages(ctx context.Context) ([]*models.Language, error)
}

// pageNames — страницы сайта и их шаблоны. Запросы вне списка получают 404.
var pageNames = map[string]string{
	"":                 "index.html",
	"pricing":          "pricing.html",
	"account":          "account.html",
	"login":            "login.html",
	"signup":           "signup.html",
	"verify":           "verify.html",
	"lost-password":    "lost-password.html",
	"restore-password": "restore-password.html",
}

// PageData — данные, доступные каждому шаблону.
type PageData struct {
	Lang           string
	LangName       string
	Languages      []*models.Language
	T              map[string]string
	ScriptsVersion string
	IsAuthorized   bool
	IsConfirm      bool
	Email          string
	APIKey         string
	Query          map[string]string
}

// Handler рендерит страницы сайта.
type Handler struct {
	log            *slog.Logger
	translations   Translations
	templates      *template.Template
	scriptsVersion string
}

// New парсит шаблоны из templatesDir и создает новый экземпляр Handler.
func New(log *slog.Logger, translations Translations, templatesDir, scriptsVersion string) (*Handler, error) {
	tmpl, err := template.ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &Handler{
		log:            log,
		translations:   translations,
		templates:      tmpl,
		scriptsVersion: scriptsVersion,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pages"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page := chi.URLParam(r, "page")
	name, ok := pageNames[page]
	if !ok {
		http.NotFound(w, r)
		return
	}

	iso := h.translations.RequestLanguage(r)
	lang, err := h.translations.Resolve(r.Context(), iso)
	if err != nil {
		log.Error("failed to resolve language", sl.Err(err))
		http.Error(w, "internal service error", http.StatusInternalServerError)
		return
	}
	catalog, err := h.translations.Catalog(r.Context(), lang.ISO)
	if err != nil {
		log.Error("failed to load translations", sl.Err(err))
		http.Error(w, "internal service error", http.StatusInternalServerError)
		return
	}
	languages, err := h.translations.Languages(r.Context())
	if err != nil {
		log.Error("failed to load languages", sl.Err(err))
		http.Error(w, "internal service error", http.StatusInternalServerError)
		return
	}

	data := PageData{
		Lang:           lang.ISO,
		LangName:       lang.Name,
		Languages:      languages,
		T:              catalog,
		ScriptsVersion: h.scriptsVersion,
		Query:          flattenQuery(r),
	}
	if acc := middlewarectx.FromContext(r.Context()); acc != nil {
		data.IsAuthorized = true
		data.IsConfirm = acc.IsConfirm
		data.Email = acc.Email
		// API-ключ уходит в страницу только для вошедшего пользователя.
		data.APIKey = acc.APIToken
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render page", sl.Err(err), slog.String("page", name))
	}
}

// flattenQuery отдает первые значения query-параметров: страницам
// восстановления пароля нужен token из ссылки в письме.
func flattenQuery(r *http.Request) map[string]string {
	out := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
