// Package translations отдает языки сайта и каталоги переводов,
// кешируя справочные данные в Redis.
package translations

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

// CatalogTTL время жизни кеша языков и каталогов переводов.
const CatalogTTL = time.Hour

// Repository описывает методы чтения справочника переводов.
type Repository interface {
	ListLanguages(ctx context.Context) ([]*models.Language, error)
	GetTextByLang(ctx context.Context, iso string) (map[string]string, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service читает языки и переводы, подставляя язык по умолчанию
// для неизвестных кодов.
type Service struct {
	repo          Repository
	cache         Cache
	defaultLocale string
	log           *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, defaultLocale string, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		cache:         cache,
		defaultLocale: defaultLocale,
		log:           log,
	}
}

// Languages возвращает все языки сайта, используя кеш или репозиторий.
func (s *Service) Languages(ctx context.Context) ([]*models.Language, error) {
	const op = "translations.Languages"

	var result []*models.Language
	found, err := s.cache.Get("languages", &result)
	if err != nil {
		s.log.Warn("failed to read languages from cache", slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set("languages", result, CatalogTTL); err != nil {
		s.log.Warn("failed to cache languages", slog.Any("err", err))
	}
	return result, nil
}

// Resolve возвращает язык для кода iso, язык по умолчанию для неизвестного.
func (s *Service) Resolve(ctx context.Context, iso string) (*models.Language, error) {
	langs, err := s.Languages(ctx)
	if err != nil {
		return nil, err
	}
	var fallback *models.Language
	for _, l := range langs {
		if l.ISO == iso {
			return l, nil
		}
		if l.ISO == s.defaultLocale {
			fallback = l
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return &models.Language{ISO: s.defaultLocale, Name: "English"}, nil
}

// Catalog возвращает каталог переводов языка, используя кеш или репозиторий.
func (s *Service) Catalog(ctx context.Context, iso string) (map[string]string, error) {
	const op = "translations.Catalog"
	cacheKey := "i18n:" + iso

	result := make(map[string]string)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read catalog from cache", slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetTextByLang(ctx, iso)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(cacheKey, result, CatalogTTL); err != nil {
		s.log.Warn("failed to cache catalog", slog.Any("err", err))
	}
	return result, nil
}

// RequestLanguage определяет язык запроса: cookie lang, затем
// Accept-Language, затем язык по умолчанию.
func (s *Service) RequestLanguage(r *http.Request) string {
	if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
		return c.Value
	}
	if v := parseAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	return s.defaultLocale
}

func parseAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		locale := strings.TrimSpace(strings.Split(part, ";")[0])
		if locale == "" {
			continue
		}
		if i := strings.Index(locale, "-"); i > 0 {
			locale = locale[:i]
		}
		return strings.ToLower(locale)
	}
	return ""
}
