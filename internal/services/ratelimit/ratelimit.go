// Package ratelimit реализует политику допуска запросов к speech API:
// учёт анонимных и бескредитных пользователей по отпечатку (IP, User-Agent)
// со скользящим счетчиком в Redis и потолком суммарного размера загрузки.
package ratelimit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/speechtospeechai/accounts-service/internal/config"
	"github.com/speechtospeechai/accounts-service/internal/lib/fingerprint"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

// Причины отказа, совпадают с полями JSON-ответа.
const (
	ReasonLimitExceeded = "limit_exceeded"
	ReasonNoCredits     = "no_credits"
	ReasonRateLimit     = "rate_limit"
)

// Cache описывает методы кеша, нужные счетчикам.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	SetKeepTTL(key string, value any) error
	TTL(key string) (time.Duration, error)
}

// Decision результат проверки: допуск или отказ с причиной.
// IP, CacheKey и Counter попадают в ответ всегда, Until и NextBilling —
// только при отказе. CacheKey — голый отпечаток (md5 от IP и User-Agent);
// префикс rate: носит только ключ в Redis.
type Decision struct {
	Allowed     bool
	Reason      string
	IP          string
	CacheKey    string
	Counter     int
	Until       string
	NextBilling *time.Time
}

type counterEntry struct {
	Counter int `json:"counter"`
}

// Gate применяет политику допуска.
type Gate struct {
	cache Cache
	cfg   config.RateLimit
	log   *slog.Logger
}

// New создает новый экземпляр Gate.
func New(cache Cache, cfg config.RateLimit, log *slog.Logger) *Gate {
	return &Gate{
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

// Check решает, может ли запрос пройти. Порядок проверок:
// активная подписка, потолок размера загрузки, счетчик в окне.
//
// Два одновременных запроса могут прочитать один и тот же счетчик и оба
// его инкрементировать — недосчет на единицу допустим.
func (g *Gate) Check(ip, userAgent string, acc *models.Account, totalSize int64) (Decision, error) {
	const op = "ratelimit.Check"

	key := fingerprint.Make(ip, userAgent)
	d := Decision{IP: ip, CacheKey: key}

	if acc != nil && acc.IsPlanActive {
		d.Allowed = true
		return d, nil
	}

	if acc == nil || acc.Credits <= 0 {
		if totalSize > g.cfg.FilesLimit {
			d.Reason = ReasonLimitExceeded
			d.Until = g.untilText(cacheKey(key))
			return d, nil
		}
	}

	if ip == "" {
		// Запрос без определимого IP не учитывается вовсе. Осознанная
		// дыра в политике, унаследованная от исходной реализации.
		g.log.Warn("rate limit skipped: no client ip", slog.String("user_agent", userAgent))
		d.Allowed = true
		return d, nil
	}

	var entry counterEntry
	found, err := g.cache.Get(cacheKey(key), &entry)
	if err != nil {
		return d, fmt.Errorf("%s: %w", op, err)
	}
	d.Counter = entry.Counter

	if acc != nil {
		if acc.Credits > 0 {
			d.Allowed = true
			return d, nil
		}
		if entry.Counter >= g.cfg.Threshold {
			d.Reason = ReasonNoCredits
			d.Until = g.untilText(cacheKey(key))
			d.NextBilling = acc.NextBillingDate
			return d, nil
		}
	} else if entry.Counter >= g.cfg.Threshold {
		d.Reason = ReasonRateLimit
		d.Until = g.untilText(cacheKey(key))
		return d, nil
	}

	entry.Counter++
	if found {
		// Окно не продлевается: TTL выставляется только при создании ключа.
		err = g.cache.SetKeepTTL(cacheKey(key), entry)
	} else {
		err = g.cache.Set(cacheKey(key), entry, g.cfg.Window)
	}
	if err != nil {
		return d, fmt.Errorf("%s: %w", op, err)
	}

	d.Counter = entry.Counter
	d.Allowed = true
	return d, nil
}

func cacheKey(fp string) string {
	return "rate:" + fp
}

// untilText возвращает человеко-читаемый остаток окна счетчика.
func (g *Gate) untilText(key string) string {
	ttl, err := g.cache.TTL(key)
	if err != nil || ttl <= 0 {
		return ""
	}
	if ttl < time.Minute {
		return fmt.Sprintf("%d seconds", int(ttl.Seconds()))
	}
	return fmt.Sprintf("%d minutes", int(ttl.Minutes()))
}
