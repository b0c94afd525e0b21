// Package accountsservice предоставляет маршруты сервиса аккаунтов.
package accountsservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/speechtospeechai/accounts-service/internal/config"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/account/cancelsubscription"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/account/consume"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/account/deleteaccount"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/account/extraemail"
	ratelimithandler "github.com/speechtospeechai/accounts-service/internal/http/handlers/account/ratelimit"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/account/resendverification"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/auth/login"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/auth/logout"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/auth/lostpassword"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/auth/register"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/auth/restorepassword"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/auth/updatepassword"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/auth/verify"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/logerror"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/pages"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/payment/coinbase"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/payment/paypalorder"
	"github.com/speechtospeechai/accounts-service/internal/http/handlers/payment/stripe"
	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/lib/jwt"
	"github.com/speechtospeechai/accounts-service/internal/paymentprovider"
	accountservice "github.com/speechtospeechai/accounts-service/internal/services/account"
	paymentservice "github.com/speechtospeechai/accounts-service/internal/services/payment"
	ratelimitservice "github.com/speechtospeechai/accounts-service/internal/services/ratelimit"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	jwtMaker jwt.Maker, accounts *accountservice.Service,
	gate *ratelimitservice.Gate, payments *paymentservice.Service,
	paypalClient *paymentprovider.PaypalClient,
	stripeClient *paymentprovider.StripeClient, pagesHandler *pages.Handler) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.RateLimitMiddleware(logger),
		middlewarectx.LoadAccount(jwtMaker, accounts, logger),
	)

	// Жизненный цикл аккаунта: открытые конечные точки
	r.Post("/signup", register.New(logger, accounts).ServeHTTP)
	r.Post("/login", login.New(logger, accounts).ServeHTTP)
	r.Get("/logout", logout.New(logger).ServeHTTP)
	r.Post("/verify", verify.New(logger, accounts).ServeHTTP)
	r.Post("/lost-password", lostpassword.New(logger, accounts).ServeHTTP)
	r.Post("/restore-password", restorepassword.New(logger, accounts).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		// Допуск к обработке и списание кредитов работают и для анонимных
		// клиентов: аккаунт в контексте опционален.
		r.Post("/accounts/rate_limit", ratelimithandler.New(logger, gate).ServeHTTP)
		r.Post("/accounts/consume", consume.New(logger, accounts).ServeHTTP)
		r.Post("/log-error", logerror.New(logger).ServeHTTP)

		// Группа для вошедших пользователей
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAccount(logger))
			r.Post("/accounts/resend-verification", resendverification.New(logger, accounts).ServeHTTP)
			r.Post("/accounts/cancel-subscription", cancelsubscription.New(logger, accounts).ServeHTTP)
			r.Post("/accounts/extra-email", extraemail.New(logger, accounts).ServeHTTP)
			r.Post("/accounts/delete", deleteaccount.New(logger, accounts).ServeHTTP)
		})
	})

	// Смена пароля требует сессии
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RequireAccount(logger))
		r.Post("/update-password", updatepassword.New(logger, accounts).ServeHTTP)
	})

	// Платежные процессоры: заказ PayPal требует сессии для создания,
	// вебхуки Stripe и Coinbase приходят без неё.
	r.Post("/ipns/paypal-order", paypalorder.New(logger, paypalClient, payments).ServeHTTP)
	r.Post("/ipns/stripe", stripe.New(logger, stripeClient, payments, cfg.RootDomain).ServeHTTP)
	r.Post("/ipns/coinbase", coinbase.New(logger, payments).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	// Страницы сайта
	r.Get("/", pagesHandler.ServeHTTP)
	r.Get("/{page}", pagesHandler.ServeHTTP)
}
