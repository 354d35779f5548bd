// router - пакет с маршрутизацией http запросов к серверу.
package router

import (
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/token"
	"github.com/abezemskiy/credkeeper/internal/server/handlers"
	"github.com/abezemskiy/credkeeper/internal/server/identity/auth"
	"github.com/abezemskiy/credkeeper/internal/server/logger"
	"github.com/abezemskiy/credkeeper/internal/server/metrics"
	"github.com/abezemskiy/credkeeper/internal/server/storage"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	RegisterPattern = "/api/user/register" // паттерн api для регистрации пользователя
	LoginPattern    = "/api/user/login"    // паттерн api для входа пользователя
	ProfilePattern  = "/api/user/profile"  // паттерн api для получения профиля пользователя
	PingPattern     = "/ping"              // паттерн для проверки доступности хранилища
	MetricsPattern  = "/metrics"           // паттерн для выгрузки метрик Prometheus
)

// New - дирижирует обработку http запросов к серверу.
// Защищенные ресурсы доступны только после проверки токена в auth.Middleware.
// opts передаются при выпуске и проверке токенов, например token.WithClock.
func New(stor storage.IServerStorage, h *hasher.Hasher, cfg token.Config, opts ...token.Option) chi.Router {
	r := chi.NewRouter()
	guard := auth.Middleware(cfg, opts...)

	r.Post(RegisterPattern, logger.RequestLogger(metrics.Track(metrics.Registrations, handlers.RegisterHandler(stor, h))))
	r.Post(LoginPattern, logger.RequestLogger(metrics.Track(metrics.Logins, handlers.LoginHandler(stor, h, cfg, opts...))))
	r.Get(ProfilePattern, logger.RequestLogger(guard(handlers.ProfileHandler(stor))))
	r.Get(PingPattern, logger.RequestLogger(handlers.PingHandler(stor)))
	r.Handle(MetricsPattern, promhttp.Handler())

	// Определяем маршрут по умолчанию для некорректных запросов
	r.NotFound(logger.RequestLogger(handlers.HandleOtherRequest()))

	return r
}
