// metrics - пакет с метриками Prometheus для регистрации, входа и проверки доступа.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения метки status.
const (
	StatusSuccess  = "success"  // запрос выполнен
	StatusRejected = "rejected" // запрос отклонен, ответ 4xx
	StatusError    = "error"    // внутренняя ошибка, ответ 5xx
)

// Registrations - счетчик запросов на регистрацию.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "credkeeper_registrations_total",
		Help: "Total number of registration requests",
	},
	[]string{"status"},
)

// Logins - счетчик запросов на вход.
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "credkeeper_logins_total",
		Help: "Total number of login requests",
	},
	[]string{"status"},
)

// AccessRejections - счетчик отказов в доступе к защищенным ресурсам по причине отказа.
var AccessRejections = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "credkeeper_access_rejections_total",
		Help: "Total number of requests rejected by the access guard",
	},
	[]string{"reason"},
)

// HashDuration - время вычисления хэша пароля.
var HashDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "credkeeper_password_hash_duration_seconds",
		Help:    "Password hashing duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// RegisterMetrics - регистрирует метрики пакета в реестре. Вызывается один раз при старте сервера.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Registrations)
	reg.MustRegister(Logins)
	reg.MustRegister(AccessRejections)
	reg.MustRegister(HashDuration)
}

// RecordAccessRejection - увеличивает счетчик отказов в доступе.
func RecordAccessRejection(reason string) {
	AccessRejections.WithLabelValues(reason).Inc()
}

// RecordHashDuration - фиксирует время вычисления хэша пароля.
func RecordHashDuration(d time.Duration) {
	HashDuration.Observe(d.Seconds())
}

// StatusFromCode - переводит статус http ответа в значение метки status.
func StatusFromCode(code int) string {
	switch {
	case code >= http.StatusInternalServerError:
		return StatusError
	case code >= http.StatusBadRequest:
		return StatusRejected
	default:
		return StatusSuccess
	}
}

// statusWriter - запоминает статус ответа.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Track - middleware, которая увеличивает counter с меткой status по итогу обработки запроса.
func Track(counter *prometheus.CounterVec, h http.HandlerFunc) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		sw := &statusWriter{ResponseWriter: res, status: http.StatusOK}
		h(sw, req)
		counter.WithLabelValues(StatusFromCode(sw.status)).Inc()
	}
}
