// auth - пакет, который реализует middleware для аутентификации пользователя по bearer токену.
// Это единственное место, где входящий запрос проходит аутентификацию.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/header"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/token"
	"github.com/abezemskiy/credkeeper/internal/server/logger"
	"github.com/abezemskiy/credkeeper/internal/server/metrics"

	"go.uber.org/zap"
)

type contextKey string

// ClaimKey - ключ для установки данных пользователя из токена в контекст.
const ClaimKey = contextKey("claim")

// UnauthorizedMessage - единый ответ клиенту при отсутствии или недействительности токена.
// Причина отказа не раскрывается клиенту и попадает только в лог.
const UnauthorizedMessage = "invalid or expired token"

// Reason - причина отказа в доступе.
type Reason string

const (
	// NoToken - заголовок Authorization отсутствует или не содержит bearer токен.
	NoToken Reason = "no_token"
	// InvalidToken - токен не прошел проверку (формат, подпись, срок действия).
	InvalidToken Reason = "invalid_token"
)

// Rejection - отказ в доступе к защищенному ресурсу.
type Rejection struct {
	Reason Reason
	Err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("request rejected, %s: %v", r.Reason, r.Err)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Authorize - извлекает токен из заголовка запроса и проверяет его.
// В случае отказа возвращается ошибка типа *Rejection.
func Authorize(req *http.Request, secret []byte, opts ...token.Option) (token.Claim, error) {
	getToken, err := header.GetTokenFromHeader(req)
	if err != nil {
		return token.Claim{}, &Rejection{Reason: NoToken, Err: err}
	}

	claim, err := token.Verify(getToken, secret, opts...)
	if err != nil {
		return token.Claim{}, &Rejection{Reason: InvalidToken, Err: err}
	}
	return claim, nil
}

// ClaimFromContext - возвращает данные пользователя, установленные Middleware.
func ClaimFromContext(ctx context.Context) (token.Claim, bool) {
	claim, ok := ctx.Value(ClaimKey).(token.Claim)
	return claim, ok
}

// Middleware - проверяет JWT входящих запросов к серверу.
// Позволит установить доступ к ресурсам только для аутентифицированных пользователей.
// Из полученного токена извлекаются данные пользователя и устанавливаются в контекст.
func Middleware(cfg token.Config, opts ...token.Option) func(http.Handler) http.HandlerFunc {
	return func(h http.Handler) http.HandlerFunc {
		return func(res http.ResponseWriter, req *http.Request) {
			claim, err := Authorize(req, cfg.SecretKey, opts...)
			// В случае отказа возвращаю статус 401 - пользователь не аутентифицирован.
			if err != nil {
				logger.ServerLog.Info("request rejected", zap.String("address", req.URL.String()), zap.Error(err))
				var rej *Rejection
				if errors.As(err, &rej) {
					metrics.RecordAccessRejection(string(rej.Reason))
				}
				http.Error(res, UnauthorizedMessage, http.StatusUnauthorized)
				return
			}

			// В случае успешной проверки устанавливаю данные пользователя в контекст для дальнейшей обработки.
			ctx := context.WithValue(req.Context(), ClaimKey, claim)

			// вызываю основной обработчик
			h.ServeHTTP(res, req.WithContext(ctx))
		}
	}
}
