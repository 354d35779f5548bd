package auth

import (
	"net/http"

	"github.com/abezemskiy/credkeeper/internal/client/identity"
	"github.com/abezemskiy/credkeeper/internal/client/logger"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/header"

	"github.com/go-resty/resty/v2"
)

// OnBeforeMiddleware - мидлварь для установки токена пользователя в заголовок перед отправкой запроса на сервер.
// Если пользователь еще не выполнил вход, запрос отправляется без заголовка.
func OnBeforeMiddleware(tokens identity.ITokenStorage) resty.RequestMiddleware {
	return func(_ *resty.Client, req *resty.Request) error {
		token := tokens.Get()
		if token == "" {
			return nil
		}
		// Явно установленный заголовок не перезаписываю
		if req.Header.Get(header.Authorization) != "" {
			return nil
		}

		// Устанавливаю токен в заголовок запроса
		req.Header.Set(header.Authorization, header.BearerValue(token))
		return nil
	}
}

// OnAfterMiddleware - мидлварь для сброса токена на случай, если сервер вернет статус 401.
// Статус 401 возникает при истечении срока действия JWT, после чего требуется повторный вход.
func OnAfterMiddleware(tokens identity.ITokenStorage) resty.ResponseMiddleware {
	return func(_ *resty.Client, res *resty.Response) error {
		if res.StatusCode() == http.StatusUnauthorized && tokens.Get() != "" {
			logger.ClientLog.Info("server rejected token, login is required")
			tokens.Reset()
		}
		return nil
	}
}
