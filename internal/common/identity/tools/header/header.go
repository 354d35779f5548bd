// header - пакет для работы с заголовком Authorization, в котором передается bearer токен.
package header

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	// Authorization - имя заголовка с токеном.
	Authorization = "Authorization"
	// BearerPrefix - обязательный префикс значения заголовка.
	BearerPrefix = "Bearer "
)

var (
	// ErrMissingHeader - заголовок Authorization не установлен.
	ErrMissingHeader = errors.New("missing authorization header")
	// ErrInvalidFormat - значение заголовка не начинается с "Bearer " или токен пустой.
	ErrInvalidFormat = errors.New("invalid authorization header format")
)

// BearerValue - формирует значение заголовка Authorization для токена.
func BearerValue(token string) string {
	return BearerPrefix + token
}

// ParseBearer - извлекает токен из значения заголовка Authorization.
func ParseBearer(value string) (string, error) {
	if value == "" {
		return "", ErrMissingHeader
	}

	// Проверяю, что заголовок начинается с "Bearer "
	if !strings.HasPrefix(value, BearerPrefix) {
		return "", ErrInvalidFormat
	}

	jwtToken := value[len(BearerPrefix):]
	if jwtToken == "" || strings.ContainsAny(jwtToken, " \t") {
		return "", fmt.Errorf("%w, token is empty or contains spaces", ErrInvalidFormat)
	}
	return jwtToken, nil
}

// GetTokenFromHeader - функция для получения токена из заголовка запроса.
func GetTokenFromHeader(req *http.Request) (string, error) {
	return ParseBearer(req.Header.Get(Authorization))
}

// GetTokenFromResponseHeader извлекает JWT-токен из заголовка в ответе сервера.
func GetTokenFromResponseHeader(res *http.Response) (string, error) {
	return ParseBearer(res.Header.Get(Authorization))
}

// GetTokenFromRestyResponseHeader извлекает JWT-токен из заголовка ответа, полученного resty клиентом.
func GetTokenFromRestyResponseHeader(res *resty.Response) (string, error) {
	return ParseBearer(res.Header().Get(Authorization))
}
