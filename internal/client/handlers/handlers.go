package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/abezemskiy/credkeeper/internal/client/identity"
	"github.com/abezemskiy/credkeeper/internal/client/logger"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/checker"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/header"
	repoIdent "github.com/abezemskiy/credkeeper/internal/repositories/identity"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrUnauthorized - сервер отклонил токен или токен отсутствует, требуется повторный вход.
var ErrUnauthorized = errors.New("unauthorized, login is required")

// StatusError - ошибка, возникающая когда сервер вернул неожиданный статус.
type StatusError struct {
	Status  int    // статус ответа сервера
	Message string // тело ответа сервера
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bad server status %d", e.Status)
	}
	return fmt.Sprintf("bad server status %d, %s", e.Status, e.Message)
}

// Unwrap - позволяет проверить ответ 401 через errors.Is(err, ErrUnauthorized).
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

func newStatusError(resp *resty.Response) *StatusError {
	return &StatusError{
		Status:  resp.StatusCode(),
		Message: strings.TrimSpace(resp.String()),
	}
}

// Register - хэндлер для регистрации нового пользователя на сервере.
// Возвращает false без ошибки, если сервер отклонил регистрацию, например email уже занят.
func Register(ctx context.Context, url string, regData *repoIdent.RegisterData, client *resty.Client) (repoIdent.Profile, bool, error) {
	// email приводится к тому же виду, что и на сервере
	body := *regData
	body.Email = checker.NormalizeEmail(body.Email)
	regData = &body

	// проверяю корректность данных до отправки на сервер
	if ok := checker.CheckName(regData.Name); !ok {
		return repoIdent.Profile{}, false, fmt.Errorf("name is not valid")
	}
	if ok := checker.CheckEmail(regData.Email); !ok {
		return repoIdent.Profile{}, false, fmt.Errorf("email is not valid")
	}
	if ok := checker.CheckPassword(regData.Password); !ok {
		return repoIdent.Profile{}, false, fmt.Errorf("password must be at least %d characters", checker.MinPasswordLen)
	}

	var profile repoIdent.Profile
	// Отправляю запрос регистрации пользователя на сервер
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(*regData).
		SetResult(&profile).
		Post(url)

	// Не удалось установить соединение с сервером или другая ошибка подобного рода.
	if err != nil {
		logger.ClientLog.Error("sending registration request failed", zap.String("error", error.Error(err)))
		return repoIdent.Profile{}, false, fmt.Errorf("sending registration request failed, %w", err)
	}

	// пользователь с такими данными уже зарегистрирован или данные отклонены сервером
	if resp.StatusCode() == http.StatusBadRequest {
		logger.ClientLog.Error("registration rejected by server", zap.String("reason", strings.TrimSpace(resp.String())))
		return repoIdent.Profile{}, false, nil
	}

	if resp.StatusCode() != http.StatusCreated {
		logger.ClientLog.Error("bad server status", zap.Int("status", resp.StatusCode()))
		return repoIdent.Profile{}, false, newStatusError(resp)
	}

	logger.ClientLog.Info("new user successfully has been registered", zap.String("id", profile.ID))
	return profile, true, nil
}

// Login - хэндлер для входа пользователя. После успешного входа токен сохраняется в tokens
// и дальше устанавливается в запросы мидлварью auth.OnBeforeMiddleware.
// Возвращает false без ошибки, если email или пароль неверные.
func Login(ctx context.Context, url string, loginData *repoIdent.LoginData, client *resty.Client,
	tokens identity.ITokenStorage) (bool, error) {

	body := *loginData
	body.Email = checker.NormalizeEmail(body.Email)

	var tokenData repoIdent.TokenData
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&tokenData).
		Post(url)

	if err != nil {
		logger.ClientLog.Error("sending login request failed", zap.String("error", error.Error(err)))
		return false, fmt.Errorf("sending login request failed, %w", err)
	}

	// Неверный email или пароль
	if resp.StatusCode() == http.StatusBadRequest {
		logger.ClientLog.Error("login rejected by server", zap.String("reason", strings.TrimSpace(resp.String())))
		return false, nil
	}

	if resp.StatusCode() != http.StatusOK {
		logger.ClientLog.Error("bad server status", zap.Int("status", resp.StatusCode()))
		return false, newStatusError(resp)
	}

	// Получаю токен из заголовка, который отправил сервер. Если заголовка нет, беру токен из тела ответа.
	token, err := header.GetTokenFromRestyResponseHeader(resp)
	if err != nil {
		token = tokenData.Token
	}
	if token == "" {
		logger.ClientLog.Error("failed to get JWT from server responce")
		return false, fmt.Errorf("failed to get JWT from server responce, %w", err)
	}

	tokens.Set(token)
	logger.ClientLog.Info("user successfully logged in")
	return true, nil
}

// Profile - хэндлер для получения профиля пользователя. Требует предварительного входа.
func Profile(ctx context.Context, url string, client *resty.Client) (repoIdent.Profile, error) {
	var profile repoIdent.Profile
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&profile).
		Get(url)

	if err != nil {
		logger.ClientLog.Error("sending profile request failed", zap.String("error", error.Error(err)))
		return repoIdent.Profile{}, fmt.Errorf("sending profile request failed, %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		logger.ClientLog.Error("bad server status", zap.Int("status", resp.StatusCode()))
		return repoIdent.Profile{}, newStatusError(resp)
	}
	return profile, nil
}
