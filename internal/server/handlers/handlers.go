package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/checker"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/header"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/id"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/token"
	"github.com/abezemskiy/credkeeper/internal/repositories/identity"
	"github.com/abezemskiy/credkeeper/internal/server/identity/auth"
	"github.com/abezemskiy/credkeeper/internal/server/logger"
	"github.com/abezemskiy/credkeeper/internal/server/metrics"
	"github.com/abezemskiy/credkeeper/internal/server/storage"

	"go.uber.org/zap"
)

// badCredentialsMessage - единый ответ на неизвестный email и неверный пароль.
const badCredentialsMessage = "invalid email or password"

// writeJSON - отправляет клиенту ответ в формате JSON с заданным статусом.
func writeJSON(res http.ResponseWriter, req *http.Request, status int, v interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		logger.ServerLog.Error("encoding response error", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
	}
}

// Register - хэндлер для регистрации пользователя в системе. Пароль сохраняется только в виде хэша.
// В случае успешной регистрации возвращается статус 201 и профиль пользователя.
func Register(res http.ResponseWriter, req *http.Request, ident identity.Identifier, h *hasher.Hasher) {
	defer req.Body.Close()

	var regData identity.RegisterData
	if err := json.NewDecoder(req.Body).Decode(&regData); err != nil {
		logger.ServerLog.Error("failed to parse register data to structer", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		http.Error(res, fmt.Errorf("failed to parse register data to structer, %w", err).Error(), http.StatusBadRequest)
		return
	}
	regData.Email = checker.NormalizeEmail(regData.Email)

	// Проверяю корректность имени
	if ok := checker.CheckName(regData.Name); !ok {
		logger.ServerLog.Error("name is not valid", zap.String("address", req.URL.String()))
		http.Error(res, "name is not valid", http.StatusBadRequest)
		return
	}
	// Проверяю корректность email
	if ok := checker.CheckEmail(regData.Email); !ok {
		logger.ServerLog.Error("email is not valid", zap.String("address", req.URL.String()))
		http.Error(res, "email is not valid", http.StatusBadRequest)
		return
	}
	// Проверяю корректность пароля
	if ok := checker.CheckPassword(regData.Password); !ok {
		logger.ServerLog.Error("password is not valid", zap.String("address", req.URL.String()))
		http.Error(res, fmt.Sprintf("password must be at least %d characters", checker.MinPasswordLen), http.StatusBadRequest)
		return
	}

	// Проверяю, что пользователь с таким email ещё не зарегистрирован
	_, exists, err := ident.FindByEmail(req.Context(), regData.Email)
	if err != nil {
		logger.ServerLog.Error("find account error", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		http.Error(res, "register user error", http.StatusInternalServerError)
		return
	}
	if exists {
		logger.ServerLog.Info("account already exists", zap.String("address", req.URL.String()))
		http.Error(res, fmt.Sprintf("account %s already exists", regData.Email), http.StatusBadRequest)
		return
	}

	// Хэширую пароль
	start := time.Now()
	hash, err := h.Hash(regData.Password)
	metrics.RecordHashDuration(time.Since(start))
	if err != nil {
		logger.ServerLog.Error("hash password error", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		if errors.Is(err, hasher.ErrInvalidInput) {
			http.Error(res, "password is not valid", http.StatusBadRequest)
			return
		}
		http.Error(res, "register user error", http.StatusInternalServerError)
		return
	}

	// вычисляю идентификатор пользователя
	accountID, err := id.GenerateID()
	if err != nil {
		logger.ServerLog.Error("failed to generate id", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		http.Error(res, "register user error", http.StatusInternalServerError)
		return
	}

	account := identity.Account{
		ID:    accountID,
		Name:  regData.Name,
		Email: regData.Email,
		Hash:  hash,
	}
	// Регистрирую пользователя в хранилище
	err = ident.Save(req.Context(), account)
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateAccount) {
			// пользователь с данным email был зарегистрирован параллельным запросом
			logger.ServerLog.Info("account already exists", zap.String("address", req.URL.String()))
			http.Error(res, fmt.Sprintf("account %s already exists", regData.Email), http.StatusBadRequest)
		} else {
			logger.ServerLog.Error("register user error", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
			http.Error(res, "register user error", http.StatusInternalServerError)
		}
		return
	}

	logger.ServerLog.Debug("successful register account", zap.String("id", account.ID))
	writeJSON(res, req, http.StatusCreated, identity.ProfileOf(account))
}

// RegisterHandler - обертка над функцией Register.
func RegisterHandler(ident identity.Identifier, h *hasher.Hasher) http.HandlerFunc {
	fn := func(res http.ResponseWriter, req *http.Request) {
		Register(res, req, ident, h)
	}
	return fn
}

// Login - хэндлер для входа пользователя в систему. При успешной проверке пароля выпускается токен,
// который устанавливается в заголовок Authorization и возвращается в теле ответа.
func Login(res http.ResponseWriter, req *http.Request, ident identity.Identifier, h *hasher.Hasher, cfg token.Config, opts ...token.Option) {
	defer req.Body.Close()

	var loginData identity.LoginData
	if err := json.NewDecoder(req.Body).Decode(&loginData); err != nil {
		logger.ServerLog.Error("failed to parse login data to structer", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		http.Error(res, fmt.Errorf("failed to parse login data to structer, %w", err).Error(), http.StatusBadRequest)
		return
	}
	loginData.Email = checker.NormalizeEmail(loginData.Email)

	if loginData.Email == "" || loginData.Password == "" {
		logger.ServerLog.Info("empty login data", zap.String("address", req.URL.String()))
		http.Error(res, badCredentialsMessage, http.StatusBadRequest)
		return
	}

	// Получаю учетную запись пользователя из хранилища
	account, ok, err := ident.FindByEmail(req.Context(), loginData.Email)
	if err != nil {
		// внутренняя ошибка сервера
		logger.ServerLog.Error("find account error", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		http.Error(res, "login user error", http.StatusInternalServerError)
		return
	}
	if !ok {
		// не найдено записей по представленному email. Пользователь не зарегистрирован.
		logger.ServerLog.Info("account not found", zap.String("address", req.URL.String()))
		http.Error(res, badCredentialsMessage, http.StatusBadRequest)
		return
	}

	// проверяю пароль по хэшу, сохраненному в хранилище
	match, err := h.Verify(loginData.Password, account.Hash)
	if err != nil {
		logger.ServerLog.Error("verify password error", zap.String("address", req.URL.String()), zap.String("id", account.ID), zap.String("error", error.Error(err)))
		http.Error(res, "login user error", http.StatusInternalServerError)
		return
	}
	if !match {
		logger.ServerLog.Info("password is wrong", zap.String("address", req.URL.String()), zap.String("id", account.ID))
		http.Error(res, badCredentialsMessage, http.StatusBadRequest)
		return
	}

	// пересчитываю хэш, если стоимость хэширования была повышена
	rehashPassword(req, ident, h, account, loginData.Password)

	// При успешном входе создаю токен
	tok, err := token.Issue(token.Claim{UserID: account.ID, Email: account.Email}, cfg.SecretKey, cfg.TTL, opts...)
	if err != nil {
		logger.ServerLog.Error("build JWT error", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		http.Error(res, "login user error", http.StatusInternalServerError)
		return
	}

	// устанавливаю токен в заголовок
	res.Header().Set(header.Authorization, header.BearerValue(tok))
	writeJSON(res, req, http.StatusOK, identity.TokenData{Token: tok})
}

// rehashPassword - обновляет хэш пароля с текущей стоимостью хэширования. Ошибки не прерывают вход пользователя.
func rehashPassword(req *http.Request, ident identity.Identifier, h *hasher.Hasher, account identity.Account, password string) {
	need, err := h.NeedsRehash(account.Hash)
	if err != nil || !need {
		return
	}
	hash, err := h.Hash(password)
	if err != nil {
		logger.ServerLog.Warn("rehash password error", zap.String("id", account.ID), zap.String("error", error.Error(err)))
		return
	}
	if _, err := ident.UpdateHash(req.Context(), account.ID, hash); err != nil {
		logger.ServerLog.Warn("update password hash error", zap.String("id", account.ID), zap.String("error", error.Error(err)))
		return
	}
	logger.ServerLog.Debug("password hash upgraded", zap.String("id", account.ID), zap.Int("cost", h.Cost()))
}

// LoginHandler - обертка над функцией Login.
func LoginHandler(ident identity.Identifier, h *hasher.Hasher, cfg token.Config, opts ...token.Option) http.HandlerFunc {
	fn := func(res http.ResponseWriter, req *http.Request) {
		Login(res, req, ident, h, cfg, opts...)
	}
	return fn
}

// Profile - хэндлер для получения профиля аутентифицированного пользователя.
// Должен вызываться только после auth.Middleware.
func Profile(res http.ResponseWriter, req *http.Request, ident identity.Identifier) {
	// получаю данные пользователя из контекста
	claim, ok := auth.ClaimFromContext(req.Context())
	if !ok {
		logger.ServerLog.Error("user claim not found in context", zap.String("address", req.URL.String()))
		http.Error(res, "user claim not found in context", http.StatusInternalServerError)
		return
	}

	account, ok, err := ident.FindByID(req.Context(), claim.UserID)
	if err != nil {
		logger.ServerLog.Error("find account error", zap.String("address", req.URL.String()), zap.String("error", error.Error(err)))
		http.Error(res, "get profile error", http.StatusInternalServerError)
		return
	}
	if !ok {
		logger.ServerLog.Info("account not found", zap.String("address", req.URL.String()), zap.String("id", claim.UserID))
		http.Error(res, "account not found", http.StatusNotFound)
		return
	}

	writeJSON(res, req, http.StatusOK, identity.ProfileOf(account))
}

// ProfileHandler - обертка над функцией Profile.
func ProfileHandler(ident identity.Identifier) http.HandlerFunc {
	fn := func(res http.ResponseWriter, req *http.Request) {
		Profile(res, req, ident)
	}
	return fn
}

// PingHandler - проверка доступности хранилища.
func PingHandler(p storage.Pinger) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if err := p.Ping(req.Context()); err != nil {
			logger.ServerLog.Error("storage ping error", zap.String("error", error.Error(err)))
			http.Error(res, "storage is unavailable", http.StatusInternalServerError)
			return
		}
		res.WriteHeader(http.StatusOK)
	}
}

// HandleOtherRequest - обработка нераспознанных http запросов к сервису.
func HandleOtherRequest() http.HandlerFunc {
	return func(res http.ResponseWriter, _ *http.Request) {
		res.Header().Set("Content-Type", "text/plain")
		res.WriteHeader(http.StatusNotFound)
	}
}
