package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abezemskiy/credkeeper/internal/client/identity"
	"github.com/abezemskiy/credkeeper/internal/client/identity/auth"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/header"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/token"
	repoIdent "github.com/abezemskiy/credkeeper/internal/repositories/identity"
	"github.com/abezemskiy/credkeeper/internal/server/router"
	"github.com/abezemskiy/credkeeper/internal/server/storage/inmemory"

	"github.com/go-chi/chi/v5"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer - запускает сервер учетных записей с хранилищем в памяти.
func newTestServer(t *testing.T, cfg token.Config, opts ...token.Option) *httptest.Server {
	t.Helper()

	h, err := hasher.New(hasher.DefaultCost)
	require.NoError(t, err)

	ts := httptest.NewServer(router.New(inmemory.NewStore(), h, cfg, opts...))
	t.Cleanup(ts.Close)
	return ts
}

// newTestClient - создает resty клиента с мидлварями для работы с токеном.
func newTestClient(tokens identity.ITokenStorage) *resty.Client {
	client := resty.New()
	client.OnBeforeRequest(auth.OnBeforeMiddleware(tokens))
	client.OnAfterResponse(auth.OnAfterMiddleware(tokens))
	return client
}

func TestAccountScenario(t *testing.T) {
	secret := []byte("scenario secret")
	ts := newTestServer(t, token.Config{SecretKey: secret, TTL: time.Hour})

	tokens := &identity.TokenStorage{}
	client := newTestClient(tokens)
	ctx := context.Background()

	registerURL := ts.URL + router.RegisterPattern
	loginURL := ts.URL + router.LoginPattern
	profileURL := ts.URL + router.ProfilePattern

	regData := &repoIdent.RegisterData{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "s3cret!",
	}

	// Регистрация нового пользователя
	profile, ok, err := Register(ctx, registerURL, regData, client)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "John Doe", profile.Name)
	assert.Equal(t, "john@example.com", profile.Email)

	// Повторная регистрация с тем же email отклоняется
	_, ok, err = Register(ctx, registerURL, &repoIdent.RegisterData{
		Name:     "Other",
		Email:    "john@example.com",
		Password: "another1",
	}, client)
	require.NoError(t, err)
	assert.False(t, ok)

	// Профиль без входа недоступен
	_, err = Profile(ctx, profileURL, client)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	// Неверный пароль
	ok, err = Login(ctx, loginURL, &repoIdent.LoginData{Email: "john@example.com", Password: "wrong-pass"}, client, tokens)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tokens.Get())

	// Неизвестный email
	ok, err = Login(ctx, loginURL, &repoIdent.LoginData{Email: "nobody@example.com", Password: "s3cret!"}, client, tokens)
	require.NoError(t, err)
	assert.False(t, ok)

	// Успешный вход
	ok, err = Login(ctx, loginURL, &repoIdent.LoginData{Email: "john@example.com", Password: "s3cret!"}, client, tokens)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, tokens.Get())

	// Токен содержит идентификатор и email пользователя
	claim, err := token.Verify(tokens.Get(), secret)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claim.UserID)
	assert.Equal(t, "john@example.com", claim.Email)

	// Получение профиля по токену
	got, err := Profile(ctx, profileURL, client)
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	// Ответ с профилем не содержит хэш пароля
	resp, err := client.R().Get(profileURL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body(), &raw))
	assert.Len(t, raw, 3)
	assert.NotContains(t, resp.String(), "$2a$")

	// Токен, подписанный другим ключом, отклоняется и сбрасывается
	forged, err := token.Issue(token.Claim{UserID: profile.ID, Email: profile.Email}, []byte("other secret"), time.Hour)
	require.NoError(t, err)
	tokens.Set(forged)
	_, err = Profile(ctx, profileURL, client)
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
	assert.Empty(t, tokens.Get())
}

func TestExpiredTokenRejected(t *testing.T) {
	// часы сервера переводятся вперед после входа пользователя
	var shift atomic.Int64
	clock := func() time.Time {
		return time.Now().Add(time.Duration(shift.Load()))
	}
	ts := newTestServer(t, token.Config{SecretKey: []byte("expired secret"), TTL: time.Hour}, token.WithClock(clock))

	tokens := &identity.TokenStorage{}
	client := newTestClient(tokens)
	ctx := context.Background()

	_, ok, err := Register(ctx, ts.URL+router.RegisterPattern, &repoIdent.RegisterData{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "s3cret!",
	}, client)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Login(ctx, ts.URL+router.LoginPattern, &repoIdent.LoginData{Email: "john@example.com", Password: "s3cret!"}, client, tokens)
	require.NoError(t, err)
	require.True(t, ok)
	issued := tokens.Get()

	// пока срок действия не истек, токен принимается
	_, err = Profile(ctx, ts.URL+router.ProfilePattern, client)
	require.NoError(t, err)
	assert.Equal(t, issued, tokens.Get())

	// тот же токен после истечения срока действия отклоняется
	shift.Store(int64(2 * time.Hour))
	_, err = Profile(ctx, ts.URL+router.ProfilePattern, client)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Contains(t, err.Error(), "invalid or expired token")
	assert.Empty(t, tokens.Get())

	// токен, выпущенный с отрицательным сроком действия, отклоняется сразу
	expired, err := token.Issue(token.Claim{UserID: "id", Email: "john@example.com"}, []byte("expired secret"), -time.Minute)
	require.NoError(t, err)
	tokens.Set(expired)
	shift.Store(0)
	_, err = Profile(ctx, ts.URL+router.ProfilePattern, client)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestRegisterValidation(t *testing.T) {
	client := resty.New()

	tests := []struct {
		name    string
		regData repoIdent.RegisterData
	}{
		{
			name:    "empty name",
			regData: repoIdent.RegisterData{Email: "john@example.com", Password: "s3cret!"},
		},
		{
			name:    "bad email",
			regData: repoIdent.RegisterData{Name: "John", Email: "john.example.com", Password: "s3cret!"},
		},
		{
			name:    "short password",
			regData: repoIdent.RegisterData{Name: "John", Email: "john@example.com", Password: "12345"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// запрос не должен дойти до сервера
			_, ok, err := Register(context.Background(), "http://wrong.server.address", &tt.regData, client)
			require.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestEmailNormalization(t *testing.T) {
	var got []string
	r := chi.NewRouter()
	r.Post("/register", func(res http.ResponseWriter, req *http.Request) {
		var regData repoIdent.RegisterData
		require.NoError(t, json.NewDecoder(req.Body).Decode(&regData))
		got = append(got, regData.Email)
		res.Header().Set("Content-Type", "application/json")
		res.WriteHeader(http.StatusCreated)
		json.NewEncoder(res).Encode(repoIdent.Profile{ID: "id", Name: regData.Name, Email: regData.Email})
	})
	r.Post("/login", func(res http.ResponseWriter, req *http.Request) {
		var loginData repoIdent.LoginData
		require.NoError(t, json.NewDecoder(req.Body).Decode(&loginData))
		got = append(got, loginData.Email)
		res.Header().Set(header.Authorization, header.BearerValue("some-token"))
		res.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	client := resty.New()
	ctx := context.Background()

	// email с пробелами и в верхнем регистре проходит локальную проверку
	regData := &repoIdent.RegisterData{Name: "John", Email: " John@Example.com ", Password: "s3cret!"}
	profile, ok, err := Register(ctx, ts.URL+"/register", regData, client)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "john@example.com", profile.Email)
	// исходные данные вызывающей стороны не изменяются
	assert.Equal(t, " John@Example.com ", regData.Email)

	tokens := &identity.TokenStorage{}
	ok, err = Login(ctx, ts.URL+"/login", &repoIdent.LoginData{Email: " JOHN@example.com", Password: "s3cret!"}, client, tokens)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"john@example.com", "john@example.com"}, got)
}

func TestServerErrors(t *testing.T) {
	// Хэндлер для имитации ответа сервера с заданным статусом
	statusHandler := func(status int) http.HandlerFunc {
		return func(res http.ResponseWriter, _ *http.Request) {
			http.Error(res, "internal error", status)
		}
	}

	r := chi.NewRouter()
	r.Post("/register", statusHandler(http.StatusInternalServerError))
	r.Post("/login", statusHandler(http.StatusInternalServerError))
	r.Get("/profile", statusHandler(http.StatusNotFound))
	ts := httptest.NewServer(r)
	defer ts.Close()

	client := resty.New()
	ctx := context.Background()
	tokens := &identity.TokenStorage{}

	_, ok, err := Register(ctx, ts.URL+"/register", &repoIdent.RegisterData{
		Name:     "John",
		Email:    "john@example.com",
		Password: "s3cret!",
	}, client)
	assert.False(t, ok)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	assert.Equal(t, "internal error", statusErr.Message)

	ok, err = Login(ctx, ts.URL+"/login", &repoIdent.LoginData{Email: "john@example.com", Password: "s3cret!"}, client, tokens)
	assert.False(t, ok)
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	_, err = Profile(ctx, ts.URL+"/profile", client)
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Status)

	// сервер недоступен
	_, err = Profile(ctx, "http://127.0.0.1:1/profile", client)
	require.Error(t, err)
	assert.False(t, errors.As(err, &statusErr))
}

func TestLoginTokenFromBody(t *testing.T) {
	// сервер возвращает токен только в теле ответа
	r := chi.NewRouter()
	r.Post("/login", func(res http.ResponseWriter, _ *http.Request) {
		res.Header().Set("Content-Type", "application/json")
		res.WriteHeader(http.StatusOK)
		json.NewEncoder(res).Encode(repoIdent.TokenData{Token: "body-token"})
	})
	r.Post("/login-header", func(res http.ResponseWriter, _ *http.Request) {
		res.Header().Set(header.Authorization, header.BearerValue("header-token"))
		res.WriteHeader(http.StatusOK)
	})
	r.Post("/login-empty", func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	client := resty.New()
	loginData := &repoIdent.LoginData{Email: "john@example.com", Password: "s3cret!"}

	tokens := &identity.TokenStorage{}
	ok, err := Login(context.Background(), ts.URL+"/login", loginData, client, tokens)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "body-token", tokens.Get())

	ok, err = Login(context.Background(), ts.URL+"/login-header", loginData, client, tokens)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "header-token", tokens.Get())

	tokens.Reset()
	ok, err = Login(context.Background(), ts.URL+"/login-empty", loginData, client, tokens)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, tokens.Get())
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Status: http.StatusUnauthorized, Message: "invalid or expired token"}
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, strings.Contains(err.Error(), "401"))

	err = &StatusError{Status: http.StatusInternalServerError}
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "bad server status 500", err.Error())
}
