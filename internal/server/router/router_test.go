package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/header"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/token"
	"github.com/abezemskiy/credkeeper/internal/repositories/identity"
	"github.com/abezemskiy/credkeeper/internal/server/metrics"
	"github.com/abezemskiy/credkeeper/internal/server/storage/inmemory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h, err := hasher.New(hasher.MinCost)
	require.NoError(t, err)
	return New(inmemory.NewStore(), h, token.Config{SecretKey: []byte("router key"), TTL: time.Hour})
}

func do(t *testing.T, r http.Handler, method, target string, body interface{}, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	// регистрация
	w := do(t, r, http.MethodPost, RegisterPattern, identity.RegisterData{Name: "John Doe", Email: "john@example.com", Password: "123456"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	// вход
	w = do(t, r, http.MethodPost, LoginPattern, identity.LoginData{Email: "john@example.com", Password: "123456"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	bearer := w.Header().Get("Authorization")
	_, err := header.ParseBearer(bearer)
	require.NoError(t, err)

	// профиль доступен только с токеном
	w = do(t, r, http.MethodGet, ProfilePattern, nil, bearer)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, ProfilePattern, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// доступность хранилища
	w = do(t, r, http.MethodGet, PingPattern, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// неизвестный маршрут
	w = do(t, r, http.MethodGet, "/api/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// неверный метод
	w = do(t, r, http.MethodGet, RegisterPattern, nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsRoutes(t *testing.T) {
	r := newTestRouter(t)

	registered := testutil.ToFloat64(metrics.Registrations.WithLabelValues(metrics.StatusSuccess))
	rejectedLogins := testutil.ToFloat64(metrics.Logins.WithLabelValues(metrics.StatusRejected))
	noToken := testutil.ToFloat64(metrics.AccessRejections.WithLabelValues("no_token"))

	w := do(t, r, http.MethodPost, RegisterPattern, identity.RegisterData{Name: "Jane", Email: "jane@example.com", Password: "123456"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, LoginPattern, identity.LoginData{Email: "jane@example.com", Password: "wrong-pass"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, ProfilePattern, nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, registered+1, testutil.ToFloat64(metrics.Registrations.WithLabelValues(metrics.StatusSuccess)))
	assert.Equal(t, rejectedLogins+1, testutil.ToFloat64(metrics.Logins.WithLabelValues(metrics.StatusRejected)))
	assert.Equal(t, noToken+1, testutil.ToFloat64(metrics.AccessRejections.WithLabelValues("no_token")))

	// метрики выгружаются в формате Prometheus
	w = do(t, r, http.MethodGet, MetricsPattern, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenOptions(t *testing.T) {
	h, err := hasher.New(hasher.MinCost)
	require.NoError(t, err)

	now := time.Now()
	current := now
	clock := func() time.Time { return current }
	r := New(inmemory.NewStore(), h, token.Config{SecretKey: []byte("router key"), TTL: time.Minute}, token.WithClock(clock))

	w := do(t, r, http.MethodPost, RegisterPattern, identity.RegisterData{Name: "John Doe", Email: "john@example.com", Password: "123456"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, LoginPattern, identity.LoginData{Email: "john@example.com", Password: "123456"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	bearer := w.Header().Get("Authorization")

	w = do(t, r, http.MethodGet, ProfilePattern, nil, bearer)
	assert.Equal(t, http.StatusOK, w.Code)

	// часы переведены за пределы срока действия токена
	current = now.Add(2 * time.Minute)
	w = do(t, r, http.MethodGet, ProfilePattern, nil, bearer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
