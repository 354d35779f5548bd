// token - пакет для выпуска и проверки подписанных сессионных токенов (JWT, HS256).
// Токен самодостаточен: сервер не хранит выпущенные токены.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL - время действия токена по умолчанию.
const DefaultTTL = time.Hour

var (
	// ErrMalformed - токен не удалось разобрать (число сегментов, кодировка, JSON).
	ErrMalformed = errors.New("token is malformed")
	// ErrInvalidSignature - подпись токена не совпадает или алгоритм подписи не поддерживается.
	ErrInvalidSignature = errors.New("token signature is invalid")
	// ErrExpired - срок действия токена истек.
	ErrExpired = errors.New("token is expired")
	// ErrMisconfiguration - не задан секретный ключ для подписи.
	ErrMisconfiguration = errors.New("secret key is not set")
)

// Config - параметры выпуска и проверки токенов. Задается один раз при старте сервера.
type Config struct {
	SecretKey []byte        // секретный ключ для подписи
	TTL       time.Duration // время действия токена
}

// Claim - идентификационные данные пользователя, которые передаются в токене.
type Claim struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Claims - полезная нагрузка токена: данные пользователя, время выпуска и время истечения.
type Claims struct {
	jwt.RegisteredClaims
	Claim
}

type options struct {
	now func() time.Time
}

// Option - дополнительная настройка выпуска и проверки токена.
type Option func(*options)

// WithClock - устанавливает источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Issue - создает токен для переданных данных пользователя и подписывает его секретным ключом.
// Если ttl равен нулю, используется DefaultTTL.
func Issue(claim Claim, secret []byte, ttl time.Duration, opts ...Option) (string, error) {
	if len(secret) == 0 {
		return "", ErrMisconfiguration
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	o := buildOptions(opts)
	now := o.now()

	// создаю токен с алгоритмом подписи HS256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Claim: claim,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to signed JWT to string, %w", err)
	}
	return tokenString, nil
}

// Verify - проверяет формат, подпись и срок действия токена и возвращает данные пользователя.
func Verify(tokenString string, secret []byte, opts ...Option) (Claim, error) {
	if len(secret) == 0 {
		return Claim{}, ErrMisconfiguration
	}
	o := buildOptions(opts)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			// алгоритм должен совпадать с тем, которым сервер подписывает токены
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
	)
	if err != nil {
		return Claim{}, classify(err)
	}
	if !token.Valid {
		return Claim{}, ErrInvalidSignature
	}

	return claims.Claim, nil
}

// classify - приводит ошибки библиотеки jwt к ошибкам пакета.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w, %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w, %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w, %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w, %w", ErrMalformed, err)
	}
}
