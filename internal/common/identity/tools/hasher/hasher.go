// hasher - пакет для одностороннего хэширования паролей пользователей и проверки пароля по сохраненному хэшу.
package hasher

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinCost - минимально допустимая стоимость хэширования.
	MinCost = 10
	// DefaultCost - стоимость хэширования по умолчанию.
	DefaultCost = 10
	// maxPasswordLen - bcrypt не принимает пароли длиннее 72 байт.
	maxPasswordLen = 72
)

var (
	// ErrInvalidInput - пароль не может быть захэширован (пустой или слишком длинный).
	ErrInvalidInput = errors.New("invalid password for hashing")
	// ErrMalformedHash - сохраненный хэш имеет неверный формат или версию.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrInvalidCost - стоимость хэширования вне допустимого диапазона.
	ErrInvalidCost = errors.New("invalid hashing cost")
)

// Hasher - хэширует пароли алгоритмом bcrypt с заданной стоимостью.
// Соль генерируется заново при каждом вызове Hash, а параметры алгоритма хранятся внутри самого хэша,
// поэтому стоимость можно повышать без потери совместимости с ранее сохраненными хэшами.
type Hasher struct {
	cost int
}

// New - создает Hasher с проверкой стоимости хэширования.
func New(cost int) (*Hasher, error) {
	if cost < MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w, cost %d must be between %d and %d", ErrInvalidCost, cost, MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost - возвращает текущую стоимость хэширования.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash - хэширует пароль и возвращает самоописывающий хэш вида $2a$<cost>$<salt+hash>.
// Операция намеренно медленная, вызывающая сторона должна учитывать это.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w, password is empty", ErrInvalidInput)
	}
	if len(password) > maxPasswordLen {
		return "", fmt.Errorf("%w, password is longer than %d bytes", ErrInvalidInput, maxPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrInvalidInput, err)
	}
	return string(hash), nil
}

// Verify - проверяет пароль по сохраненному хэшу.
// Сравнение выполняется за постоянное время. Несовпадение пароля не является ошибкой, возвращается false.
// Ошибка возвращается только если хэш имеет неверный формат.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	// bcrypt учитывает только первые 72 байта пароля, такой пароль не мог быть захэширован методом Hash
	if len(password) > maxPasswordLen {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w, %w", ErrMalformedHash, err)
}

// NeedsRehash - проверяет, что хэш был создан с меньшей стоимостью, чем текущая, и его стоит пересчитать.
func (h *Hasher) NeedsRehash(hash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false, fmt.Errorf("%w, %w", ErrMalformedHash, err)
	}
	return cost < h.cost, nil
}
