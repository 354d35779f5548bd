package identity

import (
	"context"
	"errors"
)

// ErrDuplicateAccount - учетная запись с таким адресом электронной почты уже зарегистрирована.
var ErrDuplicateAccount = errors.New("account already exists")

//go:generate mockgen -destination=../mocks/identity_mock.go -package=mocks github.com/abezemskiy/credkeeper/internal/repositories/identity Identifier

// Identifier - интерфейс хранилища учетных записей, которое используется при регистрации, входе и получении профиля.
type Identifier interface {
	Save(ctx context.Context, account Account) error                      // Сохраняет новую учетную запись. При совпадении email возвращает ErrDuplicateAccount.
	FindByEmail(ctx context.Context, email string) (Account, bool, error) // Ищет учетную запись по email.
	FindByID(ctx context.Context, id string) (Account, bool, error)       // Ищет учетную запись по id.
	UpdateHash(ctx context.Context, id, hash string) (ok bool, err error) // Заменяет хэш пароля учетной записи.
}

// Account - учетная запись пользователя. Пароль хранится только в виде хэша.
type Account struct {
	ID    string
	Name  string
	Email string
	Hash  string
}

// Profile - публичное представление учетной записи. Хэш пароля никогда не попадает в ответ.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProfileOf - формирует публичный профиль учетной записи.
func ProfileOf(account Account) Profile {
	return Profile{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	}
}

// RegisterData - данные для регистрации пользователя.
type RegisterData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginData - данные для входа пользователя.
type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenData - ответ сервера на успешный вход.
type TokenData struct {
	Token string `json:"token"`
}
