// checker - пакет с проверками регистрационных данных пользователя.
package checker

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MinPasswordLen - минимальная длина пароля в символах.
const MinPasswordLen = 6

// CheckName - функция для проверки корректности имени пользователя.
func CheckName(name string) bool {
	// проверяю, что имя не является пустой строкой
	return strings.TrimSpace(name) != ""
}

// CheckEmail - функция для проверки корректности адреса электронной почты.
// Допускается только адрес без отображаемого имени, например john@example.com.
func CheckEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && addr.Name == ""
}

// CheckPassword - функция для проверки корректности пароля.
func CheckPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLen
}

// NormalizeEmail - приводит адрес электронной почты к каноническому виду для хранения и поиска.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
