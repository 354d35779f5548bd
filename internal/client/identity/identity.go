package identity

import "sync"

// TokenStorage - структура для хранения токена доступа в оперативной памяти.
// Предоставляет методы для потокобезопасного использования.
type TokenStorage struct {
	mu    sync.RWMutex
	token string
}

// Установка токена
func (s *TokenStorage) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Получение токена. Пустая строка означает, что пользователь не выполнил вход.
func (s *TokenStorage) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Reset - удаляет токен, например после ответа сервера со статусом 401.
func (s *TokenStorage) Reset() {
	s.Set("")
}

// ITokenStorage - интерфейс для сохранения и получения токена доступа из оперативной памяти.
type ITokenStorage interface {
	Set(string)  // метод для установки токена.
	Get() string // метод для получения токена.
	Reset()      // метод для удаления токена.
}
