// inmemory - хранилище учетных записей в оперативной памяти.
// Используется, если сервер запущен без адреса БД, и в тестах.
package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/abezemskiy/credkeeper/internal/repositories/identity"
)

// Store - потокобезопасное хранилище учетных записей.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]identity.Account
	byEmail map[string]string // email -> id
}

// NewStore - создает пустое хранилище.
func NewStore() *Store {
	return &Store{
		byID:    make(map[string]identity.Account),
		byEmail: make(map[string]string),
	}
}

// Save - сохраняет новую учетную запись. Email должен быть уникален.
func (s *Store) Save(ctx context.Context, account identity.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[account.Email]; ok {
		return fmt.Errorf("%w, %s", identity.ErrDuplicateAccount, account.Email)
	}
	if _, ok := s.byID[account.ID]; ok {
		return fmt.Errorf("account with id %s already exists", account.ID)
	}
	s.byID[account.ID] = account
	s.byEmail[account.Email] = account.ID
	return nil
}

// FindByEmail - ищет учетную запись по email.
func (s *Store) FindByEmail(ctx context.Context, email string) (identity.Account, bool, error) {
	if err := ctx.Err(); err != nil {
		return identity.Account{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return identity.Account{}, false, nil
	}
	account, ok := s.byID[id]
	return account, ok, nil
}

// FindByID - ищет учетную запись по id.
func (s *Store) FindByID(ctx context.Context, id string) (identity.Account, bool, error) {
	if err := ctx.Err(); err != nil {
		return identity.Account{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	return account, ok, nil
}

// UpdateHash - заменяет хэш пароля учетной записи.
func (s *Store) UpdateHash(ctx context.Context, id, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	account.Hash = hash
	s.byID[id] = account
	return true, nil
}

// Ping - хранилище в памяти всегда доступно.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close - нечего освобождать.
func (s *Store) Close() error {
	return nil
}
