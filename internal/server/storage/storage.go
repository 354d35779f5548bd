package storage

import (
	"context"

	"github.com/abezemskiy/credkeeper/internal/repositories/identity"
)

type (
	// Pinger - интерфейс для проверки доступности хранилища.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Closer - интерфейс для освобождения ресурсов хранилища.
	Closer interface {
		Close() error
	}

	// IServerStorage - интерфейс сервера для хранения учетных записей пользователей.
	IServerStorage interface {
		identity.Identifier
		Pinger
		Closer
	}
)
