package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/abezemskiy/credkeeper/internal/repositories/identity"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store - реализует интерфейс storage.IServerStorage и позволяет взаимодествовать с СУБД PostgreSQL.
type Store struct {
	// Поле conn содержит объект соединения с СУБД
	conn *sql.DB
}

// NewStore - применяет миграции и возвращает новый экземпляр PostgreSQL-хранилища.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run DB migrations: %w", err)
	}

	// Подключение к базе данных
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connection to database: %w", err)
	}

	// Проверка соединения с БД
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error checking connection with database: %w", err)
	}

	return newStoreWithDB(db), nil
}

// newStoreWithDB - создает хранилище поверх уже открытого соединения без применения миграций.
func newStoreWithDB(db *sql.DB) *Store {
	return &Store{
		conn: db,
	}
}

//go:embed migrations/*.sql
var migrationsDir embed.FS

func runMigrations(dsn string) error {
	d, err := iofs.New(migrationsDir, "migrations")
	if err != nil {
		return fmt.Errorf("failed to return an iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, dsn)
	if err != nil {
		return fmt.Errorf("failed to get a new migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations to the DB: %w", err)
		}
	}
	return nil
}

// Ping - проверяет соединение с БД.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close - закрывает соединение с БД.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Disable - очищает БД, удаляя записи из таблиц.
// Метод необходим для тестирования, чтобы в процессе удалять тестовые записи.
func (s *Store) Disable(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `TRUNCATE TABLE accounts`)
	if err != nil {
		return fmt.Errorf("truncate table accounts error, %w", err)
	}
	return nil
}

// Save - сохраняет в базу новую учетную запись.
// Если учетная запись с таким email уже существует, возвращается identity.ErrDuplicateAccount.
func (s *Store) Save(ctx context.Context, account identity.Account) error {
	query := `
	INSERT INTO accounts (id, name, email, hash)
	VALUES ($1, $2, $3, $4)
`
	_, err := s.conn.ExecContext(ctx, query, account.ID, account.Name, account.Email, account.Hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w, %s", identity.ErrDuplicateAccount, account.Email)
		}
		return fmt.Errorf("query execution error, %w", err)
	}
	return nil
}

// FindByEmail - ищет учетную запись по email. Если запись не найдена, возвращается false без ошибки.
func (s *Store) FindByEmail(ctx context.Context, email string) (identity.Account, bool, error) {
	query := `
		SELECT  id,
				name,
				email,
				hash
		FROM accounts
		WHERE email = $1
	`
	return s.findOne(ctx, query, email)
}

// FindByID - ищет учетную запись по id. Если запись не найдена, возвращается false без ошибки.
func (s *Store) FindByID(ctx context.Context, id string) (identity.Account, bool, error) {
	query := `
		SELECT  id,
				name,
				email,
				hash
		FROM accounts
		WHERE id = $1
	`
	return s.findOne(ctx, query, id)
}

func (s *Store) findOne(ctx context.Context, query string, arg string) (identity.Account, bool, error) {
	var account identity.Account
	row := s.conn.QueryRowContext(ctx, query, arg)
	err := row.Scan(&account.ID, &account.Name, &account.Email, &account.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// учетная запись не найдена
			return identity.Account{}, false, nil
		}
		return identity.Account{}, false, fmt.Errorf("scan row error, %w", err)
	}
	return account, true, nil
}

// UpdateHash - заменяет хэш пароля учетной записи. Если запись не найдена, возвращается false.
func (s *Store) UpdateHash(ctx context.Context, id, hash string) (bool, error) {
	query := `
	UPDATE accounts
	SET hash = $2
	WHERE id = $1
`
	result, err := s.conn.ExecContext(ctx, query, id, hash)
	if err != nil {
		return false, fmt.Errorf("query execution error, %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected != 0, nil
}
