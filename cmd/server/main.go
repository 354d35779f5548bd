package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/token"
	"github.com/abezemskiy/credkeeper/internal/server/logger"
	"github.com/abezemskiy/credkeeper/internal/server/metrics"
	"github.com/abezemskiy/credkeeper/internal/server/router"
	"github.com/abezemskiy/credkeeper/internal/server/storage"
	"github.com/abezemskiy/credkeeper/internal/server/storage/inmemory"
	"github.com/abezemskiy/credkeeper/internal/server/storage/pg"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const shutdownWaitPeriod = 20 * time.Second // для установки в контекст для реализаации graceful shutdown

func main() {
	err := parseVariables()
	if err != nil {
		log.Fatalf("failed to set global variables, %v", err)
	}

	// Инициализация логера
	if err := logger.Initialize(logLevel); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
	defer logger.ServerLog.Sync()

	ctx := context.Background()
	stor, err := newStorage(ctx, databaseDsn)
	if err != nil {
		log.Fatalf("Failed to create storage: %v\n", err)
	}
	defer stor.Close()

	h, err := hasher.New(hashCost)
	if err != nil {
		log.Fatalf("Failed to create password hasher: %v\n", err)
	}

	// метрики доступны по адресу /metrics
	metrics.RegisterMetrics(prometheus.DefaultRegisterer)

	// секретный ключ читается один раз при старте и дальше передается явно
	cfg := token.Config{
		SecretKey: []byte(secretKey),
		TTL:       expireToken,
	}
	run(ctx, stor, h, cfg)
}

// newStorage - создает хранилище учетных записей. Без адреса БД используется хранилище в памяти.
func newStorage(ctx context.Context, dsn string) (storage.IServerStorage, error) {
	if dsn == "" {
		logger.ServerLog.Warn("database address is not set, accounts are stored in memory")
		return inmemory.NewStore(), nil
	}
	return pg.NewStore(ctx, dsn)
}

// функция run будет необходима для инициализации зависимостей сервера перед запуском
func run(ctx context.Context, stor storage.IServerStorage, h *hasher.Hasher, cfg token.Config) {
	logger.ServerLog.Info("Running credkeeper", zap.String("address", netAddr),
		zap.Duration("expire token", cfg.TTL), zap.Int("hash cost", h.Cost()))

	// запускаю сам сервис с проверкой отмены контекста для реализации graceful shutdown--------------
	srv := &http.Server{
		Addr:    netAddr,
		Handler: router.New(stor, h, cfg),
	}
	// Канал для получения сигнала прерывания
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Горутина для запуска сервера
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	// Блокирование до тех пор, пока не поступит сигнал о прерывании
	<-quit
	logger.ServerLog.Info("Shutting down server...", zap.String("address", netAddr))

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(ctx, shutdownWaitPeriod)
	defer cancel()

	// останавливаю сервер, чтобы он перестал принимать новые запросы
	if err := srv.Shutdown(ctx); err != nil {
		logger.ServerLog.Error("Stopping server error", zap.String("error", err.Error()))
		return
	}

	logger.ServerLog.Info("Shutdown the server gracefully", zap.String("address", netAddr))
}
