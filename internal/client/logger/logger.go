package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// ClientLog будет доступен всему коду клиента как синглтон.
// Никакой код, кроме функции Initialize, не должен модифицировать эту переменную.
// По умолчанию установлен no-op-логер, чтобы вывод команд в консоль не смешивался с логами.
var ClientLog *zap.Logger = zap.NewNop()

// Initialize - инициализирует синглтон логера с необходимым уровнем логирования.
// Если задан logFile, логи пишутся в файл, который очищается при старте.
func Initialize(level, logFile string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level error, %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	if logFile != "" {
		if err := os.Truncate(logFile, 0); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("truncate log file error, %w", err)
		}
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	} else {
		// вывод команды идет в stdout, логи направляю в stderr
		cfg.OutputPaths = []string{"stderr"}
	}

	zl, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger error, %w", err)
	}
	ClientLog = zl.With(zap.String("role", "client"))
	return nil
}
