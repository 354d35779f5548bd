package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/credkeeper/internal/common/identity/tools/token"
	"github.com/abezemskiy/credkeeper/internal/server/config"
)

var (
	netAddr     string        // адрес запуска сервиса
	databaseDsn string        // адрес базы данных, если не задан - учетные записи хранятся в памяти
	logLevel    string        // уровень логирования
	configFile  string        // путь к файлу конфигурации
	secretKey   string        // секретный ключ для подписи JWT
	expireToken time.Duration // время действия JWT
	hashCost    int           // стоимость хэширования паролей
)

// parseVariables - функция для установки конфигурационных параметров приложения.
// Конфигурирование приложения с приоритетом в порядке убывания: значения флагов, значения из файла, значения переменных окружения.
func parseVariables() error {
	parseFlags()
	if err := parseConfigFile(); err != nil {
		return err
	}
	parseEnvironment()
	setDefaults()

	// Проверяю корректность установки глобальных переменных
	err := checkVariables()
	if err != nil {
		return fmt.Errorf("failed to set global variable, %w", err)
	}
	return nil
}

// parseFlags - функция для определения параметров конфигурации из флагов.
func parseFlags() {
	flag.StringVar(&netAddr, "a", "", "address and port to run server")
	flag.StringVar(&databaseDsn, "d", "", "database connection address") // по умолчанию адрес не задан
	flag.StringVar(&logLevel, "l", "", "log level")
	flag.StringVar(&configFile, "c", "", "name of configuration file")
	flag.StringVar(&secretKey, "secret-key", "", "secret key for signing JWT")
	flag.DurationVar(&expireToken, "expire-token", 0, "JWT lifetime, for example 1h")
	flag.IntVar(&hashCost, "hash-cost", 0, "bcrypt cost for password hashing")

	// Вызов flag.Parse() для парсинга аргументов
	flag.Parse()
}

// parseConfigFile - функция для переопределения параметров конфигурации из файла конфигурации.
func parseConfigFile() error {
	// если не указан файл конфигурации, то оставляю параметры запуска без изменения
	if configFile == "" {
		return nil
	}
	configs, err := config.ParseConfigFile(configFile)
	if err != nil {
		return fmt.Errorf("parse config file error, %w", err)
	}

	// обновляю параметры запуска если они не определены флагами
	if netAddr == "" {
		netAddr = configs.Address
	}
	if logLevel == "" {
		logLevel = configs.LogLevel
	}
	if databaseDsn == "" {
		databaseDsn = configs.DatabaseDSN
	}
	if secretKey == "" {
		secretKey = configs.SecretKey
	}
	if expireToken == 0 {
		expire, err := configs.Expire()
		if err != nil {
			return err
		}
		expireToken = expire
	}
	if hashCost == 0 {
		hashCost = configs.HashCost
	}
	return nil
}

// parseEnvironment - функция для переопределения конфигурации из глобальных переменных.
// Переопределяет конфигурацию, если значения не установлены флагами или файлом конфигурации.
func parseEnvironment() {
	if netAddr == "" {
		netAddr = os.Getenv("CREDKEEPER_SERVER_ADDRESS")
	}
	if databaseDsn == "" {
		databaseDsn = os.Getenv("CREDKEEPER_SERVER_DATABASE_URL")
	}
	if logLevel == "" {
		logLevel = os.Getenv("CREDKEEPER_SERVER_LOG_LEVEL")
	}
	if secretKey == "" {
		secretKey = os.Getenv("CREDKEEPER_SERVER_SECRET_KEY")
	}
	if expireToken == 0 {
		if envExpireToken := os.Getenv("CREDKEEPER_SERVER_EXPIRE_TOKEN"); envExpireToken != "" {
			expire, err := time.ParseDuration(envExpireToken)
			if err == nil {
				expireToken = expire
			}
		}
	}
	if hashCost == 0 {
		if envHashCost := os.Getenv("CREDKEEPER_SERVER_HASH_COST"); envHashCost != "" {
			cost, err := strconv.Atoi(envHashCost)
			if err == nil {
				hashCost = cost
			}
		}
	}
}

// setDefaults - устанавливает значения по умолчанию для необязательных параметров.
func setDefaults() {
	if expireToken == 0 {
		expireToken = token.DefaultTTL
	}
	if hashCost == 0 {
		hashCost = hasher.DefaultCost
	}
}

// checkVariables - функция для проверки корректности установки глобальных переменных.
func checkVariables() error {
	if netAddr == "" {
		return fmt.Errorf("address and port to run server must be set")
	}
	if logLevel == "" {
		return fmt.Errorf("log level must be set")
	}
	if secretKey == "" {
		return fmt.Errorf("secret key must be set, %w", token.ErrMisconfiguration)
	}
	if expireToken < 0 {
		return fmt.Errorf("expire token must be positive")
	}
	return nil
}
