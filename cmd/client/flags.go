package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

const (
	registerCommand = "register" // регистрация новой учетной записи
	loginCommand    = "login"    // вход и вывод токена
	profileCommand  = "profile"  // получение профиля
)

var (
	serverAddr string // адрес сервера учетных записей
	logLevel   string // уровень логирования
	logFile    string // файл для вывода логов
	name       string // имя пользователя для регистрации
	email      string // email пользователя
	password   string // пароль пользователя
	authToken  string // ранее полученный токен доступа
	command    string // выполняемая команда
)

// parseVariables - функция для установки конфигурационных параметров клиента.
// Конфигурирование с приоритетом в порядке убывания: значения флагов, значения переменных окружения.
func parseVariables() error {
	parseFlags()
	parseEnvironment()

	// Проверка корректности установки глобальных переменных
	return checkVariables()
}

// parseFlags - функция для определения параметров конфигурации из флагов.
func parseFlags() {
	flag.StringVar(&serverAddr, "a", "", "address of credkeeper server, for example http://localhost:8080")
	flag.StringVar(&logLevel, "l", "", "log level")
	flag.StringVar(&logFile, "f", "", "name of log file")
	flag.StringVar(&name, "name", "", "user name for registration")
	flag.StringVar(&email, "email", "", "user email")
	flag.StringVar(&password, "password", "", "user password")
	flag.StringVar(&authToken, "token", "", "access token received on login")

	// Вызов flag.Parse() для парсинга аргументов
	flag.Parse()

	// команда передается первым позиционным аргументом
	command = flag.Arg(0)
}

// parseEnvironment - функция для переопределения конфигурации из глобальных переменных.
// Переопределяет конфигурацию, если значения не установлены флагами.
func parseEnvironment() {
	if serverAddr == "" {
		serverAddr = os.Getenv("CREDKEEPER_CLIENT_ADDRESS")
	}
	if logLevel == "" {
		logLevel = os.Getenv("CREDKEEPER_CLIENT_LOG_LEVEL")
	}
	if logFile == "" {
		logFile = os.Getenv("CREDKEEPER_CLIENT_LOG_FILE")
	}
	if authToken == "" {
		authToken = os.Getenv("CREDKEEPER_CLIENT_TOKEN")
	}
}

// checkVariables - функция для проверки корректности установки глобальных переменных.
func checkVariables() error {
	if serverAddr == "" {
		return fmt.Errorf("address of server must be set")
	}
	if !strings.HasPrefix(serverAddr, "http://") && !strings.HasPrefix(serverAddr, "https://") {
		serverAddr = "http://" + serverAddr
	}
	if logLevel == "" {
		logLevel = "info"
	}

	switch command {
	case registerCommand:
		if name == "" || email == "" || password == "" {
			return fmt.Errorf("name, email and password must be set for %s", registerCommand)
		}
	case loginCommand:
		if email == "" || password == "" {
			return fmt.Errorf("email and password must be set for %s", loginCommand)
		}
	case profileCommand:
		if authToken == "" && (email == "" || password == "") {
			return fmt.Errorf("token or email and password must be set for %s", profileCommand)
		}
	default:
		return fmt.Errorf("unknown command %q, expected one of %s, %s, %s", command, registerCommand, loginCommand, profileCommand)
	}
	return nil
}
