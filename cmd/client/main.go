package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abezemskiy/credkeeper/internal/client/handlers"
	"github.com/abezemskiy/credkeeper/internal/client/identity"
	"github.com/abezemskiy/credkeeper/internal/client/identity/auth"
	"github.com/abezemskiy/credkeeper/internal/client/logger"
	repoIdent "github.com/abezemskiy/credkeeper/internal/repositories/identity"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	registerPattern = "/api/user/register" // паттерн api для регистрации пользователя
	loginPattern    = "/api/user/login"    // паттерн api для входа пользователя
	profilePattern  = "/api/user/profile"  // паттерн api для получения профиля

	requestTimeout = 10 * time.Second // время ожидания ответа сервера
)

func main() {
	err := parseVariables()
	if err != nil {
		log.Fatalf("failed to set global variables, %v", err)
	}

	// Инициализация логера
	if err := logger.Initialize(logLevel, logFile); err != nil {
		log.Fatalf("Error starting client: %v", err)
	}
	defer logger.ClientLog.Sync()

	// Команда прерывается по сигналу
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		logger.ClientLog.Error("command failed", zap.String("command", command), zap.String("error", err.Error()))
		log.Fatalf("%s failed, %v", command, err)
	}
}

// newClient - создает resty клиента, который устанавливает токен из tokens в каждый запрос.
func newClient(tokens identity.ITokenStorage) *resty.Client {
	client := resty.New().
		SetTimeout(requestTimeout)
	client.OnBeforeRequest(auth.OnBeforeMiddleware(tokens))
	client.OnAfterResponse(auth.OnAfterMiddleware(tokens))
	return client
}

// run - выполняет команду клиента и выводит результат в out.
func run(ctx context.Context, out io.Writer) error {
	tokens := &identity.TokenStorage{}
	tokens.Set(authToken)
	client := newClient(tokens)
	baseURL := strings.TrimSuffix(serverAddr, "/")

	switch command {
	case registerCommand:
		profile, ok, err := handlers.Register(ctx, baseURL+registerPattern, &repoIdent.RegisterData{
			Name:     name,
			Email:    email,
			Password: password,
		}, client)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("registration rejected, account %s may already exist", email)
		}
		return printProfile(out, profile)

	case loginCommand:
		if err := login(ctx, baseURL, client, tokens); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, tokens.Get())
		return err

	case profileCommand:
		if tokens.Get() == "" {
			if err := login(ctx, baseURL, client, tokens); err != nil {
				return err
			}
		}
		profile, err := handlers.Profile(ctx, baseURL+profilePattern, client)
		if err != nil {
			return err
		}
		return printProfile(out, profile)
	}
	return fmt.Errorf("unknown command %q", command)
}

// login - выполняет вход пользователя и сохраняет токен в tokens.
func login(ctx context.Context, baseURL string, client *resty.Client, tokens identity.ITokenStorage) error {
	ok, err := handlers.Login(ctx, baseURL+loginPattern, &repoIdent.LoginData{
		Email:    email,
		Password: password,
	}, client, tokens)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid email or password")
	}
	return nil
}

func printProfile(out io.Writer, profile repoIdent.Profile) error {
	_, err := fmt.Fprintf(out, "id: %s\nname: %s\nemail: %s\n", profile.ID, profile.Name, profile.Email)
	return err
}
