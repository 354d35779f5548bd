package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Configs представляет структуру конфигурации.
type Configs struct {
	Address     string `json:"address"`      // аналог переменной окружения CREDKEEPER_SERVER_ADDRESS или флага -a
	LogLevel    string `json:"log_level"`    // аналог переменной окружения CREDKEEPER_SERVER_LOG_LEVEL или флага -l
	DatabaseDSN string `json:"database_dsn"` // аналог переменной окружения CREDKEEPER_SERVER_DATABASE_URL или флага -d
	SecretKey   string `json:"secret_key"`   // аналог переменной окружения CREDKEEPER_SERVER_SECRET_KEY или флага -secret-key
	ExpireToken string `json:"expire_token"` // аналог переменной окружения CREDKEEPER_SERVER_EXPIRE_TOKEN или флага -expire-token, например "1h"
	HashCost    int    `json:"hash_cost"`    // аналог переменной окружения CREDKEEPER_SERVER_HASH_COST или флага -hash-cost
}

// ParseConfigFile - функция для переопределения параметров конфигурации из файла конфигурации.
func ParseConfigFile(configFileName string) (Configs, error) {
	var configs Configs
	f, err := os.Open(configFileName)
	if err != nil {
		return Configs{}, fmt.Errorf("open cofiguration file error: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	dec := json.NewDecoder(reader)
	err = dec.Decode(&configs)
	if err != nil {
		return Configs{}, fmt.Errorf("parse cofiguration file error: %w", err)
	}

	return configs, nil
}

// Expire - возвращает время действия токена из файла конфигурации. Пустое значение означает, что параметр не задан.
func (c Configs) Expire() (time.Duration, error) {
	if c.ExpireToken == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ExpireToken)
	if err != nil {
		return 0, fmt.Errorf("parse expire token error: %w", err)
	}
	return d, nil
}
