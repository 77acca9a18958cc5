package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type Logger struct {
	Level string `yaml:"level"`
	Sink  string `yaml:"sink"`
}

type Telegram struct {
	Token    string `yaml:"token"`
	AdminID  int64  `yaml:"admin_id"`
	Operator string `yaml:"operator"` // хэндл оператора в приветствии
	Channel  string `yaml:"channel"`  // ссылка на канал в приветствии
}

type Payment struct {
	Card string `yaml:"card"` // реквизиты карты в сообщении об оплате
}

type API struct {
	HealthAddr string `yaml:"health_addr"`
}

type AppConfig struct {
	Logger   Logger   `yaml:"log"`
	Telegram Telegram `yaml:"telegram"`
	Payment  Payment  `yaml:"payment"`
	Database Database `yaml:"database"`
	API      API      `yaml:"api"`
}

func NewConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var appConfig AppConfig
	if err := yaml.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	// Токен и ID оператора можно переопределить окружением,
	// чтобы не хранить их в файле.
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		appConfig.Telegram.Token = token
	}
	if admin := os.Getenv("ADMIN_ID"); admin != "" {
		id, err := strconv.ParseInt(admin, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ID: %v", err)
		}
		appConfig.Telegram.AdminID = id
	}

	return &appConfig, nil
}
