package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/kellowedkill/dnipro/internal/config"
)

const migrationSchema = `CREATE TABLE IF NOT EXISTS snapshots (
    name       TEXT PRIMARY KEY,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const rollbackSchema = `DROP TABLE IF EXISTS snapshots;`

func main() {
	configPath := flag.String("config", "config/config.yaml", "Путь к файлу конфигурации")
	rollback := flag.Bool("rollback", false, "Откатить миграцию")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Создаем DSN
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode,
	)

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		log.Fatalf("Ошибка проверки подключения к базе данных: %v", err)
	}

	fmt.Println("Успешное подключение к базе данных")

	schema := migrationSchema
	if *rollback {
		schema = rollbackSchema
	}

	// Выполняем миграцию
	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("Ошибка выполнения миграции: %v", err)
	}

	fmt.Println("Миграция успешно выполнена")
	os.Exit(0)
}
