package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/kellowedkill/dnipro/internal/app"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Путь к файлу конфигурации")
	flag.Parse()

	// .env необязателен: токен и ID оператора могут прийти из окружения
	if err := godotenv.Load(); err != nil {
		log.Println("файл .env не найден, используем окружение как есть")
	}

	// Проверка существования файла конфигурации
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("Конфигурационный файл не найден: %s", *configPath)
	}

	if err := app.Run(*configPath); err != nil {
		log.Fatal(err)
	}
}
