package app

import "os"

// Config описывает настройки запуска сервиса заказов.
type Config struct {
	// HTTPAddr — адрес REST-интерфейса заказов.
	HTTPAddr string
	// MetricsAddr — адрес служебного сервера с /metrics.
	MetricsAddr string
	// KafkaBrokers — список брокеров через запятую; пустое значение
	// переключает клиентов покупателя и каталога на in-memory заглушки.
	KafkaBrokers string
	// KafkaGroupID — группа консьюмера для топиков ответов.
	KafkaGroupID string
	// DatabaseURL — DSN PostgreSQL; пустое значение включает in-memory хранилище.
	DatabaseURL string
}

// DefaultConfig возвращает базовые настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:     ":8080",
		MetricsAddr:  ":9090",
		KafkaGroupID: "order-saga-service",
	}
}

// ConfigFromEnv накладывает переменные окружения поверх базовых настроек.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ORDERSAGA_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("ORDERSAGA_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		cfg.KafkaGroupID = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	return cfg
}
