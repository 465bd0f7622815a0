package app

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
	}
	if cfg.KafkaGroupID == "" {
		t.Fatal("expected default kafka group id")
	}
	if cfg.KafkaBrokers != "" || cfg.DatabaseURL != "" {
		t.Fatal("expected kafka and database to be off by default")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ORDERSAGA_HTTP_ADDR", ":18080")
	t.Setenv("ORDERSAGA_METRICS_ADDR", ":19090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")

	cfg := ConfigFromEnv()
	if cfg.HTTPAddr != ":18080" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":19090" {
		t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
	}
	if cfg.KafkaBrokers != "broker-1:9092,broker-2:9092" {
		t.Fatalf("unexpected brokers: %q", cfg.KafkaBrokers)
	}
	if cfg.KafkaGroupID != "custom-group" {
		t.Fatalf("unexpected group id: %q", cfg.KafkaGroupID)
	}
	if cfg.DatabaseURL != "postgres://localhost/orders" {
		t.Fatalf("unexpected database url: %q", cfg.DatabaseURL)
	}
}

func TestNewDependencies(t *testing.T) {
	deps := NewDependencies(nil)
	if deps.Repo == nil || deps.Buyers == nil || deps.Products == nil {
		t.Fatal("expected all dependencies initialized")
	}
	if deps.Logger == nil {
		t.Fatal("expected fallback logger")
	}
}
