package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/client/buyer"
	"github.com/antonrybakov/ordersaga/internal/client/product"
	"github.com/antonrybakov/ordersaga/internal/domain"
	"github.com/antonrybakov/ordersaga/internal/storage/memory"
)

// Dependencies содержит внешние зависимости сервиса заказов.
type Dependencies struct {
	Repo     domain.OrderRepository
	Buyers   domain.BuyerDirectory
	Products domain.ProductCatalog
	Logger   *log.Entry
}

// NewDependencies собирает зависимости на in-memory заглушках.
// Такой набор используется в тестах и при локальном запуске
// без Kafka и PostgreSQL.
func NewDependencies(logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	return &Dependencies{
		Repo:     memory.NewOrderRepository(),
		Buyers:   buyer.NewMock(),
		Products: product.NewMock(),
		Logger:   logger,
	}
}
