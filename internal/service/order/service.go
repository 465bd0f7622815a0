// Package order содержит доменный сервис заказов: сборку заказа
// из данных покупателя и каталога и делегирование CRUD хранилищу.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/domain"
)

// ItemRequest — позиция запроса на создание заказа.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// CreateRequest — запрос на создание заказа, провалидированный на границе:
// минимум одна позиция, количество ≥ 1.
type CreateRequest struct {
	Items []ItemRequest `json:"order_items"`
}

// Service объединяет данные покупателя и каталога в персистентный заказ.
type Service struct {
	repo     domain.OrderRepository
	buyers   domain.BuyerDirectory
	products domain.ProductCatalog
	logger   *log.Entry
}

// NewService конструирует сервис с зависимостями.
func NewService(
	repo domain.OrderRepository,
	buyers domain.BuyerDirectory,
	products domain.ProductCatalog,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		repo:     repo,
		buyers:   buyers,
		products: products,
		logger:   logger,
	}
}

// CreatePendingOrder собирает и сохраняет заказ в статусе PENDING:
// резолвит покупателя, батчем читает товары, снапшотит имя/цену/описание
// каждой позиции. Любой пропуск товара фатален для всей операции —
// частичный заказ не создаётся.
func (s *Service) CreatePendingOrder(ctx context.Context, req CreateRequest, buyerID string) (domain.Order, error) {
	buyer, err := s.buyers.GetBuyer(ctx, buyerID)
	if err != nil {
		return domain.Order{}, err
	}

	productIDs := distinctProductIDs(req.Items)
	products, err := s.products.GetProducts(ctx, productIDs)
	if err != nil {
		return domain.Order{}, err
	}

	// Ответ каталога не гарантирует ни порядок, ни полноту — индексируем по id.
	productByID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		p, ok := productByID[itemReq.ProductID]
		if !ok {
			s.logger.WithField("product_id", itemReq.ProductID).Warn("requested product missing from catalog reply")
			return domain.Order{}, domain.NewNotFound("product", itemReq.ProductID)
		}
		items = append(items, domain.OrderItem{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Quantity:    itemReq.Quantity,
		})
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		Status:    domain.OrderStatusPending,
		Buyer:     buyer,
		Items:     items,
		OrderDate: time.Now().UTC(),
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errors.Join(errs...)
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		s.logger.WithError(err).Error("failed to persist order")
		return domain.Order{}, err
	}
	created.Buyer = buyer

	s.logger.WithField("order_id", created.ID).Info("order created")
	return created, nil
}

// Read возвращает заказ, заново подтягивая живой снапшот покупателя:
// кэша нет, каждое чтение — один сетевой обход справочника.
func (s *Service) Read(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	buyer, err := s.buyers.GetBuyer(ctx, order.BuyerID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Buyer = buyer

	return order, nil
}

// ReadAllByBuyer возвращает заказы покупателя без подгрузки снапшотов.
func (s *Service) ReadAllByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

// UpdateOrderStatus загружает заказ, выставляет новый статус и пишет
// обратно безусловно: валидации переходов на этом пути нет, любой статус
// может следовать за любым.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	order.Status = status
	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": id,
			"status":   status,
		}).Error("failed to update order status")
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": id,
		"status":   status,
	}).Info("order status updated")
	return updated, nil
}

// Delete удаляет заказ вместе с позициями.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// distinctProductIDs собирает уникальные id товаров, сохраняя порядок запроса.
func distinctProductIDs(items []ItemRequest) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
