// Package saga реализует оркестрацию создания заказа: последовательность
// локальных шагов с компенсирующими действиями вместо распределённой
// транзакции.
package saga

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/domain"
	"github.com/antonrybakov/ordersaga/internal/metrics"
	ordersvc "github.com/antonrybakov/ordersaga/internal/service/order"
)

// sagaContext — эфемерное состояние одного вызова саги. Создаётся на старте,
// выбрасывается на выходе; никогда не разделяется между вызовами
// и не персистится: крэш процесса между шагами оставляет заказ в PENDING
// без автоматического восстановления.
type sagaContext struct {
	order          domain.Order
	orderCreated   bool
	stockReserved  bool
	orderConfirmed bool
	reserveItems   []domain.ReserveStockItem
}

// Orchestrator последовательно проводит заказ через
// START → ORDER_CREATED → STOCK_RESERVED → CONFIRMED и запускает
// компенсацию при отказе любого шага после создания заказа.
type Orchestrator struct {
	orders   *ordersvc.Service
	products domain.ProductCatalog
	logger   *log.Entry
	metrics  *metrics.SagaMetrics
}

// NewOrchestrator создаёт рабочий экземпляр оркестратора.
func NewOrchestrator(orders *ordersvc.Service, products domain.ProductCatalog, logger *log.Entry) *Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "saga")
	}
	return &Orchestrator{
		orders:   orders,
		products: products,
		logger:   logger,
		metrics:  metrics.NewSagaMetrics(),
	}
}

// NewOrchestratorWithoutMetrics создаёт оркестратор без метрик (для тестов).
func NewOrchestratorWithoutMetrics(orders *ordersvc.Service, products domain.ProductCatalog, logger *log.Entry) *Orchestrator {
	orch := NewOrchestrator(orders, products, logger)
	orch.metrics = nil
	return orch
}

// CreateOrderWithSaga выполняет сагу создания заказа и возвращает заказ
// в финальном статусе CONFIRMED либо исходную ошибку отказавшего шага.
// Ошибки компенсационного пути логируются и глотаются: вызывающему
// всегда возвращается именно исходный отказ.
func (o *Orchestrator) CreateOrderWithSaga(ctx context.Context, req ordersvc.CreateRequest, buyerID string) (domain.Order, error) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordSagaStarted()
	}
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordSagaDuration(time.Since(start))
			o.metrics.RecordSagaInFlightFinished()
		}
	}()

	o.logger.WithField("buyer_id", buyerID).Info("starting order saga orchestration")
	sctx := &sagaContext{}

	// Диагностический контекст (order_id) живёт ровно один вызов саги:
	// отдельный *log.Entry создаётся после создания заказа и выбрасывается
	// на обоих исходах вместе с sagaContext.
	logger := o.logger

	order, err := o.createPendingOrder(ctx, req, buyerID, sctx)
	if err != nil {
		// До создания заказа компенсировать нечего: отказ уходит сразу.
		o.recordFailed()
		return domain.Order{}, err
	}
	logger = logger.WithField("order_id", order.ID)

	if err := o.reserveProductStock(ctx, sctx, logger); err != nil {
		o.compensate(ctx, sctx, logger)
		o.recordFailed()
		return domain.Order{}, err
	}

	confirmed, err := o.confirmOrder(ctx, sctx, logger)
	if err != nil {
		o.compensate(ctx, sctx, logger)
		o.recordFailed()
		return domain.Order{}, err
	}

	if o.metrics != nil {
		o.metrics.RecordSagaCompleted()
	}
	logger.Info("saga completed successfully")
	return confirmed, nil
}

// createPendingOrder — шаг START → ORDER_CREATED.
func (o *Orchestrator) createPendingOrder(ctx context.Context, req ordersvc.CreateRequest, buyerID string, sctx *sagaContext) (domain.Order, error) {
	stepStart := time.Now()
	order, err := o.orders.CreatePendingOrder(ctx, req, buyerID)
	o.recordStep(domain.SagaStepCreate, stepStart)
	if err != nil {
		o.logger.WithError(err).WithField("buyer_id", buyerID).Warn("order creation failed")
		return domain.Order{}, err
	}

	sctx.order = order
	sctx.orderCreated = true
	sctx.reserveItems = order.ReserveItems()
	o.logger.WithField("order_id", order.ID).Info("order created")
	return order, nil
}

// reserveProductStock — шаг ORDER_CREATED → STOCK_RESERVED.
func (o *Orchestrator) reserveProductStock(ctx context.Context, sctx *sagaContext, logger *log.Entry) error {
	logger.Info("reserving stock")

	stepStart := time.Now()
	outcome, err := o.products.ReserveStock(ctx, sctx.reserveItems)
	o.recordStep(domain.SagaStepReserve, stepStart)
	if err != nil {
		logger.WithError(err).Warn("stock reservation call failed")
		return err
	}

	switch result := outcome.(type) {
	case domain.StockReserved:
		sctx.stockReserved = true
		logger.Info("stock reserved")
		return nil
	case domain.StockReservationFailed:
		logger.WithField("reason", result.Reason).Warn("stock reservation failed")
		return domain.NewBusinessError("stock reservation failed: %s", result.Reason)
	default:
		logger.Error("unknown stock reservation response")
		return domain.NewBusinessError("unknown stock reservation response")
	}
}

// confirmOrder — шаг STOCK_RESERVED → CONFIRMED.
func (o *Orchestrator) confirmOrder(ctx context.Context, sctx *sagaContext, logger *log.Entry) (domain.Order, error) {
	stepStart := time.Now()
	confirmed, err := o.orders.UpdateOrderStatus(ctx, sctx.order.ID, domain.OrderStatusConfirmed)
	o.recordStep(domain.SagaStepConfirm, stepStart)
	if err != nil {
		logger.WithError(err).Error("failed to confirm order")
		return domain.Order{}, domain.NewBusinessError("order confirmation failed: %s", err.Error())
	}

	sctx.orderConfirmed = true
	logger.Info("order confirmed")
	return confirmed, nil
}

// compensate выполняет компенсацию в фиксированном порядке: сначала снятие
// резерва, затем перевод заказа в FAILED. Оба действия best-effort, их
// собственные отказы никогда не подменяют исходную ошибку.
func (o *Orchestrator) compensate(ctx context.Context, sctx *sagaContext, logger *log.Entry) {
	logger.Info("starting compensation actions")
	if o.metrics != nil {
		o.metrics.RecordCompensation()
	}

	o.releaseReservedStock(ctx, sctx, logger)
	o.markOrderAsFailed(ctx, sctx, logger)
	logger.Info("compensation completed")
}

// releaseReservedStock снимает резерв, только если он был получен.
func (o *Orchestrator) releaseReservedStock(ctx context.Context, sctx *sagaContext, logger *log.Entry) {
	if !sctx.stockReserved || sctx.reserveItems == nil {
		return
	}

	logger.Info("compensating: releasing stock")
	stepStart := time.Now()
	outcome, err := o.products.ReleaseStock(ctx, sctx.reserveItems)
	o.recordStep(domain.SagaStepRelease, stepStart)
	if err != nil {
		logger.WithError(err).Error("failed to release stock during compensation")
		return
	}
	if failed, ok := outcome.(domain.StockReleaseFailed); ok {
		logger.WithField("reason", failed.Reason).Error("stock release rejected during compensation")
	}
}

// markOrderAsFailed переводит заказ в FAILED, только если он был создан
// и не был подтверждён.
func (o *Orchestrator) markOrderAsFailed(ctx context.Context, sctx *sagaContext, logger *log.Entry) {
	if !sctx.orderCreated || sctx.orderConfirmed {
		return
	}

	logger.Info("compensating: marking order as failed")
	stepStart := time.Now()
	if _, err := o.orders.UpdateOrderStatus(ctx, sctx.order.ID, domain.OrderStatusFailed); err != nil {
		logger.WithError(err).Error("failed to mark order as failed during compensation")
	}
	o.recordStep(domain.SagaStepMarkFailed, stepStart)
}

func (o *Orchestrator) recordFailed() {
	if o.metrics != nil {
		o.metrics.RecordSagaFailed()
	}
}

func (o *Orchestrator) recordStep(step domain.SagaStep, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordStepDuration(string(step), time.Since(start))
	}
}
