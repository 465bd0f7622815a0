package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/domain"
	ordersvc "github.com/antonrybakov/ordersaga/internal/service/order"
	"github.com/antonrybakov/ordersaga/internal/service/saga"
)

// buyerHeader передает идентификатор покупателя; в исходной системе его
// выставляет шлюз после аутентификации.
const buyerHeader = "X-Buyer-Id"

// Handler обслуживает HTTP-операции над заказами. Создание заказа запускает
// сагу и отвечает только после ее завершения, остальные операции ходят
// напрямую в доменный сервис.
type Handler struct {
	saga   *saga.Orchestrator
	orders *ordersvc.Service
	logger *log.Entry
}

// NewHandler создает HTTP-обработчик заказов.
func NewHandler(orchestrator *saga.Orchestrator, orders *ordersvc.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Handler{
		saga:   orchestrator,
		orders: orders,
		logger: logger.WithField("component", "http_handler"),
	}
}

// CreateOrder принимает позиции заказа, прогоняет сагу и возвращает итоговый
// заказ либо ошибку с исходной причиной отказа.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	buyerID := r.Header.Get(buyerHeader)
	if buyerID == "" {
		h.writeError(w, http.StatusBadRequest, "buyer_required", "X-Buyer-Id header is required")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "items_required", "order must contain at least one item")
		return
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid_item", "product_id is required and quantity must be at least 1")
			return
		}
	}

	order, err := h.saga.CreateOrderWithSaga(r.Context(), toCreateRequest(req), buyerID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// GetOrder возвращает заказ по идентификатору вместе с актуальными данными покупателя.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.orders.Read(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// ListOrdersByBuyer возвращает все заказы покупателя, без подстановки
// данных покупателя в каждый заказ.
func (h *Handler) ListOrdersByBuyer(w http.ResponseWriter, r *http.Request) {
	buyerID := chi.URLParam(r, "buyerID")
	orders, err := h.orders.ReadAllByBuyer(r.Context(), buyerID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderListResponse(orders))
}

// UpdateOrderStatus выставляет статус заказа напрямую. Допустимость перехода
// между статусами не проверяется.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.OrderID == "" {
		h.writeError(w, http.StatusBadRequest, "order_id_required", "order_id is required")
		return
	}
	status := domain.OrderStatus(req.Status)
	if !status.IsValid() {
		h.writeError(w, http.StatusBadRequest, "invalid_status", "status must be one of PENDING, CONFIRMED, FAILED, CANCELED")
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), req.OrderID, status)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// DeleteOrder удаляет заказ вместе с позициями.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.orders.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDomainError переводит доменную ошибку в HTTP-статус. Причина бизнес-отказа
// саги отдается клиенту без изменений.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		h.writeError(w, http.StatusNotFound, "not_found", notFound.Error())
		return
	}
	if domain.IsValidation(err) {
		h.writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	var business *domain.BusinessError
	if errors.As(err, &business) {
		h.writeError(w, http.StatusConflict, "business_rule_violated", business.Error())
		return
	}
	var transport *domain.TransportError
	if errors.As(err, &transport) {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Upstream call failed")
		h.writeError(w, http.StatusBadGateway, "upstream_unavailable", "dependent service is unavailable")
		return
	}

	h.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	h.writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{Error: code, Message: message})
}
