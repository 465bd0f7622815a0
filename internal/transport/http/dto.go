package http

import (
	"time"

	"github.com/antonrybakov/ordersaga/internal/domain"
	ordersvc "github.com/antonrybakov/ordersaga/internal/service/order"
)

type createOrderRequest struct {
	Items []orderItemRequest `json:"order_items"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type updateStatusRequest struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	BuyerID   string              `json:"buyer_id"`
	Status    string              `json:"status"`
	Buyer     *domain.Buyer       `json:"buyer,omitempty"`
	Items     []orderItemResponse `json:"order_items"`
	OrderDate time.Time           `json:"order_date"`
}

type orderItemResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Quantity    int32   `json:"quantity"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toCreateRequest(req createOrderRequest) ordersvc.CreateRequest {
	items := make([]ordersvc.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ordersvc.ItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return ordersvc.CreateRequest{Items: items}
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, orderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Name:        it.Name,
			Price:       it.Price,
			Description: it.Description,
			Quantity:    it.Quantity,
		})
	}
	resp := orderResponse{
		ID:        order.ID,
		BuyerID:   order.BuyerID,
		Status:    string(order.Status),
		Items:     items,
		OrderDate: order.OrderDate,
	}
	if order.Buyer.ID != "" {
		buyer := order.Buyer
		resp.Buyer = &buyer
	}
	return resp
}

func toOrderListResponse(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return out
}
