package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/domain"
)

type orderRepositoryPostgres struct {
	db     *sql.DB
	logger *log.Entry
}

// NewOrderRepository создает репозиторий заказов поверх PostgreSQL.
func NewOrderRepository(db *sql.DB, logger *log.Entry) domain.OrderRepository {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &orderRepositoryPostgres{
		db:     db,
		logger: logger.WithField("component", "order_repository"),
	}
}

var _ domain.OrderRepository = (*orderRepositoryPostgres)(nil)

func (r *orderRepositoryPostgres) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin create order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, buyer_id, status, order_date) VALUES ($1, $2, $3, $4)`,
		order.ID, order.BuyerID, string(order.Status), order.OrderDate,
	); err != nil {
		return domain.Order{}, fmt.Errorf("insert order %s: %w", order.ID, err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, name, price, description, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, order.ID, item.ProductID, item.Name, item.Price, item.Description, item.Quantity,
		); err != nil {
			return domain.Order{}, fmt.Errorf("insert order item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit create order: %w", err)
	}
	return order, nil
}

func (r *orderRepositoryPostgres) Get(ctx context.Context, id string) (domain.Order, error) {
	var order domain.Order
	var status string
	row := r.db.QueryRowContext(ctx,
		`SELECT id, buyer_id, status, order_date FROM orders WHERE id = $1`, id)
	if err := row.Scan(&order.ID, &order.BuyerID, &status, &order.OrderDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.NewNotFound("order", id)
		}
		return domain.Order{}, fmt.Errorf("select order %s: %w", id, err)
	}
	order.Status = domain.OrderStatus(status)

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepositoryPostgres) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, buyer_id, status, order_date FROM orders
		 WHERE buyer_id = $1 ORDER BY order_date DESC, id DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("select orders for buyer %s: %w", buyerID, err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		var status string
		if err := rows.Scan(&order.ID, &order.BuyerID, &status, &order.OrderDate); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.Status = domain.OrderStatus(status)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepositoryPostgres) Update(ctx context.Context, order domain.Order) (domain.Order, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET buyer_id = $2, status = $3, order_date = $4 WHERE id = $1`,
		order.ID, order.BuyerID, string(order.Status), order.OrderDate,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order %s: %w", order.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order %s rows affected: %w", order.ID, err)
	}
	if affected == 0 {
		return domain.Order{}, domain.NewNotFound("order", order.ID)
	}
	return order, nil
}

func (r *orderRepositoryPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order %s rows affected: %w", id, err)
	}
	if affected == 0 {
		return domain.NewNotFound("order", id)
	}
	return nil
}

func (r *orderRepositoryPostgres) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, name, price, description, quantity
		 FROM order_items WHERE order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Price, &item.Description, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}
	return items, nil
}
