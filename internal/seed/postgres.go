package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/vendordesk/api/internal/service"
)

// Querier runs read queries. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Execer runs write statements. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const listOrdersSQL = `
	SELECT id, customer_name, total_amount, status, order_time,
	       pickup_time, scheduled_time, cancellation_reason, payment_method
	FROM orders
	ORDER BY seq
`

const listOrderItemsSQL = `
	SELECT id, order_id, name, quantity, price
	FROM order_items
	ORDER BY order_id, position
`

type orderRow struct {
	ID                 string
	CustomerName       string
	TotalAmount        pgtype.Numeric
	Status             string
	OrderTime          time.Time
	PickupTime         pgtype.Timestamptz
	ScheduledTime      pgtype.Timestamptz
	CancellationReason pgtype.Text
	PaymentMethod      string
}

type itemRow struct {
	ID       string
	OrderID  string
	Name     string
	Quantity int32
	Price    pgtype.Numeric
}

// LoadPostgres reads every order and its items, in insertion order.
// Orders are returned as stored; the manager validates them on Seed.
func LoadPostgres(ctx context.Context, db Querier) ([]service.Order, error) {
	rows, err := db.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	orderRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[orderRow])
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}

	rows, err = db.Query(ctx, listOrderItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	itemRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[itemRow])
	if err != nil {
		return nil, fmt.Errorf("scan order items: %w", err)
	}

	items := make(map[string][]service.OrderItem, len(orderRows))
	for _, it := range itemRows {
		items[it.OrderID] = append(items[it.OrderID], service.OrderItem{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    numericToDecimal(it.Price),
		})
	}

	orders := make([]service.Order, 0, len(orderRows))
	for _, r := range orderRows {
		orders = append(orders, toOrder(r, items[r.ID]))
	}
	return orders, nil
}

func toOrder(r orderRow, items []service.OrderItem) service.Order {
	o := service.Order{
		ID:            r.ID,
		CustomerName:  r.CustomerName,
		TotalAmount:   numericToDecimal(r.TotalAmount),
		Status:        service.Status(r.Status),
		Items:         items,
		OrderTime:     r.OrderTime,
		PaymentMethod: service.PaymentMethod(r.PaymentMethod),
	}
	if r.PickupTime.Valid {
		t := r.PickupTime.Time
		o.PickupTime = &t
	}
	if r.ScheduledTime.Valid {
		t := r.ScheduledTime.Time
		o.ScheduledTime = &t
	}
	if r.CancellationReason.Valid {
		o.CancellationReason = r.CancellationReason.String
	}
	return o
}

const insertOrderSQL = `
	INSERT INTO orders (id, customer_name, total_amount, status, order_time,
	                    pickup_time, scheduled_time, cancellation_reason, payment_method)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO NOTHING
`

const insertOrderItemSQL = `
	INSERT INTO order_items (id, order_id, position, name, quantity, price)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
`

// WritePostgres inserts orders that do not exist yet and returns how many
// were created. Run it inside a transaction for all-or-nothing semantics.
func WritePostgres(ctx context.Context, db Execer, orders []service.Order) (int, error) {
	inserted := 0
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return inserted, fmt.Errorf("order %s: %w", o.ID, err)
		}

		tag, err := db.Exec(ctx, insertOrderSQL,
			o.ID,
			o.CustomerName,
			decimalToNumeric(o.TotalAmount),
			string(o.Status),
			o.OrderTime,
			timePtrToTimestamptz(o.PickupTime),
			timePtrToTimestamptz(o.ScheduledTime),
			pgtype.Text{String: o.CancellationReason, Valid: o.CancellationReason != ""},
			string(o.PaymentMethod),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert order %s: %w", o.ID, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		inserted++

		for pos, it := range o.Items {
			if _, err := db.Exec(ctx, insertOrderItemSQL,
				it.ID, o.ID, pos, it.Name, it.Quantity, decimalToNumeric(it.Price),
			); err != nil {
				return inserted, fmt.Errorf("insert order item %s: %w", it.ID, err)
			}
		}
	}
	return inserted, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	s, ok := val.(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func timePtrToTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
