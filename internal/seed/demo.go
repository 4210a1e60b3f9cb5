package seed

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendordesk/api/internal/service"
)

type line struct {
	name  string
	qty   int32
	price int64
}

func demoOrder(id, customer string, status service.Status, placed time.Time, pay service.PaymentMethod, lines ...line) service.Order {
	o := service.Order{
		ID:            id,
		CustomerName:  customer,
		Status:        status,
		OrderTime:     placed,
		PaymentMethod: pay,
		TotalAmount:   decimal.Zero,
	}
	for i, l := range lines {
		it := service.OrderItem{
			ID:       id + "-" + string(rune('A'+i)),
			Name:     l.name,
			Quantity: l.qty,
			Price:    decimal.NewFromInt(l.price),
		}
		o.Items = append(o.Items, it)
		o.TotalAmount = o.TotalAmount.Add(it.Subtotal())
	}
	return o
}

// Demo returns the built-in order set the dashboard starts with, with
// order times relative to now. Every order passes service.Order.Validate.
func Demo(now time.Time) []service.Order {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	scheduled := demoOrder("ORD-1006", "Meera Joshi", service.StatusScheduled, ago(3*time.Hour), service.PaymentCard,
		line{"Veg Biryani", 4, 240},
		line{"Raita", 4, 60},
	)
	scheduled.ScheduledTime = at(4 * time.Hour)

	ready := demoOrder("ORD-1004", "Arjun Desai", service.StatusReadyForPickup, ago(35*time.Minute), service.PaymentUPI,
		line{"Masala Dosa", 2, 150},
	)
	ready.PickupTime = at(5 * time.Minute)

	rejected := demoOrder("ORD-1007", "Rohan Gupta", service.StatusCancelled, ago(2*time.Hour), service.PaymentCash,
		line{"Paneer Tikka", 1, 280},
	)
	rejected.CancellationReason = "Item out of stock"

	return []service.Order{
		demoOrder("ORD-1001", "Rahul Sharma", service.StatusIncoming, ago(2*time.Minute), service.PaymentUPI,
			line{"Butter Chicken", 2, 320},
			line{"Garlic Naan", 4, 50},
		),
		demoOrder("ORD-1002", "Priya Patel", service.StatusIncoming, ago(6*time.Minute), service.PaymentCard,
			line{"Paneer Tikka", 1, 280},
			line{"Cold Coffee", 2, 120},
		),
		demoOrder("ORD-1003", "Sneha Reddy", service.StatusPreparing, ago(18*time.Minute), service.PaymentCash,
			line{"Chole Bhature", 2, 180},
		),
		ready,
		demoOrder("ORD-1005", "Vikram Singh", service.StatusPending, ago(50*time.Minute), service.PaymentUPI,
			line{"Gulab Jamun", 3, 90},
		),
		scheduled,
		rejected,
		demoOrder("ORD-1008", "Ananya Iyer", service.StatusCompleted, ago(5*time.Hour), service.PaymentCard,
			line{"Butter Chicken", 1, 320},
			line{"Veg Biryani", 1, 240},
		),
	}
}
