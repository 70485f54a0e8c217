package api

import (
	"time"

	"github.com/dukerupert/verdandi/internal/domain"
)

// CartView is the JSON rendering of a cart summary.
type CartView struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customer_id"`
	Items         []CartItemView `json:"items"`
	ItemCount     int            `json:"item_count"`
	SubtotalCents int64          `json:"subtotal_cents"`
	DiscountCents int64          `json:"discount_cents"`
	ShippingCents int64          `json:"shipping_cents"`
	TaxCents      int64          `json:"tax_cents"`
	TotalCents    int64          `json:"total_cents"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CartItemView is one cart line in a response.
type CartItemView struct {
	ProductID         string `json:"product_id"`
	Variant           string `json:"variant,omitempty"`
	ProductName       string `json:"product_name"`
	SKU               string `json:"sku"`
	Quantity          int    `json:"quantity"`
	UnitPriceCents    int64  `json:"unit_price_cents"`
	LineSubtotalCents int64  `json:"line_subtotal_cents"`
	ImageURL          string `json:"image_url,omitempty"`
}

func toCartView(summary *domain.CartSummary) CartView {
	view := CartView{
		ID:            summary.Cart.ID,
		CustomerID:    summary.Cart.CustomerID,
		Items:         make([]CartItemView, 0, len(summary.Items)),
		ItemCount:     summary.ItemCount,
		SubtotalCents: summary.SubtotalCents,
		DiscountCents: summary.DiscountCents,
		ShippingCents: summary.ShippingCents,
		TaxCents:      summary.TaxCents,
		TotalCents:    summary.TotalCents,
		UpdatedAt:     summary.Cart.UpdatedAt,
	}
	for _, item := range summary.Items {
		view.Items = append(view.Items, CartItemView{
			ProductID:         item.ProductID,
			Variant:           item.Variant,
			ProductName:       item.ProductName,
			SKU:               item.SKU,
			Quantity:          item.Quantity,
			UnitPriceCents:    item.UnitPriceCents,
			LineSubtotalCents: item.LineSubtotalCents,
			ImageURL:          item.ImageURL,
		})
	}
	return view
}

// OrderView is the JSON rendering of an order aggregate.
type OrderView struct {
	ID              string             `json:"id"`
	OrderNumber     string             `json:"order_number"`
	CustomerID      string             `json:"customer_id"`
	Status          string             `json:"status"`
	Items           []OrderItemView    `json:"items"`
	ShippingAddress domain.Address     `json:"shipping_address"`
	BillingAddress  domain.Address     `json:"billing_address"`
	SubtotalCents   int64              `json:"subtotal_cents"`
	DiscountCents   int64              `json:"discount_cents"`
	ShippingCents   int64              `json:"shipping_cents"`
	TaxCents        int64              `json:"tax_cents"`
	TotalCents      int64              `json:"total_cents"`
	CouponCode      string             `json:"coupon_code,omitempty"`
	Currency        string             `json:"currency"`
	Payment         PaymentView        `json:"payment"`
	Tracking        *TrackingView      `json:"tracking,omitempty"`
	Cancellation    *CancellationView  `json:"cancellation,omitempty"`
	History         []StatusChangeView `json:"history,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// OrderItemView is one immutable order line in a response.
type OrderItemView struct {
	ProductID      string `json:"product_id"`
	Variant        string `json:"variant,omitempty"`
	ProductName    string `json:"product_name"`
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// PaymentView is the payment sub-record in a response.
type PaymentView struct {
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	AmountCents   int64      `json:"amount_cents"`
	Currency      string     `json:"currency"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// TrackingView carries shipment tracking in a response.
type TrackingView struct {
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"tracking_number"`
}

// CancellationView records a cancellation in a response.
type CancellationView struct {
	Reason       string    `json:"reason,omitempty"`
	Actor        string    `json:"actor"`
	At           time.Time `json:"at"`
	RefundStatus string    `json:"refund_status,omitempty"`
}

// StatusChangeView is one audit trail entry in a response.
type StatusChangeView struct {
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
}

func toOrderView(order *domain.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		Status:          string(order.Status),
		Items:           make([]OrderItemView, 0, len(order.Items)),
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		SubtotalCents:   order.SubtotalCents,
		DiscountCents:   order.DiscountCents,
		ShippingCents:   order.ShippingCents,
		TaxCents:        order.TaxCents,
		TotalCents:      order.TotalCents,
		CouponCode:      order.CouponCode,
		Currency:        order.Currency,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Payment: PaymentView{
			Method:        string(order.Payment.Method),
			Status:        string(order.Payment.Status),
			TransactionID: order.Payment.TransactionID,
			AmountCents:   order.Payment.AmountCents,
			Currency:      order.Payment.Currency,
			PaidAt:        order.Payment.PaidAt,
		},
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ProductID:      item.ProductID,
			Variant:        item.Variant,
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}
	if order.Tracking != nil {
		view.Tracking = &TrackingView{
			Carrier:        order.Tracking.Carrier,
			TrackingNumber: order.Tracking.TrackingNumber,
		}
	}
	if order.Cancellation != nil {
		view.Cancellation = &CancellationView{
			Reason:       order.Cancellation.Reason,
			Actor:        order.Cancellation.Actor,
			At:           order.Cancellation.At,
			RefundStatus: order.Cancellation.RefundStatus,
		}
	}
	for _, change := range order.History {
		view.History = append(view.History, StatusChangeView{
			Status: string(change.Status),
			Note:   change.Note,
			Actor:  change.Actor,
			At:     change.At,
		})
	}
	return view
}
