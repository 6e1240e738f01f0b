// internal/model/receipt.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodCard    PaymentMethod = "CARD"
	PaymentMethodUPI     PaymentMethod = "UPI"
	PaymentMethodWallet  PaymentMethod = "WALLET"
	PaymentMethodPending PaymentMethod = "PENDING"
)

// DeliveryMode represents how the order reaches the customer
type DeliveryMode string

const (
	DeliveryModePickup   DeliveryMode = "PICKUP"
	DeliveryModeDelivery DeliveryMode = "DELIVERY"
	DeliveryModeDineIn   DeliveryMode = "DINE_IN"
)

// ReceiptItem is one line item of a printable order
type ReceiptItem struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Instructions string          `json:"instructions,omitempty"`
}

// ReceiptData is the canonical, transport-agnostic description of a
// printable order. It is constructed once per print request and treated as
// immutable for the duration of a dispatch.
type ReceiptData struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CafeName       string          `json:"cafe_name"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone"`
	DeliveryMode   DeliveryMode    `json:"delivery_mode"`
	BlockOrTable   string          `json:"block_or_table,omitempty"`
	Items          []ReceiptItem   `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	OrderedAt      time.Time       `json:"ordered_at"`
	ReadyAt        *time.Time      `json:"ready_at,omitempty"`
	PointsEarned   int             `json:"points_earned"`
	PointsRedeemed int             `json:"points_redeemed"`
}

// minorUnit is the rounding tolerance for the totals invariant: one minor
// currency unit (e.g. one paisa) of drift is accepted.
var minorUnit = decimal.New(1, -2)

// Validate checks the ReceiptData invariants. A violation is a programmer
// error on the caller's side and must fail the print request before any
// transport is attempted.
func (r *ReceiptData) Validate() error {
	if r.OrderNumber == "" {
		return fmt.Errorf("receipt validation: order_number is required")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("receipt validation: at least one line item is required")
	}

	for i, item := range r.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("receipt validation: item %d (%s) has quantity %d, must be >= 1",
				i, item.Name, item.Quantity)
		}

		expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !item.LineTotal.Equal(expected) {
			return fmt.Errorf("receipt validation: item %d (%s) line total %s != %d x %s",
				i, item.Name, item.LineTotal, item.Quantity, item.UnitPrice)
		}
	}

	// final == subtotal - discount + tax, within one minor unit of rounding
	expected := r.Subtotal.Sub(r.DiscountAmount).Add(r.TaxAmount)
	drift := r.FinalAmount.Sub(expected).Abs()
	if drift.GreaterThan(minorUnit) {
		return fmt.Errorf("receipt validation: final amount %s != subtotal %s - discount %s + tax %s",
			r.FinalAmount, r.Subtotal, r.DiscountAmount, r.TaxAmount)
	}

	return nil
}

// OrderSuffix returns the two-digit suffix of the order number used as the
// short kitchen reference on the KOT header.
func (r *ReceiptData) OrderSuffix() string {
	if len(r.OrderNumber) <= 2 {
		return r.OrderNumber
	}
	return r.OrderNumber[len(r.OrderNumber)-2:]
}
