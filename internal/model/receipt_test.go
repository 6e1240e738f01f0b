// internal/model/receipt_test.go
package model

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func validReceipt() *ReceiptData {
	return &ReceiptData{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-1207",
		CafeName:    "Brew Lab",
		Items: []ReceiptItem{
			{
				Name:      "Cold Brew",
				Quantity:  2,
				UnitPrice: decimal.NewFromInt(180),
				LineTotal: decimal.NewFromInt(360),
			},
		},
		Subtotal:      decimal.NewFromInt(360),
		TaxAmount:     decimal.NewFromInt(18),
		TaxRate:       decimal.NewFromInt(5),
		FinalAmount:   decimal.NewFromInt(378),
		PaymentMethod: PaymentMethodCard,
		OrderedAt:     time.Now(),
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validReceipt().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReceiptData)
	}{
		{"missing order number", func(r *ReceiptData) { r.OrderNumber = "" }},
		{"no items", func(r *ReceiptData) { r.Items = nil }},
		{"zero quantity", func(r *ReceiptData) { r.Items[0].Quantity = 0 }},
		{"negative quantity", func(r *ReceiptData) { r.Items[0].Quantity = -1 }},
		{"line total mismatch", func(r *ReceiptData) { r.Items[0].LineTotal = decimal.NewFromInt(100) }},
		{"final amount drift", func(r *ReceiptData) { r.FinalAmount = decimal.NewFromInt(400) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReceipt()
			tt.mutate(r)
			if err := r.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateToleratesOneMinorUnit(t *testing.T) {
	r := validReceipt()
	// Rounded total one paisa off is still acceptable
	r.FinalAmount = decimal.RequireFromString("378.01")
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() with one minor unit drift = %v, want nil", err)
	}

	r.FinalAmount = decimal.RequireFromString("378.02")
	if err := r.Validate(); err == nil {
		t.Fatal("Validate() with two minor units of drift = nil, want error")
	}
}

func TestValidateTotalsRandomized(t *testing.T) {
	// Fixed seed keeps the run reproducible; a failing case prints its
	// iteration number.
	rng := rand.New(rand.NewSource(1207))

	for i := 0; i < 200; i++ {
		itemCount := 1 + rng.Intn(6)
		items := make([]ReceiptItem, 0, itemCount)
		subtotal := decimal.Zero
		for j := 0; j < itemCount; j++ {
			qty := 1 + rng.Intn(5)
			// Prices in whole paise, up to 500 rupees
			price := decimal.New(int64(1+rng.Intn(50000)), -2)
			lineTotal := price.Mul(decimal.NewFromInt(int64(qty)))
			items = append(items, ReceiptItem{
				Name:      fmt.Sprintf("Item %d", j),
				Quantity:  qty,
				UnitPrice: price,
				LineTotal: lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		// Discount up to half the subtotal, rounded to whole paise
		discount := subtotal.Mul(decimal.New(int64(rng.Intn(50)), -2)).Round(2)
		taxRate := decimal.NewFromInt(5)
		tax := subtotal.Sub(discount).Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
		final := subtotal.Sub(discount).Add(tax)

		r := &ReceiptData{
			OrderID:        uuid.New(),
			OrderNumber:    fmt.Sprintf("ORD-%04d", i),
			CafeName:       "Brew Lab",
			Items:          items,
			Subtotal:       subtotal,
			TaxAmount:      tax,
			TaxRate:        taxRate,
			DiscountAmount: discount,
			FinalAmount:    final,
			PaymentMethod:  PaymentMethodCash,
			OrderedAt:      time.Now(),
		}

		if err := r.Validate(); err != nil {
			t.Fatalf("iteration %d: Validate() = %v for consistent totals %+v", i, err, r)
		}

		// Push the final amount past the rounding tolerance
		r.FinalAmount = final.Add(decimal.New(2, -2))
		if err := r.Validate(); err == nil {
			t.Fatalf("iteration %d: Validate() = nil for drifted final amount", i)
		}
	}
}

func TestOrderSuffix(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"ORD-2041", "41"},
		{"7", "7"},
		{"42", "42"},
		{"", ""},
	}

	for _, tt := range tests {
		r := &ReceiptData{OrderNumber: tt.number}
		if got := r.OrderSuffix(); got != tt.want {
			t.Errorf("OrderSuffix(%q) = %q, want %q", tt.number, got, tt.want)
		}
	}
}

func TestProfileValidate(t *testing.T) {
	host := "192.168.1.50"
	vendor := "04b8"
	product := "0202"
	port := "/dev/ttyUSB0"

	tests := []struct {
		name    string
		profile PrinterProfile
		wantErr bool
	}{
		{
			"network with host",
			PrinterProfile{Transport: TransportKindNetwork, Host: &host, PaperWidth: 32},
			false,
		},
		{
			"network without host",
			PrinterProfile{Transport: TransportKindNetwork, PaperWidth: 32},
			true,
		},
		{
			"usb with ids",
			PrinterProfile{Transport: TransportKindUSB, VendorID: &vendor, ProductID: &product, PaperWidth: 48},
			false,
		},
		{
			"usb without ids",
			PrinterProfile{Transport: TransportKindUSB, PaperWidth: 48},
			true,
		},
		{
			"serial with port",
			PrinterProfile{Transport: TransportKindSerial, SerialPort: &port, PaperWidth: 32},
			false,
		},
		{
			"agent needs nothing",
			PrinterProfile{Transport: TransportKindAgent, PaperWidth: 32},
			false,
		},
		{
			"unsupported width",
			PrinterProfile{Transport: TransportKindAgent, PaperWidth: 40},
			true,
		},
		{
			"unknown transport",
			PrinterProfile{Transport: TransportKind("BLUETOOTH"), PaperWidth: 32},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNetworkAddrDefaultPort(t *testing.T) {
	host := "192.168.1.50"
	p := PrinterProfile{Host: &host}
	if got := p.NetworkAddr(); got != "192.168.1.50:9100" {
		t.Errorf("NetworkAddr() = %q, want default raw-print port", got)
	}

	port := 6001
	p.Port = &port
	if got := p.NetworkAddr(); got != "192.168.1.50:6001" {
		t.Errorf("NetworkAddr() = %q, want explicit port", got)
	}
}

func TestCombine(t *testing.T) {
	ok := PrintResult{Success: true, Transport: TransportAgent}
	bad := PrintResult{Success: false, Transport: TransportNone}

	both := Combine(ok, ok)
	if !both.Success || both.Partial {
		t.Errorf("Combine(ok, ok) = %+v, want full success", both)
	}

	partial := Combine(ok, bad)
	if partial.Success || !partial.Partial {
		t.Errorf("Combine(ok, bad) = %+v, want partial", partial)
	}

	failed := Combine(bad, bad)
	if failed.Success || failed.Partial {
		t.Errorf("Combine(bad, bad) = %+v, want total failure", failed)
	}
}

func TestHandlesDoc(t *testing.T) {
	tests := []struct {
		class PrinterClass
		doc   DocType
		want  bool
	}{
		{PrinterClassCombined, DocTypeKOT, true},
		{PrinterClassCombined, DocTypeReceipt, true},
		{PrinterClassKOT, DocTypeKOT, true},
		{PrinterClassKOT, DocTypeReceipt, false},
		{PrinterClassReceipt, DocTypeReceipt, true},
		{PrinterClassReceipt, DocTypeKOT, false},
	}

	for _, tt := range tests {
		p := PrinterProfile{PrinterClass: tt.class}
		if got := p.HandlesDoc(tt.doc); got != tt.want {
			t.Errorf("%s.HandlesDoc(%s) = %v, want %v", tt.class, tt.doc, got, tt.want)
		}
	}
}
