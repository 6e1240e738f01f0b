// internal/format/formatter.go
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"print-service/internal/model"
)

// DocumentOptions carries the profile-derived settings that influence layout.
// Everything here comes from the cafe's PrinterProfile; the formatter itself
// never touches configuration or I/O.
type DocumentOptions struct {
	Width        int
	TaxDisplay   model.TaxDisplayMode
	DecimalStyle model.DecimalStyle
	AutoCut      bool
	// BrandingLines are optional cafe-specific lines (legal or tax
	// identifiers) printed under the cafe name on the receipt.
	BrandingLines []string
}

// OptionsFromProfile derives DocumentOptions from a printer profile
func OptionsFromProfile(p *model.PrinterProfile) DocumentOptions {
	return DocumentOptions{
		Width:        p.PaperWidth,
		TaxDisplay:   p.TaxDisplay,
		DecimalStyle: p.DecimalStyle,
		AutoCut:      p.AutoCut,
	}
}

const (
	dateLayout = "02/01/2006 15:04"
	qtyWidth   = 3
	rateWidth  = 7
	amtWidth   = 8
)

// FormatKOT lays out the kitchen order ticket. Pure and deterministic:
// identical input yields an identical instruction sequence.
func FormatKOT(r *model.ReceiptData, opts DocumentOptions) []Instruction {
	b := newBuilder(opts.Width)

	// Header with the short kitchen reference
	b.align(AlignCenter)
	b.bold(true)
	b.doubleHeight(true)
	b.text(fmt.Sprintf("KOT #%s", r.OrderSuffix()))
	b.doubleHeight(false)
	b.bold(false)

	b.text(deliveryTag(r.DeliveryMode))

	b.align(AlignLeft)
	b.text(fmt.Sprintf("Order: %s", r.OrderNumber))
	b.text(fmt.Sprintf("Time : %s", r.OrderedAt.Format(dateLayout)))
	if r.BlockOrTable != "" {
		b.text(fmt.Sprintf("For  : %s", r.BlockOrTable))
	}

	b.rule()
	nameW := opts.Width - qtyWidth - 1
	b.text(fmt.Sprintf("%-*s %*s", nameW, "ITEM", qtyWidth, "QTY"))
	b.rule()

	for _, item := range r.Items {
		b.text(fmt.Sprintf("%-*s %*d", nameW, truncate(item.Name, nameW), qtyWidth, item.Quantity))
		if item.Instructions != "" {
			b.text(truncate("  >> "+item.Instructions, opts.Width))
		}
	}

	b.rule()
	b.align(AlignCenter)
	b.text("Thank You!")
	b.doubleHeight(true)
	b.text(r.CafeName)
	b.doubleHeight(false)

	b.feed(4)
	if opts.AutoCut {
		b.cut()
	}

	return b.build()
}

// FormatReceipt lays out the customer receipt
func FormatReceipt(r *model.ReceiptData, opts DocumentOptions) []Instruction {
	b := newBuilder(opts.Width)

	// Branding block
	b.align(AlignCenter)
	b.bold(true)
	b.doubleHeight(true)
	b.text(r.CafeName)
	b.doubleHeight(false)
	b.bold(false)
	for _, line := range opts.BrandingLines {
		b.text(truncate(line, opts.Width))
	}

	// Customer block
	b.align(AlignLeft)
	b.text(fmt.Sprintf("Name : %s", r.CustomerName))
	if r.CustomerPhone != "" {
		b.text(fmt.Sprintf("Phone: %s", r.CustomerPhone))
	}
	if r.BlockOrTable != "" {
		b.text(fmt.Sprintf("Block: %s", r.BlockOrTable))
	}
	b.text(fmt.Sprintf("Date : %s", r.OrderedAt.Format(dateLayout)))
	b.text(fmt.Sprintf("Order: %s", r.OrderNumber))

	// Item table
	b.rule()
	nameW := opts.Width - qtyWidth - rateWidth - amtWidth - 3
	b.text(fmt.Sprintf("%-*s %*s %*s %*s",
		nameW, "ITEM", qtyWidth, "QTY", rateWidth, "RATE", amtWidth, "AMT"))
	b.rule()

	for _, item := range r.Items {
		b.text(fmt.Sprintf("%-*s %*d %*s %*s",
			nameW, truncate(item.Name, nameW),
			qtyWidth, item.Quantity,
			rateWidth, money(item.UnitPrice, opts.DecimalStyle),
			amtWidth, money(item.LineTotal, opts.DecimalStyle)))
	}

	// Totals block
	b.rule()
	b.text(totalLine(opts.Width, "Subtotal", money(r.Subtotal, opts.DecimalStyle)))

	if r.DiscountAmount.IsPositive() {
		b.text(totalLine(opts.Width, "Discount", "-"+money(r.DiscountAmount, opts.DecimalStyle)))
	}

	switch opts.TaxDisplay {
	case model.TaxDisplaySplit:
		// Two equal named components; the figures must match receipts
		// already printed in the field.
		half := r.TaxAmount.Div(decimal.NewFromInt(2))
		halfRate := r.TaxRate.Div(decimal.NewFromInt(2))
		b.text(totalLine(opts.Width, fmt.Sprintf("CGST (%s%%)", halfRate), money(half, opts.DecimalStyle)))
		b.text(totalLine(opts.Width, fmt.Sprintf("SGST (%s%%)", halfRate), money(half, opts.DecimalStyle)))
	default:
		b.text(totalLine(opts.Width, fmt.Sprintf("Tax (%s%%)", r.TaxRate), money(r.TaxAmount, opts.DecimalStyle)))
	}

	b.bold(true)
	b.text(totalLine(opts.Width, "TOTAL", money(r.FinalAmount, opts.DecimalStyle)))
	b.bold(false)
	b.rule()

	b.text(fmt.Sprintf("Paid via: %s", paymentLabel(r.PaymentMethod)))
	if r.PointsEarned > 0 {
		b.text(fmt.Sprintf("Points earned  : %d", r.PointsEarned))
	}
	if r.PointsRedeemed > 0 {
		b.text(fmt.Sprintf("Points redeemed: %d", r.PointsRedeemed))
	}

	b.align(AlignCenter)
	b.text("Thank you, visit again!")

	b.feed(4)
	if opts.AutoCut {
		b.cut()
	}

	return b.build()
}

// truncate shortens s to at most w columns, appending an ellipsis when the
// original did not fit.
func truncate(s string, w int) string {
	runes := []rune(s)
	if len(runes) <= w {
		return s
	}
	if w <= 3 {
		return string(runes[:w])
	}
	return string(runes[:w-3]) + "..."
}

// money renders a currency amount in the cafe's decimal convention
func money(d decimal.Decimal, style model.DecimalStyle) string {
	if style == model.DecimalStyleTwoDecimal {
		return d.StringFixed(2)
	}
	return d.Round(0).String()
}

// totalLine renders a label/amount pair spanning the full paper width
func totalLine(width int, label, amount string) string {
	pad := width - len(label) - len(amount)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + amount
}

func deliveryTag(mode model.DeliveryMode) string {
	switch mode {
	case model.DeliveryModeDelivery:
		return "** DELIVERY **"
	case model.DeliveryModeDineIn:
		return "** DINE-IN **"
	default:
		return "** PICKUP **"
	}
}

func paymentLabel(m model.PaymentMethod) string {
	if m == "" {
		return string(model.PaymentMethodPending)
	}
	return string(m)
}
