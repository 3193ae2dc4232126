package service

import (
	"github.com/savor-pos/api/internal/fault"
	"github.com/shopspring/decimal"
)

// BillTotals holds the derived money fields for a bill. All amounts are
// rounded to 2 decimal places.
type BillTotals struct {
	Subtotal           decimal.Decimal
	ServiceCharge      decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	GrandTotal         decimal.Decimal
}

// ComputeBill derives the bill totals from an order subtotal, a flat service
// charge and a percentage discount. The discount applies to subtotal plus
// service charge; the percentage is clamped to [0, 100] so the grand total
// can never go negative or exceed the undiscounted amount.
func ComputeBill(subtotal, serviceCharge, discountPct decimal.Decimal) BillTotals {
	if discountPct.IsNegative() {
		discountPct = decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	if discountPct.GreaterThan(hundred) {
		discountPct = hundred
	}
	if serviceCharge.IsNegative() {
		serviceCharge = decimal.Zero
	}

	base := subtotal.Add(serviceCharge)
	discountAmount := base.Mul(discountPct).Div(hundred).Round(2)
	grandTotal := base.Sub(discountAmount).Round(2)

	return BillTotals{
		Subtotal:           subtotal.Round(2),
		ServiceCharge:      serviceCharge.Round(2),
		DiscountPercentage: discountPct,
		DiscountAmount:     discountAmount,
		GrandTotal:         grandTotal,
	}
}

// CashChange returns the change due for a cash payment. Receiving less than
// the grand total is an INSUFFICIENT_PAYMENT fault carrying the shortfall.
func CashChange(grandTotal, received decimal.Decimal) (decimal.Decimal, error) {
	if received.LessThan(grandTotal) {
		return decimal.Zero, fault.New(fault.InsufficientPayment,
			"cash received %s is less than grand total %s", received.StringFixed(2), grandTotal.StringFixed(2))
	}
	return received.Sub(grandTotal).Round(2), nil
}

// LineTotal prices a single order line.
func LineTotal(unitPrice decimal.Decimal, quantity int32) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt32(quantity)).Round(2)
}

// SumLines totals the line amounts into an order subtotal.
func SumLines(lines []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l)
	}
	return sum.Round(2)
}
