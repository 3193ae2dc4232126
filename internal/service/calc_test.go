package service

import (
	"errors"
	"testing"

	"github.com/savor-pos/api/internal/fault"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBill_PercentageDiscount(t *testing.T) {
	// subtotal 1300 + service charge 100, 10% off the combined amount
	totals := ComputeBill(dec("1300"), dec("100"), dec("10"))

	if !totals.DiscountAmount.Equal(dec("140")) {
		t.Errorf("discount_amount: got %v, want 140", totals.DiscountAmount)
	}
	if !totals.GrandTotal.Equal(dec("1260")) {
		t.Errorf("grand_total: got %v, want 1260", totals.GrandTotal)
	}
}

func TestComputeBill_NoDiscount(t *testing.T) {
	totals := ComputeBill(dec("1300"), dec("100"), decimal.Zero)

	if !totals.DiscountAmount.Equal(decimal.Zero) {
		t.Errorf("discount_amount: got %v, want 0", totals.DiscountAmount)
	}
	if !totals.GrandTotal.Equal(dec("1400")) {
		t.Errorf("grand_total: got %v, want 1400", totals.GrandTotal)
	}
}

func TestComputeBill_DiscountClampedHigh(t *testing.T) {
	// anything above 100% behaves like 100%
	totals := ComputeBill(dec("1000"), dec("0"), dec("150"))

	if !totals.DiscountPercentage.Equal(dec("100")) {
		t.Errorf("discount_percentage: got %v, want 100", totals.DiscountPercentage)
	}
	if !totals.GrandTotal.Equal(decimal.Zero) {
		t.Errorf("grand_total: got %v, want 0", totals.GrandTotal)
	}
}

func TestComputeBill_DiscountClampedNegative(t *testing.T) {
	totals := ComputeBill(dec("1000"), dec("0"), dec("-5"))

	if !totals.DiscountAmount.Equal(decimal.Zero) {
		t.Errorf("discount_amount: got %v, want 0", totals.DiscountAmount)
	}
	if !totals.GrandTotal.Equal(dec("1000")) {
		t.Errorf("grand_total: got %v, want 1000", totals.GrandTotal)
	}
}

func TestComputeBill_Rounding(t *testing.T) {
	// 333.33 + 0 at 10% -> 33.333 rounds to 33.33
	totals := ComputeBill(dec("333.33"), decimal.Zero, dec("10"))

	if !totals.DiscountAmount.Equal(dec("33.33")) {
		t.Errorf("discount_amount: got %v, want 33.33", totals.DiscountAmount)
	}
	if !totals.GrandTotal.Equal(dec("300.00")) {
		t.Errorf("grand_total: got %v, want 300.00", totals.GrandTotal)
	}
}

func TestCashChange_Exact(t *testing.T) {
	change, err := CashChange(dec("1260"), dec("1260"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.Equal(decimal.Zero) {
		t.Errorf("change: got %v, want 0", change)
	}
}

func TestCashChange_Overpaid(t *testing.T) {
	change, err := CashChange(dec("1260"), dec("1500"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.Equal(dec("240")) {
		t.Errorf("change: got %v, want 240", change)
	}
}

func TestCashChange_Insufficient(t *testing.T) {
	_, err := CashChange(dec("1260"), dec("1000"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if fault.KindOf(err) != fault.InsufficientPayment {
		t.Errorf("kind: got %v, want INSUFFICIENT_PAYMENT", fault.KindOf(err))
	}
	var fe *fault.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fault.Error, got %T", err)
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(dec("250.50"), 3)
	if !got.Equal(dec("751.50")) {
		t.Errorf("line total: got %v, want 751.50", got)
	}
}

func TestSumLines(t *testing.T) {
	got := SumLines([]decimal.Decimal{dec("500"), dec("751.50"), dec("48.50")})
	if !got.Equal(dec("1300")) {
		t.Errorf("sum: got %v, want 1300", got)
	}
}
