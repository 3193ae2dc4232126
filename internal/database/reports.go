package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Report queries aggregate over settled bills (PAID and CREDIT); open bills
// are not revenue yet.

type SalesSummaryParams struct {
	BranchID  uuid.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
}

type SalesSummaryRow struct {
	BillCount          int64          `json:"bill_count"`
	GrossSales         pgtype.Numeric `json:"gross_sales"`
	TotalServiceCharge pgtype.Numeric `json:"total_service_charge"`
	TotalDiscount      pgtype.Numeric `json:"total_discount"`
	NetSales           pgtype.Numeric `json:"net_sales"`
	CashTotal          pgtype.Numeric `json:"cash_total"`
	CreditCount        int64          `json:"credit_count"`
	CreditTotal        pgtype.Numeric `json:"credit_total"`
}

func (q *Queries) SalesSummary(ctx context.Context, arg SalesSummaryParams) (SalesSummaryRow, error) {
	var r SalesSummaryRow
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(service_charge), 0),
		       COALESCE(SUM(discount_amount), 0),
		       COALESCE(SUM(grand_total), 0),
		       COALESCE(SUM(grand_total) FILTER (WHERE payment_method = 'CASH'), 0),
		       COUNT(*) FILTER (WHERE payment_status = 'CREDIT'),
		       COALESCE(SUM(grand_total) FILTER (WHERE payment_status = 'CREDIT'), 0)
		FROM bills
		WHERE branch_id = $1
		  AND payment_status IN ('PAID', 'CREDIT')
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)`,
		arg.BranchID, arg.StartDate, arg.EndDate,
	).Scan(
		&r.BillCount, &r.GrossSales, &r.TotalServiceCharge, &r.TotalDiscount,
		&r.NetSales, &r.CashTotal, &r.CreditCount, &r.CreditTotal,
	)
	return r, err
}

type DailySalesParams struct {
	BranchID  uuid.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
}

type DailySalesRow struct {
	SaleDate      pgtype.Date    `json:"sale_date"`
	BillCount     int64          `json:"bill_count"`
	TotalDiscount pgtype.Numeric `json:"total_discount"`
	NetSales      pgtype.Numeric `json:"net_sales"`
}

func (q *Queries) DailySales(ctx context.Context, arg DailySalesParams) ([]DailySalesRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT created_at::date AS sale_date,
		       COUNT(*),
		       COALESCE(SUM(discount_amount), 0),
		       COALESCE(SUM(grand_total), 0)
		FROM bills
		WHERE branch_id = $1
		  AND payment_status IN ('PAID', 'CREDIT')
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		GROUP BY sale_date
		ORDER BY sale_date`,
		arg.BranchID, arg.StartDate, arg.EndDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailySalesRow
	for rows.Next() {
		var r DailySalesRow
		if err := rows.Scan(&r.SaleDate, &r.BillCount, &r.TotalDiscount, &r.NetSales); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type PaymentSummaryParams struct {
	BranchID  uuid.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
}

type PaymentSummaryRow struct {
	PaymentMethod    string         `json:"payment_method"`
	TransactionCount int64          `json:"transaction_count"`
	TotalAmount      pgtype.Numeric `json:"total_amount"`
}

func (q *Queries) PaymentSummary(ctx context.Context, arg PaymentSummaryParams) ([]PaymentSummaryRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT payment_method, COUNT(*), COALESCE(SUM(grand_total), 0)
		FROM bills
		WHERE branch_id = $1
		  AND payment_status IN ('PAID', 'CREDIT')
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		GROUP BY payment_method
		ORDER BY payment_method`,
		arg.BranchID, arg.StartDate, arg.EndDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentSummaryRow
	for rows.Next() {
		var r PaymentSummaryRow
		if err := rows.Scan(&r.PaymentMethod, &r.TransactionCount, &r.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type ListCreditSalesParams struct {
	BranchID  uuid.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

type ListCreditSalesRow struct {
	Bill          Bill        `json:"bill"`
	CustomerName  pgtype.Text `json:"customer_name"`
	CustomerPhone pgtype.Text `json:"customer_phone"`
	OrderNumber   string      `json:"order_number"`
}

func (q *Queries) ListCreditSales(ctx context.Context, arg ListCreditSalesParams) ([]ListCreditSalesRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT b.id, b.branch_id, b.order_id, b.bill_no, b.bill_number, b.terminal, b.total_amount,
		       b.service_charge, b.discount_percentage, b.discount_amount, b.grand_total,
		       b.payment_method, b.payment_status, b.customer_id, b.cash_received, b.change_amount,
		       b.pay_request_id, b.generated_by, b.created_at, b.updated_at, b.paid_at,
		       c.name, c.phone, o.order_number
		FROM bills b
		LEFT JOIN customers c ON c.id = b.customer_id
		JOIN orders o ON o.id = b.order_id
		WHERE b.branch_id = $1
		  AND (b.payment_status = 'CREDIT' OR b.payment_method = 'CREDIT')
		  AND ($2::timestamptz IS NULL OR b.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR b.created_at < $3)
		ORDER BY b.created_at DESC
		LIMIT $4 OFFSET $5`,
		arg.BranchID, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListCreditSalesRow
	for rows.Next() {
		var r ListCreditSalesRow
		b := &r.Bill
		if err := rows.Scan(
			&b.ID, &b.BranchID, &b.OrderID, &b.BillNo, &b.BillNumber, &b.Terminal, &b.TotalAmount,
			&b.ServiceCharge, &b.DiscountPercentage, &b.DiscountAmount, &b.GrandTotal,
			&b.PaymentMethod, &b.PaymentStatus, &b.CustomerID, &b.CashReceived, &b.ChangeAmount,
			&b.PayRequestID, &b.GeneratedBy, &b.CreatedAt, &b.UpdatedAt, &b.PaidAt,
			&r.CustomerName, &r.CustomerPhone, &r.OrderNumber,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type BranchComparisonParams struct {
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
}

type BranchComparisonRow struct {
	BranchID   uuid.UUID      `json:"branch_id"`
	BranchName string         `json:"branch_name"`
	BillCount  int64          `json:"bill_count"`
	NetSales   pgtype.Numeric `json:"net_sales"`
}

func (q *Queries) BranchComparison(ctx context.Context, arg BranchComparisonParams) ([]BranchComparisonRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT br.id, br.name, COUNT(b.id), COALESCE(SUM(b.grand_total), 0)
		FROM branches br
		LEFT JOIN bills b ON b.branch_id = br.id
		  AND b.payment_status IN ('PAID', 'CREDIT')
		  AND ($1::timestamptz IS NULL OR b.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR b.created_at < $2)
		WHERE br.is_active
		GROUP BY br.id, br.name
		ORDER BY br.name`,
		arg.StartDate, arg.EndDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BranchComparisonRow
	for rows.Next() {
		var r BranchComparisonRow
		if err := rows.Scan(&r.BranchID, &r.BranchName, &r.BillCount, &r.NetSales); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
