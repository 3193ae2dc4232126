package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/savor-pos/api/internal/database"
)

// ReportStore defines the aggregate queries behind the reporting endpoints.
type ReportStore interface {
	SalesSummary(ctx context.Context, arg database.SalesSummaryParams) (database.SalesSummaryRow, error)
	DailySales(ctx context.Context, arg database.DailySalesParams) ([]database.DailySalesRow, error)
	PaymentSummary(ctx context.Context, arg database.PaymentSummaryParams) ([]database.PaymentSummaryRow, error)
	ListCreditSales(ctx context.Context, arg database.ListCreditSalesParams) ([]database.ListCreditSalesRow, error)
	BranchComparison(ctx context.Context, arg database.BranchComparisonParams) ([]database.BranchComparisonRow, error)
}

type ReportHandler struct {
	store ReportStore
}

func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterRoutes mounts the branch-scoped reports.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/sales-summary", h.SalesSummary)
		r.Get("/daily-sales", h.DailySales)
		r.Get("/payment-summary", h.PaymentSummary)
		r.Get("/credit-sales", h.CreditSales)
	})
}

// RegisterAdminRoutes mounts the cross-branch reports.
func (h *ReportHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/reports/branch-comparison", h.BranchComparison)
}

func (h *ReportHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeFault(w, "sales summary", err)
		return
	}

	row, err := h.store.SalesSummary(r.Context(), database.SalesSummaryParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeFault(w, "sales summary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"summary": row})
}

func (h *ReportHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeFault(w, "daily sales", err)
		return
	}

	rows, err := h.store.DailySales(r.Context(), database.DailySalesParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeFault(w, "daily sales", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"days": rows})
}

func (h *ReportHandler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeFault(w, "payment summary", err)
		return
	}

	rows, err := h.store.PaymentSummary(r.Context(), database.PaymentSummaryParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeFault(w, "payment summary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"methods": rows})
}

func (h *ReportHandler) CreditSales(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		writeFault(w, "credit sales", err)
		return
	}
	limit, offset := parsePage(r)

	rows, err := h.store.ListCreditSales(r.Context(), database.ListCreditSalesParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeFault(w, "credit sales", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"credit_sales": rows})
}

func (h *ReportHandler) BranchComparison(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeFault(w, "branch comparison", err)
		return
	}

	rows, err := h.store.BranchComparison(r.Context(), database.BranchComparisonParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeFault(w, "branch comparison", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"branches": rows})
}
