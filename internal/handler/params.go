package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/savor-pos/api/internal/fault"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pathUUID parses a UUID route parameter, writing a validation error on
// failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, fault.Validation, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// branchID parses the branch route parameter shared by all scoped routes.
func branchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return pathUUID(w, r, "bid")
}

// parsePage reads limit/offset query parameters with clamped defaults.
func parsePage(r *http.Request) (limit, offset int32) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		if v > maxPageSize {
			v = maxPageSize
		}
		limit = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = int32(v)
	}
	return limit, offset
}

// parseDateRange reads optional start_date/end_date query parameters as
// YYYY-MM-DD. end_date is inclusive: it is returned as the start of the next
// day so queries can use a half-open interval.
func parseDateRange(r *http.Request) (start, end pgtype.Timestamptz, err error) {
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			return start, end, fault.New(fault.Validation, "invalid start_date, want YYYY-MM-DD")
		}
		start = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			return start, end, fault.New(fault.Validation, "invalid end_date, want YYYY-MM-DD")
		}
		end = pgtype.Timestamptz{Time: t.AddDate(0, 0, 1), Valid: true}
	}
	return start, end, nil
}

// queryText returns an optional query parameter as a nullable text value.
func queryText(r *http.Request, name string) pgtype.Text {
	if v := r.URL.Query().Get(name); v != "" {
		return pgtype.Text{String: v, Valid: true}
	}
	return pgtype.Text{}
}
