// Package classify holds the single definition of what counts as a credit
// sale. Reports, exports and the billing flow all go through it so the
// numbers agree everywhere.
package classify

import "github.com/savor-pos/api/internal/enum"

// Sale is the subset of a sale the classifier looks at. IsCredit carries the
// caller's explicit flag, for inputs where the method and status are not yet
// resolved.
type Sale struct {
	PaymentMethod string
	PaymentStatus string
	IsCredit      bool
}

// IsCredit reports whether a sale is a credit sale: it was settled with the
// CREDIT method, carries the CREDIT payment status, or was flagged as credit
// explicitly. Method and status normally coincide, but historical rows may
// have one without the other.
func IsCredit(s Sale) bool {
	return s.PaymentMethod == enum.PaymentMethodCredit ||
		s.PaymentStatus == enum.PaymentStatusCredit ||
		s.IsCredit
}
