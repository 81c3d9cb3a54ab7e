package fee

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kudzaic/educ8/core"
)

// Statuses, always derived from the amounts via DeriveStatus. A stored
// status is a cache of that derivation, never an independent fact.
const (
	StatusPaid    = "paid"
	StatusPartial = "partial"
	StatusPending = "pending"
)

// DeriveStatus computes a fee's status from its amounts: paid once the due
// amount is covered (checked first, so a zero-due fee is paid), pending
// while nothing has been paid, partial in between.
func DeriveStatus(amountDue, amountPaid float64) string {
	switch {
	case amountPaid >= amountDue:
		return StatusPaid
	case amountPaid == 0:
		return StatusPending
	default:
		return StatusPartial
	}
}

type Fee struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	// StudentName and ParentName are denormalized for list views.
	StudentName string    `json:"student_name"`
	ParentID    string    `json:"parent_id,omitempty"`
	ParentName  string    `json:"parent_name,omitempty"`
	AmountDue   float64   `json:"amount_due"`
	AmountPaid  float64   `json:"amount_paid"`
	FeeType     string    `json:"fee_type"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Outstanding is the unpaid balance; it is derived, never stored.
func (f *Fee) Outstanding() float64 {
	if out := f.AmountDue - f.AmountPaid; out > 0 {
		return out
	}
	return 0
}

// RefreshStatus recomputes the cached status. It is idempotent.
func (f *Fee) RefreshStatus() { f.Status = DeriveStatus(f.AmountDue, f.AmountPaid) }

// NewFee contains information needed to bill a student.
type NewFee struct {
	StudentID  string    `json:"student_id" validate:"required"`
	AmountDue  float64   `json:"amount_due" validate:"gte=0"`
	AmountPaid float64   `json:"amount_paid" validate:"gte=0"`
	FeeType    string    `json:"fee_type" validate:"required"`
	DueDate    time.Time `json:"due_date" validate:"required"`
}

func (nf *NewFee) Validate(validate *validator.Validate) error {
	nf.FeeType = core.CleanString(nf.FeeType)
	return validate.Struct(nf)
}

// UpdatePayment records money received against a fee.
type UpdatePayment struct {
	AmountPaid float64 `json:"amount_paid" validate:"gte=0"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}

// Summary aggregates a fee list for the reports screen.
type Summary struct {
	TotalDue         float64        `json:"total_due"`
	TotalPaid        float64        `json:"total_paid"`
	TotalOutstanding float64        `json:"total_outstanding"`
	CountByStatus    map[string]int `json:"count_by_status"`
}

// QueryFilter narrows a fee list. Search does a case-insensitive substring
// match on student name or fee type.
type QueryFilter struct {
	Search string `query:"search"`
	Status string `query:"status"`

	ParentID string `query:"-"` // scope filter, set by the service
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.ParentID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
