package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kudzaic/educ8/core"
)

type Grade struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	// StudentName and TeacherName are denormalized for list views.
	StudentName string    `json:"student_name"`
	Class       string    `json:"class"`
	Subject     string    `json:"subject"`
	Assignment  string    `json:"assignment"`
	Grade       string    `json:"grade"`
	Percentage  float64   `json:"percentage"`
	Date        time.Time `json:"date"`
	TeacherID   string    `json:"teacher_id,omitempty"`
	TeacherName string    `json:"teacher_name"`
	Term        string    `json:"term"`
	ParentID    string    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewGrade contains information needed to record a grade.
type NewGrade struct {
	StudentID  string    `json:"student_id" validate:"required"`
	Subject    string    `json:"subject" validate:"required"`
	Assignment string    `json:"assignment" validate:"required"`
	Grade      string    `json:"grade" validate:"required"`
	Percentage float64   `json:"percentage" validate:"gte=0,lte=100"`
	Date       time.Time `json:"date"`
	Term       string    `json:"term" validate:"required"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Subject = core.CleanString(ng.Subject)
	ng.Assignment = core.CleanString(ng.Assignment)
	ng.Grade = core.CleanString(ng.Grade)
	ng.Term = core.CleanString(ng.Term)
	return validate.Struct(ng)
}

// UpdateGrade defines what information may be provided to modify an existing
// Grade. Empty fields fall back to the original record.
type UpdateGrade struct {
	Grade      string  `json:"grade"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
	Feedback   string  `json:"-"`
}

func (ug *UpdateGrade) Validate(orig Grade, validate *validator.Validate) error {
	if g := core.CleanString(ug.Grade); g != "" {
		ug.Grade = g
	} else {
		ug.Grade = orig.Grade
	}
	if ug.Percentage == 0 {
		ug.Percentage = orig.Percentage
	}
	return validate.Struct(ug)
}

// Summary aggregates a grade list for the reports screen. Trend compares
// the average of the most recent half of the records against the older half.
type Summary struct {
	Average          float64            `json:"average"`
	AverageBySubject map[string]float64 `json:"average_by_subject"`
	Trend            string             `json:"trend"` // improving, declining, steady
}

// Trends
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendSteady    = "steady"
)

// QueryFilter narrows a grade list. Search does a case-insensitive substring
// match on student name, subject or assignment; Subject, Class and Term are
// exact column filters.
type QueryFilter struct {
	Search  string `query:"search"`
	Subject string `query:"subject"`
	Class   string `query:"class"`
	Term    string `query:"term"`

	StudentID string `query:"-"` // scope filter, set by the service
	TeacherID string `query:"-"` // scope filter, set by the service
	ParentID  string `query:"-"` // scope filter, set by the service
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Subject == "" && qf.Class == "" && qf.Term == "" &&
		qf.StudentID == "" && qf.TeacherID == "" && qf.ParentID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Class = core.CleanString(qf.Class)
	qf.Term = core.CleanString(qf.Term)
}
