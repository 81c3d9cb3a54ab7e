package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kudzaic/educ8/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type (
	// SubjectGrade is a student's current letter grade in one subject, as
	// shown on their profile card.
	SubjectGrade struct {
		Subject string `json:"subject"`
		Grade   string `json:"grade"`
	}

	Student struct {
		ID     string `json:"id"`
		UserID string `json:"user_id,omitempty"`
		// ParentID links to the guardian's user account.
		ParentID         string         `json:"parent_id,omitempty"`
		Name             string         `json:"name"`
		Class            string         `json:"class"`
		Age              int            `json:"age"`
		GuardianPhone    string         `json:"guardian_phone"`
		Email            string         `json:"email"`
		Address          string         `json:"address"`
		DateOfBirth      time.Time      `json:"date_of_birth"`
		Status           string         `json:"status"`
		Extracurriculars []string       `json:"extracurriculars"`
		Grades           []SubjectGrade `json:"grades"`
		CreatedAt        time.Time      `json:"created_at"` // UTC
		UpdatedAt        time.Time      `json:"updated_at"` // UTC
	}
)

func (s *Student) Active() bool { return s.Status == StatusActive }

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	UserID           string    `json:"user_id"`
	ParentID         string    `json:"parent_id"`
	Name             string    `json:"name" validate:"required"`
	Class            string    `json:"class" validate:"required"`
	Age              int       `json:"age" validate:"omitempty,gte=0,lte=100"`
	GuardianPhone    string    `json:"guardian_phone" validate:"omitempty,phone"`
	Email            string    `json:"email" validate:"omitempty,email"`
	Address          string    `json:"address"`
	DateOfBirth      time.Time `json:"date_of_birth"`
	Extracurriculars []string  `json:"extracurriculars"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.GuardianPhone = core.CleanString(ns.GuardianPhone)
	ns.Address = core.CleanString(ns.Address)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ns.Email)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Empty fields fall back to the original record.
type UpdateStudent struct {
	ParentID         string    `json:"parent_id"`
	Name             string    `json:"name"`
	Class            string    `json:"class"`
	Age              int       `json:"age" validate:"omitempty,gte=0,lte=100"`
	GuardianPhone    string    `json:"guardian_phone" validate:"omitempty,phone"`
	Email            string    `json:"email" validate:"omitempty,email"`
	Address          string    `json:"address"`
	DateOfBirth      time.Time `json:"date_of_birth"`
	Status           string    `json:"status" validate:"omitempty,oneof=active inactive"`
	Extracurriculars []string  `json:"extracurriculars"`
	Grades           []SubjectGrade
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if class := core.CleanString(us.Class); class != "" {
		us.Class = class
	} else {
		us.Class = orig.Class
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(us.Email, orig)
}

// QueryFilter narrows a student list. Search does a case-insensitive
// substring match on name or class. The unexported-looking fields with a
// "-" query tag are scope filters set by the service, never by clients.
type QueryFilter struct {
	Search string `query:"search"`
	Class  string `query:"class"`
	Status string `query:"status"`

	ParentID  string `query:"-"`
	ExcludeID string `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Class == "" && qf.Status == "" && qf.ParentID == "" && qf.ExcludeID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Class = core.CleanString(qf.Class)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// GetFilter selects a single Student; the first set field wins.
type GetFilter struct {
	ID     string
	UserID string
	Email  string
}
