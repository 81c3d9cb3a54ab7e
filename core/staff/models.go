package staff

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kudzaic/educ8/core"
)

// Statuses
const (
	StatusActive  = "active"
	StatusOnLeave = "on_leave"
)

// Teacher is a staff record. It references the staff member's user account
// through UserID; the account's role (teacher or hod) governs access, this
// record carries the teaching facts.
type Teacher struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Subjects   []string  `json:"subjects"`
	Classes    []string  `json:"classes"`
	Department string    `json:"department"`
	Status     string    `json:"status"`
	Experience string    `json:"experience"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewTeacher contains information needed to register a staff member.
type NewTeacher struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone" validate:"omitempty,phone"`
	Subjects   []string `json:"subjects"`
	Classes    []string `json:"classes"`
	Department string   `json:"department" validate:"required"`
	Experience string   `json:"experience"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate, svc Service) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	nt.Department = core.CleanString(nt.Department)

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nt.Email)
}

// UpdateTeacher defines what information may be provided to modify an
// existing staff record. Empty fields fall back to the original record.
type UpdateTeacher struct {
	Name       string   `json:"name"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone" validate:"omitempty,phone"`
	Subjects   []string `json:"subjects"`
	Classes    []string `json:"classes"`
	Department string   `json:"department"`
	Status     string   `json:"status" validate:"omitempty,oneof=active on_leave"`
	Experience string   `json:"experience"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	if email := core.CleanString(ut.Email, true /* lower */); email != "" {
		ut.Email = email
	} else {
		ut.Email = orig.Email
	}
	if dept := core.CleanString(ut.Department); dept != "" {
		ut.Department = dept
	} else {
		ut.Department = orig.Department
	}

	if err := validate.Struct(ut); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ut.Email, orig)
}

// QueryFilter narrows a staff list. Search does a case-insensitive substring
// match on name, department or any subject.
type QueryFilter struct {
	Search string `query:"search"`
	Status string `query:"status"`

	Department string `query:"-"` // scope filter, set by the service
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.Department == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// GetFilter selects a single Teacher; the first set field wins.
type GetFilter struct {
	ID     string
	UserID string
	Email  string
}
