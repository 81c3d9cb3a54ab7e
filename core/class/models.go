package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kudzaic/educ8/core"
)

type (
	// RosterEntry is one student on a class roster.
	RosterEntry struct {
		StudentID string `json:"student_id"`
		Name      string `json:"name"`
	}

	Class struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		TeacherID string `json:"teacher_id"`
		// TeacherName is denormalized for list views.
		TeacherName string        `json:"teacher_name"`
		Room        string        `json:"room"`
		Schedule    string        `json:"schedule"`
		Subjects    []string      `json:"subjects"`
		Students    []RosterEntry `json:"students,omitempty"`
		CreatedAt   time.Time     `json:"created_at"` // UTC
		UpdatedAt   time.Time     `json:"updated_at"` // UTC
	}
)

// NewClass contains information needed to create a Class.
type NewClass struct {
	Name        string   `json:"name" validate:"required"`
	TeacherID   string   `json:"teacher_id" validate:"required"`
	TeacherName string   `json:"teacher_name"`
	Room        string   `json:"room"`
	Schedule    string   `json:"schedule"`
	Subjects    []string `json:"subjects"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Room = core.CleanString(nc.Room)
	nc.Schedule = core.CleanString(nc.Schedule)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing
// Class. Empty fields fall back to the original record.
type UpdateClass struct {
	Name        string   `json:"name"`
	TeacherID   string   `json:"teacher_id"`
	TeacherName string   `json:"teacher_name"`
	Room        string   `json:"room"`
	Schedule    string   `json:"schedule"`
	Subjects    []string `json:"subjects"`
}

func (uc *UpdateClass) Validate(orig Class, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.TeacherID == "" {
		uc.TeacherID = orig.TeacherID
		uc.TeacherName = orig.TeacherName
	}
	return validate.Struct(uc)
}

// QueryFilter narrows a class list. Search does a case-insensitive substring
// match on class name or teacher name.
type QueryFilter struct {
	Search string `query:"search"`

	TeacherID string `query:"-"` // scope filter, set by the service
	Name      string `query:"-"` // scope filter, set by the service
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.TeacherID == "" && qf.Name == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single Class; the first set field wins.
type GetFilter struct {
	ID   string
	Name string
}
