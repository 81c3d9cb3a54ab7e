package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
)

// Assignment types. Notes and tests share the classroom feed with homework
// assignments; only the "assignment" type accepts submissions.
const (
	TypeAssignment = "assignment"
	TypeNote       = "note"
	TypeTest       = "test"
)

// Submission statuses
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

type (
	Assignment struct {
		ID          string      `json:"id"`
		ClassID     string      `json:"class_id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Type        string      `json:"type"`
		DueDate     null.Time   `json:"due_date"`
		Points      null.Int    `json:"points"`
		FileName    null.String `json:"file_name"`
		FileType    null.String `json:"file_type"`
		FileURL     null.String `json:"file_url"`
		// CreatedBy is the authoring user's ID.
		CreatedBy string    `json:"created_by"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	Submission struct {
		ID           string      `json:"id"`
		AssignmentID string      `json:"assignment_id"`
		StudentID    string      `json:"student_id"`
		StudentName  string      `json:"student_name,omitempty"`
		Content      string      `json:"content"`
		FileName     null.String `json:"file_name"`
		FileURL      null.String `json:"file_url"`
		Status       string      `json:"status"`
		Grade        null.Int    `json:"grade"`
		Feedback     null.String `json:"feedback"`
		SubmittedAt  null.Time   `json:"submitted_at"`
		CreatedAt    time.Time   `json:"created_at"` // UTC
		UpdatedAt    time.Time   `json:"updated_at"` // UTC
	}
)

// HasContent reports whether a submission carries anything gradable.
func (s *Submission) HasContent() bool {
	return s.Content != "" || s.FileURL.Valid
}

// NewAssignment contains information needed to post to a classroom feed.
type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" validate:"required,oneof=assignment note test"`
	DueDate     null.Time `json:"due_date"`
	Points      null.Int  `json:"points"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Type = core.CleanString(na.Type, true /* lower */)
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an
// existing Assignment. Empty fields fall back to the original record.
type UpdateAssignment struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     null.Time `json:"due_date"`
	Points      null.Int  `json:"points"`
}

func (ua *UpdateAssignment) Validate(orig Assignment, validate *validator.Validate) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	if ua.Description == "" {
		ua.Description = orig.Description
	}
	if !ua.DueDate.Valid {
		ua.DueDate = orig.DueDate
	}
	if !ua.Points.Valid {
		ua.Points = orig.Points
	}
	return validate.Struct(ua)
}

// SubmissionInput is a student's work on an assignment, for drafts and
// final submissions alike.
type SubmissionInput struct {
	Content string `json:"content"`
}

// GradeInput is a teacher's grading of a submitted piece of work.
type GradeInput struct {
	Grade    int    `json:"grade" validate:"gte=0,lte=100"`
	Feedback string `json:"feedback"`
}

func (gi *GradeInput) Validate(validate *validator.Validate) error {
	gi.Feedback = core.CleanString(gi.Feedback)
	return validate.Struct(gi)
}

// QueryFilter narrows a classroom feed. Search does a case-insensitive
// substring match on title or description; Type selects one of the feed tabs.
type QueryFilter struct {
	Search string `query:"search"`
	Type   string `query:"type"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.Search == "" && qf.Type == "" }

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
}

// GetSubmissionFilter selects a single Submission; ID wins if set, else the
// (AssignmentID, StudentID) pair.
type GetSubmissionFilter struct {
	ID           string
	AssignmentID string
	StudentID    string
}
