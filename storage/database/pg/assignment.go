package pgdb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/assignment"
)

type assignmentRow struct {
	ID          string      `db:"id"`
	ClassID     string      `db:"class_id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	Type        string      `db:"type"`
	DueDate     null.Time   `db:"due_date"`
	Points      null.Int    `db:"points"`
	FileName    null.String `db:"file_name"`
	FileType    null.String `db:"file_type"`
	FileURL     null.String `db:"file_url"`
	CreatedBy   string      `db:"created_by"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r assignmentRow) model() assignment.Assignment {
	return assignment.Assignment{
		ID:          r.ID,
		ClassID:     r.ClassID,
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		DueDate:     r.DueDate,
		Points:      r.Points,
		FileName:    r.FileName,
		FileType:    r.FileType,
		FileURL:     r.FileURL,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type submissionRow struct {
	ID           string      `db:"id"`
	AssignmentID string      `db:"assignment_id"`
	StudentID    string      `db:"student_id"`
	StudentName  string      `db:"student_name"`
	Content      string      `db:"content"`
	FileName     null.String `db:"file_name"`
	FileURL      null.String `db:"file_url"`
	Status       string      `db:"status"`
	Grade        null.Int    `db:"grade"`
	Feedback     null.String `db:"feedback"`
	SubmittedAt  null.Time   `db:"submitted_at"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

func (r submissionRow) model() assignment.Submission {
	return assignment.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		StudentName:  r.StudentName,
		Content:      r.Content,
		FileName:     r.FileName,
		FileURL:      r.FileURL,
		Status:       r.Status,
		Grade:        r.Grade,
		Feedback:     r.Feedback,
		SubmittedAt:  r.SubmittedAt,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO assignment (id, class_id, title, description, type, due_date, points,
			file_name, file_type, file_url, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, q,
		a.ID, a.ClassID, a.Title, a.Description, a.Type, a.DueDate, a.Points,
		a.FileName, a.FileType, a.FileURL, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, classID string, filter *assignment.QueryFilter, ordering []core.DBOrdering) ([]assignment.Assignment, error) {
	if filter == nil {
		filter = new(assignment.QueryFilter)
	}

	var args []interface{}
	conds := []string{"class_id = " + arg(&args, classID)}
	if filter.Type != "" {
		conds = append(conds, "type = "+arg(&args, filter.Type))
	}
	if filter.Search != "" {
		ph := arg(&args, "%"+filter.Search+"%")
		conds = append(conds, "(title ILIKE "+ph+" OR description ILIKE "+ph+")")
	}

	allowed := map[string]bool{"created_at": true, "due_date": true}
	q := "SELECT * FROM assignment" + where(conds) + orderBy(ordering, allowed, "created_at DESC")

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.model())
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	var row assignmentRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM assignment WHERE id = $1 LIMIT 1", id)
	if err == sql.ErrNoRows {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return row.model(), nil
}

// UpdateAssignment only saves set fields.
func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	var args []interface{}
	var sets []string
	if a.Title != "" {
		sets = append(sets, "title = "+arg(&args, a.Title))
	}
	if a.Description != "" {
		sets = append(sets, "description = "+arg(&args, a.Description))
	}
	if a.DueDate.Valid {
		sets = append(sets, "due_date = "+arg(&args, a.DueDate))
	}
	if a.Points.Valid {
		sets = append(sets, "points = "+arg(&args, a.Points))
	}
	if a.FileName.Valid {
		sets = append(sets, "file_name = "+arg(&args, a.FileName))
		sets = append(sets, "file_type = "+arg(&args, a.FileType))
		sets = append(sets, "file_url = "+arg(&args, a.FileURL))
	}
	if !a.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(&args, a.UpdatedAt))
	}
	if len(sets) == 0 {
		return repo.GetAssignment(ctx, a.ID)
	}

	q := "UPDATE assignment SET " + joinSets(sets) + " WHERE id = " + arg(&args, a.ID)
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.GetAssignment(ctx, a.ID)
}

func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// submissions go with their assignment
	var args []interface{}
	in := inArgs(&args, ids)
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM submission WHERE assignment_id IN ("+in+")", args...); err != nil {
		return 0, errors.Wrap(err, "deleting submissions")
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM assignment WHERE id IN ("+in+")", args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting assignments")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo *assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO submission (id, assignment_id, student_id, student_name, content,
			file_name, file_url, status, grade, feedback, submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, q,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.StudentName, sub.Content,
		sub.FileName, sub.FileURL, sub.Status, sub.Grade, sub.Feedback, sub.SubmittedAt,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

func (repo *assignmentRepository) QuerySubmissions(ctx context.Context, assignmentID string) ([]assignment.Submission, error) {
	var rows []submissionRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM submission WHERE assignment_id = $1 ORDER BY created_at ASC", assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]assignment.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.model())
	}
	return subs, nil
}

func (repo *assignmentRepository) GetSubmission(ctx context.Context, filter assignment.GetSubmissionFilter) (assignment.Submission, error) {
	var args []interface{}
	var cond string
	switch {
	case filter.ID != "":
		cond = "id = " + arg(&args, filter.ID)
	case filter.AssignmentID != "" && filter.StudentID != "":
		cond = "assignment_id = " + arg(&args, filter.AssignmentID) + " AND student_id = " + arg(&args, filter.StudentID)
	default:
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}

	var row submissionRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM submission WHERE "+cond+" LIMIT 1", args...)
	if err == sql.ErrNoRows {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.model(), nil
}

func (repo *assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	const q = `
		UPDATE submission
		SET content = $1, file_name = $2, file_url = $3, status = $4, grade = $5,
			feedback = $6, submitted_at = $7, updated_at = $8
		WHERE id = $9`
	res, err := repo.db.ExecContext(ctx, q,
		sub.Content, sub.FileName, sub.FileURL, sub.Status, sub.Grade,
		sub.Feedback, sub.SubmittedAt, sub.UpdatedAt, sub.ID,
	)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	return sub, nil
}
