package pgdb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/grade"
)

type gradeRow struct {
	ID          string      `db:"id"`
	StudentID   string      `db:"student_id"`
	StudentName string      `db:"student_name"`
	Class       string      `db:"class"`
	Subject     string      `db:"subject"`
	Assignment  string      `db:"assignment"`
	Grade       string      `db:"grade"`
	Percentage  float64     `db:"percentage"`
	Date        null.Time   `db:"date"`
	TeacherID   null.String `db:"teacher_id"`
	TeacherName string      `db:"teacher_name"`
	Term        string      `db:"term"`
	ParentID    null.String `db:"parent_id"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r gradeRow) model() grade.Grade {
	return grade.Grade{
		ID:          r.ID,
		StudentID:   r.StudentID,
		StudentName: r.StudentName,
		Class:       r.Class,
		Subject:     r.Subject,
		Assignment:  r.Assignment,
		Grade:       r.Grade,
		Percentage:  r.Percentage,
		Date:        r.Date.Time,
		TeacherID:   r.TeacherID.String,
		TeacherName: r.TeacherName,
		Term:        r.Term,
		ParentID:    r.ParentID.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO grade (id, student_id, student_name, class, subject, assignment, grade, percentage,
			date, teacher_id, teacher_name, term, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := repo.db.ExecContext(ctx, q,
		g.ID, g.StudentID, g.StudentName, g.Class, g.Subject, g.Assignment, g.Grade, g.Percentage,
		g.Date, null.NewString(g.TeacherID, g.TeacherID != ""), g.TeacherName, g.Term,
		null.NewString(g.ParentID, g.ParentID != ""), g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "creating grade")
	}
	return g, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Grade, error) {
	if filter == nil {
		filter = new(grade.QueryFilter)
	}

	var args []interface{}
	var conds []string
	if filter.Search != "" {
		ph := arg(&args, "%"+filter.Search+"%")
		conds = append(conds, "(student_name ILIKE "+ph+" OR subject ILIKE "+ph+" OR assignment ILIKE "+ph+")")
	}
	if filter.Subject != "" {
		conds = append(conds, "subject = "+arg(&args, filter.Subject))
	}
	if filter.Class != "" {
		conds = append(conds, "class = "+arg(&args, filter.Class))
	}
	if filter.Term != "" {
		conds = append(conds, "term = "+arg(&args, filter.Term))
	}
	if filter.StudentID != "" {
		conds = append(conds, "student_id = "+arg(&args, filter.StudentID))
	}
	if filter.TeacherID != "" {
		conds = append(conds, "teacher_id = "+arg(&args, filter.TeacherID))
	}
	if filter.ParentID != "" {
		conds = append(conds, "parent_id = "+arg(&args, filter.ParentID))
	}

	allowed := map[string]bool{"date": true, "student_name": true, "subject": true}
	q := "SELECT * FROM grade" + where(conds) + orderBy(ordering, allowed, "date DESC")

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.model())
	}
	return grades, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id string) (grade.Grade, error) {
	var row gradeRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM grade WHERE id = $1 LIMIT 1", id)
	if err == sql.ErrNoRows {
		return grade.Grade{}, grade.ErrNotFound
	}
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "getting grade")
	}
	return row.model(), nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	const q = `
		UPDATE grade
		SET grade = $1, percentage = $2, updated_at = $3
		WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, q, g.Grade, g.Percentage, g.UpdatedAt, g.ID)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return grade.Grade{}, grade.ErrNotFound
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGradesByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var args []interface{}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM grade WHERE id IN ("+inArgs(&args, ids)+")", args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting grades")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
