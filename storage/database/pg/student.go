package pgdb

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/student"
)

type studentRow struct {
	ID               string         `db:"id"`
	UserID           null.String    `db:"user_id"`
	ParentID         null.String    `db:"parent_id"`
	Name             string         `db:"name"`
	Class            string         `db:"class"`
	Age              int            `db:"age"`
	GuardianPhone    string         `db:"guardian_phone"`
	Email            string         `db:"email"`
	Address          string         `db:"address"`
	DateOfBirth      null.Time      `db:"date_of_birth"`
	Status           string         `db:"status"`
	Extracurriculars pq.StringArray `db:"extracurriculars"`
	Grades           null.JSON      `db:"grades"`
	CreatedAt        null.Time      `db:"created_at"`
	UpdatedAt        null.Time      `db:"updated_at"`
}

func (r studentRow) model() (student.Student, error) {
	st := student.Student{
		ID:               r.ID,
		UserID:           r.UserID.String,
		ParentID:         r.ParentID.String,
		Name:             r.Name,
		Class:            r.Class,
		Age:              r.Age,
		GuardianPhone:    r.GuardianPhone,
		Email:            r.Email,
		Address:          r.Address,
		DateOfBirth:      r.DateOfBirth.Time,
		Status:           r.Status,
		Extracurriculars: r.Extracurriculars,
		CreatedAt:        r.CreatedAt.Time,
		UpdatedAt:        r.UpdatedAt.Time,
	}
	if r.Grades.Valid {
		if err := json.Unmarshal(r.Grades.JSON, &st.Grades); err != nil {
			return student.Student{}, errors.Wrap(err, "decoding subject grades")
		}
	}
	return st, nil
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...student.Student) error {
	if email == "" {
		return nil
	}
	var args []interface{}
	conds := []string{"email = " + arg(&args, email)}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, st := range excluded {
			ids = append(ids, st.ID)
		}
		conds = append(conds, "id NOT IN ("+inArgs(&args, ids)+")")
	}

	var id string
	err := repo.db.GetContext(ctx, &id, "SELECT id FROM student"+where(conds)+" LIMIT 1", args...)
	switch err {
	case nil:
		return student.ErrEmailExists
	case sql.ErrNoRows:
		return nil
	}
	return errors.Wrap(err, "checking student email uniqueness")
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	grades, err := json.Marshal(st.Grades)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "encoding subject grades")
	}

	const q = `
		INSERT INTO student (id, user_id, parent_id, name, class, age, guardian_phone, email, address,
			date_of_birth, status, extracurriculars, grades, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = repo.db.ExecContext(ctx, q,
		st.ID, null.NewString(st.UserID, st.UserID != ""), null.NewString(st.ParentID, st.ParentID != ""),
		st.Name, st.Class, st.Age, st.GuardianPhone, st.Email, st.Address,
		null.NewTime(st.DateOfBirth, !st.DateOfBirth.IsZero()), st.Status,
		pq.StringArray(st.Extracurriculars), grades, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return st, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	if filter == nil {
		filter = new(student.QueryFilter)
	}

	var args []interface{}
	var conds []string
	if filter.Search != "" {
		ph := arg(&args, "%"+filter.Search+"%")
		conds = append(conds, "(name ILIKE "+ph+" OR class ILIKE "+ph+")")
	}
	if filter.Class != "" {
		conds = append(conds, "class = "+arg(&args, filter.Class))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(&args, filter.Status))
	}
	if filter.ParentID != "" {
		conds = append(conds, "parent_id = "+arg(&args, filter.ParentID))
	}
	if filter.ExcludeID != "" {
		conds = append(conds, "id <> "+arg(&args, filter.ExcludeID))
	}

	allowed := map[string]bool{"name": true, "class": true, "created_at": true}
	q := "SELECT * FROM student" + where(conds) + orderBy(ordering, allowed, "name ASC")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		st, err := row.model()
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	var args []interface{}
	var cond string
	switch {
	case filter.ID != "":
		cond = "id = " + arg(&args, filter.ID)
	case filter.UserID != "":
		cond = "user_id = " + arg(&args, filter.UserID)
	case filter.Email != "":
		cond = "email = " + arg(&args, filter.Email)
	default:
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM student WHERE "+cond+" LIMIT 1", args...)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.model()
}

// UpdateStudent only saves set fields.
func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	var args []interface{}
	var sets []string
	if st.Name != "" {
		sets = append(sets, "name = "+arg(&args, st.Name))
	}
	if st.Class != "" {
		sets = append(sets, "class = "+arg(&args, st.Class))
	}
	if st.Email != "" {
		sets = append(sets, "email = "+arg(&args, st.Email))
	}
	if st.Status != "" {
		sets = append(sets, "status = "+arg(&args, st.Status))
	}
	if st.ParentID != "" {
		sets = append(sets, "parent_id = "+arg(&args, st.ParentID))
	}
	if st.Age != 0 {
		sets = append(sets, "age = "+arg(&args, st.Age))
	}
	if st.GuardianPhone != "" {
		sets = append(sets, "guardian_phone = "+arg(&args, st.GuardianPhone))
	}
	if st.Address != "" {
		sets = append(sets, "address = "+arg(&args, st.Address))
	}
	if !st.DateOfBirth.IsZero() {
		sets = append(sets, "date_of_birth = "+arg(&args, st.DateOfBirth))
	}
	if st.Extracurriculars != nil {
		sets = append(sets, "extracurriculars = "+arg(&args, pq.StringArray(st.Extracurriculars)))
	}
	if st.Grades != nil {
		grades, err := json.Marshal(st.Grades)
		if err != nil {
			return student.Student{}, errors.Wrap(err, "encoding subject grades")
		}
		sets = append(sets, "grades = "+arg(&args, grades))
	}
	if !st.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(&args, st.UpdatedAt))
	}
	if len(sets) == 0 {
		return repo.GetStudent(ctx, student.GetFilter{ID: st.ID})
	}

	q := "UPDATE student SET " + joinSets(sets) + " WHERE id = " + arg(&args, st.ID)
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, student.GetFilter{ID: st.ID})
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var args []interface{}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM student WHERE id IN ("+inArgs(&args, ids)+")", args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
