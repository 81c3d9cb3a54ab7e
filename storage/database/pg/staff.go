package pgdb

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/staff"
)

type teacherRow struct {
	ID         string         `db:"id"`
	UserID     null.String    `db:"user_id"`
	Name       string         `db:"name"`
	Email      string         `db:"email"`
	Phone      string         `db:"phone"`
	Subjects   pq.StringArray `db:"subjects"`
	Classes    pq.StringArray `db:"classes"`
	Department string         `db:"department"`
	Status     string         `db:"status"`
	Experience string         `db:"experience"`
	CreatedAt  null.Time      `db:"created_at"`
	UpdatedAt  null.Time      `db:"updated_at"`
}

func (r teacherRow) model() staff.Teacher {
	return staff.Teacher{
		ID:         r.ID,
		UserID:     r.UserID.String,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Subjects:   r.Subjects,
		Classes:    r.Classes,
		Department: r.Department,
		Status:     r.Status,
		Experience: r.Experience,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *sqlx.DB) staff.Repository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...staff.Teacher) error {
	if email == "" {
		return nil
	}
	var args []interface{}
	conds := []string{"email = " + arg(&args, email)}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, t := range excluded {
			ids = append(ids, t.ID)
		}
		conds = append(conds, "id NOT IN ("+inArgs(&args, ids)+")")
	}

	var id string
	err := repo.db.GetContext(ctx, &id, "SELECT id FROM teacher"+where(conds)+" LIMIT 1", args...)
	switch err {
	case nil:
		return staff.ErrEmailExists
	case sql.ErrNoRows:
		return nil
	}
	return errors.Wrap(err, "checking teacher email uniqueness")
}

func (repo *staffRepository) CreateTeacher(ctx context.Context, t staff.Teacher) (staff.Teacher, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO teacher (id, user_id, name, email, phone, subjects, classes, department, status, experience, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, q,
		t.ID, null.NewString(t.UserID, t.UserID != ""), t.Name, t.Email, t.Phone,
		pq.StringArray(t.Subjects), pq.StringArray(t.Classes), t.Department, t.Status, t.Experience,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return staff.Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return t, nil
}

func (repo *staffRepository) QueryTeachers(ctx context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Teacher, error) {
	if filter == nil {
		filter = new(staff.QueryFilter)
	}

	var args []interface{}
	var conds []string
	if filter.Search != "" {
		ph := arg(&args, "%"+filter.Search+"%")
		conds = append(conds, "(name ILIKE "+ph+" OR department ILIKE "+ph+
			" OR EXISTS (SELECT 1 FROM unnest(subjects) subj WHERE subj ILIKE "+ph+"))")
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(&args, filter.Status))
	}
	if filter.Department != "" {
		conds = append(conds, "department = "+arg(&args, filter.Department))
	}

	allowed := map[string]bool{"name": true, "department": true, "created_at": true}
	q := "SELECT * FROM teacher" + where(conds) + orderBy(ordering, allowed, "name ASC")

	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]staff.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.model())
	}
	return teachers, nil
}

func (repo *staffRepository) GetTeacher(ctx context.Context, filter staff.GetFilter) (staff.Teacher, error) {
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
		return staff.Teacher{}, staff.ErrNotFound
	}

	var row teacherRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM teacher WHERE "+cond+" LIMIT 1", args...)
	if err == sql.ErrNoRows {
		return staff.Teacher{}, staff.ErrNotFound
	}
	if err != nil {
		return staff.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return row.model(), nil
}

// UpdateTeacher only saves set fields.
func (repo *staffRepository) UpdateTeacher(ctx context.Context, t staff.Teacher) (staff.Teacher, error) {
	var args []interface{}
	var sets []string
	if t.Name != "" {
		sets = append(sets, "name = "+arg(&args, t.Name))
	}
	if t.Email != "" {
		sets = append(sets, "email = "+arg(&args, t.Email))
	}
	if t.Phone != "" {
		sets = append(sets, "phone = "+arg(&args, t.Phone))
	}
	if t.Department != "" {
		sets = append(sets, "department = "+arg(&args, t.Department))
	}
	if t.Status != "" {
		sets = append(sets, "status = "+arg(&args, t.Status))
	}
	if t.Experience != "" {
		sets = append(sets, "experience = "+arg(&args, t.Experience))
	}
	if t.Subjects != nil {
		sets = append(sets, "subjects = "+arg(&args, pq.StringArray(t.Subjects)))
	}
	if t.Classes != nil {
		sets = append(sets, "classes = "+arg(&args, pq.StringArray(t.Classes)))
	}
	if !t.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(&args, t.UpdatedAt))
	}
	if len(sets) == 0 {
		return repo.GetTeacher(ctx, staff.GetFilter{ID: t.ID})
	}

	q := "UPDATE teacher SET " + joinSets(sets) + " WHERE id = " + arg(&args, t.ID)
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return staff.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return staff.Teacher{}, staff.ErrNotFound
	}
	return repo.GetTeacher(ctx, staff.GetFilter{ID: t.ID})
}

func (repo *staffRepository) DeleteTeachersByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var args []interface{}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM teacher WHERE id IN ("+inArgs(&args, ids)+")", args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting teachers")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
