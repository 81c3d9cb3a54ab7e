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
	"github.com/kudzaic/educ8/core/class"
)

type classRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	TeacherID   string         `db:"teacher_id"`
	TeacherName string         `db:"teacher_name"`
	Room        string         `db:"room"`
	Schedule    string         `db:"schedule"`
	Subjects    pq.StringArray `db:"subjects"`
	CreatedAt   null.Time      `db:"created_at"`
	UpdatedAt   null.Time      `db:"updated_at"`
}

func (r classRow) model() class.Class {
	return class.Class{
		ID:          r.ID,
		Name:        r.Name,
		TeacherID:   r.TeacherID,
		TeacherName: r.TeacherName,
		Room:        r.Room,
		Schedule:    r.Schedule,
		Subjects:    r.Subjects,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *sqlx.DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	if cls.ID == "" {
		cls.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO class (id, name, teacher_id, teacher_name, room, schedule, subjects, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		cls.ID, cls.Name, cls.TeacherID, cls.TeacherName, cls.Room, cls.Schedule,
		pq.StringArray(cls.Subjects), cls.CreatedAt, cls.UpdatedAt,
	)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	if filter == nil {
		filter = new(class.QueryFilter)
	}

	var args []interface{}
	var conds []string
	if filter.Search != "" {
		ph := arg(&args, "%"+filter.Search+"%")
		conds = append(conds, "(name ILIKE "+ph+" OR teacher_name ILIKE "+ph+")")
	}
	if filter.TeacherID != "" {
		conds = append(conds, "teacher_id = "+arg(&args, filter.TeacherID))
	}
	if filter.Name != "" {
		conds = append(conds, "name = "+arg(&args, filter.Name))
	}

	allowed := map[string]bool{"name": true, "created_at": true}
	q := "SELECT * FROM class" + where(conds) + orderBy(ordering, allowed, "name ASC")

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.model())
	}
	return classes, nil
}

// GetClass resolves the roster from the student table on every read; the
// roster is derived data, not stored on the class row.
func (repo *classRepository) GetClass(ctx context.Context, filter class.GetFilter) (class.Class, error) {
	var args []interface{}
	var cond string
	switch {
	case filter.ID != "":
		cond = "id = " + arg(&args, filter.ID)
	case filter.Name != "":
		cond = "name = " + arg(&args, filter.Name)
	default:
		return class.Class{}, class.ErrNotFound
	}

	var row classRow
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM class WHERE "+cond+" LIMIT 1", args...)
	if err == sql.ErrNoRows {
		return class.Class{}, class.ErrNotFound
	}
	if err != nil {
		return class.Class{}, errors.Wrap(err, "getting class")
	}
	cls := row.model()

	type rosterRow struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	var roster []rosterRow
	err = repo.db.SelectContext(ctx, &roster, "SELECT id, name FROM student WHERE class = $1 ORDER BY name ASC", cls.Name)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "getting class roster")
	}
	for _, st := range roster {
		cls.Students = append(cls.Students, class.RosterEntry{StudentID: st.ID, Name: st.Name})
	}
	return cls, nil
}

// UpdateClass only saves set fields.
func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	var args []interface{}
	var sets []string
	if cls.Name != "" {
		sets = append(sets, "name = "+arg(&args, cls.Name))
	}
	if cls.TeacherID != "" {
		sets = append(sets, "teacher_id = "+arg(&args, cls.TeacherID))
		sets = append(sets, "teacher_name = "+arg(&args, cls.TeacherName))
	}
	if cls.Room != "" {
		sets = append(sets, "room = "+arg(&args, cls.Room))
	}
	if cls.Schedule != "" {
		sets = append(sets, "schedule = "+arg(&args, cls.Schedule))
	}
	if cls.Subjects != nil {
		sets = append(sets, "subjects = "+arg(&args, pq.StringArray(cls.Subjects)))
	}
	if !cls.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = "+arg(&args, cls.UpdatedAt))
	}
	if len(sets) == 0 {
		return repo.GetClass(ctx, class.GetFilter{ID: cls.ID})
	}

	q := "UPDATE class SET " + joinSets(sets) + " WHERE id = " + arg(&args, cls.ID)
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return repo.GetClass(ctx, class.GetFilter{ID: cls.ID})
}

func (repo *classRepository) DeleteClassesByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var args []interface{}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM class WHERE id IN ("+inArgs(&args, ids)+")", args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting classes")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
