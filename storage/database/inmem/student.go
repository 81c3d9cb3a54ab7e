package inmemdb

import (
	"context"
	"sort"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		students = append(students, *st)
	}
	return students
}

func (repo *studentRepository) CheckEmailUniqueness(_ context.Context, email string, excluded ...student.Student) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.query() {
		if email == "" || st.Email != email {
			continue
		}
		var excl bool
		for _, ex := range excluded {
			if ex.ID == st.ID {
				excl = true
				break
			}
		}
		if !excl {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if st.ID == "" {
		st.ID = newPK()
	}
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = new(student.QueryFilter)
	}
	var out []student.Student
	for _, st := range repo.query() {
		if filter.Search != "" && !(core.ContainsFold(st.Name, filter.Search) || core.ContainsFold(st.Class, filter.Search)) {
			continue
		}
		if filter.Class != "" && st.Class != filter.Class {
			continue
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		if filter.ParentID != "" && st.ParentID != filter.ParentID {
			continue
		}
		if filter.ExcludeID != "" && st.ID == filter.ExcludeID {
			continue
		}
		out = append(out, st)
	}
	sortStudents(out, ordering)
	return out, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if st, ok := repo.db.students[filter.ID]; ok {
			return *st, nil
		}
		return student.Student{}, student.ErrNotFound
	}
	for _, st := range repo.query() {
		switch {
		case filter.UserID != "":
			if st.UserID == filter.UserID {
				return st, nil
			}
		case filter.Email != "":
			if st.Email == filter.Email {
				return st, nil
			}
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if st.Name != "" {
		orig.Name = st.Name
	}
	if st.Class != "" {
		orig.Class = st.Class
	}
	if st.Email != "" {
		orig.Email = st.Email
	}
	if st.Status != "" {
		orig.Status = st.Status
	}
	if st.ParentID != "" {
		orig.ParentID = st.ParentID
	}
	if st.Age != 0 {
		orig.Age = st.Age
	}
	if st.GuardianPhone != "" {
		orig.GuardianPhone = st.GuardianPhone
	}
	if st.Address != "" {
		orig.Address = st.Address
	}
	if !st.DateOfBirth.IsZero() {
		orig.DateOfBirth = st.DateOfBirth
	}
	if st.Extracurriculars != nil {
		orig.Extracurriculars = st.Extracurriculars
	}
	if st.Grades != nil {
		orig.Grades = st.Grades
	}
	if !st.UpdatedAt.IsZero() {
		orig.UpdatedAt = st.UpdatedAt
	}
	return *orig, nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.students[id]; ok {
			delete(repo.db.students, id)
			n++
		}
	}
	return n, nil
}

func sortStudents(students []student.Student, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	ord := ordering[0]
	sort.SliceStable(students, func(i, j int) bool {
		if !ord.Ascending {
			i, j = j, i
		}
		switch ord.Field {
		case "class":
			return students[i].Class < students[j].Class
		case "created_at":
			return students[i].CreatedAt.Before(students[j].CreatedAt)
		default:
			return students[i].Name < students[j].Name
		}
	})
}
