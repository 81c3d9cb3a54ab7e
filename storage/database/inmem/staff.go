package inmemdb

import (
	"context"
	"sort"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) query() []staff.Teacher {
	teachers := make([]staff.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, *t)
	}
	return teachers
}

func (repo *staffRepository) CheckEmailUniqueness(_ context.Context, email string, excluded ...staff.Teacher) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.query() {
		if email == "" || t.Email != email {
			continue
		}
		var excl bool
		for _, ex := range excluded {
			if ex.ID == t.ID {
				excl = true
				break
			}
		}
		if !excl {
			return staff.ErrEmailExists
		}
	}
	return nil
}

func (repo *staffRepository) CreateTeacher(_ context.Context, t staff.Teacher) (staff.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if t.ID == "" {
		t.ID = newPK()
	}
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *staffRepository) QueryTeachers(_ context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = new(staff.QueryFilter)
	}
	var out []staff.Teacher
	for _, t := range repo.query() {
		if filter.Search != "" {
			match := core.ContainsFold(t.Name, filter.Search) || core.ContainsFold(t.Department, filter.Search)
			for _, s := range t.Subjects {
				if match {
					break
				}
				match = core.ContainsFold(s, filter.Search)
			}
			if !match {
				continue
			}
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Department != "" && t.Department != filter.Department {
			continue
		}
		out = append(out, t)
	}
	sortTeachers(out, ordering)
	return out, nil
}

func (repo *staffRepository) GetTeacher(_ context.Context, filter staff.GetFilter) (staff.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if t, ok := repo.db.teachers[filter.ID]; ok {
			return *t, nil
		}
		return staff.Teacher{}, staff.ErrNotFound
	}
	for _, t := range repo.query() {
		switch {
		case filter.UserID != "":
			if t.UserID == filter.UserID {
				return t, nil
			}
		case filter.Email != "":
			if t.Email == filter.Email {
				return t, nil
			}
		}
	}
	return staff.Teacher{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateTeacher(_ context.Context, t staff.Teacher) (staff.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.teachers[t.ID]
	if !ok {
		return staff.Teacher{}, staff.ErrNotFound
	}
	if t.Name != "" {
		orig.Name = t.Name
	}
	if t.Email != "" {
		orig.Email = t.Email
	}
	if t.Phone != "" {
		orig.Phone = t.Phone
	}
	if t.Department != "" {
		orig.Department = t.Department
	}
	if t.Status != "" {
		orig.Status = t.Status
	}
	if t.Experience != "" {
		orig.Experience = t.Experience
	}
	if t.Subjects != nil {
		orig.Subjects = t.Subjects
	}
	if t.Classes != nil {
		orig.Classes = t.Classes
	}
	if !t.UpdatedAt.IsZero() {
		orig.UpdatedAt = t.UpdatedAt
	}
	return *orig, nil
}

func (repo *staffRepository) DeleteTeachersByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.teachers[id]; ok {
			delete(repo.db.teachers, id)
			n++
		}
	}
	return n, nil
}

func sortTeachers(teachers []staff.Teacher, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	ord := ordering[0]
	sort.SliceStable(teachers, func(i, j int) bool {
		if !ord.Ascending {
			i, j = j, i
		}
		switch ord.Field {
		case "department":
			return teachers[i].Department < teachers[j].Department
		default:
			return teachers[i].Name < teachers[j].Name
		}
	})
}
