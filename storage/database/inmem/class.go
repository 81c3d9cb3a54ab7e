package inmemdb

import (
	"context"
	"sort"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) query() []class.Class {
	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, *cls)
	}
	return classes
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if cls.ID == "" {
		cls.ID = newPK()
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) QueryClasses(_ context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = new(class.QueryFilter)
	}
	var out []class.Class
	for _, cls := range repo.query() {
		if filter.Search != "" && !(core.ContainsFold(cls.Name, filter.Search) || core.ContainsFold(cls.TeacherName, filter.Search)) {
			continue
		}
		if filter.TeacherID != "" && cls.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Name != "" && cls.Name != filter.Name {
			continue
		}
		out = append(out, cls)
	}
	sortClasses(out, ordering)
	return out, nil
}

// GetClass resolves the roster from the student table on every read; the
// roster is derived data, not stored on the class row.
func (repo *classRepository) GetClass(_ context.Context, filter class.GetFilter) (class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var found *class.Class
	if filter.ID != "" {
		if cls, ok := repo.db.classes[filter.ID]; ok {
			found = cls
		}
	} else if filter.Name != "" {
		for _, cls := range repo.db.classes {
			if cls.Name == filter.Name {
				found = cls
				break
			}
		}
	}
	if found == nil {
		return class.Class{}, class.ErrNotFound
	}

	cls := *found
	cls.Students = nil
	for _, st := range repo.db.students {
		if st.Class == cls.Name {
			cls.Students = append(cls.Students, class.RosterEntry{StudentID: st.ID, Name: st.Name})
		}
	}
	sort.Slice(cls.Students, func(i, j int) bool { return cls.Students[i].Name < cls.Students[j].Name })
	return cls, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.classes[cls.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	if cls.Name != "" {
		orig.Name = cls.Name
	}
	if cls.TeacherID != "" {
		orig.TeacherID = cls.TeacherID
		orig.TeacherName = cls.TeacherName
	}
	if cls.Room != "" {
		orig.Room = cls.Room
	}
	if cls.Schedule != "" {
		orig.Schedule = cls.Schedule
	}
	if cls.Subjects != nil {
		orig.Subjects = cls.Subjects
	}
	if !cls.UpdatedAt.IsZero() {
		orig.UpdatedAt = cls.UpdatedAt
	}
	return *orig, nil
}

func (repo *classRepository) DeleteClassesByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.classes[id]; ok {
			delete(repo.db.classes, id)
			n++
		}
	}
	return n, nil
}

func sortClasses(classes []class.Class, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	ord := ordering[0]
	sort.SliceStable(classes, func(i, j int) bool {
		if !ord.Ascending {
			i, j = j, i
		}
		return classes[i].Name < classes[j].Name
	})
}
