package inmemdb

import (
	"context"
	"sort"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if g.ID == "" {
		g.ID = newPK()
	}
	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = new(grade.QueryFilter)
	}
	var out []grade.Grade
	for _, g := range repo.db.grades {
		if filter.Search != "" && !(core.ContainsFold(g.StudentName, filter.Search) ||
			core.ContainsFold(g.Subject, filter.Search) || core.ContainsFold(g.Assignment, filter.Search)) {
			continue
		}
		if filter.Subject != "" && g.Subject != filter.Subject {
			continue
		}
		if filter.Class != "" && g.Class != filter.Class {
			continue
		}
		if filter.Term != "" && g.Term != filter.Term {
			continue
		}
		if filter.StudentID != "" && g.StudentID != filter.StudentID {
			continue
		}
		if filter.TeacherID != "" && g.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ParentID != "" && g.ParentID != filter.ParentID {
			continue
		}
		out = append(out, *g)
	}

	asc := len(ordering) > 0 && ordering[0].Ascending
	sort.SliceStable(out, func(i, j int) bool {
		if !asc {
			i, j = j, i
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (repo *gradeRepository) GetGrade(_ context.Context, id string) (grade.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.grades[id]; ok {
		return *g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.grades[g.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) DeleteGradesByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.grades[id]; ok {
			delete(repo.db.grades, id)
			n++
		}
	}
	return n, nil
}
