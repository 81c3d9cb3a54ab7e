package inmemdb

import (
	"context"
	"sort"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if a.ID == "" {
		a.ID = newPK()
	}
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, classID string, filter *assignment.QueryFilter, ordering []core.DBOrdering) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = new(assignment.QueryFilter)
	}
	var out []assignment.Assignment
	for _, a := range repo.db.assignments {
		if a.ClassID != classID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Search != "" && !(core.ContainsFold(a.Title, filter.Search) || core.ContainsFold(a.Description, filter.Search)) {
			continue
		}
		out = append(out, *a)
	}

	asc := len(ordering) > 0 && ordering[0].Ascending
	sort.SliceStable(out, func(i, j int) bool {
		if !asc {
			i, j = j, i
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.assignments[a.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	if a.Title != "" {
		orig.Title = a.Title
	}
	if a.Description != "" {
		orig.Description = a.Description
	}
	if a.DueDate.Valid {
		orig.DueDate = a.DueDate
	}
	if a.Points.Valid {
		orig.Points = a.Points
	}
	if a.FileName.Valid {
		orig.FileName = a.FileName
		orig.FileType = a.FileType
		orig.FileURL = a.FileURL
	}
	if !a.UpdatedAt.IsZero() {
		orig.UpdatedAt = a.UpdatedAt
	}
	return *orig, nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(_ context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.assignments[id]; ok {
			delete(repo.db.assignments, id)
			n++
		}
		// a deleted assignment takes its submissions with it
		for sid, sub := range repo.db.submissions {
			if sub.AssignmentID == id {
				delete(repo.db.submissions, sid)
			}
		}
	}
	return n, nil
}

func (repo *assignmentRepository) CreateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sub.ID == "" {
		sub.ID = newPK()
	}
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *assignmentRepository) QuerySubmissions(_ context.Context, assignmentID string) ([]assignment.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var out []assignment.Submission
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID {
			out = append(out, *sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (repo *assignmentRepository) GetSubmission(_ context.Context, filter assignment.GetSubmissionFilter) (assignment.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if sub, ok := repo.db.submissions[filter.ID]; ok {
			return *sub, nil
		}
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == filter.AssignmentID && sub.StudentID == filter.StudentID {
			return *sub, nil
		}
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) UpdateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.submissions[sub.ID]; !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}
