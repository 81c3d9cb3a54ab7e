package grade

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
)

var ErrNotFound = errors.New("grade not found")

// trendTolerance is the percentage-point band within which averages count
// as steady.
const trendTolerance = 1.0

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		// QueryGrades applies AND operation on available QueryFilter fields.
		QueryGrades(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Grade, error)
		GetGrade(ctx context.Context, id string) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGradesByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, viewer user.User, ng NewGrade) (Grade, error)
		Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Grade, error)
		GetByID(ctx context.Context, viewer user.User, id string) (Grade, error)
		Update(ctx context.Context, id string, ug UpdateGrade) (Grade, error)
		Delete(ctx context.Context, ids ...string) error
		// Summarize aggregates the grades visible to the viewer.
		Summarize(ctx context.Context, viewer user.User, filter *QueryFilter) (Summary, error)
	}

	service struct {
		repo   Repository
		stuSvc student.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, stuSvc student.Service) Service {
	return &service{repo: repo, stuSvc: stuSvc}
}

func (svc *service) Create(ctx context.Context, viewer user.User, ng NewGrade) (Grade, error) {
	st, err := svc.stuSvc.Get(ctx, ng.StudentID)
	if err != nil {
		return Grade{}, errors.Wrap(err, "resolving graded student")
	}

	now := time.Now().UTC()
	g := Grade{
		StudentID:   st.ID,
		StudentName: st.Name,
		Class:       st.Class,
		ParentID:    st.ParentID,
		Subject:     ng.Subject,
		Assignment:  ng.Assignment,
		Grade:       ng.Grade,
		Percentage:  ng.Percentage,
		Date:        ng.Date,
		TeacherID:   viewer.ID,
		TeacherName: viewer.Name,
		Term:        ng.Term,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if g.Date.IsZero() {
		g.Date = now
	}
	return svc.repo.CreateGrade(ctx, g)
}

// scopeFilter narrows the filter to the viewer's row-level scope.
func (svc *service) scopeFilter(ctx context.Context, viewer user.User, filter *QueryFilter) error {
	scope := access.ScopeFor(viewer, access.ScreenGrades)
	switch {
	case scope.All:
		return nil
	case scope.TeacherID != "":
		filter.TeacherID = scope.TeacherID
		return nil
	case scope.ParentID != "":
		filter.ParentID = scope.ParentID
		return nil
	case scope.OwnRecord:
		own, err := svc.stuSvc.GetByUserID(ctx, viewer.ID)
		if err != nil {
			return errors.Wrap(err, "resolving viewer's student record")
		}
		filter.StudentID = own.ID
		return nil
	}
	return core.NewPermissionError("grades are not visible to this role")
}

func (svc *service) Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Grade, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	if err := svc.scopeFilter(ctx, viewer, filter); err != nil {
		return nil, err
	}
	return svc.repo.QueryGrades(ctx, filter, []core.DBOrdering{{Field: "date"}})
}

func (svc *service) GetByID(ctx context.Context, viewer user.User, id string) (Grade, error) {
	g, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}

	scope := access.ScopeFor(viewer, access.ScreenGrades)
	switch {
	case scope.All:
		return g, nil
	case scope.TeacherID != "":
		if g.TeacherID == scope.TeacherID {
			return g, nil
		}
	case scope.ParentID != "":
		if g.ParentID == scope.ParentID {
			return g, nil
		}
	case scope.OwnRecord:
		own, err := svc.stuSvc.GetByUserID(ctx, viewer.ID)
		if err != nil {
			return Grade{}, errors.Wrap(err, "resolving viewer's student record")
		}
		if g.StudentID == own.ID {
			return g, nil
		}
	}
	return Grade{}, core.NewPermissionError("this grade is not visible to this role")
}

func (svc *service) Update(ctx context.Context, id string, ug UpdateGrade) (Grade, error) {
	g, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	g.Grade = ug.Grade
	g.Percentage = ug.Percentage
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, g)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteGradesByID(ctx, ids)
	return err
}

func (svc *service) Summarize(ctx context.Context, viewer user.User, filter *QueryFilter) (Summary, error) {
	grades, err := svc.Query(ctx, viewer, filter)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{AverageBySubject: make(map[string]float64), Trend: TrendSteady}
	if len(grades) == 0 {
		return sum, nil
	}

	var total float64
	subjTotals := make(map[string]float64)
	subjCounts := make(map[string]int)
	for _, g := range grades {
		total += g.Percentage
		subjTotals[g.Subject] += g.Percentage
		subjCounts[g.Subject]++
	}
	sum.Average = total / float64(len(grades))
	for subj, t := range subjTotals {
		sum.AverageBySubject[subj] = t / float64(subjCounts[subj])
	}

	if len(grades) >= 2 {
		sorted := make([]Grade, len(grades))
		copy(sorted, grades)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

		mid := len(sorted) / 2
		older, recent := sorted[:mid], sorted[mid:]
		diff := average(recent) - average(older)
		switch {
		case diff > trendTolerance:
			sum.Trend = TrendImproving
		case diff < -trendTolerance:
			sum.Trend = TrendDeclining
		}
	}
	return sum, nil
}

func average(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var total float64
	for _, g := range grades {
		total += g.Percentage
	}
	return total / float64(len(grades))
}
