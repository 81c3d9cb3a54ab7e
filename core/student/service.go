package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/user"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Student) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CheckEmailUniqueness(email string, excluded ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		// Query returns the students the viewer is allowed to see, further
		// narrowed by the filter.
		Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Student, error)
		GetByID(ctx context.Context, viewer user.User, id string) (Student, error)
		// Get is the unscoped lookup used by collaborating services; it must
		// never back an API read directly.
		Get(ctx context.Context, id string) (Student, error)
		GetByUserID(ctx context.Context, userID string) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckEmailUniqueness(email string, excluded ...Student) error {
	if email == "" {
		return nil
	}
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excluded...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	st := Student{
		UserID:           ns.UserID,
		ParentID:         ns.ParentID,
		Name:             ns.Name,
		Class:            ns.Class,
		Age:              ns.Age,
		GuardianPhone:    ns.GuardianPhone,
		Email:            ns.Email,
		Address:          ns.Address,
		DateOfBirth:      ns.DateOfBirth,
		Status:           StatusActive,
		Extracurriculars: ns.Extracurriculars,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateStudent(ctx, st)
}

// scopeFilter narrows the filter to the viewer's row-level scope. A zero
// scope means the viewer may not list students at all.
func (svc *service) scopeFilter(ctx context.Context, viewer user.User, filter *QueryFilter) error {
	scope := access.ScopeFor(viewer, access.ScreenStudents)
	switch {
	case scope.All:
		return nil
	case scope.Classmates:
		// the viewer's class comes from their own student record, never
		// from client input
		own, err := svc.repo.GetStudent(ctx, GetFilter{UserID: viewer.ID})
		if err != nil {
			return errors.Wrap(err, "resolving viewer's student record")
		}
		filter.Class = own.Class
		filter.ExcludeID = own.ID
		return nil
	case scope.ParentID != "":
		filter.ParentID = scope.ParentID
		return nil
	}
	return core.NewPermissionError("students are not visible to this role")
}

func (svc *service) Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Student, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	if err := svc.scopeFilter(ctx, viewer, filter); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudents(ctx, filter, []core.DBOrdering{{Field: "name", Ascending: true}})
}

func (svc *service) GetByID(ctx context.Context, viewer user.User, id string) (Student, error) {
	st, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}

	scope := access.ScopeFor(viewer, access.ScreenStudents)
	switch {
	case scope.All:
		return st, nil
	case scope.Classmates:
		own, err := svc.repo.GetStudent(ctx, GetFilter{UserID: viewer.ID})
		if err != nil {
			return Student{}, errors.Wrap(err, "resolving viewer's student record")
		}
		if st.Class == own.Class && st.ID != own.ID {
			return st, nil
		}
	case scope.ParentID != "":
		if st.ParentID == scope.ParentID {
			return st, nil
		}
	}
	return Student{}, core.NewPermissionError("this student is not visible to this role")
}

func (svc *service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *service) GetByUserID(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{UserID: userID})
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	st := Student{
		ID:               id,
		ParentID:         us.ParentID,
		Name:             us.Name,
		Class:            us.Class,
		Age:              us.Age,
		GuardianPhone:    us.GuardianPhone,
		Email:            us.Email,
		Address:          us.Address,
		DateOfBirth:      us.DateOfBirth,
		Status:           us.Status,
		Extracurriculars: us.Extracurriculars,
		Grades:           us.Grades,
		UpdatedAt:        time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, st)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStudentsByID(ctx, ids)
	return err
}
