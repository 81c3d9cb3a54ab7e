package staff

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
	ErrNotFound    = errors.New("teacher not found")
	ErrEmailExists = errors.New("a teacher with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Teacher) error
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		// QueryTeachers applies AND operation on available QueryFilter fields.
		QueryTeachers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Teacher, error)
		GetTeacher(ctx context.Context, filter GetFilter) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CheckEmailUniqueness(email string, excluded ...Teacher) error
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Teacher, error)
		GetByID(ctx context.Context, viewer user.User, id string) (Teacher, error)
		GetByUserID(ctx context.Context, userID string) (Teacher, error)
		Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error)
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

func (svc *service) CheckEmailUniqueness(email string, excluded ...Teacher) error {
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

func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	t := Teacher{
		UserID:     nt.UserID,
		Name:       nt.Name,
		Email:      nt.Email,
		Phone:      nt.Phone,
		Subjects:   nt.Subjects,
		Classes:    nt.Classes,
		Department: nt.Department,
		Status:     StatusActive,
		Experience: nt.Experience,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *service) Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Teacher, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()

	scope := access.ScopeFor(viewer, access.ScreenTeachers)
	switch {
	case scope.All:
	case scope.Department != "":
		filter.Department = scope.Department
	default:
		return nil, core.NewPermissionError("teachers are not visible to this role")
	}
	return svc.repo.QueryTeachers(ctx, filter, []core.DBOrdering{{Field: "name", Ascending: true}})
}

func (svc *service) GetByID(ctx context.Context, viewer user.User, id string) (Teacher, error) {
	t, err := svc.repo.GetTeacher(ctx, GetFilter{ID: id})
	if err != nil {
		return Teacher{}, err
	}

	scope := access.ScopeFor(viewer, access.ScreenTeachers)
	switch {
	case scope.All:
		return t, nil
	case scope.Department != "":
		if t.Department == scope.Department {
			return t, nil
		}
	}
	return Teacher{}, core.NewPermissionError("this teacher is not visible to this role")
}

func (svc *service) GetByUserID(ctx context.Context, userID string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{UserID: userID})
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	t := Teacher{
		ID:         id,
		Name:       ut.Name,
		Email:      ut.Email,
		Phone:      ut.Phone,
		Subjects:   ut.Subjects,
		Classes:    ut.Classes,
		Department: ut.Department,
		Status:     ut.Status,
		Experience: ut.Experience,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpdateTeacher(ctx, t)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteTeachersByID(ctx, ids)
	return err
}
