package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		// QueryClasses applies AND operation on available QueryFilter fields.
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error)
		GetClass(ctx context.Context, filter GetFilter) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Class, error)
		// GetByID returns the class with its roster.
		GetByID(ctx context.Context, viewer user.User, id string) (Class, error)
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, ids ...string) error
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

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		Name:        nc.Name,
		TeacherID:   nc.TeacherID,
		TeacherName: nc.TeacherName,
		Room:        nc.Room,
		Schedule:    nc.Schedule,
		Subjects:    nc.Subjects,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

// scopeFilter narrows the filter to the viewer's row-level scope.
func (svc *service) scopeFilter(ctx context.Context, viewer user.User, filter *QueryFilter) error {
	scope := access.ScopeFor(viewer, access.ScreenClasses)
	switch {
	case scope.All:
		return nil
	case scope.TeacherID != "":
		filter.TeacherID = scope.TeacherID
		return nil
	case scope.OwnClass:
		own, err := svc.stuSvc.GetByUserID(ctx, viewer.ID)
		if err != nil {
			return errors.Wrap(err, "resolving viewer's student record")
		}
		filter.Name = own.Class
		return nil
	}
	return core.NewPermissionError("classes are not visible to this role")
}

func (svc *service) Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Class, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	if err := svc.scopeFilter(ctx, viewer, filter); err != nil {
		return nil, err
	}
	return svc.repo.QueryClasses(ctx, filter, []core.DBOrdering{{Field: "name", Ascending: true}})
}

func (svc *service) GetByID(ctx context.Context, viewer user.User, id string) (Class, error) {
	cls, err := svc.repo.GetClass(ctx, GetFilter{ID: id})
	if err != nil {
		return Class{}, err
	}

	scope := access.ScopeFor(viewer, access.ScreenClasses)
	switch {
	case scope.All:
		return cls, nil
	case scope.TeacherID != "":
		if cls.TeacherID == scope.TeacherID {
			return cls, nil
		}
	case scope.OwnClass:
		own, err := svc.stuSvc.GetByUserID(ctx, viewer.ID)
		if err != nil {
			return Class{}, errors.Wrap(err, "resolving viewer's student record")
		}
		if cls.Name == own.Class {
			return cls, nil
		}
	}
	return Class{}, core.NewPermissionError("this class is not visible to this role")
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls := Class{
		ID:          id,
		Name:        uc.Name,
		TeacherID:   uc.TeacherID,
		TeacherName: uc.TeacherName,
		Room:        uc.Room,
		Schedule:    uc.Schedule,
		Subjects:    uc.Subjects,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteClassesByID(ctx, ids)
	return err
}
