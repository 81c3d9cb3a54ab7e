package fee

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
)

var (
	ErrNotFound = errors.New("fee not found")
	ErrNoParent = errors.New("fee has no linked parent account")
)

type (
	Repository interface {
		CreateFee(ctx context.Context, f Fee) (Fee, error)
		// QueryFees applies AND operation on available QueryFilter fields.
		QueryFees(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Fee, error)
		GetFee(ctx context.Context, id string) (Fee, error)
		UpdateFee(ctx context.Context, f Fee) (Fee, error)
		DeleteFeesByID(ctx context.Context, ids []string) (int, error)
	}

	// UserGetter resolves the parent account behind a fee.
	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service interface {
		Create(ctx context.Context, nf NewFee) (Fee, error)
		Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Fee, error)
		GetByID(ctx context.Context, viewer user.User, id string) (Fee, error)
		// UpdatePayment records a payment and rederives the status.
		UpdatePayment(ctx context.Context, id string, up UpdatePayment) (Fee, error)
		Delete(ctx context.Context, ids ...string) error
		// Summarize aggregates the fees visible to the viewer.
		Summarize(ctx context.Context, viewer user.User) (Summary, error)
		// RemindParent emails the parent an outstanding balance reminder.
		RemindParent(ctx context.Context, id string) error
	}

	service struct {
		repo    Repository
		stuSvc  student.Service
		usrSvc  UserGetter
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, stuSvc student.Service, usrSvc UserGetter, mailSvc core.EmailService) Service {
	return &service{repo: repo, stuSvc: stuSvc, usrSvc: usrSvc, mailSvc: mailSvc}
}

func (svc *service) Create(ctx context.Context, nf NewFee) (Fee, error) {
	// the student link also supplies the denormalized names
	st, err := svc.stuSvc.Get(ctx, nf.StudentID)
	if err != nil {
		return Fee{}, errors.Wrap(err, "resolving billed student")
	}

	now := time.Now().UTC()
	f := Fee{
		StudentID:   st.ID,
		StudentName: st.Name,
		ParentID:    st.ParentID,
		AmountDue:   nf.AmountDue,
		AmountPaid:  nf.AmountPaid,
		FeeType:     nf.FeeType,
		DueDate:     nf.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.RefreshStatus()
	return svc.repo.CreateFee(ctx, f)
}

func (svc *service) Query(ctx context.Context, viewer user.User, filter *QueryFilter) ([]Fee, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()

	scope := access.ScopeFor(viewer, access.ScreenFees)
	switch {
	case scope.All:
	case scope.ParentID != "":
		filter.ParentID = scope.ParentID
	default:
		return nil, core.NewPermissionError("fees are not visible to this role")
	}
	return svc.repo.QueryFees(ctx, filter, []core.DBOrdering{{Field: "due_date", Ascending: true}})
}

func (svc *service) GetByID(ctx context.Context, viewer user.User, id string) (Fee, error) {
	f, err := svc.repo.GetFee(ctx, id)
	if err != nil {
		return Fee{}, err
	}

	scope := access.ScopeFor(viewer, access.ScreenFees)
	switch {
	case scope.All:
		return f, nil
	case scope.ParentID != "":
		if f.ParentID == scope.ParentID {
			return f, nil
		}
	}
	return Fee{}, core.NewPermissionError("this fee is not visible to this role")
}

func (svc *service) UpdatePayment(ctx context.Context, id string, up UpdatePayment) (Fee, error) {
	f, err := svc.repo.GetFee(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	f.AmountPaid = up.AmountPaid
	f.RefreshStatus()
	f.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateFee(ctx, f)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteFeesByID(ctx, ids)
	return err
}

func (svc *service) RemindParent(ctx context.Context, id string) error {
	f, err := svc.repo.GetFee(ctx, id)
	if err != nil {
		return err
	}
	if f.Status == StatusPaid {
		return nil // nothing owed
	}
	if f.ParentID == "" {
		return ErrNoParent
	}

	parent, err := svc.usrSvc.GetByID(ctx, f.ParentID)
	if err != nil {
		return errors.Wrap(err, "resolving parent account")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: parent.Name, Address: parent.Email}},
		Subject:      "School fees reminder",
		TemplateName: "fee_reminder",
		TemplateData: struct {
			ParentName  string
			StudentName string
			FeeType     string
			Outstanding float64
			DueDate     time.Time
		}{parent.Name, f.StudentName, f.FeeType, f.Outstanding(), f.DueDate},
	})
	return nil
}

func (svc *service) Summarize(ctx context.Context, viewer user.User) (Summary, error) {
	fees, err := svc.Query(ctx, viewer, nil)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{CountByStatus: make(map[string]int)}
	for _, f := range fees {
		sum.TotalDue += f.AmountDue
		sum.TotalPaid += f.AmountPaid
		sum.TotalOutstanding += f.Outstanding()
		sum.CountByStatus[f.Status]++
	}
	return sum, nil
}
