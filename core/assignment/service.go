package assignment

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kudzaic/educ8/core"
	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/class"
	"github.com/kudzaic/educ8/core/student"
	"github.com/kudzaic/educ8/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrEmptySubmission    = errors.New("a submission requires content or an attached file")
	ErrAlreadySubmitted   = errors.New("this assignment has already been submitted")
	ErrNotSubmitted       = errors.New("only submitted work can be graded")
	ErrNotSubmittable     = errors.New("only assignments accept submissions")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// QueryAssignments applies AND operation on available QueryFilter
		// fields, scoped to one class.
		QueryAssignments(ctx context.Context, classID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignmentsByID(ctx context.Context, ids []string) (int, error)

		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		QuerySubmissions(ctx context.Context, assignmentID string) ([]Submission, error)
		GetSubmission(ctx context.Context, filter GetSubmissionFilter) (Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
	}

	Service interface {
		Create(ctx context.Context, viewer user.User, classID string, na NewAssignment) (Assignment, error)
		// QueryByClass returns a class's feed, newest first.
		QueryByClass(ctx context.Context, viewer user.User, classID string, filter *QueryFilter) ([]Assignment, error)
		GetByID(ctx context.Context, viewer user.User, id string) (Assignment, error)
		Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, ids ...string) error
		AttachFile(ctx context.Context, id, filename, contentType string, r io.Reader) (Assignment, error)

		SaveDraft(ctx context.Context, viewer user.User, assignmentID string, in SubmissionInput) (Submission, error)
		Submit(ctx context.Context, viewer user.User, assignmentID string, in SubmissionInput) (Submission, error)
		AttachSubmissionFile(ctx context.Context, viewer user.User, assignmentID, filename, contentType string, r io.Reader) (Submission, error)
		Grade(ctx context.Context, viewer user.User, submissionID string, gi GradeInput) (Submission, error)
		QuerySubmissions(ctx context.Context, viewer user.User, assignmentID string) ([]Submission, error)
		GetOwnSubmission(ctx context.Context, viewer user.User, assignmentID string) (Submission, error)
	}

	service struct {
		repo      Repository
		clsSvc    class.Service
		stuSvc    student.Service
		fileStore core.FileStore
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, clsSvc class.Service, stuSvc student.Service, fileStore core.FileStore) Service {
	return &service{repo: repo, clsSvc: clsSvc, stuSvc: stuSvc, fileStore: fileStore}
}

func (svc *service) Create(ctx context.Context, viewer user.User, classID string, na NewAssignment) (Assignment, error) {
	// posting requires visibility of the class
	if _, err := svc.clsSvc.GetByID(ctx, viewer, classID); err != nil {
		return Assignment{}, err
	}
	now := time.Now().UTC()
	a := Assignment{
		ClassID:     classID,
		Title:       na.Title,
		Description: na.Description,
		Type:        na.Type,
		DueDate:     na.DueDate,
		Points:      na.Points,
		CreatedBy:   viewer.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAssignment(ctx, a)
}

func (svc *service) QueryByClass(ctx context.Context, viewer user.User, classID string, filter *QueryFilter) ([]Assignment, error) {
	if _, err := svc.clsSvc.GetByID(ctx, viewer, classID); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	// newest first, always
	return svc.repo.QueryAssignments(ctx, classID, filter, []core.DBOrdering{{Field: "created_at"}})
}

func (svc *service) GetByID(ctx context.Context, viewer user.User, id string) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if _, err := svc.clsSvc.GetByID(ctx, viewer, a.ClassID); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error) {
	a := Assignment{
		ID:          id,
		Title:       ua.Title,
		Description: ua.Description,
		DueDate:     ua.DueDate,
		Points:      ua.Points,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateAssignment(ctx, a)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteAssignmentsByID(ctx, ids)
	return err
}

func (svc *service) AttachFile(ctx context.Context, id, filename, contentType string, r io.Reader) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	stored, err := svc.fileStore.Store(ctx, filename, contentType, r)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "storing assignment file")
	}
	a.FileName = null.StringFrom(stored.Name)
	a.FileType = null.StringFrom(stored.ContentType)
	a.FileURL = null.StringFrom(stored.URL)
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, a)
}

// ownStudent resolves the viewer's student record; submissions always belong
// to a student record, never directly to a user.
func (svc *service) ownStudent(ctx context.Context, viewer user.User) (student.Student, error) {
	if !viewer.IsStudent() {
		return student.Student{}, core.NewPermissionError("only students submit work")
	}
	own, err := svc.stuSvc.GetByUserID(ctx, viewer.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "resolving viewer's student record")
	}
	return own, nil
}

// submittable loads the assignment and checks the viewer may submit to it.
func (svc *service) submittable(ctx context.Context, viewer user.User, assignmentID string) (Assignment, student.Student, error) {
	a, err := svc.GetByID(ctx, viewer, assignmentID)
	if err != nil {
		return Assignment{}, student.Student{}, err
	}
	if a.Type != TypeAssignment {
		return Assignment{}, student.Student{}, core.NewValidationError(ErrNotSubmittable)
	}
	own, err := svc.ownStudent(ctx, viewer)
	if err != nil {
		return Assignment{}, student.Student{}, err
	}
	return a, own, nil
}

func (svc *service) SaveDraft(ctx context.Context, viewer user.User, assignmentID string, in SubmissionInput) (Submission, error) {
	_, own, err := svc.submittable(ctx, viewer, assignmentID)
	if err != nil {
		return Submission{}, err
	}

	now := time.Now().UTC()
	sub, err := svc.repo.GetSubmission(ctx, GetSubmissionFilter{AssignmentID: assignmentID, StudentID: own.ID})
	switch errors.Cause(err) {
	case nil:
		if sub.Status != StatusDraft {
			return Submission{}, core.NewValidationError(ErrAlreadySubmitted)
		}
		sub.Content = in.Content
		sub.UpdatedAt = now
		return svc.repo.UpdateSubmission(ctx, sub)
	case ErrSubmissionNotFound:
		return svc.repo.CreateSubmission(ctx, Submission{
			AssignmentID: assignmentID,
			StudentID:    own.ID,
			StudentName:  own.Name,
			Content:      in.Content,
			Status:       StatusDraft,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return Submission{}, err
}

func (svc *service) Submit(ctx context.Context, viewer user.User, assignmentID string, in SubmissionInput) (Submission, error) {
	_, own, err := svc.submittable(ctx, viewer, assignmentID)
	if err != nil {
		return Submission{}, err
	}

	now := time.Now().UTC()
	sub, err := svc.repo.GetSubmission(ctx, GetSubmissionFilter{AssignmentID: assignmentID, StudentID: own.ID})
	switch errors.Cause(err) {
	case nil:
		if sub.Status != StatusDraft {
			return Submission{}, core.NewValidationError(ErrAlreadySubmitted)
		}
		if in.Content != "" {
			sub.Content = in.Content
		}
		if !sub.HasContent() {
			return Submission{}, core.NewValidationError(ErrEmptySubmission)
		}
		sub.Status = StatusSubmitted
		sub.SubmittedAt = null.TimeFrom(now)
		sub.UpdatedAt = now
		return svc.repo.UpdateSubmission(ctx, sub)
	case ErrSubmissionNotFound:
		sub = Submission{
			AssignmentID: assignmentID,
			StudentID:    own.ID,
			StudentName:  own.Name,
			Content:      in.Content,
			Status:       StatusSubmitted,
			SubmittedAt:  null.TimeFrom(now),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if !sub.HasContent() {
			return Submission{}, core.NewValidationError(ErrEmptySubmission)
		}
		return svc.repo.CreateSubmission(ctx, sub)
	}
	return Submission{}, err
}

func (svc *service) AttachSubmissionFile(ctx context.Context, viewer user.User, assignmentID, filename, contentType string, r io.Reader) (Submission, error) {
	_, own, err := svc.submittable(ctx, viewer, assignmentID)
	if err != nil {
		return Submission{}, err
	}

	now := time.Now().UTC()
	sub, err := svc.repo.GetSubmission(ctx, GetSubmissionFilter{AssignmentID: assignmentID, StudentID: own.ID})
	switch errors.Cause(err) {
	case nil:
		if sub.Status != StatusDraft {
			return Submission{}, core.NewValidationError(ErrAlreadySubmitted)
		}
	case ErrSubmissionNotFound:
		sub = Submission{
			AssignmentID: assignmentID,
			StudentID:    own.ID,
			StudentName:  own.Name,
			Status:       StatusDraft,
			CreatedAt:    now,
		}
		if sub, err = svc.repo.CreateSubmission(ctx, sub); err != nil {
			return Submission{}, err
		}
	default:
		return Submission{}, err
	}

	stored, err := svc.fileStore.Store(ctx, filename, contentType, r)
	if err != nil {
		return Submission{}, errors.Wrap(err, "storing submission file")
	}
	sub.FileName = null.StringFrom(stored.Name)
	sub.FileURL = null.StringFrom(stored.URL)
	sub.UpdatedAt = now
	return svc.repo.UpdateSubmission(ctx, sub)
}

func (svc *service) Grade(ctx context.Context, viewer user.User, submissionID string, gi GradeInput) (Submission, error) {
	if !access.Can(viewer.Role, access.ScreenAssignments, access.ActionEdit) {
		return Submission{}, core.NewPermissionError("this role cannot grade submissions")
	}
	sub, err := svc.repo.GetSubmission(ctx, GetSubmissionFilter{ID: submissionID})
	if err != nil {
		return Submission{}, err
	}
	if sub.Status != StatusSubmitted {
		return Submission{}, core.NewValidationError(ErrNotSubmitted)
	}
	sub.Status = StatusGraded
	sub.Grade = null.IntFrom(gi.Grade)
	sub.Feedback = null.StringFrom(gi.Feedback)
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubmission(ctx, sub)
}

func (svc *service) QuerySubmissions(ctx context.Context, viewer user.User, assignmentID string) ([]Submission, error) {
	if _, err := svc.GetByID(ctx, viewer, assignmentID); err != nil {
		return nil, err
	}
	if viewer.IsStudent() {
		// students only ever see their own work
		sub, err := svc.GetOwnSubmission(ctx, viewer, assignmentID)
		if err != nil {
			if errors.Cause(err) == ErrSubmissionNotFound {
				return nil, nil
			}
			return nil, err
		}
		return []Submission{sub}, nil
	}
	return svc.repo.QuerySubmissions(ctx, assignmentID)
}

func (svc *service) GetOwnSubmission(ctx context.Context, viewer user.User, assignmentID string) (Submission, error) {
	own, err := svc.ownStudent(ctx, viewer)
	if err != nil {
		return Submission{}, err
	}
	return svc.repo.GetSubmission(ctx, GetSubmissionFilter{AssignmentID: assignmentID, StudentID: own.ID})
}
