package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/assignment"
	"github.com/kudzaic/educ8/core/user"
)

type assignmentApi struct {
	svc      assignment.Service
	usrSvc   user.Service
	validate *validator.Validate
}

// Assignments live inside the classes screen; mutating actions are still
// guarded by the assignments permission.
func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := assignmentApi{
		svc:      deps.AssignmentSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/classes/:id/assignments", jwt, navMiddleware(access.ScreenClasses))
	cg.GET("", api.queryByClass)
	cg.POST("", api.create, canMiddleware(access.ScreenAssignments, access.ActionCreate))

	ag := g.Group("/assignments/:id", jwt, navMiddleware(access.ScreenClasses))
	ag.GET("", api.retrieve)
	ag.PUT("", api.update, canMiddleware(access.ScreenAssignments, access.ActionEdit))
	ag.DELETE("", api.destroy, canMiddleware(access.ScreenAssignments, access.ActionDelete))
	ag.POST("/file", api.attachFile, canMiddleware(access.ScreenAssignments, access.ActionEdit))

	// submission workflow; ownership and lifecycle rules live in the service
	ag.GET("/submissions", api.querySubmissions)
	ag.GET("/submissions/mine", api.ownSubmission)
	ag.POST("/submissions/draft", api.saveDraft)
	ag.POST("/submissions/submit", api.submit)
	ag.POST("/submissions/file", api.attachSubmissionFile)

	g.PUT("/submissions/:id/grade", api.grade, jwt, navMiddleware(access.ScreenClasses))
}

func (api *assignmentApi) queryByClass(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(assignment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}

	assignments, err := api.svc.QueryByClass(ctx.Request().Context(), viewer, ctx.Param("id"), filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), viewer, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	a, err := api.svc.GetByID(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) attachFile(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	a, err := api.svc.AttachFile(ctx.Request().Context(), ctx.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}
	if subs == nil {
		subs = []assignment.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) ownSubmission(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.GetOwnSubmission(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) saveDraft(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.SubmissionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmissionInput")
	}

	sub, err := api.svc.SaveDraft(ctx.Request().Context(), viewer, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.SubmissionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmissionInput")
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), viewer, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) attachSubmissionFile(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	sub, err := api.svc.AttachSubmissionFile(ctx.Request().Context(), viewer, ctx.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data assignment.GradeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	sub, err := api.svc.Grade(ctx.Request().Context(), viewer, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}
