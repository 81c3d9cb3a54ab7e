package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/grade"
	"github.com/kudzaic/educ8/core/user"
)

type gradeApi struct {
	svc      grade.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := gradeApi{
		svc:      deps.GradeSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	gg := g.Group("/grades", jwt, navMiddleware(access.ScreenGrades))
	gg.GET("", api.query)
	gg.GET("/summary", api.summary)
	gg.POST("", api.create, canMiddleware(access.ScreenGrades, access.ActionCreate))
	gg.DELETE("", api.destroyMultiple, canMiddleware(access.ScreenGrades, access.ActionDelete))

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, canMiddleware(access.ScreenGrades, access.ActionEdit))
	dg.DELETE("", api.destroy, canMiddleware(access.ScreenGrades, access.ActionDelete))
}

func (api *gradeApi) query(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []grade.Grade{})
	}

	grades, err := api.svc.Query(ctx.Request().Context(), viewer, filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) summary(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(grade.QueryFilter)
	}

	sum, err := api.svc.Summarize(ctx.Request().Context(), viewer, filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *gradeApi) create(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	gr, err := api.svc.Create(ctx.Request().Context(), viewer, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, gr)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	gr, err := api.svc.GetByID(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, gr)
}

func (api *gradeApi) update(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data grade.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	gr, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, gr)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting grades")
	}
	return ctx.NoContent(http.StatusNoContent)
}
