package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/fee"
	"github.com/kudzaic/educ8/core/grade"
	"github.com/kudzaic/educ8/core/user"
)

type reportApi struct {
	feeSvc   fee.Service
	gradeSvc grade.Service
	usrSvc   user.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := reportApi{
		feeSvc:   deps.FeeSvc,
		gradeSvc: deps.GradeSvc,
		usrSvc:   deps.UserSvc,
	}

	rg := g.Group("/reports", jwt, navMiddleware(access.ScreenReports))
	rg.GET("/grades", api.grades)
	rg.GET("/fees", api.fees)
}

// grades reports grade averages over the rows the viewer can see.
func (api *reportApi) grades(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(grade.QueryFilter)
	}

	sum, err := api.gradeSvc.Summarize(ctx.Request().Context(), viewer, filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}

// fees reports collection totals over the rows the viewer can see.
func (api *reportApi) fees(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sum, err := api.feeSvc.Summarize(ctx.Request().Context(), viewer)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}
