package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/fee"
	"github.com/kudzaic/educ8/core/user"
)

type feeApi struct {
	svc      fee.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := feeApi{
		svc:      deps.FeeSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	fg := g.Group("/fees", jwt, navMiddleware(access.ScreenFees))
	fg.GET("", api.query)
	fg.POST("", api.create, canMiddleware(access.ScreenFees, access.ActionCreate))
	fg.DELETE("", api.destroyMultiple, canMiddleware(access.ScreenFees, access.ActionDelete))

	dg := fg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/payment", api.updatePayment, canMiddleware(access.ScreenFees, access.ActionEdit))
	dg.POST("/remind", api.remind, canMiddleware(access.ScreenFees, access.ActionEdit))
	dg.DELETE("", api.destroy, canMiddleware(access.ScreenFees, access.ActionDelete))
}

func (api *feeApi) query(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(fee.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []fee.Fee{})
	}

	fees, err := api.svc.Query(ctx.Request().Context(), viewer, filter)
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	if fees == nil {
		fees = []fee.Fee{}
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) create(ctx echo.Context) error {
	var data fee.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	f, err := api.svc.GetByID(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) updatePayment(ctx echo.Context) error {
	var data fee.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.svc.UpdatePayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) remind(ctx echo.Context) error {
	if err := api.svc.RemindParent(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Reminder sent."})
}

func (api *feeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting fee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *feeApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting fees")
	}
	return ctx.NoContent(http.StatusNoContent)
}
