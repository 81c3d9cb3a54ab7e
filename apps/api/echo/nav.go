package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core/access"
)

// screens that have a backing API today; the rest render a placeholder.
var builtScreens = map[access.Screen]string{
	access.ScreenStudents:    "/v1/students",
	access.ScreenTeachers:    "/v1/teachers",
	access.ScreenClasses:     "/v1/classes",
	access.ScreenAssignments: "/v1/classes/:id/assignments",
	access.ScreenGrades:      "/v1/grades",
	access.ScreenFees:        "/v1/fees",
	access.ScreenReports:     "/v1/reports",
}

type navApi struct {
	deps *ServerDeps
}

func registerNavAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := navApi{deps: deps}

	g.GET("/navigation", api.navigation, jwt)
	g.GET("/screens/:screen", api.screen, jwt)
}

type (
	NavigationResponse struct {
		Role        string                     `json:"role"`
		Items       []access.NavItem           `json:"items"`
		Permissions map[string][]access.Action `json:"permissions"`
	}

	ScreenResponse struct {
		Screen   access.Screen `json:"screen"`
		Status   string        `json:"status"` // available | coming_soon
		Endpoint string        `json:"endpoint,omitempty"`
	}
)

// navigation returns the viewer's menu plus their mutating permissions per
// screen, so the client never has to guess what to render.
func (api *navApi) navigation(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	items := access.NavigationItems(claims.Role)
	perms := make(map[string][]access.Action, len(items))
	for _, item := range items {
		var actions []access.Action
		for _, action := range []access.Action{access.ActionCreate, access.ActionEdit, access.ActionDelete} {
			if access.Can(claims.Role, item.Screen, action) {
				actions = append(actions, action)
			}
		}
		if actions != nil {
			perms[string(item.Screen)] = actions
		}
	}

	return ctx.JSON(http.StatusOK, NavigationResponse{
		Role:        claims.Role,
		Items:       items,
		Permissions: perms,
	})
}

func (api *navApi) screen(ctx echo.Context) error {
	screen := access.Screen(ctx.Param("screen"))
	if !access.KnownScreen(screen) {
		return errHttpNotFound
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !access.CanNavigate(claims.Role, screen) {
		return errHttpForbidden
	}

	resp := ScreenResponse{Screen: screen, Status: "coming_soon"}
	if endpoint, ok := builtScreens[screen]; ok {
		resp.Status = "available"
		resp.Endpoint = endpoint
	}
	return ctx.JSON(http.StatusOK, resp)
}
