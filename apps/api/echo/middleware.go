package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core/access"
	"github.com/kudzaic/educ8/core/user"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == user.RoleAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// canMiddleware guards a mutating endpoint behind the role policy.
func canMiddleware(screen access.Screen, action access.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if access.Can(claims.Role, screen, action) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// navMiddleware rejects roles whose menu does not include the screen at all.
// Row-level visibility is still the services' job.
func navMiddleware(screen access.Screen) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if access.CanNavigate(claims.Role, screen) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
