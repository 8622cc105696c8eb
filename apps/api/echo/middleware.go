package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/anwesha-dev/campusflow-ai/core/auth"
)

// sessionMiddleware attaches the session named by the token to the request context.
// Tokens of closed sessions are rejected.
func sessionMiddleware(sessions *auth.Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			sess, err := sessions.Get(claims.Id)
			if err != nil || !sess.IsAuthenticated() {
				return errSessionClosed
			}
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(auth.NewContext(req.Context(), sess)))
			return next(ctx)
		}
	}
}

func roleMiddleware(role auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.Role != role {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// queryTokenMiddleware lets browsers, which cannot set headers on websocket handshakes,
// pass the JWT as the `token` query param.
func queryTokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		if token := ctx.QueryParam("token"); token != "" && req.Header.Get(echo.HeaderAuthorization) == "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		return next(ctx)
	}
}
