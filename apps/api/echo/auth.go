package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
)

const (
	jwtContextKey = "userToken"
	jwtAudience   = "Campus"
)

// Claims represents the authorization claims transmitted via a JWT.
// Id carries the session id, Subject the user id.
type Claims struct {
	jwt.StandardClaims
	Email     string    `json:"email,omitempty"`
	Role      auth.Role `json:"role,omitempty"`
	IsStudent bool      `json:"is_student,omitempty"` // -> STUDENT DASHBOARD
	IsAdmin   bool      `json:"is_admin,omitempty"`   // -> ADMIN DASHBOARD
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

func NewClaims(conf *core.Config, sessionID string, usr auth.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sessionID,
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  jwtAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:     usr.Email,
		Role:      usr.Role,
		IsStudent: usr.IsStudent(),
		IsAdmin:   usr.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser returns the user of the session attached by sessionMiddleware.
func getContextUser(ctx echo.Context) (auth.User, error) {
	if usr, ok := auth.FromContext(ctx.Request().Context()).User(); ok {
		return usr, nil
	}
	return auth.User{}, errUnauthorized
}

type authApi struct {
	conf     *core.Config
	logger   core.Logger
	sessions *auth.Sessions
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, deps Deps, jwt, session echo.MiddlewareFunc) {
	api := authApi{
		conf:     deps.Conf,
		logger:   deps.Logger,
		sessions: deps.Sessions,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)

	sg := ag.Group("", jwt, session)
	sg.POST("/logout", api.logout)
	sg.GET("/me", api.me)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess := api.sessions.Open()
	if !sess.Login(data.Email, data.Password, data.Role) {
		api.sessions.Close(sess.ID())
		return core.NewValidationError(auth.ErrInvalidCredentials)
	}
	usr, _ := sess.User()

	token, err := GenerateToken(api.conf, NewClaims(api.conf, sess.ID(), usr))
	if err != nil {
		api.sessions.Close(sess.ID())
		return errors.Wrap(err, "generating token")
	}
	api.logger.Info(fmt.Sprintf("%s %s logged in", usr.Role, usr.ID))
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.sessions.Close(claims.Id)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}
