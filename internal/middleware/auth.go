package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// Auth validates a bearer token and puts the stable user id into the
// request context. Routes wired through Require reject unauthenticated
// requests; Optional leaves user_id empty for anonymous browsing.
type Auth struct {
	secret []byte
}

func NewAuth(jwtSecret string) *Auth {
	return &Auth{secret: []byte(jwtSecret)}
}

func (a *Auth) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := a.userIDFromRequest(c)
			if err != nil || userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"state": "AUTH_REQUIRED",
					"error": "authentication required",
				})
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

func (a *Auth) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, err := a.userIDFromRequest(c); err == nil {
				c.Set(userIDKey, userID)
			}
			return next(c)
		}
	}
}

func (a *Auth) userIDFromRequest(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing subject claim")
	}
	return sub, nil
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	userID, _ := c.Get(userIDKey).(string)
	return userID
}
