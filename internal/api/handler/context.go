package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware. A
// missing subject means the middleware did not run; reject with 401.
func ctxClaims(c echo.Context) (subject string, roles []string, err error) {
	subject, _ = c.Get("sub").(string)
	if subject == "" {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	roles, _ = c.Get("roles").([]string)
	return subject, roles, nil
}
