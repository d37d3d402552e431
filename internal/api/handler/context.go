package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/studio/internal/core/domain"
)

// ctxUser extracts the identity injected by the Auth middleware. A missing
// subject means the middleware did not run and the request is rejected.
func ctxUser(c echo.Context) (userID string, role domain.Role, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	r, _ := c.Get("role").(string)
	return userID, domain.Role(r), nil
}
