package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/pkg/middleware"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
)

// errorStatus maps a domain error kind to its HTTP status and error code
var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, response.ErrCodeNotFound},
	{domain.ErrConflict, http.StatusConflict, response.ErrCodeConflict},
	{domain.ErrInvalidState, http.StatusUnprocessableEntity, response.ErrCodeInvalidState},
	{domain.ErrCapacityExceeded, http.StatusConflict, response.ErrCodeCapacityExceeded},
	{domain.ErrUnauthorized, http.StatusForbidden, response.ErrCodeForbidden},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, response.ErrCodeUnauthorized},
	{domain.ErrValidation, http.StatusBadRequest, response.ErrCodeValidation},
}

// handleError writes the envelope for err. Anything that is not a domain
// error becomes a 500 without details.
func handleError(c *gin.Context, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.kind) {
			response.Error(c, m.status, m.code, err.Error(), "")
			return
		}
	}
	response.InternalError(c, err)
}

// bindError answers a body or query that failed to decode or bind
func bindError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request", err.Error())
}

// principal builds the caller from the claims the JWT middleware stored.
// It is nil on public routes.
func principal(c *gin.Context) *domain.Principal {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil
	}
	return domain.NewPrincipal(userID, middleware.GetEmail(c), middleware.GetRoles(c))
}
