package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/pkg/response"
)

// errorCodes maps domain sentinel errors to API error codes
var errorCodes = map[error]string{
	domain.ErrCapacityExceeded:        response.ErrCodeCapacityExceeded,
	domain.ErrDuplicateRegistration:   response.ErrCodeDuplicateRegistration,
	domain.ErrEventNotOpen:            response.ErrCodeEventNotOpen,
	domain.ErrAlreadyCancelled:        response.ErrCodeAlreadyCancelled,
	domain.ErrVenueInUse:              response.ErrCodeVenueInUse,
	domain.ErrEventHasRegistrations:   response.ErrCodeEventHasRegistrations,
	domain.ErrInvalidStatusTransition: response.ErrCodeConflict,
}

// respondError translates a service error into the API response envelope
func respondError(c *gin.Context, err error) {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			c.JSON(response.GetHTTPStatus(code), response.Error(code, err.Error()))
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(response.GetHTTPStatus(response.ErrCodeServiceUnavailable),
			response.ServiceUnavailable("Service temporarily unavailable"))
	case domain.IsNotFoundError(err):
		c.JSON(response.GetHTTPStatus(response.ErrCodeNotFound), response.NotFound(err.Error()))
	case domain.IsValidationError(err):
		c.JSON(response.GetHTTPStatus(response.ErrCodeBadRequest), response.BadRequest(err.Error()))
	case domain.IsConflictError(err):
		c.JSON(response.GetHTTPStatus(response.ErrCodeConflict), response.Error(response.ErrCodeConflict, err.Error()))
	default:
		c.JSON(response.GetHTTPStatus(response.ErrCodeInternalError), response.InternalError("Internal server error"))
	}
}

// paginationFromQuery reads page/per_page query parameters with defaults
func paginationFromQuery(c *gin.Context) (limit, offset, page int) {
	params := response.DefaultPagination()

	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		params.Page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("per_page", "20")); err == nil && v > 0 && v <= 100 {
		params.PerPage = v
	}

	return params.PerPage, (params.Page - 1) * params.PerPage, params.Page
}
