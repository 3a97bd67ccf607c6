package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-registration/internal/service"
	"github.com/prohmpiriya/event-registration/pkg/middleware"
	"github.com/prohmpiriya/event-registration/pkg/response"
)

// QueryHandler handles the read-side HTTP requests: public listings,
// availability, and registration history
type QueryHandler struct {
	queryService service.QueryService
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(queryService service.QueryService) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
	}
}

// ListOpenEvents handles GET /events - lists active events for browsing
func (h *QueryHandler) ListOpenEvents(c *gin.Context) {
	limit, offset, page := paginationFromQuery(c)

	events, total, err := h.queryService.ListOpenEvents(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(events, page, limit, int64(total)))
}

// GetAvailability handles GET /events/:id/availability - remaining capacity
// per ticket type
func (h *QueryHandler) GetAvailability(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("ID is required"))
		return
	}

	availability, err := h.queryService.GetEventAvailability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(availability))
}

// MyRegistrations handles GET /me/registrations - the caller's history
func (h *QueryHandler) MyRegistrations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return
	}

	limit, offset, page := paginationFromQuery(c)

	registrations, total, err := h.queryService.GetUserRegistrations(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(registrations, page, limit, int64(total)))
}

// ListAttendees handles GET /events/:id/registrations - the organizer's
// attendee roll
func (h *QueryHandler) ListAttendees(c *gin.Context) {
	eventID := c.Param("id")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Event ID is required"))
		return
	}

	organizerID, ok := middleware.GetUserID(c)
	if !ok || organizerID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return
	}

	limit, offset, page := paginationFromQuery(c)

	attendees, total, err := h.queryService.ListEventAttendees(c.Request.Context(), eventID, organizerID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(attendees, page, limit, int64(total)))
}
