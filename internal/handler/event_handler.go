package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-registration/internal/dto"
	"github.com/prohmpiriya/event-registration/internal/repository"
	"github.com/prohmpiriya/event-registration/internal/service"
	"github.com/prohmpiriya/event-registration/pkg/middleware"
	"github.com/prohmpiriya/event-registration/pkg/response"
)

// EventHandler handles event management HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// Create handles POST /events - creates a new draft event (Organizer only)
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	organizerID, ok := middleware.GetUserID(c)
	if !ok || organizerID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return
	}
	req.OrganizerID = organizerID

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(event))
}

// Get handles GET /events/:id - retrieves an event
func (h *EventHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("ID is required"))
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// List handles GET /events/manage - lists the organizer's events
func (h *EventHandler) List(c *gin.Context) {
	organizerID, ok := middleware.GetUserID(c)
	if !ok || organizerID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return
	}

	limit, offset, page := paginationFromQuery(c)
	filter := &repository.EventFilter{
		OrganizerID: organizerID,
		Status:      c.Query("status"),
		Search:      c.Query("search"),
	}

	events, total, err := h.eventService.ListEvents(c.Request.Context(), filter, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(events, page, limit, int64(total)))
}

// Update handles PUT /events/:id - updates an event
func (h *EventHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("ID is required"))
		return
	}

	organizerID, ok := middleware.GetUserID(c)
	if !ok || organizerID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), id, organizerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}

// Publish handles POST /events/:id/publish - opens a draft event for registration
func (h *EventHandler) Publish(c *gin.Context) {
	h.transition(c, h.eventService.PublishEvent)
}

// Cancel handles POST /events/:id/cancel - cancels an event
func (h *EventHandler) Cancel(c *gin.Context) {
	h.transition(c, h.eventService.CancelEvent)
}

// Complete handles POST /events/:id/complete - marks an event completed
func (h *EventHandler) Complete(c *gin.Context) {
	h.transition(c, h.eventService.CompleteEvent)
}

// Delete handles DELETE /events/:id - deletes an event with no registrations
func (h *EventHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("ID is required"))
		return
	}

	organizerID, ok := middleware.GetUserID(c)
	if !ok || organizerID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), id, organizerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(map[string]string{"message": "Event deleted successfully"}))
}

func (h *EventHandler) transition(c *gin.Context, fn func(ctx context.Context, id, organizerID string) (*dto.EventResponse, error)) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("ID is required"))
		return
	}

	organizerID, ok := middleware.GetUserID(c)
	if !ok || organizerID == "" {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User ID not found in token"))
		return
	}

	event, err := fn(c.Request.Context(), id, organizerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(event))
}
