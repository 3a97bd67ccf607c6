package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/internal/dto"
	"github.com/prohmpiriya/event-registration/pkg/middleware"
)

// MockQueryService is a mock implementation of QueryService
type MockQueryService struct {
	ListOpenEventsFunc       func(ctx context.Context, limit, offset int) ([]*dto.EventResponse, int, error)
	GetEventAvailabilityFunc func(ctx context.Context, eventID string) (*dto.EventAvailabilityResponse, error)
	GetUserRegistrationsFunc func(ctx context.Context, userID string, limit, offset int) ([]*dto.RegistrationDetailResponse, int, error)
	ListEventAttendeesFunc   func(ctx context.Context, eventID, organizerID string, limit, offset int) ([]*dto.AttendeeResponse, int, error)
}

func (m *MockQueryService) ListOpenEvents(ctx context.Context, limit, offset int) ([]*dto.EventResponse, int, error) {
	if m.ListOpenEventsFunc != nil {
		return m.ListOpenEventsFunc(ctx, limit, offset)
	}
	return []*dto.EventResponse{}, 0, nil
}

func (m *MockQueryService) GetEventAvailability(ctx context.Context, eventID string) (*dto.EventAvailabilityResponse, error) {
	if m.GetEventAvailabilityFunc != nil {
		return m.GetEventAvailabilityFunc(ctx, eventID)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockQueryService) GetUserRegistrations(ctx context.Context, userID string, limit, offset int) ([]*dto.RegistrationDetailResponse, int, error) {
	if m.GetUserRegistrationsFunc != nil {
		return m.GetUserRegistrationsFunc(ctx, userID, limit, offset)
	}
	return []*dto.RegistrationDetailResponse{}, 0, nil
}

func (m *MockQueryService) ListEventAttendees(ctx context.Context, eventID, organizerID string, limit, offset int) ([]*dto.AttendeeResponse, int, error) {
	if m.ListEventAttendeesFunc != nil {
		return m.ListEventAttendeesFunc(ctx, eventID, organizerID, limit, offset)
	}
	return []*dto.AttendeeResponse{}, 0, nil
}

func setupQueryRouter(h *QueryHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Next()
		})
	}

	router.GET("/events", h.ListOpenEvents)
	router.GET("/events/:id/availability", h.GetAvailability)
	router.GET("/events/:id/registrations", h.ListAttendees)
	router.GET("/me/registrations", h.MyRegistrations)

	return router
}

func TestQueryHandler_GetAvailability(t *testing.T) {
	remaining := 20
	mockSvc := &MockQueryService{
		GetEventAvailabilityFunc: func(ctx context.Context, eventID string) (*dto.EventAvailabilityResponse, error) {
			if eventID != "event-001" {
				return nil, domain.ErrEventNotFound
			}
			return &dto.EventAvailabilityResponse{
				Event: &dto.EventResponse{ID: eventID, Status: domain.EventStatusActive},
				TicketTypes: []*dto.TicketTypeResponse{
					{ID: "tt-001", Remaining: &remaining},
				},
			}, nil
		},
	}
	router := setupQueryRouter(NewQueryHandler(mockSvc), "")

	t.Run("existing event", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/events/event-001/availability", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
		}

		var envelope struct {
			Success bool                           `json:"success"`
			Data    *dto.EventAvailabilityResponse `json:"data"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if !envelope.Success {
			t.Error("expected success envelope")
		}
		if len(envelope.Data.TicketTypes) != 1 || *envelope.Data.TicketTypes[0].Remaining != 20 {
			t.Errorf("unexpected availability payload: %+v", envelope.Data)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/events/event-999/availability", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.Code)
		}
	})
}

func TestQueryHandler_MyRegistrations(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		router := setupQueryRouter(NewQueryHandler(&MockQueryService{}), "")

		req, _ := http.NewRequest(http.MethodGet, "/me/registrations", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, resp.Code)
		}
	})

	t.Run("returns the caller's history", func(t *testing.T) {
		mockSvc := &MockQueryService{
			GetUserRegistrationsFunc: func(ctx context.Context, userID string, limit, offset int) ([]*dto.RegistrationDetailResponse, int, error) {
				if userID != "user-001" {
					t.Errorf("expected user-001, got %s", userID)
				}
				return []*dto.RegistrationDetailResponse{
					{
						RegistrationResponse: &dto.RegistrationResponse{ID: "reg-001", Status: domain.RegistrationStatusConfirmed},
						EventTitle:           "Tech Meetup",
					},
				}, 1, nil
			},
		}
		router := setupQueryRouter(NewQueryHandler(mockSvc), "user-001")

		req, _ := http.NewRequest(http.MethodGet, "/me/registrations", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, resp.Code)
		}
	})
}

func TestQueryHandler_ListAttendees(t *testing.T) {
	mockSvc := &MockQueryService{
		ListEventAttendeesFunc: func(ctx context.Context, eventID, organizerID string, limit, offset int) ([]*dto.AttendeeResponse, int, error) {
			if organizerID != "org-001" {
				return nil, 0, domain.ErrEventNotFound
			}
			return []*dto.AttendeeResponse{
				{
					RegistrationResponse: &dto.RegistrationResponse{ID: "reg-001", Status: domain.RegistrationStatusConfirmed},
					Email:                "alice@example.com",
				},
			}, 1, nil
		},
	}

	t.Run("organizer", func(t *testing.T) {
		router := setupQueryRouter(NewQueryHandler(mockSvc), "org-001")

		req, _ := http.NewRequest(http.MethodGet, "/events/event-001/registrations", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, resp.Code)
		}
	})

	t.Run("non-organizer", func(t *testing.T) {
		router := setupQueryRouter(NewQueryHandler(mockSvc), "org-999")

		req, _ := http.NewRequest(http.MethodGet, "/events/event-001/registrations", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.Code)
		}
	})
}
