package handler

import (
	"bytes"
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

// MockRegistrationService is a mock implementation of RegistrationService
type MockRegistrationService struct {
	RegisterFunc        func(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error)
	CancelFunc          func(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error)
	GetRegistrationFunc func(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error)
}

func (m *MockRegistrationService) Register(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return &dto.RegistrationResponse{ID: "reg-123", Status: domain.RegistrationStatusConfirmed}, nil
}

func (m *MockRegistrationService) Cancel(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, registrationID, userID)
	}
	return &dto.RegistrationResponse{ID: registrationID, Status: domain.RegistrationStatusCancelled}, nil
}

func (m *MockRegistrationService) GetRegistration(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error) {
	if m.GetRegistrationFunc != nil {
		return m.GetRegistrationFunc(ctx, registrationID, userID)
	}
	return nil, domain.ErrRegistrationNotFound
}

func setupRegistrationRouter(h *RegistrationHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Next()
		})
	}

	router.POST("/events/:id/registrations", h.Register)
	router.GET("/registrations/:id", h.Get)
	router.DELETE("/registrations/:id", h.Cancel)

	return router
}

func TestRegistrationHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       interface{}
		setupMock  func(*MockRegistrationService)
		wantStatus int
	}{
		{
			name:       "successful registration",
			userID:     "user-001",
			body:       map[string]string{"ticket_type_id": "tt-001"},
			setupMock:  func(m *MockRegistrationService) {},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing ticket type",
			userID:     "user-001",
			body:       map[string]string{},
			setupMock:  func(m *MockRegistrationService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no user in context",
			userID:     "",
			body:       map[string]string{"ticket_type_id": "tt-001"},
			setupMock:  func(m *MockRegistrationService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "pool full without waitlist",
			userID: "user-001",
			body:   map[string]string{"ticket_type_id": "tt-001"},
			setupMock: func(m *MockRegistrationService) {
				m.RegisterFunc = func(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
					return nil, domain.ErrCapacityExceeded
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "duplicate registration",
			userID: "user-001",
			body:   map[string]string{"ticket_type_id": "tt-001"},
			setupMock: func(m *MockRegistrationService) {
				m.RegisterFunc = func(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
					return nil, domain.ErrDuplicateRegistration
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "event not open",
			userID: "user-001",
			body:   map[string]string{"ticket_type_id": "tt-001"},
			setupMock: func(m *MockRegistrationService) {
				m.RegisterFunc = func(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
					return nil, domain.ErrEventNotOpen
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "unknown ticket type",
			userID: "user-001",
			body:   map[string]string{"ticket_type_id": "tt-missing"},
			setupMock: func(m *MockRegistrationService) {
				m.RegisterFunc = func(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
					return nil, domain.ErrTicketTypeNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &MockRegistrationService{}
			tt.setupMock(mockSvc)
			router := setupRegistrationRouter(NewRegistrationHandler(mockSvc), tt.userID)

			body, _ := json.Marshal(tt.body)
			req, _ := http.NewRequest(http.MethodPost, "/events/event-001/registrations", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.wantStatus, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestRegistrationHandler_Register_IdempotencyHeader(t *testing.T) {
	var gotKey *string
	mockSvc := &MockRegistrationService{
		RegisterFunc: func(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
			gotKey = req.IdempotencyKey
			return &dto.RegistrationResponse{ID: "reg-123", Status: domain.RegistrationStatusConfirmed}, nil
		},
	}
	router := setupRegistrationRouter(NewRegistrationHandler(mockSvc), "user-001")

	body, _ := json.Marshal(map[string]string{"ticket_type_id": "tt-001"})
	req, _ := http.NewRequest(http.MethodPost, "/events/event-001/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "key-abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.Code)
	}
	if gotKey == nil || *gotKey != "key-abc" {
		t.Errorf("expected idempotency key from header, got %v", gotKey)
	}
}

func TestRegistrationHandler_Cancel(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(*MockRegistrationService)
		wantStatus int
	}{
		{
			name:       "successful cancel",
			setupMock:  func(m *MockRegistrationService) {},
			wantStatus: http.StatusOK,
		},
		{
			name: "already cancelled",
			setupMock: func(m *MockRegistrationService) {
				m.CancelFunc = func(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error) {
					return nil, domain.ErrAlreadyCancelled
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "not found",
			setupMock: func(m *MockRegistrationService) {
				m.CancelFunc = func(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error) {
					return nil, domain.ErrRegistrationNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &MockRegistrationService{}
			tt.setupMock(mockSvc)
			router := setupRegistrationRouter(NewRegistrationHandler(mockSvc), "user-001")

			req, _ := http.NewRequest(http.MethodDelete, "/registrations/reg-123", nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Code)
			}
		})
	}
}
