package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/internal/dto"
	"github.com/prohmpiriya/event-registration/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func openEvent(id string) *domain.Event {
	return &domain.Event{
		ID:          id,
		Title:       "Test Conference",
		OrganizerID: "org-001",
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(26 * time.Hour),
		Timezone:    "UTC",
		Status:      domain.EventStatusActive,
	}
}

func testTicketType(id, eventID string, waitlist bool) *domain.TicketType {
	return &domain.TicketType{
		ID:              id,
		EventID:         eventID,
		Name:            "General Admission",
		Kind:            domain.TicketKindFree,
		Capacity:        intPtr(100),
		WaitlistEnabled: waitlist,
	}
}

func TestRegistrationService_Register(t *testing.T) {
	tests := []struct {
		name       string
		req        *dto.CreateRegistrationRequest
		setupMocks func(*MockRegistrationRepository, *MockTicketTypeRepository, *MockEventRepository, *MockLedger)
		wantErr    error
		wantStatus string
	}{
		{
			name: "successful registration",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-001",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				ttr.GetByIDFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return testTicketType("tt-001", "event-001", false), nil
				}
				er.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
					return openEvent("event-001"), nil
				}
			},
			wantStatus: domain.RegistrationStatusConfirmed,
		},
		{
			name: "idempotent replay returns the original registration",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID:   "tt-001",
				EventID:        "event-001",
				UserID:         "user-001",
				IdempotencyKey: strPtr("key-123"),
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				rr.GetByIdempotencyKeyFunc = func(ctx context.Context, userID, key string) (*domain.Registration, error) {
					return &domain.Registration{
						ID:           "reg-existing",
						UserID:       userID,
						EventID:      "event-001",
						TicketTypeID: "tt-001",
						Status:       domain.RegistrationStatusConfirmed,
					}, nil
				}
				l.TryReserveFunc = func(ctx context.Context, ticketTypeID string) error {
					t.Error("replay must not touch the ledger")
					return nil
				}
			},
			wantStatus: domain.RegistrationStatusConfirmed,
		},
		{
			name: "ticket type not found",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-missing",
				EventID:      "event-001",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {},
			wantErr:    domain.ErrTicketTypeNotFound,
		},
		{
			name: "ticket type belongs to another event",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-002",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				ttr.GetByIDFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return testTicketType("tt-001", "event-001", false), nil
				}
			},
			wantErr: domain.ErrTicketTypeNotFound,
		},
		{
			name: "event not open for registration",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-001",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				ttr.GetByIDFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return testTicketType("tt-001", "event-001", false), nil
				}
				er.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
					e := openEvent("event-001")
					e.Status = domain.EventStatusDraft
					return e, nil
				}
			},
			wantErr: domain.ErrEventNotOpen,
		},
		{
			name: "event already started",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-001",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				ttr.GetByIDFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return testTicketType("tt-001", "event-001", false), nil
				}
				er.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
					e := openEvent("event-001")
					e.StartTime = time.Now().Add(-time.Hour)
					return e, nil
				}
			},
			wantErr: domain.ErrEventNotOpen,
		},
		{
			name: "pool full without waitlist",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-001",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				ttr.GetByIDFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return testTicketType("tt-001", "event-001", false), nil
				}
				er.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
					return openEvent("event-001"), nil
				}
				l.TryReserveFunc = func(ctx context.Context, ticketTypeID string) error {
					return domain.ErrCapacityExceeded
				}
			},
			wantErr: domain.ErrCapacityExceeded,
		},
		{
			name: "pool full with waitlist",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-001",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				ttr.GetByIDFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return testTicketType("tt-001", "event-001", true), nil
				}
				er.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
					return openEvent("event-001"), nil
				}
				l.TryReserveFunc = func(ctx context.Context, ticketTypeID string) error {
					return domain.ErrCapacityExceeded
				}
			},
			wantStatus: domain.RegistrationStatusWaitlist,
		},
		{
			name: "duplicate registration",
			req: &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-001",
				UserID:       "user-001",
			},
			setupMocks: func(rr *MockRegistrationRepository, ttr *MockTicketTypeRepository, er *MockEventRepository, l *MockLedger) {
				ttr.GetByIDFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return testTicketType("tt-001", "event-001", false), nil
				}
				er.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
					return openEvent("event-001"), nil
				}
				rr.CreateFunc = func(ctx context.Context, reg *domain.Registration) error {
					return domain.ErrDuplicateRegistration
				}
			},
			wantErr: domain.ErrDuplicateRegistration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regRepo := &MockRegistrationRepository{}
			ttRepo := &MockTicketTypeRepository{}
			eventRepo := &MockEventRepository{}
			mockLedger := &MockLedger{}
			tt.setupMocks(regRepo, ttRepo, eventRepo, mockLedger)

			svc := NewRegistrationService(regRepo, ttRepo, eventRepo, mockLedger, NewNoOpEventPublisher())

			resp, err := svc.Register(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}

func TestRegistrationService_Register_CompensatingRelease(t *testing.T) {
	released := 0
	mockLedger := &MockLedger{
		ReleaseFunc: func(ctx context.Context, ticketTypeID string) error {
			released++
			return nil
		},
	}
	regRepo := &MockRegistrationRepository{
		CreateFunc: func(ctx context.Context, reg *domain.Registration) error {
			return errors.New("insert failed")
		},
	}
	ttRepo := &MockTicketTypeRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.TicketType, error) {
			return testTicketType("tt-001", "event-001", false), nil
		},
	}
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			return openEvent("event-001"), nil
		},
	}

	svc := NewRegistrationService(regRepo, ttRepo, eventRepo, mockLedger, NewNoOpEventPublisher())

	_, err := svc.Register(context.Background(), &dto.CreateRegistrationRequest{
		TicketTypeID: "tt-001",
		EventID:      "event-001",
		UserID:       "user-001",
	})
	require.Error(t, err)
	assert.Equal(t, 1, released, "failed insert must hand the unit back")
}

func TestRegistrationService_Cancel(t *testing.T) {
	confirmedReg := func() *domain.Registration {
		return &domain.Registration{
			ID:           "reg-001",
			UserID:       "user-001",
			EventID:      "event-001",
			TicketTypeID: "tt-001",
			Status:       domain.RegistrationStatusConfirmed,
			CreatedAt:    time.Now().Add(-time.Hour),
		}
	}

	t.Run("cancel confirmed releases and promotes", func(t *testing.T) {
		reserved := 0
		released := 0
		mockLedger := &MockLedger{
			TryReserveFunc: func(ctx context.Context, ticketTypeID string) error {
				reserved++
				return nil
			},
			ReleaseFunc: func(ctx context.Context, ticketTypeID string) error {
				released++
				return nil
			},
		}
		regRepo := &MockRegistrationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Registration, error) {
				return confirmedReg(), nil
			},
			PromoteOldestWaitlistedFunc: func(ctx context.Context, ticketTypeID string) (*domain.Registration, error) {
				return &domain.Registration{
					ID:           "reg-waiting",
					UserID:       "user-002",
					EventID:      "event-001",
					TicketTypeID: ticketTypeID,
					Status:       domain.RegistrationStatusConfirmed,
				}, nil
			},
		}
		publisher := &RecordingPublisher{}

		svc := NewRegistrationService(regRepo, &MockTicketTypeRepository{}, &MockEventRepository{}, mockLedger, publisher)

		resp, err := svc.Cancel(context.Background(), "reg-001", "user-001")
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusCancelled, resp.Status)
		assert.NotNil(t, resp.CancelledAt)

		// One release for the cancel, one reserve for the promotion
		assert.Equal(t, 1, released)
		assert.Equal(t, 1, reserved)
		assert.Len(t, publisher.Cancelled, 1)
		assert.Len(t, publisher.Promoted, 1)
	})

	t.Run("cancel confirmed with empty waitlist returns the unit", func(t *testing.T) {
		reserved := 0
		released := 0
		mockLedger := &MockLedger{
			TryReserveFunc: func(ctx context.Context, ticketTypeID string) error {
				reserved++
				return nil
			},
			ReleaseFunc: func(ctx context.Context, ticketTypeID string) error {
				released++
				return nil
			},
		}
		regRepo := &MockRegistrationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Registration, error) {
				return confirmedReg(), nil
			},
		}
		publisher := &RecordingPublisher{}

		svc := NewRegistrationService(regRepo, &MockTicketTypeRepository{}, &MockEventRepository{}, mockLedger, publisher)

		_, err := svc.Cancel(context.Background(), "reg-001", "user-001")
		require.NoError(t, err)

		// Release on cancel, reserve for promotion, release back when no row
		assert.Equal(t, 2, released)
		assert.Equal(t, 1, reserved)
		assert.Empty(t, publisher.Promoted)
	})

	t.Run("cancel waitlisted never touches the ledger", func(t *testing.T) {
		mockLedger := &MockLedger{
			TryReserveFunc: func(ctx context.Context, ticketTypeID string) error {
				t.Error("waitlist cancel must not reserve")
				return nil
			},
			ReleaseFunc: func(ctx context.Context, ticketTypeID string) error {
				t.Error("waitlist cancel must not release")
				return nil
			},
		}
		regRepo := &MockRegistrationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Registration, error) {
				reg := confirmedReg()
				reg.Status = domain.RegistrationStatusWaitlist
				return reg, nil
			},
		}

		svc := NewRegistrationService(regRepo, &MockTicketTypeRepository{}, &MockEventRepository{}, mockLedger, NewNoOpEventPublisher())

		resp, err := svc.Cancel(context.Background(), "reg-001", "user-001")
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusCancelled, resp.Status)
	})

	t.Run("already cancelled", func(t *testing.T) {
		regRepo := &MockRegistrationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Registration, error) {
				reg := confirmedReg()
				reg.Status = domain.RegistrationStatusCancelled
				return reg, nil
			},
		}

		svc := NewRegistrationService(regRepo, &MockTicketTypeRepository{}, &MockEventRepository{}, &MockLedger{}, NewNoOpEventPublisher())

		_, err := svc.Cancel(context.Background(), "reg-001", "user-001")
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	})

	t.Run("concurrent cancel loses the compare-and-set", func(t *testing.T) {
		released := 0
		mockLedger := &MockLedger{
			ReleaseFunc: func(ctx context.Context, ticketTypeID string) error {
				released++
				return nil
			},
		}
		regRepo := &MockRegistrationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Registration, error) {
				return confirmedReg(), nil
			},
			CancelIfStatusFunc: func(ctx context.Context, id, userID, fromStatus string, cancelledAt time.Time) (bool, error) {
				return false, nil
			},
		}

		svc := NewRegistrationService(regRepo, &MockTicketTypeRepository{}, &MockEventRepository{}, mockLedger, NewNoOpEventPublisher())

		_, err := svc.Cancel(context.Background(), "reg-001", "user-001")
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
		assert.Zero(t, released, "losing the cancel race must not release")
	})

	t.Run("cancel by another user", func(t *testing.T) {
		regRepo := &MockRegistrationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Registration, error) {
				return confirmedReg(), nil
			},
		}

		svc := NewRegistrationService(regRepo, &MockTicketTypeRepository{}, &MockEventRepository{}, &MockLedger{}, NewNoOpEventPublisher())

		_, err := svc.Cancel(context.Background(), "reg-001", "user-999")
		assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)
	})

	t.Run("stored timestamp matches the response", func(t *testing.T) {
		var stamped time.Time
		regRepo := &MockRegistrationRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Registration, error) {
				return confirmedReg(), nil
			},
			CancelIfStatusFunc: func(ctx context.Context, id, userID, fromStatus string, cancelledAt time.Time) (bool, error) {
				stamped = cancelledAt
				return true, nil
			},
		}

		svc := NewRegistrationService(regRepo, &MockTicketTypeRepository{}, &MockEventRepository{}, &MockLedger{}, NewNoOpEventPublisher())

		resp, err := svc.Cancel(context.Background(), "reg-001", "user-001")
		require.NoError(t, err)
		require.NotNil(t, resp.CancelledAt)
		assert.True(t, stamped.Equal(*resp.CancelledAt), "cancelled_at in the row and the response must agree")
	})
}

// Two requests carrying the same idempotency key race past the replay
// check; the loser trips the key's unique index, returns its unit, and
// must answer with the winner's registration.
func TestRegistrationService_IdempotencyKeyRace(t *testing.T) {
	key := "idem-abc"
	winner := &domain.Registration{
		ID:             "reg-winner",
		UserID:         "user-001",
		EventID:        "event-001",
		TicketTypeID:   "tt-001",
		Status:         domain.RegistrationStatusConfirmed,
		IdempotencyKey: &key,
		CreatedAt:      time.Now().Add(-time.Minute),
	}

	released := 0
	mockLedger := &MockLedger{
		ReleaseFunc: func(ctx context.Context, ticketTypeID string) error {
			released++
			return nil
		},
	}

	lookups := 0
	regRepo := &MockRegistrationRepository{
		GetByIdempotencyKeyFunc: func(ctx context.Context, userID, k string) (*domain.Registration, error) {
			lookups++
			if lookups == 1 {
				// The winner had not committed when the loser checked
				return nil, nil
			}
			return winner, nil
		},
		CreateFunc: func(ctx context.Context, reg *domain.Registration) error {
			return domain.ErrIdempotencyConflict
		},
	}
	ttRepo := &MockTicketTypeRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.TicketType, error) {
			return testTicketType("tt-001", "event-001", false), nil
		},
	}
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			return openEvent("event-001"), nil
		},
	}

	svc := NewRegistrationService(regRepo, ttRepo, eventRepo, mockLedger, NewNoOpEventPublisher())

	resp, err := svc.Register(context.Background(), &dto.CreateRegistrationRequest{
		UserID:         "user-001",
		EventID:        "event-001",
		TicketTypeID:   "tt-001",
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.Equal(t, "reg-winner", resp.ID)
	assert.Equal(t, domain.RegistrationStatusConfirmed, resp.Status)
	assert.Equal(t, 1, released, "the loser's reserved unit must go back to the pool")
}

// The full workflow against the in-memory ledger: a burst of registrations
// for a small pool must confirm exactly capacity of them.
func TestRegistrationService_ConcurrentRegistrations(t *testing.T) {
	capacity := 25
	attempts := 200

	memLedger := ledger.NewMemoryLedger()
	memLedger.AddPool("tt-001", intPtr(capacity))

	var mu sync.Mutex
	created := 0
	regRepo := &MockRegistrationRepository{
		CreateFunc: func(ctx context.Context, reg *domain.Registration) error {
			mu.Lock()
			defer mu.Unlock()
			created++
			return nil
		},
	}
	ttRepo := &MockTicketTypeRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.TicketType, error) {
			return testTicketType("tt-001", "event-001", false), nil
		},
	}
	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			return openEvent("event-001"), nil
		},
	}

	svc := NewRegistrationService(regRepo, ttRepo, eventRepo, memLedger, NewNoOpEventPublisher())

	var wg sync.WaitGroup
	confirmed := 0
	rejected := 0
	var resultMu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Register(context.Background(), &dto.CreateRegistrationRequest{
				TicketTypeID: "tt-001",
				EventID:      "event-001",
				UserID:       fmt.Sprintf("user-%03d", n),
			})
			resultMu.Lock()
			defer resultMu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case errors.Is(err, domain.ErrCapacityExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, confirmed)
	assert.Equal(t, attempts-capacity, rejected)
	assert.Equal(t, capacity, created)
	assert.Equal(t, capacity, memLedger.SoldCount("tt-001"))
}
