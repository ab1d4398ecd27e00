package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.SigninResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SigninResponse), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockVenueService struct {
	mock.Mock
}

func (m *MockVenueService) CreateVenue(ctx context.Context, p *domain.Principal, req *dto.CreateVenueRequest) (*domain.Venue, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Venue), args.Error(1)
}

func (m *MockVenueService) GetVenue(ctx context.Context, id string) (*service.VenueView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VenueView), args.Error(1)
}

func (m *MockVenueService) ListVenues(ctx context.Context, filter *dto.VenueListFilter) ([]*service.VenueView, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*service.VenueView), args.Int(1), args.Error(2)
}

func (m *MockVenueService) UpdateVenue(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateVenueRequest) (*domain.Venue, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Venue), args.Error(1)
}

func (m *MockVenueService) DeleteVenue(ctx context.Context, p *domain.Principal, id string) error {
	return m.Called(ctx, p, id).Error(0)
}

func setupAuthRouter(auth service.AuthService, venues service.VenueService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(withIdentity())

	ah := NewAuthHandler(auth)
	router.POST("/auth/signup", ah.Signup)
	router.POST("/auth/signin", ah.Signin)
	router.GET("/auth/me", ah.Me)

	vh := NewVenueHandler(venues)
	router.GET("/venues/:id", vh.Get)
	router.POST("/venues", vh.Create)
	router.DELETE("/venues/:id", vh.Delete)
	return router
}

func TestAuthHandler_Signup(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Signup", mock.Anything, mock.MatchedBy(func(r *dto.SignupRequest) bool {
		return r.Email == "alice@example.com"
	})).Return(&domain.User{ID: "user-alice", Email: "alice@example.com", Roles: []domain.Role{domain.RoleUser}}, nil)
	auth.On("Signup", mock.Anything, mock.MatchedBy(func(r *dto.SignupRequest) bool {
		return r.Email == "taken@example.com"
	})).Return(nil, domain.ErrEmailTaken)
	router := setupAuthRouter(auth, new(MockVenueService))

	body := map[string]interface{}{
		"first_name": "Alice",
		"last_name":  "Smith",
		"email":      "alice@example.com",
		"password":   "secret123",
	}
	resp := doRequest(router, http.MethodPost, "/auth/signup", body, "", "")
	require.Equal(t, http.StatusCreated, resp.Code)
	_, raw := decode(t, resp)
	data := raw["data"].(map[string]interface{})
	assert.Equal(t, "user-alice", data["id"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "password_hash")

	body["email"] = "taken@example.com"
	resp = doRequest(router, http.MethodPost, "/auth/signup", body, "", "")
	assert.Equal(t, http.StatusConflict, resp.Code)

	body["password"] = "123"
	resp = doRequest(router, http.MethodPost, "/auth/signup", body, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAuthHandler_Signin(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Signin", mock.Anything, mock.MatchedBy(func(r *dto.SigninRequest) bool {
		return r.Password == "secret123"
	})).Return(&dto.SigninResponse{Token: "jwt", Type: "Bearer", ID: "user-alice"}, nil)
	auth.On("Signin", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials)
	router := setupAuthRouter(auth, new(MockVenueService))

	resp := doRequest(router, http.MethodPost, "/auth/signin", map[string]string{"email": "alice@example.com", "password": "secret123"}, "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	_, raw := decode(t, resp)
	assert.Equal(t, "Bearer", raw["data"].(map[string]interface{})["type"])

	resp = doRequest(router, http.MethodPost, "/auth/signin", map[string]string{"email": "alice@example.com", "password": "wrong"}, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Me", mock.Anything, mock.MatchedBy(func(p *domain.Principal) bool {
		return p != nil && p.UserID == "user-alice"
	})).Return(&domain.User{ID: "user-alice", Email: "alice@example.com"}, nil)
	router := setupAuthRouter(auth, new(MockVenueService))

	resp := doRequest(router, http.MethodGet, "/auth/me", nil, "user-alice", "user")
	assert.Equal(t, http.StatusOK, resp.Code)
	auth.AssertExpectations(t)
}

func TestVenueHandler(t *testing.T) {
	venues := new(MockVenueService)
	venue := &domain.Venue{ID: "venue-1", Name: "Main Hall", Address: "1 Hall Road", City: "Springfield", Capacity: 500}
	venues.On("GetVenue", mock.Anything, "venue-1").Return(&service.VenueView{Venue: venue, EventCount: 2}, nil)
	venues.On("CreateVenue", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrForbidden)
	venues.On("DeleteVenue", mock.Anything, mock.Anything, "venue-1").Return(domain.ErrVenueInUse)
	router := setupAuthRouter(new(MockAuthService), venues)

	resp := doRequest(router, http.MethodGet, "/venues/venue-1", nil, "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	_, raw := decode(t, resp)
	assert.EqualValues(t, 2, raw["data"].(map[string]interface{})["event_count"])

	body := map[string]interface{}{"name": "Hall", "address": "2 Road", "city": "Town", "capacity": 100}
	resp = doRequest(router, http.MethodPost, "/venues", body, "org-1", "organizer")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = doRequest(router, http.MethodDelete, "/venues/venue-1", nil, "admin-1", "admin")
	assert.Equal(t, http.StatusConflict, resp.Code)
}
