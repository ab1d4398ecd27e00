package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"github.com/prohmpiriya/event-marketplace/pkg/middleware"
	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	JWT        *middleware.JWTConfig
	BcryptCost int
}

// authService implements AuthService
type authService struct {
	userRepo repository.UserRepository
	config   *AuthServiceConfig
	log      *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, config *AuthServiceConfig) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.JWT.TTL == 0 {
		config.JWT.TTL = 24 * time.Hour
	}
	return &authService{
		userRepo: userRepo,
		config:   config,
		log:      logger.Get().With(zap.String("component", "auth_service")),
	}
}

// Signup registers a new account with the requested roles
func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (user *domain.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.signup")
	defer func() { telemetry.EndSpan(span, err) }()

	email := normalizeEmail(req.Email)
	span.SetAttributes(attribute.String("email", email))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user = &domain.User{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hashedPassword),
		Roles:        domain.ResolveSignupRoles(req.Roles),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	s.log.Info("User registered",
		zap.String("user_id", user.ID),
		zap.Strings("roles", user.RoleNames()),
	)
	return user, nil
}

// Signin checks the password and issues a bearer token
func (s *authService) Signin(ctx context.Context, req *dto.SigninRequest) (resp *dto.SigninResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.signin")
	defer func() { telemetry.EndSpan(span, err) }()

	email := normalizeEmail(req.Email)
	span.SetAttributes(attribute.String("email", email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	roles := user.RoleNames()
	token, expiresAt, err := middleware.SignToken(s.config.JWT, user.ID, user.Email, roles)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	return &dto.SigninResponse{
		Token:     token,
		Type:      "Bearer",
		ExpiresAt: expiresAt.Format(time.RFC3339),
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Roles:     roles,
	}, nil
}

// Me returns the signed-in account
func (s *authService) Me(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	if p == nil {
		return nil, domain.ErrNoPrincipal
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
