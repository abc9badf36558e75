package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tillpoint/internal/auth"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = model.NewDomainError(model.ErrCodeUnauthorised, "Invalid credentials.")

// authService implements AuthService.
type authService struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an organization with req's user as its admin.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.InvalidInput("Registration details are required.")
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case name == "":
		return nil, model.InvalidInput("Name is required.")
	case !strings.Contains(email, "@"):
		return nil, model.InvalidInput("A valid email is required.")
	case len(req.Password) < 6:
		return nil, model.InvalidInput("Password must be at least 6 characters.")
	case len(strings.TrimSpace(req.MobileNumber)) < 10:
		return nil, model.InvalidInput("Mobile number must be at least 10 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	orgName := strings.TrimSpace(req.OrganizationName)
	if orgName == "" {
		orgName = name + "'s Business"
	}

	now := s.now().UTC()
	org := &model.Organization{ID: uuid.New(), Name: orgName, CreatedAt: now}
	user := &model.User{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Name:           name,
		Email:          email,
		MobileNumber:   strings.TrimSpace(req.MobileNumber),
		PasswordHash:   string(hash),
		Role:           model.RoleAdmin,
		Status:         model.UserActive,
		CreatedAt:      now,
	}

	if err := s.userRepo.CreateWithOrganization(ctx, org, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("organization_id", org.ID.String()).
		Str("user_id", user.ID.String()).
		Msg("organization registered")

	return s.respond(user)
}

// Login exchanges credentials for a token.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, model.InvalidInput("Email and password are required.")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Debug().Str("user_id", user.ID.String()).Msg("password mismatch")
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	switch user.Status {
	case model.UserPending:
		return nil, model.NewDomainError(model.ErrCodeUnauthorised, "Your account is pending approval.")
	case model.UserSuspended:
		return nil, model.NewDomainError(model.ErrCodeUnauthorised, "Your account has been suspended.")
	}

	return s.respond(user)
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(auth.Principal{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, User: *user}, nil
}

// Me returns the authenticated user.
func (s *authService) Me(ctx context.Context) (*model.User, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, principal.OrganizationID, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorised
	}
	return user, nil
}
