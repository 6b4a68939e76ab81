package restaurant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/restaurant/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// StaffService authenticates and manages staff users
type StaffService struct {
	staffRepo  restaurant.StaffUserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewStaffService creates a new StaffService. blacklist may be nil.
func NewStaffService(
	staffRepo restaurant.StaffUserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		staffRepo:  staffRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a staff user by email and password
func (s *StaffService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := valueobject.NormalizeEmail(req.Email)

	user, err := s.staffRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email", zap.String("email", email))
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}

	if user.NeedsRehash() {
		if err := user.SetPassword(req.Password); err != nil {
			s.logger.Warn("Failed to upgrade password hash", zap.Error(err))
		}
	}

	tokens, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin(s.now())
	if err := s.staffRepo.Save(ctx, user); err != nil {
		// The login itself succeeded
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("Staff user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("restaurant_id", user.RestaurantID.String()))

	return &LoginResponse{Tokens: tokens, User: ToStaffUserResponse(user)}, nil
}

// Refresh exchanges a refresh token for a new pair. Role and permissions are
// re-read from the user so changes apply on the next refresh.
func (s *StaffService) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	restaurantID, err := claims.GetRestaurantUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid restaurant ID in token")
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsUserRevoked(ctx, userID.String(), claims.GetIssuedAtTime())
		if err != nil {
			s.logger.Warn("Token blacklist unavailable", zap.Error(err))
		} else if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
		}
	}

	user, err := s.staffRepo.FindByID(ctx, restaurantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokens, err := s.jwtService.RefreshTokenPair(req.RefreshToken, user.Email, string(user.Role), user.Permissions)
	if err != nil {
		return nil, tokenError(err)
	}
	return &LoginResponse{Tokens: tokens, User: ToStaffUserResponse(user)}, nil
}

// Logout revokes the access token until it expires
func (s *StaffService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

// Invite creates a staff account in the restaurant with a temporary password
func (s *StaffService) Invite(ctx context.Context, restaurantID, invitedBy uuid.UUID, req InviteRequest) (*InvitedUserResponse, error) {
	exists, err := s.staffRepo.ExistsByEmail(ctx, valueobject.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, password, err := newInvitedUser(restaurantID, invitedBy, req.Name, req.Email, restaurant.Role(req.Role), req.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.staffRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Staff user invited",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &InvitedUserResponse{User: ToStaffUserResponse(user), TemporaryPassword: password}, nil
}

// List returns the staff of a restaurant
func (s *StaffService) List(ctx context.Context, restaurantID uuid.UUID) ([]StaffUserResponse, error) {
	users, err := s.staffRepo.FindAllForRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return ToStaffUserResponses(users), nil
}

// Deactivate disables a staff account and revokes its tokens
func (s *StaffService) Deactivate(ctx context.Context, restaurantID, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}
	user, err := s.staffRepo.FindByID(ctx, restaurantID, userID)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.staffRepo.Save(ctx, user); err != nil {
		return err
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, userID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke tokens of deactivated user", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Staff user deactivated",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("by", actorID.String()))
	return nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
