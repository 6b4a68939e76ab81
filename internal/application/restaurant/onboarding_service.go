package restaurant

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/menu"
	"github.com/restaurant/backend/internal/domain/onboarding"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/restaurant/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrEmailTaken is returned when a staff email is already registered
var ErrEmailTaken = shared.NewDomainError("EMAIL_TAKEN", "Email is already registered")

// OnboardingService creates a restaurant with its owner, menu categories,
// WhatsApp settings and invited staff
type OnboardingService struct {
	store          onboarding.Store
	staffRepo      restaurant.StaffUserRepository
	jwtService     *auth.JWTService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(
	store onboarding.Store,
	staffRepo restaurant.StaffUserRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *OnboardingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingService{
		store:      store,
		staffRepo:  staffRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *OnboardingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ValidateStep reports whether the wizard may leave the given step
func (s *OnboardingService) ValidateStep(req ValidateStepRequest) StepValidationResponse {
	data := req.Data
	data.ApplyDefaults()

	response := StepValidationResponse{Step: req.Step, CanAdvance: true}
	if err := onboarding.ValidateStep(req.Step, data); err != nil {
		response.CanAdvance = false
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			response.Field = verr.Field
			response.Message = verr.Message
		} else {
			response.Message = err.Error()
		}
	}
	return response
}

// Onboard validates all four steps and creates everything in one transaction.
// The owner is signed in on success.
func (s *OnboardingService) Onboard(ctx context.Context, req OnboardRequest) (*OnboardResponse, error) {
	data := req.Data
	data.ApplyDefaults()
	if err := onboarding.Validate(data); err != nil {
		return nil, err
	}

	ownerEmail := req.Owner.Email
	if strings.TrimSpace(ownerEmail) == "" {
		ownerEmail = data.Restaurant.Email
	}
	emails := []string{ownerEmail}
	for _, u := range data.Users {
		emails = append(emails, u.Email)
	}
	if err := s.ensureEmailsFree(ctx, emails); err != nil {
		return nil, err
	}

	setup, passwords, err := s.buildSetup(req.Owner, ownerEmail, data)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, setup); err != nil {
		s.logger.Error("Failed to persist onboarding", zap.Error(err))
		return nil, err
	}

	r := setup.Restaurant
	s.logger.Info("Restaurant onboarded",
		zap.String("restaurant_id", r.ID.String()),
		zap.String("owner_id", setup.Owner.ID.String()),
		zap.Int("categories", len(setup.Categories)),
		zap.Int("invited_users", len(setup.Users)))

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, setup.Events()...); err != nil {
			s.logger.Error("Failed to publish onboarding events", zap.Error(err))
		}
	}

	tokens, err := s.jwtService.GenerateTokenPair(tokenInput(setup.Owner))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	invited := make([]InvitedUserResponse, len(setup.Users))
	for i, u := range setup.Users {
		invited[i] = InvitedUserResponse{User: ToStaffUserResponse(u), TemporaryPassword: passwords[i]}
	}

	return &OnboardResponse{
		Restaurant:   ToRestaurantResponse(r),
		Owner:        ToStaffUserResponse(setup.Owner),
		Tokens:       tokens,
		InvitedUsers: invited,
	}, nil
}

func (s *OnboardingService) ensureEmailsFree(ctx context.Context, emails []string) error {
	for _, email := range emails {
		exists, err := s.staffRepo.ExistsByEmail(ctx, valueobject.NormalizeEmail(email))
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
	}
	return nil
}

// buildSetup creates the aggregates; passwords[i] is the temporary password of Users[i]
func (s *OnboardingService) buildSetup(owner OwnerInput, ownerEmail string, data onboarding.Data) (*onboarding.Setup, []string, error) {
	rd := data.Restaurant
	r, err := restaurant.NewRestaurant(rd.Name, rd.BusinessType, rd.Address, rd.Phone, rd.Email)
	if err != nil {
		return nil, nil, err
	}

	ownerUser, err := restaurant.NewStaffUser(r.ID, owner.Name, ownerEmail, restaurant.RoleOwner, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := ownerUser.SetPassword(owner.Password); err != nil {
		return nil, nil, err
	}
	r.AssignOwner(ownerUser.ID)

	setup := &onboarding.Setup{Restaurant: r, Owner: ownerUser}

	for i, c := range data.Categories {
		category, err := menu.NewCategory(r.ID, c.Name, c.Description, i)
		if err != nil {
			return nil, nil, err
		}
		setup.Categories = append(setup.Categories, category)
	}

	wa, err := restaurant.NewWhatsAppSettings(r.ID, data.WhatsApp.PhoneNumber)
	if err != nil {
		return nil, nil, err
	}
	err = wa.Update(data.WhatsApp.PhoneNumber, data.WhatsApp.WelcomeMessage, data.AutoReplyEnabled(),
		data.WhatsApp.BusinessHours, "", "", true)
	if err != nil {
		return nil, nil, err
	}
	setup.WhatsApp = wa

	passwords := make([]string, 0, len(data.Users))
	for _, u := range data.Users {
		user, password, err := newInvitedUser(r.ID, ownerUser.ID, u.Name, u.Email, restaurant.Role(u.Role), u.Permissions)
		if err != nil {
			return nil, nil, err
		}
		setup.Users = append(setup.Users, user)
		passwords = append(passwords, password)
	}

	r.CompleteOnboarding()
	return setup, passwords, nil
}

// newInvitedUser creates a staff account with a generated temporary password
func newInvitedUser(restaurantID, invitedBy uuid.UUID, name, email string, role restaurant.Role, permissions []string) (*restaurant.StaffUser, string, error) {
	if !role.IsInvitable() {
		return nil, "", shared.NewDomainError("INVALID_ROLE", "Role cannot be invited: "+string(role))
	}
	user, err := restaurant.NewStaffUser(restaurantID, name, email, role, permissions)
	if err != nil {
		return nil, "", err
	}
	user.SetInvitedBy(invitedBy)

	password := temporaryPassword()
	if err := user.SetPassword(password); err != nil {
		return nil, "", err
	}
	return user, password, nil
}

// temporaryPassword returns 16 random hex characters
func temporaryPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func tokenInput(u *restaurant.StaffUser) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		RestaurantID: u.RestaurantID,
		UserID:       u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		Permissions:  u.Permissions,
	}
}
