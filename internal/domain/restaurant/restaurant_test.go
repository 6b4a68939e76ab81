package restaurant

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewRestaurant(t *testing.T) {
	r, err := NewRestaurant("Cantina da Nona", "italian", "Rua A, 1", "(11) 3333-4444", "Contato@Nona.com")
	require.NoError(t, err)
	assert.Equal(t, "1133334444", r.Phone)
	assert.Equal(t, "contato@nona.com", r.Email)
	assert.False(t, r.OnboardingCompleted)

	r.CompleteOnboarding()
	r.CompleteOnboarding()
	assert.True(t, r.OnboardingCompleted)
	assert.Len(t, r.GetDomainEvents(), 2)

	_, err = NewRestaurant("", "", "", "", "")
	assert.Error(t, err)
	_, err = NewRestaurant("X", "", "", "", "bad@")
	assert.Error(t, err)
}

func TestStaffUser_Password(t *testing.T) {
	u, err := NewStaffUser(uuid.New(), "Carla", "carla@nona.com", RoleManager, []string{"orders", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, u.Permissions)
	assert.False(t, u.VerifyPassword("anything"))

	require.Error(t, u.SetPassword("short"))
	require.NoError(t, u.SetPassword("s3cret-pass"))
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))
	assert.True(t, u.VerifyPassword("s3cret-pass"))
	assert.False(t, u.VerifyPassword("wrong-pass"))
	assert.False(t, u.NeedsRehash())

	t.Run("legacy bcrypt hash", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
		require.NoError(t, err)
		u.PasswordHash = string(hash)
		assert.True(t, u.VerifyPassword("legacy-pass"))
		assert.True(t, u.NeedsRehash())
	})
}

func TestStaffUser_Roles(t *testing.T) {
	restaurantID := uuid.New()

	_, err := NewStaffUser(restaurantID, "X", "x@x.com", Role("chef"), nil)
	assert.Error(t, err)

	owner, err := NewStaffUser(restaurantID, "Owner", "owner@x.com", RoleOwner, nil)
	require.NoError(t, err)
	assert.True(t, owner.HasPermission(PermissionSettings))
	assert.Error(t, owner.Deactivate())

	attendant, err := NewStaffUser(restaurantID, "Att", "att@x.com", RoleAttendant, []string{PermissionOrders})
	require.NoError(t, err)
	assert.True(t, attendant.HasPermission(PermissionOrders))
	assert.False(t, attendant.HasPermission(PermissionMenu))
	assert.False(t, attendant.Role.CanManage())

	require.NoError(t, attendant.Deactivate())
	assert.False(t, attendant.IsActive)
	assert.Error(t, attendant.Deactivate())

	assert.False(t, RoleOwner.IsInvitable())
	assert.True(t, RoleAttendant.IsInvitable())
}

func TestWhatsAppSettings_IsOpenAt(t *testing.T) {
	s, err := NewWhatsAppSettings(uuid.New(), "11999998888")
	require.NoError(t, err)

	// 2025-03-10 is a Monday, 2025-03-16 a Sunday
	monday := func(h, m int) time.Time { return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC) }
	sunday := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)

	assert.True(t, s.IsOpenAt(sunday), "no hours configured means open")

	s.BusinessHours = BusinessHours{
		"mon": {Enabled: true, Open: "08:00", Close: "22:00"},
		"tue": {Enabled: false, Open: "08:00", Close: "22:00"},
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"opening minute inclusive", monday(8, 0), true},
		{"closing minute inclusive", monday(22, 0), true},
		{"before opening", monday(7, 59), false},
		{"after closing", monday(22, 1), false},
		{"disabled day", time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC), false},
		{"missing day", sunday, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsOpenAt(tt.at))
		})
	}
}

func TestWhatsAppSettings_AutoReplyMessage(t *testing.T) {
	s, err := NewWhatsAppSettings(uuid.New(), "11999998888")
	require.NoError(t, err)
	s.BusinessHours = DefaultBusinessHours()

	sunday := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, DefaultWelcomeMessage, s.AutoReplyMessage(monday))
	assert.Equal(t, DefaultWelcomeMessage+ClosedNotice, s.AutoReplyMessage(sunday))

	s.AutoReplyEnabled = false
	assert.Equal(t, DefaultWelcomeMessage, s.AutoReplyMessage(sunday))
}

func TestWhatsAppSettings_Update(t *testing.T) {
	s, err := NewWhatsAppSettings(uuid.New(), "")
	require.NoError(t, err)
	assert.False(t, s.HasPhone())

	err = s.Update("(11) 99999-8888", "", true, BusinessHours{"xyz": {}}, "", "", true)
	assert.Error(t, err)

	err = s.Update("(11) 99999-8888", "", true, BusinessHours{"mon": {Enabled: true, Open: "8h", Close: "22:00"}}, "", "", true)
	assert.Error(t, err)

	require.NoError(t, s.Update("(11) 99999-8888", " ", false, nil, "https://hooks.example.com", "tok", false))
	assert.Equal(t, DefaultWelcomeMessage, s.WelcomeMessage)
	assert.True(t, s.HasPhone())
	assert.False(t, s.CanSend())
}
