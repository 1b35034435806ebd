package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/app/services"
	"github.com/chefbazaar/backend/pkg/apperr"
)

func newAccountFixture(t *testing.T) (*services.AccountService, repositories.UserRepository) {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	return services.NewAccountService(users), users
}

func TestCreateIsIdempotent(t *testing.T) {
	svc, _ := newAccountFixture(t)
	ctx := context.Background()

	in := services.CreateUserInput{
		UID:         "firebase:123",
		Email:       "new@example.com",
		DisplayName: "New User",
	}

	created, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	// Second sign-in with the same email is a no-op, not an error.
	created, err = svc.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateDefaultsRoleAndStatus(t *testing.T) {
	svc, users := newAccountFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, services.CreateUserInput{
		UID:         "firebase:123",
		Email:       "new@example.com",
		DisplayName: "New User",
	})
	require.NoError(t, err)

	user, err := users.FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.StatusActive, user.Status)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAccountFixture(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, services.RegisterInput{
		DisplayName: "Pat",
		Email:       "pat@example.com",
		Password:    "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	token, err = svc.Login(ctx, "pat@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newAccountFixture(t)
	ctx := context.Background()

	in := services.RegisterInput{DisplayName: "Pat", Email: "pat@example.com", Password: "correct-horse"}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	assert.True(t, apperr.Is(err, apperr.AlreadyExists))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAccountFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{
		DisplayName: "Pat", Email: "pat@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "pat@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))

	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestLoginRejectsPasswordlessAccount(t *testing.T) {
	svc, users := newAccountFixture(t)
	ctx := context.Background()

	// Accounts recorded at first sign-in have no password hash.
	require.NoError(t, users.Create(ctx, &models.User{
		UID:       "firebase:456",
		Email:     "oauth@example.com",
		Role:      models.RoleUser,
		Status:    models.StatusActive,
		CreatedAt: time.Now().UTC(),
	}))

	_, err := svc.Login(ctx, "oauth@example.com", "anything")
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
}

func TestMarkFraud(t *testing.T) {
	svc, users := newAccountFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		Email:  "chef@example.com",
		Role:   models.RoleChef,
		Status: models.StatusActive,
	}))

	require.NoError(t, svc.MarkFraud(ctx, "chef@example.com"))

	user, err := users.FindByEmail(ctx, "chef@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsFraud())
	// The role survives the flag.
	assert.Equal(t, models.RoleChef, user.Role)
}

func TestMarkFraudRepeatConflicts(t *testing.T) {
	svc, users := newAccountFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		Email:  "chef@example.com",
		Role:   models.RoleChef,
		Status: models.StatusActive,
	}))

	require.NoError(t, svc.MarkFraud(ctx, "chef@example.com"))
	err := svc.MarkFraud(ctx, "chef@example.com")
	assert.True(t, apperr.Is(err, apperr.AlreadyExists))
}

func TestMarkFraudNeverFlagsAdmin(t *testing.T) {
	svc, users := newAccountFixture(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		Email:  "admin@example.com",
		Role:   models.RoleAdmin,
		Status: models.StatusActive,
	}))

	err := svc.MarkFraud(ctx, "admin@example.com")
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	user, findErr := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, findErr)
	assert.False(t, user.IsFraud())
}

func TestMarkFraudMissingUser(t *testing.T) {
	svc, _ := newAccountFixture(t)

	err := svc.MarkFraud(context.Background(), "ghost@example.com")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}
