package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskman/internal/util"
	"taskman/pkg/rbac"
)

func newAuthService(users *fakeUserStore) *AuthService {
	return NewAuthService(users, "test-secret", zap.NewNop())
}

func TestRegisterDerivesPermissionsFromRole(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users)

	u, token, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Dana",
		Email:      "Dana@Example.com",
		Password:   "secret99",
		Role:       rbac.RoleDesigner,
		Department: "Design",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "dana@example.com", u.Email)
	assert.Equal(t, rbac.DefaultPermissions(rbac.RoleDesigner), u.Permissions)

	userID, role, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, rbac.RoleDesigner, role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	users.add(userFixture("dana@example.com", rbac.RoleEmployee))
	svc := newAuthService(users)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Other Dana",
		Email:      "DANA@example.com",
		Password:   "secret99",
		Role:       rbac.RoleEmployee,
		Department: "Other",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPublicForcesEmployeeRole(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users)

	u, err := svc.RegisterPublic(context.Background(), RegisterInput{
		Name:       "Sam",
		Email:      "sam@example.com",
		Password:   "secret99",
		Role:       rbac.RoleAdmin, // must be ignored
		Department: "Other",
	})
	require.NoError(t, err)

	assert.Equal(t, rbac.RoleEmployee, u.Role)
	assert.Equal(t, rbac.DefaultPermissions(rbac.RoleEmployee), u.Permissions)
}

func TestLoginSuccess(t *testing.T) {
	users := newFakeUserStore()
	users.add(userFixture("dana@example.com", rbac.RoleDesigner))
	svc := newAuthService(users)

	u, token, route, err := svc.Login(context.Background(), "dana@example.com", "correct-password")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, "/tasks", route)
	assert.Equal(t, "dana@example.com", u.Email)
}

func TestLoginAdminDashboardRoute(t *testing.T) {
	users := newFakeUserStore()
	users.add(userFixture("root@example.com", rbac.RoleAdmin))
	svc := newAuthService(users)

	_, _, route, err := svc.Login(context.Background(), "root@example.com", "correct-password")
	require.NoError(t, err)
	assert.Equal(t, "/admin-dashboard", route)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	users.add(userFixture("dana@example.com", rbac.RoleEmployee))
	svc := newAuthService(users)

	for i := 0; i < 2; i++ {
		_, token, _, err := svc.Login(context.Background(), "dana@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, token)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(newFakeUserStore())

	_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBackfillsEmptyPermissions(t *testing.T) {
	users := newFakeUserStore()
	fixture := userFixture("dana@example.com", rbac.RoleProjectManager)
	fixture.Permissions = nil
	stored := users.add(fixture)
	svc := newAuthService(users)

	u, _, _, err := svc.Login(context.Background(), "dana@example.com", "correct-password")
	require.NoError(t, err)

	want := rbac.DefaultPermissions(rbac.RoleProjectManager)
	assert.Equal(t, want, u.Permissions)

	persisted, err := users.FindByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, want, persisted.Permissions)
}

func TestMe(t *testing.T) {
	users := newFakeUserStore()
	u := users.add(userFixture("dana@example.com", rbac.RoleEmployee))
	svc := newAuthService(users)

	got, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.Me(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
