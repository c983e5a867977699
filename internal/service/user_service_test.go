// internal/service/user_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gurkanbulca/taskapproval/internal/errors"
	"github.com/gurkanbulca/taskapproval/internal/models"
	"github.com/gurkanbulca/taskapproval/pkg/events"
)

func TestUserService_CreateUser(t *testing.T) {
	h := NewTestHelpers(t)
	svc := NewUserService(h.Users, h.PasswordManager, h.Emitter, nil)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "  Carol ",
		Name:     "Carol Danvers",
		Email:    "Carol@Example.com",
		Password: "secret123",
		Role:     models.RoleManager,
	})
	require.NoError(t, err)

	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.Equal(t, models.RoleManager, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.NoError(t, h.PasswordManager.ComparePassword(user.PasswordHash, "secret123"))

	evs := h.Notifier.OfType(events.TypeUserCreated)
	require.Len(t, evs, 1)
	assert.Equal(t, "carol", evs[0].Metadata["username"])

	_, err = svc.CreateUser(ctx, CreateUserInput{
		Username: "CAROL",
		Name:     "Another Carol",
		Email:    "other@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateUsername))
	assert.Contains(t, err.Error(), "Username already exists")
}

func TestUserService_CreateUser_Invalid(t *testing.T) {
	h := NewTestHelpers(t)
	svc := NewUserService(h.Users, h.PasswordManager, h.Emitter, nil)

	tests := []struct {
		name string
		in   CreateUserInput
	}{
		{"short username", CreateUserInput{Username: "ab", Name: "A", Email: "a@example.com", Password: "secret123"}},
		{"bad email", CreateUserInput{Username: "abc", Name: "A", Email: "nope", Password: "secret123"}},
		{"missing name", CreateUserInput{Username: "abc", Email: "a@example.com", Password: "secret123"}},
		{"unknown role", CreateUserInput{Username: "abc", Name: "A", Email: "a@example.com", Password: "secret123", Role: "ROOT"}},
		{"weak password", CreateUserInput{Username: "abc", Name: "A", Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), err.Error())
		})
	}

	count, err := h.Users.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUserService_GetAndList(t *testing.T) {
	h := NewTestHelpers(t)
	svc := NewUserService(h.Users, h.PasswordManager, nil, nil)
	ctx := context.Background()

	zed := h.CreateTestUser("zed")
	h.CreateAdminUser("amy")

	got, err := svc.GetUser(ctx, zed.ID)
	require.NoError(t, err)
	assert.Equal(t, "zed", got.Username)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
	assert.Equal(t, "zed", users[1].Username)
}
