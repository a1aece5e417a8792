package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jserwatka/network/internal/domain"
)

func register(t *testing.T, e *env, name string) *domain.AuthResponse {
	t.Helper()
	resp, err := e.account.Register(context.Background(), &domain.RegisterRequest{
		Username:     name,
		Email:        name + "@example.com",
		Password:     "secret123",
		Confirmation: "secret123",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	resp := register(t, e, "alice")
	assert.Equal(t, "token-alice", resp.AccessToken)
	assert.NotZero(t, resp.User.ID)

	profile, err := e.account.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.UserID)

	login, err := e.account.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = e.account.Login(ctx, &domain.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.account.Login(ctx, &domain.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	register(t, e, "alice")

	_, err := e.account.Register(ctx, &domain.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "a", Confirmation: "b",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = e.account.Register(ctx, &domain.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "secret123", Confirmation: "secret123",
	})
	assert.ErrorIs(t, err, ErrDuplicateHandle)

	_, err = e.account.Register(ctx, &domain.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "secret123", Confirmation: "secret123",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	resp := register(t, e, "alice")

	name, country, dob := "Alice", "PL", "1990-05-17"
	profile, err := e.account.UpdateProfile(ctx, resp.User.ID, &domain.UpdateProfileRequest{
		Name: &name, Country: &country, DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)
	require.NotNil(t, profile.DateOfBirth)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), *profile.DateOfBirth)

	stored, err := e.account.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "PL", stored.Country)

	bad := "17/05/1990"
	_, err = e.account.UpdateProfile(ctx, resp.User.ID, &domain.UpdateProfileRequest{DateOfBirth: &bad})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = e.account.UpdateProfile(ctx, 404, &domain.UpdateProfileRequest{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := register(t, e, "alice").User
	b := register(t, e, "bob").User

	require.NoError(t, e.social.Follow(ctx, b.ID, a.ID))
	p := e.post(t, a.ID, "bye", time.Time{})
	_, _, err := e.reaction.React(ctx, b.ID, domain.PostTarget(p.ID), "like")
	require.NoError(t, err)

	require.NoError(t, e.account.DeleteAccount(ctx, a.ID))

	_, err = e.account.GetUser(ctx, a.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	counts, err := e.social.Counts(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowCounts{}, counts)
	assert.Contains(t, e.counters.invalidated, b.ID)

	assert.ErrorIs(t, e.account.DeleteAccount(ctx, a.ID), ErrUserNotFound)
}
