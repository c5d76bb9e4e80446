package store

import (
	"bitwise74/auth-api/db"
	"bitwise74/auth-api/internal/model"
	"context"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()

	d, err := db.Open("sqlite", ":memory:", false)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := d.DB()
		sqlDB.Close()
	})

	return d
}

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, u *Users, id, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           id,
		Email:        email,
		Name:         "Test",
		PasswordHash: "hash",
		EmailToken:   strPtr("token-" + id),
	}
	require.NoError(t, u.Create(context.Background(), user))

	return user
}

func TestUsersLookups(t *testing.T) {
	u := NewUsers(newDB(t))
	ctx := context.Background()

	seedUser(t, u, "abc", "a@example.com")

	byID, err := u.FindByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)
	assert.False(t, byID.Verified)

	byEmail, err := u.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc", byEmail.ID)

	byToken, err := u.FindByEmailToken(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", byToken.ID)

	_, err = u.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = u.FindByEmailToken(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := u.EmailExists(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = u.EmailExists(ctx, "b@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUsersCreateDuplicateEmail(t *testing.T) {
	u := NewUsers(newDB(t))

	seedUser(t, u, "abc", "a@example.com")

	err := u.Create(context.Background(), &model.User{
		ID:           "def",
		Email:        "a@example.com",
		Name:         "Dup",
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUsersMarkVerified(t *testing.T) {
	u := NewUsers(newDB(t))
	ctx := context.Background()

	user := seedUser(t, u, "abc", "a@example.com")
	require.NoError(t, u.MarkVerified(ctx, user))

	got, err := u.FindByID(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Nil(t, got.EmailToken)

	_, err = u.FindByEmailToken(ctx, "token-abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersLookupFailureIsWrapped(t *testing.T) {
	d := newDB(t)
	u := NewUsers(d)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = u.FindByID(context.Background(), "abc")
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "user_lookup_failed", oopsErr.Code())
}

func TestResetPassword(t *testing.T) {
	d := newDB(t)
	u := NewUsers(d)
	v := NewVerificationTokens(d)
	ctx := context.Background()

	seedUser(t, u, "abc", "a@example.com")

	require.NoError(t, v.Create(ctx, &model.VerificationToken{
		UserID:    "abc",
		Token:     "hashed",
		Purpose:   model.PurposePasswordReset,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	userID, err := v.ResetPassword(ctx, "hashed", "new-hash")
	require.NoError(t, err)
	assert.Equal(t, "abc", userID)

	user, err := u.FindByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.PasswordHash)

	_, err = v.ResetPassword(ctx, "hashed", "other-hash")
	assert.ErrorIs(t, err, ErrTokenUsed)

	_, err = v.ResetPassword(ctx, "unknown", "other-hash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPasswordExpired(t *testing.T) {
	d := newDB(t)
	u := NewUsers(d)
	v := NewVerificationTokens(d)
	ctx := context.Background()

	seedUser(t, u, "abc", "a@example.com")

	require.NoError(t, v.Create(ctx, &model.VerificationToken{
		UserID:    "abc",
		Token:     "hashed",
		Purpose:   model.PurposePasswordReset,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := v.ResetPassword(ctx, "hashed", "new-hash")
	assert.ErrorIs(t, err, ErrTokenExpired)

	user, err := u.FindByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestDeleteStale(t *testing.T) {
	d := newDB(t)
	u := NewUsers(d)
	v := NewVerificationTokens(d)
	ctx := context.Background()
	now := time.Now()

	seedUser(t, u, "abc", "a@example.com")

	for _, tok := range []*model.VerificationToken{
		{UserID: "abc", Token: "expired", Purpose: model.PurposePasswordReset, ExpiresAt: now.Add(-time.Hour)},
		{UserID: "abc", Token: "used", Purpose: model.PurposePasswordReset, ExpiresAt: now.Add(time.Hour), Used: true},
		{UserID: "abc", Token: "live", Purpose: model.PurposePasswordReset, ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, v.Create(ctx, tok))
	}

	n, err := v.DeleteStale(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var left []model.VerificationToken
	require.NoError(t, d.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].Token)
}
