package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sortegrande/linkauth/internal/database/testutil"
	"github.com/sortegrande/linkauth/internal/models"
)

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "user@example.com", NormalizeEmail("  User@EXAMPLE.com "))
	require.Equal(t, "", NormalizeEmail("   "))
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	first, err := svc.FindOrCreate(context.Background(), "Casing@Example.com")
	require.NoError(t, err)
	require.Equal(t, "casing@example.com", first.Email)
	require.NotEmpty(t, first.ID)
	require.Nil(t, first.EmailVerifiedAt)

	second, err := svc.FindOrCreate(context.Background(), "casing@example.com ")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFindOrCreateRejectsEmptyEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.FindOrCreate(context.Background(), "   ")
	require.Error(t, err)
}

func TestMarkEmailVerifiedWritesOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.FindOrCreate(context.Background(), "verify@example.com")
	require.NoError(t, err)

	firstAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, svc.MarkEmailVerified(context.Background(), user, firstAt))
	require.NotNil(t, user.EmailVerifiedAt)

	// A later redemption must not move the original timestamp.
	reloaded, err := svc.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.MarkEmailVerified(context.Background(), reloaded, firstAt.Add(time.Hour)))

	var stored models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&stored).Error)
	require.NotNil(t, stored.EmailVerifiedAt)
	require.WithinDuration(t, firstAt, *stored.EmailVerifiedAt, time.Second)
}

func TestGetByIDMissing(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), "no-such-id")
	require.Error(t, err)
}
