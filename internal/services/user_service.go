package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sortegrande/linkauth/internal/models"
)

// UserService maps email addresses to durable user identities. Users are
// created lazily the first time an email requests a login link.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// NormalizeEmail lower-cases and trims an email address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindOrCreate returns the user for the normalized email, creating one when
// absent. Under a concurrent create race the unique constraint on email is
// the arbiter: the losing writer re-reads and returns the winner's row.
func (s *UserService) FindOrCreate(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("user service: email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user service: lookup %s: %w", email, err)
	}

	user = models.User{Email: email}
	if createErr := s.db.WithContext(ctx).Create(&user).Error; createErr != nil {
		if !isUniqueConstraintError(createErr) {
			return nil, fmt.Errorf("user service: create: %w", createErr)
		}
		// Another request won the insert; use its row.
		if readErr := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; readErr != nil {
			return nil, fmt.Errorf("user service: re-read after race: %w", readErr)
		}
	}

	return &user, nil
}

// GetByID fetches a user by its identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("user service: id is required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user service: get %s: %w", id, err)
	}
	return &user, nil
}

// MarkEmailVerified records the first successful link redemption. The
// timestamp is written once; later redemptions leave it untouched.
func (s *UserService) MarkEmailVerified(ctx context.Context, user *models.User, at time.Time) error {
	if user == nil {
		return errors.New("user service: user is required")
	}
	if user.EmailVerifiedAt != nil {
		return nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND email_verified_at IS NULL", user.ID).
		Update("email_verified_at", at).Error; err != nil {
		return fmt.Errorf("user service: mark verified: %w", err)
	}

	user.EmailVerifiedAt = &at
	return nil
}
