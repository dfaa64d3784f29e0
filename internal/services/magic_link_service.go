package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sortegrande/linkauth/internal/auth"
	"github.com/sortegrande/linkauth/internal/cache"
	"github.com/sortegrande/linkauth/internal/models"
	"github.com/sortegrande/linkauth/pkg/crypto"
	"github.com/sortegrande/linkauth/pkg/logger"
	"github.com/sortegrande/linkauth/pkg/mail"
)

const (
	defaultLinkExpiry     = 15 * time.Minute
	defaultResendCooldown = 30 * time.Second
	defaultTokenBytes     = 32 // 256 bits of entropy

	resendKeyPrefix = "resend:"
)

// MagicLinkOption customises the MagicLinkService.
type MagicLinkOption func(*MagicLinkService)

// WithBaseURL sets the base URL used when building callback links.
func WithBaseURL(url string) MagicLinkOption {
	return func(s *MagicLinkService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithLinkExpiry overrides the token lifetime.
func WithLinkExpiry(d time.Duration) MagicLinkOption {
	return func(s *MagicLinkService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithResendCooldown overrides the per-identifier issuance cooldown.
func WithResendCooldown(d time.Duration) MagicLinkOption {
	return func(s *MagicLinkService) {
		if d > 0 {
			s.cooldown = d
		}
	}
}

// WithTokenSize adjusts the number of random bytes in generated tokens.
func WithTokenSize(size int) MagicLinkOption {
	return func(s *MagicLinkService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithClock injects a custom time source.
func WithClock(clock func() time.Time) MagicLinkOption {
	return func(s *MagicLinkService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithRateStore enables the server-side resend guard on the given store.
func WithRateStore(store cache.Store) MagicLinkOption {
	return func(s *MagicLinkService) {
		s.rates = store
	}
}

// WithEmailSubject overrides the subject line of login emails.
func WithEmailSubject(subject string) MagicLinkOption {
	return func(s *MagicLinkService) {
		if subject != "" {
			s.subject = subject
		}
	}
}

// MagicLinkService owns the one-time login token lifecycle: issuing a token
// (and the redeemable link carrying it), and redeeming it exactly once.
type MagicLinkService struct {
	db          *gorm.DB
	users       *UserService
	mailer      mail.Mailer
	rates       cache.Store
	baseURL     string
	subject     string
	expiry      time.Duration
	cooldown    time.Duration
	tokenLength int
	now         func() time.Time
	log         *zap.Logger
}

// NewMagicLinkService constructs the service with the provided dependencies.
// A nil mailer disables delivery (links are still issued), and a nil rate
// store disables the server-side resend guard.
func NewMagicLinkService(db *gorm.DB, users *UserService, mailer mail.Mailer, opts ...MagicLinkOption) (*MagicLinkService, error) {
	if db == nil {
		return nil, errors.New("magic link service: db is required")
	}
	if users == nil {
		return nil, errors.New("magic link service: user service is required")
	}

	service := &MagicLinkService{
		db:          db,
		users:       users,
		mailer:      mailer,
		subject:     "Your login link",
		expiry:      defaultLinkExpiry,
		cooldown:    defaultResendCooldown,
		tokenLength: defaultTokenBytes,
		now:         time.Now,
		log:         logger.WithModule("magiclink"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Issue validates the identifier, upserts the user, replaces any live token
// for the identifier with a fresh one, and mails the redeemable link. The
// returned link embeds the raw token; it is never persisted or logged.
func (s *MagicLinkService) Issue(ctx context.Context, identifier string) (string, error) {
	email := NormalizeEmail(identifier)
	if !validIdentifier(email) {
		return "", ErrInvalidIdentifier
	}

	if err := s.checkCooldown(ctx, email); err != nil {
		return "", err
	}

	_, err := s.users.FindOrCreate(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return "", fmt.Errorf("magic link service: generate token: %w", err)
	}

	now := s.now()
	row := models.VerificationToken{
		Identifier: email,
		TokenHash:  crypto.HashToken(token),
		ExpiresAt:  now.Add(s.expiry),
	}

	// Delete-then-insert inside one transaction so the one-live-token
	// invariant holds even against a concurrent issuance.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ?", email).
			Delete(&models.VerificationToken{}).Error; err != nil {
			return fmt.Errorf("invalidate previous tokens: %w", err)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("persist token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("magic link service: %w", err)
	}

	link := s.callbackLink(token, email)

	if s.mailer != nil {
		msg := mail.Message{
			To:      []string{email},
			Subject: s.subject,
			Body:    s.emailBody(link),
		}
		if mailErr := s.mailer.Send(ctx, msg); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			s.log.Warn("login email delivery failed",
				zap.String("identifier", email),
				zap.Error(mailErr),
			)
			return "", fmt.Errorf("%w: %w", ErrDeliveryFailed, mailErr)
		}
	}

	s.log.Info("login link issued",
		zap.String("identifier", email),
		zap.Time("expires_at", row.ExpiresAt),
	)

	return link, nil
}

// Verify redeems a token. Exactly one concurrent caller can succeed for a
// given token: the row delete is the arbiter, and losers observe
// ErrTokenNotFound. Expired rows are deleted on access.
func (s *MagicLinkService) Verify(ctx context.Context, identifier, token string) (*auth.Identity, error) {
	email := NormalizeEmail(identifier)
	token = strings.TrimSpace(token)
	if email == "" || token == "" {
		return nil, ErrTokenNotFound
	}

	hash := crypto.HashToken(token)

	var row models.VerificationToken
	err := s.db.WithContext(ctx).
		Where("identifier = ? AND token_hash = ?", email, hash).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("magic link service: find token: %w", err)
	}

	// Single-use enforcement: whoever deletes the row wins. A concurrent
	// redeemer that lost the race sees zero rows affected.
	res := s.db.WithContext(ctx).
		Where("id = ?", row.ID).
		Delete(&models.VerificationToken{})
	if res.Error != nil {
		return nil, fmt.Errorf("magic link service: consume token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenNotFound
	}

	now := s.now()
	if now.After(row.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	user, err := s.users.FindOrCreate(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.users.MarkEmailVerified(ctx, user, now); err != nil {
		return nil, err
	}

	s.log.Info("login link redeemed", zap.String("identifier", email))

	return &auth.Identity{UserID: user.ID, Email: user.Email}, nil
}

// PurgeExpired removes verification tokens past their expiry. Redemption
// already deletes expired rows on access; the maintenance sweeper calls
// this to bound the table between accesses.
func (s *MagicLinkService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.VerificationToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("magic link service: purge expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// checkCooldown enforces the per-identifier resend window. The guard is
// advisory UX pacing, not a security control, so a failing rate store
// degrades to allowing the request.
func (s *MagicLinkService) checkCooldown(ctx context.Context, email string) error {
	if s.rates == nil || s.cooldown <= 0 {
		return nil
	}

	count, _, err := s.rates.IncrementWithTTL(ctx, resendKeyPrefix+email, s.cooldown)
	if err != nil {
		s.log.Warn("resend guard unavailable", zap.Error(err))
		return nil
	}
	if count > 1 {
		return ErrRateLimited
	}
	return nil
}

func (s *MagicLinkService) callbackLink(token, email string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/api/auth/callback?token=%s&email=%s",
		s.baseURL, url.QueryEscape(token), url.QueryEscape(email))
}

func (s *MagicLinkService) emailBody(link string) string {
	return fmt.Sprintf("Click the link below to sign in:\n%s\n\nThis link expires in %d minutes and can be used once.\n\nIf you did not request this email, you can ignore it.\n",
		link, int(s.expiry.Minutes()))
}

// validIdentifier applies the structural email check: a local part, an @,
// and a domain with at least one dot.
func validIdentifier(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
