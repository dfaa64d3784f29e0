package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrInvalidIdentifier indicates the supplied email fails the structural check.
	ErrInvalidIdentifier = errors.New("magic link: invalid identifier")
	// ErrTokenNotFound covers tokens that were never issued, already consumed,
	// or superseded by a newer issuance. Callers must not distinguish it from
	// ErrTokenExpired when talking to clients.
	ErrTokenNotFound = errors.New("magic link: token not found")
	// ErrTokenExpired indicates the token exists but its window has lapsed.
	ErrTokenExpired = errors.New("magic link: token expired")
	// ErrRateLimited indicates issuance for this identifier is inside the
	// resend cooldown window.
	ErrRateLimited = errors.New("magic link: rate limited")
	// ErrDeliveryFailed indicates the notifier could not deliver the link.
	ErrDeliveryFailed = errors.New("magic link: delivery failed")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}
