package models

import "time"

// CacheEntry is a cached value stored in the SQL database when no Redis
// instance is configured. The resend guard and the IP rate limiter keep
// their counters here.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
