package models

import "time"

// Credential links a caller-supplied client identifier ("browser id") to a
// Splitwise account and its OAuth bearer token.
//
// Possession of the ClientID string is the only authorization check: anyone
// who knows it can act with the stored token. That trust boundary is
// deliberate — the calling surface has no browser session of its own.
type Credential struct {
	ClientID    string `gorm:"primaryKey;column:client_id"`
	AccountID   int64  `gorm:"column:account_id"` // Splitwise user id
	AccessToken string `gorm:"column:access_token"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (Credential) TableName() string { return "credentials" }
