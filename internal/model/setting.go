package model

import "time"

// Setting is a single application setting row. Values flagged as encrypted
// are stored as fernet tokens and decrypted on read.
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	IsEncrypted bool      `json:"isEncrypted"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Setting keys used by the application.
const (
	SettingQuoteAPIToken = "quote_api_token"
)
