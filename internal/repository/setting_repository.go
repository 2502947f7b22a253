package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/model"
)

// SettingRepository provides data access methods for the setting table.
// Sensitive values, such as the quote provider API token, are stored as
// fernet tokens and transparently decrypted on read.
type SettingRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewSettingRepository creates a new SettingRepository.
// The key may be nil, in which case encrypted settings cannot be read or written.
func NewSettingRepository(db *sql.DB, key *fernet.Key) *SettingRepository {
	return &SettingRepository{db: db, key: key}
}

// GetSetting retrieves a setting value by key, decrypting it if it was
// stored encrypted. Returns apperrors.ErrSettingNotFound if the key does
// not exist.
func (r *SettingRepository) GetSetting(key string) (model.Setting, error) {
	query := `SELECT key, value, is_encrypted, updated_at FROM setting WHERE key = ?`

	var s model.Setting
	var updatedAtStr string

	err := r.db.QueryRow(query, key).Scan(&s.Key, &s.Value, &s.IsEncrypted, &updatedAtStr)
	if err == sql.ErrNoRows {
		return model.Setting{}, apperrors.ErrSettingNotFound
	}
	if err != nil {
		return model.Setting{}, fmt.Errorf("failed to query setting: %w", err)
	}

	s.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.Setting{}, err
	}

	if s.IsEncrypted {
		if r.key == nil {
			return model.Setting{}, fmt.Errorf("setting %s is encrypted but no key is configured", key)
		}
		plain := fernet.VerifyAndDecrypt([]byte(s.Value), 0, []*fernet.Key{r.key})
		if plain == nil {
			return model.Setting{}, fmt.Errorf("failed to decrypt setting %s", key)
		}
		s.Value = string(plain)
	}

	return s, nil
}

// SetSetting stores a setting value, encrypting it first when encrypted is true.
func (r *SettingRepository) SetSetting(ctx context.Context, key, value string, encrypted bool) error {
	if encrypted {
		if r.key == nil {
			return fmt.Errorf("cannot encrypt setting %s: no key is configured", key)
		}
		token, err := fernet.EncryptAndSign([]byte(value), r.key)
		if err != nil {
			return fmt.Errorf("failed to encrypt setting %s: %w", key, err)
		}
		value = string(token)
	}

	query := `
        INSERT INTO setting (key, value, is_encrypted, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (key) DO UPDATE SET value = excluded.value,
            is_encrypted = excluded.is_encrypted, updated_at = excluded.updated_at
    `

	_, err := r.db.ExecContext(ctx, query, key, value, encrypted, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	return nil
}
