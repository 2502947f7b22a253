package service

import (
	"database/sql"
	"fmt"

	"github.com/advisordesk/costbasis-backend/internal/database"
	"github.com/advisordesk/costbasis-backend/internal/model"
	"github.com/advisordesk/costbasis-backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version, the applied schema version
// and the feature set this build exposes.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	var dbVersion sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(version_id) FROM goose_db_version`).Scan(&dbVersion)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	return model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  fmt.Sprintf("%d", dbVersion.Int64),
		Features: map[string]bool{
			"costBasisReports": true,
			"methodComparison": true,
			"csvExport":        true,
			"priceRefresh":     true,
		},
	}, nil
}
