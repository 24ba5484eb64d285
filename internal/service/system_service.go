package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/fundsim/Paper-Trading-Backend/internal/database"
	"github.com/fundsim/Paper-Trading-Backend/internal/repository"
	"github.com/fundsim/Paper-Trading-Backend/internal/version"
)

// settingNavAPIToken is the system_setting key holding the NAV provider
// token, fernet-encrypted.
const settingNavAPIToken = "nav_api_token"

// SystemService handles system-related operations
type SystemService struct {
	db         *sql.DB
	systemRepo *repository.SystemRepository
	fernetKey  *fernet.Key
}

// NewSystemService creates a new SystemService. fernetKey may be empty, in
// which case secret settings cannot be stored.
func NewSystemService(db *sql.DB, systemRepo *repository.SystemRepository, fernetKey string) (*SystemService, error) {
	s := &SystemService{
		db:         db,
		systemRepo: systemRepo,
	}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("invalid fernet key: %w", err)
		}
		s.fernetKey = key
	}
	return s, nil
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the build version string.
func (s *SystemService) CheckVersion() string {
	return version.Version
}

// SetNavAPIToken encrypts and stores the NAV provider token.
func (s *SystemService) SetNavAPIToken(ctx context.Context, token string) error {
	if s.fernetKey == nil {
		return fmt.Errorf("fernet key not configured")
	}

	encrypted, err := fernet.EncryptAndSign([]byte(token), s.fernetKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt nav api token: %w", err)
	}
	return s.systemRepo.SetSetting(ctx, settingNavAPIToken, string(encrypted))
}

// GetNavAPIToken decrypts and returns the stored NAV provider token.
func (s *SystemService) GetNavAPIToken(ctx context.Context) (string, error) {
	if s.fernetKey == nil {
		return "", fmt.Errorf("fernet key not configured")
	}

	setting, err := s.systemRepo.GetSetting(ctx, settingNavAPIToken)
	if err != nil {
		return "", err
	}

	// TTL zero: stored tokens do not expire.
	token := fernet.VerifyAndDecrypt([]byte(setting.Value), 0, []*fernet.Key{s.fernetKey})
	if token == nil {
		return "", fmt.Errorf("stored nav api token failed verification")
	}
	return string(token), nil
}
