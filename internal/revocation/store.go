package revocation

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/devaaa008/document-management/internal/models"
)

// Store is the durable set of tokens killed before their natural expiry.
// The table only grows; expiry is checked independently by the token codec,
// so stale rows are harmless.
type Store struct {
	DB *gorm.DB
}

// Add records the token as revoked. Revoking the same token twice is not an
// error; the extra row changes nothing observable.
func (s *Store) Add(token string) error {
	if err := s.DB.Create(&models.RevokedToken{Token: token}).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) Contains(token string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.RevokedToken{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return count > 0, nil
}
