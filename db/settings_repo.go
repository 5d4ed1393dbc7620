package db

import (
	"github.com/pkg/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	GetWithdrawalSettings(defaults models.WithdrawalSettings) (*models.WithdrawalSettings, error)
	UpdateWithdrawalSettings(settings *models.WithdrawalSettings) error
}

type settingsRepo struct {
	DB *gorm.DB
}

func NewSettingsRepo(db *GormDB) SettingsRepository {
	return &settingsRepo{db.DB}
}

// GetWithdrawalSettings returns the singleton row, creating it from defaults on first use.
// The insert targets a fixed primary key and ignores conflicts, so concurrent first calls
// all read back the same row.
func (s *settingsRepo) GetWithdrawalSettings(defaults models.WithdrawalSettings) (*models.WithdrawalSettings, error) {
	defaults.ID = models.WithdrawalSettingsID
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return nil, errors.Wrap(err, "create withdrawal settings")
	}

	var settings models.WithdrawalSettings
	if err := s.DB.First(&settings, models.WithdrawalSettingsID).Error; err != nil {
		return nil, errors.Wrap(err, "find withdrawal settings")
	}
	return &settings, nil
}

func (s *settingsRepo) UpdateWithdrawalSettings(settings *models.WithdrawalSettings) error {
	settings.ID = models.WithdrawalSettingsID
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"minimum_withdrawal_amount", "withdrawal_amounts", "updated_by", "updated_at"}),
	}).Create(settings).Error
}
