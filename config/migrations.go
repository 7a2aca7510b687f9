package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"dealerinspect/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250812_create_base_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Company{}, &models.User{}, &models.Vehicle{},
					&models.DropdownMaster{}, &models.InspectionConfig{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("inspection_configs", "dropdown_masters",
					"vehicles", "users", "companies")
			},
		},
		{
			// At most one default configuration per company and purpose.
			// The mutation API enforces this in its own transaction; the
			// partial index is the storage-level backstop under races.
			ID: "20250812_default_config_unique_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`
					CREATE UNIQUE INDEX IF NOT EXISTS idx_configs_one_default
					ON inspection_configs (company_id, purpose)
					WHERE is_default AND deleted_at IS NULL
				`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_configs_one_default").Error
			},
		},
	})

	return m.Migrate()
}
