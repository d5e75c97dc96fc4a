package migration

import (
	"gorm.io/gorm"

	"rentctl/internal/models"
)

func init() {
	RegisterMigration(&Migration{
		Version: "20250301120000",
		Name:    "create_rental_schema",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(models.All()...)
		},
		Down: func(db *gorm.DB) error {
			tables := models.All()
			for i := len(tables) - 1; i >= 0; i-- {
				if _, ok := tables[i].(*models.Property); ok {
					if err := db.Migrator().DropTable("property_neighborhoods"); err != nil {
						return err
					}
				}
				if err := db.Migrator().DropTable(tables[i]); err != nil {
					return err
				}
			}
			return nil
		},
	})

	RegisterMigration(&Migration{
		Version: "20250315090000",
		Name:    "index_active_leases",
		Up: func(db *gorm.DB) error {
			return db.Exec("CREATE INDEX IF NOT EXISTS idx_leases_property_end ON leases (property_id, end_date)").Error
		},
		Down: func(db *gorm.DB) error {
			return db.Exec("DROP INDEX IF EXISTS idx_leases_property_end").Error
		},
	})
}
