package migrations

import (
	"gorm.io/gorm"

	"github.com/jbweber/homelab/ludoteca/internal/datastore"
)

// GetInitialMigrations returns the migrations that create the base schema
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_videojuegos_table",
			Up: func(tx *gorm.DB) error {
				// Databases created by an earlier deployment already have the table
				if tx.Migrator().HasTable(&datastore.Videojuego{}) {
					return nil
				}
				return tx.Migrator().CreateTable(&datastore.Videojuego{})
			},
			Down: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&datastore.Videojuego{})
			},
		},
	}
}
