package migrations

import (
	"gorm.io/gorm"

	"github.com/jbweber/homelab/ludoteca/internal/datastore"
)

const nombreIndex = "idx_videojuegos_nombre"

// GetIndexMigrations returns index migrations.
//
// The unique index on nombre is what makes the name invariant hold under
// concurrent writers; the service-level lookup alone cannot.
func GetIndexMigrations() []Migration {
	return []Migration{
		{
			Version: 2,
			Name:    "add_videojuegos_nombre_unique_index",
			Up: func(tx *gorm.DB) error {
				if tx.Migrator().HasIndex(&datastore.Videojuego{}, nombreIndex) {
					return nil
				}
				return tx.Migrator().CreateIndex(&datastore.Videojuego{}, nombreIndex)
			},
			Down: func(tx *gorm.DB) error {
				if !tx.Migrator().HasIndex(&datastore.Videojuego{}, nombreIndex) {
					return nil
				}
				return tx.Migrator().DropIndex(&datastore.Videojuego{}, nombreIndex)
			},
		},
	}
}
