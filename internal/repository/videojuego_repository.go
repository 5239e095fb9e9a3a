package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jbweber/homelab/ludoteca/internal/datastore"
	"github.com/jbweber/homelab/ludoteca/internal/domain"
)

// VideojuegoRepository extends the generic Repository with videogame-specific finders
type VideojuegoRepository interface {
	Repository[domain.Videojuego, int64]

	// FindByNombre retrieves the videogame with exactly this name
	FindByNombre(ctx context.Context, nombre string) (domain.Videojuego, error)
	// FindByNombreContaining retrieves every videogame whose name contains fragment (case-sensitive)
	FindByNombreContaining(ctx context.Context, fragment string) ([]domain.Videojuego, error)
}

// videojuegoRepositoryImpl implements VideojuegoRepository
type videojuegoRepositoryImpl struct {
	rows *GormRepository[datastore.Videojuego, int64]
}

// NewVideojuegoRepository creates a new videogame repository
func NewVideojuegoRepository(db *gorm.DB) VideojuegoRepository {
	return &videojuegoRepositoryImpl{
		rows: NewGormRepository[datastore.Videojuego, int64](db),
	}
}

// Save creates or updates a videogame
func (r *videojuegoRepositoryImpl) Save(ctx context.Context, v domain.Videojuego) (domain.Videojuego, error) {
	if strings.TrimSpace(v.Nombre) == "" {
		return domain.Videojuego{}, fmt.Errorf("videojuego nombre is required: %w", ErrInvalidEntity)
	}
	saved, err := r.rows.Save(ctx, toRow(v))
	if err != nil {
		return domain.Videojuego{}, err
	}
	return toDomain(saved), nil
}

// FindByID retrieves a videogame by its ID
func (r *videojuegoRepositoryImpl) FindByID(ctx context.Context, id int64) (domain.Videojuego, error) {
	row, err := r.rows.FindByID(ctx, id)
	if err != nil {
		return domain.Videojuego{}, err
	}
	return toDomain(row), nil
}

// FindAll retrieves all videogames
func (r *videojuegoRepositoryImpl) FindAll(ctx context.Context) ([]domain.Videojuego, error) {
	rows, err := r.rows.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// DeleteByID removes a videogame by its ID
func (r *videojuegoRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	return r.rows.DeleteByID(ctx, id)
}

// ExistsByID checks if a videogame exists by its ID
func (r *videojuegoRepositoryImpl) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.rows.ExistsByID(ctx, id)
}

// Count returns the number of stored videogames
func (r *videojuegoRepositoryImpl) Count(ctx context.Context) (int64, error) {
	return r.rows.Count(ctx)
}

// FindByNombre retrieves a videogame by its exact name
func (r *videojuegoRepositoryImpl) FindByNombre(ctx context.Context, nombre string) (domain.Videojuego, error) {
	row, err := r.rows.FindOne(ctx, "nombre = ?", nombre)
	if err != nil {
		return domain.Videojuego{}, err
	}
	return toDomain(row), nil
}

// FindByNombreContaining retrieves videogames whose name contains fragment
func (r *videojuegoRepositoryImpl) FindByNombreContaining(ctx context.Context, fragment string) ([]domain.Videojuego, error) {
	rows, err := r.rows.FindWhere(ctx, containsClause(r.rows.DB().Dialector.Name()), fragment)
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// containsClause returns a case-sensitive substring predicate on nombre.
// LIKE is avoided because SQLite folds ASCII case and it needs wildcard escaping.
func containsClause(dialect string) string {
	if dialect == "postgres" {
		return "strpos(nombre, ?) > 0"
	}
	return "instr(nombre, ?) > 0"
}

func toRow(v domain.Videojuego) datastore.Videojuego {
	return datastore.Videojuego{
		ID:       v.ID,
		Nombre:   v.Nombre,
		Compania: v.Compania,
		Nota:     v.Nota,
	}
}

func toDomain(row datastore.Videojuego) domain.Videojuego {
	return domain.Videojuego{
		ID:       row.ID,
		Nombre:   row.Nombre,
		Compania: row.Compania,
		Nota:     row.Nota,
	}
}

func toDomainSlice(rows []datastore.Videojuego) []domain.Videojuego {
	result := make([]domain.Videojuego, len(rows))
	for i, row := range rows {
		result[i] = toDomain(row)
	}
	return result
}
