// Package videojuegos holds the catalogue business rules: a videogame name is
// unique, and every operation is a single read-check-write against the
// repository.
package videojuegos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jbweber/homelab/ludoteca/internal/domain"
	"github.com/jbweber/homelab/ludoteca/internal/repository"
)

// Service coordinates videogame operations using a VideojuegoRepository.
type Service struct {
	repo repository.VideojuegoRepository
}

// NewService constructs a Service with the provided repository.
func NewService(repo repository.VideojuegoRepository) *Service {
	return &Service{repo: repo}
}

// Create stores a new videogame and returns it with its assigned ID.
// Any ID on the input is ignored.
func (s *Service) Create(ctx context.Context, v domain.Videojuego) (domain.Videojuego, error) {
	if strings.TrimSpace(v.Nombre) == "" {
		return domain.Videojuego{}, ErrBlankName
	}
	taken, err := s.nombreTaken(ctx, v.Nombre)
	if err != nil {
		return domain.Videojuego{}, err
	}
	if taken {
		return domain.Videojuego{}, ErrDuplicateName
	}

	v.ID = 0
	created, err := s.repo.Save(ctx, v)
	if err != nil {
		return domain.Videojuego{}, mapSaveError(err)
	}
	return created, nil
}

// Update overwrites nombre, compania and nota of the videogame with the given ID.
func (s *Service) Update(ctx context.Context, id int64, v domain.Videojuego) (domain.Videojuego, error) {
	if strings.TrimSpace(v.Nombre) == "" {
		return domain.Videojuego{}, ErrBlankName
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Videojuego{}, err
	}

	// Keeping the current name is never a collision
	if existing.Nombre != v.Nombre {
		taken, err := s.nombreTaken(ctx, v.Nombre)
		if err != nil {
			return domain.Videojuego{}, err
		}
		if taken {
			return domain.Videojuego{}, ErrDuplicateName
		}
	}

	existing.Nombre = v.Nombre
	existing.Compania = v.Compania
	existing.Nota = v.Nota

	updated, err := s.repo.Save(ctx, existing)
	if err != nil {
		return domain.Videojuego{}, mapSaveError(err)
	}
	return updated, nil
}

// GetByID returns the videogame with the given ID.
func (s *Service) GetByID(ctx context.Context, id int64) (domain.Videojuego, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Videojuego{}, ErrNotFound
		}
		return domain.Videojuego{}, fmt.Errorf("failed to get videojuego %d: %w", id, err)
	}
	return v, nil
}

// Delete removes the videogame with the given ID. Missing IDs are not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete videojuego %d: %w", id, err)
	}
	return nil
}

// ListAll returns every videogame.
func (s *Service) ListAll(ctx context.Context) ([]domain.Videojuego, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videojuegos: %w", err)
	}
	return all, nil
}

// ListByName returns every videogame whose name contains fragment.
func (s *Service) ListByName(ctx context.Context, fragment string) ([]domain.Videojuego, error) {
	matches, err := s.repo.FindByNombreContaining(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to search videojuegos by %q: %w", fragment, err)
	}
	return matches, nil
}

// Count returns the number of stored videogames.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count videojuegos: %w", err)
	}
	return n, nil
}

func (s *Service) nombreTaken(ctx context.Context, nombre string) (bool, error) {
	_, err := s.repo.FindByNombre(ctx, nombre)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up videojuego by nombre: %w", err)
}

// mapSaveError turns a unique index rejection into ErrDuplicateName; it happens
// when a concurrent writer claims the name between lookup and save.
func mapSaveError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrDuplicateName
	}
	return fmt.Errorf("failed to save videojuego: %w", err)
}
