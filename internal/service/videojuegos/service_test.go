package videojuegos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/ludoteca/internal/domain"
	"github.com/jbweber/homelab/ludoteca/internal/repository"
	"github.com/jbweber/homelab/ludoteca/internal/testutil"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func newTestService(t *testing.T) *Service {
	t.Helper()
	ds, cleanup := testutil.SetupTestDBWithMigrations(t, t.Name())
	t.Cleanup(cleanup)
	return NewService(repository.NewVideojuegoRepository(ds.DB))
}

func TestService_CreateThenGetByID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Videojuego{Nombre: "Zelda", Compania: strPtr("Nintendo"), Nota: floatPtr(9.5)})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestService_CreateIgnoresIncomingID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Videojuego{ID: 42, Nombre: "Zelda"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestService_CreateDuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Videojuego{Nombre: "Zelda", Compania: strPtr("Nintendo")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.Videojuego{Nombre: "Zelda", Compania: strPtr("Otra")})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, "Ya existe un videojuego con el mismo nombre", err.Error())

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Nintendo", *all[0].Compania)
}

func TestService_CreateBlankName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.Videojuego{Nombre: " \t"})
	assert.ErrorIs(t, err, ErrBlankName)
}

func TestService_UpdateNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Update(context.Background(), 999, domain.Videojuego{Nombre: "Zelda"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateRenameToTakenName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	zelda, err := svc.Create(ctx, domain.Videojuego{Nombre: "Zelda"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.Videojuego{Nombre: "Metroid"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, zelda.ID, domain.Videojuego{Nombre: "Metroid"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	got, err := svc.GetByID(ctx, zelda.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zelda", got.Nombre)
}

func TestService_UpdateKeepSameName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	zelda, err := svc.Create(ctx, domain.Videojuego{Nombre: "Zelda", Nota: floatPtr(9)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, zelda.ID, domain.Videojuego{ID: 77, Nombre: "Zelda", Compania: strPtr("Nintendo"), Nota: floatPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, zelda.ID, updated.ID)
	assert.Equal(t, "Nintendo", *updated.Compania)
	assert.InDelta(t, 10.0, *updated.Nota, 0.0001)
}

func TestService_UpdateRename(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	zelda, err := svc.Create(ctx, domain.Videojuego{Nombre: "Zelda", Compania: strPtr("Nintendo"), Nota: floatPtr(9.5)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, zelda.ID, domain.Videojuego{Nombre: "Zelda 2"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, zelda.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zelda 2", got.Nombre)
	assert.Nil(t, got.Compania)
	assert.Nil(t, got.Nota)

	// The old name is free again
	_, err = svc.Create(ctx, domain.Videojuego{Nombre: "Zelda"})
	assert.NoError(t, err)
}

func TestService_GetByIDNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Videojuego no encontrado", err.Error())
}

func TestService_DeleteIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	keep, err := svc.Create(ctx, domain.Videojuego{Nombre: "Zelda"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 999))
	require.NoError(t, svc.Delete(ctx, keep.ID))
	require.NoError(t, svc.Delete(ctx, keep.ID))

	_, err = svc.GetByID(ctx, keep.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DeleteMissingLeavesOthers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Videojuego{Nombre: "Zelda"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 12345))

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestService_ListByNameIsSubsetOfListAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, nombre := range []string{"Gears of war", "Warcraft", "Star wars", "Halo", "Forza"} {
		_, err := svc.Create(ctx, domain.Videojuego{Nombre: nombre})
		require.NoError(t, err)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)

	var want []domain.Videojuego
	for _, v := range all {
		if strings.Contains(v.Nombre, "war") {
			want = append(want, v)
		}
	}

	got, err := svc.ListByName(ctx, "war")
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)

	none, err := svc.ListByName(ctx, "Mario")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// raceRepo simulates a concurrent writer: the name lookup misses but the
// unique index rejects the insert.
type raceRepo struct {
	repository.VideojuegoRepository
	saveErr error
}

func (r *raceRepo) FindByNombre(ctx context.Context, nombre string) (domain.Videojuego, error) {
	return domain.Videojuego{}, fmt.Errorf("videojuego %s: %w", nombre, repository.ErrNotFound)
}

func (r *raceRepo) FindByID(ctx context.Context, id int64) (domain.Videojuego, error) {
	return domain.Videojuego{ID: id, Nombre: "Zelda"}, nil
}

func (r *raceRepo) Save(ctx context.Context, v domain.Videojuego) (domain.Videojuego, error) {
	return domain.Videojuego{}, r.saveErr
}

func TestService_CreateLosesRaceOnUniqueIndex(t *testing.T) {
	svc := NewService(&raceRepo{saveErr: fmt.Errorf("failed to save: %w", repository.ErrDuplicate)})

	_, err := svc.Create(context.Background(), domain.Videojuego{Nombre: "Zelda"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Update(context.Background(), 1, domain.Videojuego{Nombre: "Metroid"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestService_StorageFailureIsWrapped(t *testing.T) {
	boom := errors.New("disk I/O error")
	svc := NewService(&raceRepo{saveErr: boom})

	_, err := svc.Create(context.Background(), domain.Videojuego{Nombre: "Zelda"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDuplicateName)
}
