package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	err := translateError(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, ErrDuplicate)

	err = translateError(errors.New("constraint failed: UNIQUE constraint failed: videojuegos.nombre (2067)"))
	assert.ErrorIs(t, err, ErrDuplicate)

	err = translateError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_videojuegos_nombre" (SQLSTATE 23505)`))
	assert.ErrorIs(t, err, ErrDuplicate)

	other := errors.New("disk I/O error")
	assert.Equal(t, other, translateError(other))
}

func TestContainsClause(t *testing.T) {
	assert.Equal(t, "strpos(nombre, ?) > 0", containsClause("postgres"))
	assert.Equal(t, "instr(nombre, ?) > 0", containsClause("sqlite"))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, isNotFoundError(gorm.ErrRecordNotFound))
	assert.False(t, isNotFoundError(errors.New("boom")))
}
