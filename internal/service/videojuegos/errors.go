package videojuegos

import "errors"

// Service errors carry the message shown to API clients.
var (
	// ErrDuplicateName is returned when another videogame already holds the name
	ErrDuplicateName = errors.New("Ya existe un videojuego con el mismo nombre")

	// ErrNotFound is returned when no videogame exists for an ID
	ErrNotFound = errors.New("Videojuego no encontrado")

	// ErrBlankName is returned when nombre is empty or whitespace
	ErrBlankName = errors.New("El nombre no puede estar en blanco")
)
