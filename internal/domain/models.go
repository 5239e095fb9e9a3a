package domain

// Videojuego represents a videogame in the catalogue
type Videojuego struct {
	ID       int64    // Unique identifier, assigned on creation
	Nombre   string   // Game name, unique across the catalogue
	Compania *string  // Developer company (optional)
	Nota     *float64 // Rating (optional)
}
