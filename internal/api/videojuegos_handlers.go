package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/ludoteca/internal/domain"
	"github.com/jbweber/homelab/ludoteca/internal/service/videojuegos"
)

// Client-facing messages
const (
	msgDeleted     = "Videojuego eliminado con éxito"
	msgInvalidID   = "ID de videojuego no válido"
	msgInvalidJSON = "JSON no válido"
	msgInternal    = "Error interno del servidor"
)

// maxBodyBytes caps request bodies on create and update
const maxBodyBytes = 1 << 20

// VideojuegosService defines the service operations used by the videogame handlers
type VideojuegosService interface {
	Create(ctx context.Context, v domain.Videojuego) (domain.Videojuego, error)
	Update(ctx context.Context, id int64, v domain.Videojuego) (domain.Videojuego, error)
	GetByID(ctx context.Context, id int64) (domain.Videojuego, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]domain.Videojuego, error)
	ListByName(ctx context.Context, fragment string) ([]domain.Videojuego, error)
}

// Videojuegos groups videogame handlers for testability
type Videojuegos struct {
	svc VideojuegosService
}

func NewVideojuegos(svc VideojuegosService) *Videojuegos {
	return &Videojuegos{svc: svc}
}

// VideojuegoRequest is the body accepted by create and update. The id field
// is accepted for symmetry with responses and ignored.
type VideojuegoRequest struct {
	ID       *int64   `json:"id"`
	Nombre   string   `json:"nombre"`
	Compania *string  `json:"compania"`
	Nota     *float64 `json:"nota"`
}

// VideojuegoResponse is the JSON representation of a videogame
type VideojuegoResponse struct {
	ID       int64    `json:"id"`
	Nombre   string   `json:"nombre"`
	Compania *string  `json:"compania"`
	Nota     *float64 `json:"nota"`
}

func toResponse(v domain.Videojuego) VideojuegoResponse {
	return VideojuegoResponse{
		ID:       v.ID,
		Nombre:   v.Nombre,
		Compania: v.Compania,
		Nota:     v.Nota,
	}
}

func toResponses(list []domain.Videojuego) []VideojuegoResponse {
	resp := make([]VideojuegoResponse, len(list))
	for i, v := range list {
		resp[i] = toResponse(v)
	}
	return resp
}

// CreateHandler handles POST /api/videojuegos.
//
// Responds 201 with the stored videogame, 400 with a plain-text message for
// invalid input or a duplicate name.
func (h *Videojuegos) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeVideojuego(w, r)
	if !ok {
		return
	}

	created, err := h.svc.Create(r.Context(), domain.Videojuego{
		Nombre:   req.Nombre,
		Compania: req.Compania,
		Nota:     req.Nota,
	})
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusCreated, toResponse(created))
	case errors.Is(err, videojuegos.ErrDuplicateName), errors.Is(err, videojuegos.ErrBlankName):
		writeText(w, r, http.StatusBadRequest, err.Error())
	default:
		internalError(w, r, "create videojuego", err)
	}
}

// DeleteHandler handles DELETE /api/videojuegos/{id}.
//
// Deletes are idempotent, so an unknown ID still answers 200.
func (h *Videojuegos) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		internalError(w, r, "delete videojuego", err)
		return
	}
	writeText(w, r, http.StatusOK, msgDeleted)
}

// UpdateHandler handles PUT /api/videojuegos/{id}.
//
// Both an unknown ID and a duplicate name answer 400.
func (h *Videojuegos) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := decodeVideojuego(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, domain.Videojuego{
		Nombre:   req.Nombre,
		Compania: req.Compania,
		Nota:     req.Nota,
	})
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, toResponse(updated))
	case errors.Is(err, videojuegos.ErrDuplicateName),
		errors.Is(err, videojuegos.ErrNotFound),
		errors.Is(err, videojuegos.ErrBlankName):
		writeText(w, r, http.StatusBadRequest, err.Error())
	default:
		internalError(w, r, "update videojuego", err)
	}
}

// GetHandler handles GET /api/videojuegos/{id}
func (h *Videojuegos) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	v, err := h.svc.GetByID(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, toResponse(v))
	case errors.Is(err, videojuegos.ErrNotFound):
		writeText(w, r, http.StatusNotFound, err.Error())
	default:
		internalError(w, r, "get videojuego", err)
	}
}

// ListHandler handles GET /api/videojuegos
func (h *Videojuegos) ListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAll(r.Context())
	if err != nil {
		internalError(w, r, "list videojuegos", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toResponses(list))
}

// SearchHandler handles GET /api/videojuegos/buscar/{nombre}
func (h *Videojuegos) SearchHandler(w http.ResponseWriter, r *http.Request) {
	fragment := chi.URLParam(r, "nombre")
	// chi matches on the escaped path when one exists
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(fragment); err == nil {
			fragment = unescaped
		}
	}

	list, err := h.svc.ListByName(r.Context(), fragment)
	if err != nil {
		internalError(w, r, "search videojuegos", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toResponses(list))
}

// parseID reads the {id} URL parameter, answering 400 when it is not an integer
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeText(w, r, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

// decodeVideojuego decodes and validates a request body, answering 400 on failure
func decodeVideojuego(w http.ResponseWriter, r *http.Request) (VideojuegoRequest, bool) {
	var req VideojuegoRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, r, http.StatusBadRequest, msgInvalidJSON)
		return req, false
	}
	if strings.TrimSpace(req.Nombre) == "" {
		writeText(w, r, http.StatusBadRequest, videojuegos.ErrBlankName.Error())
		return req, false
	}
	return req, true
}
