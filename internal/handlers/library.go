package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

// LibraryHandler exposes the library directory. Listing, detail and the
// inventory rollup are public; mutations are admin-only via routing.
type LibraryHandler struct {
	libraryService *services.LibraryService
}

func NewLibraryHandler(libraryService *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{
		libraryService: libraryService,
	}
}

func (h *LibraryHandler) CreateLibrary(c *gin.Context) {
	var req models.CreateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	library, err := h.libraryService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, library, "Library created")
}

func (h *LibraryHandler) ListLibraries(c *gin.Context) {
	libraries, err := h.libraryService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, libraries, "")
}

func (h *LibraryHandler) GetLibrary(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	library, err := h.libraryService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, library, "")
}

func (h *LibraryHandler) GetLibraryInventory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	inventory, err := h.libraryService.Inventory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, inventory, "")
}

func (h *LibraryHandler) UpdateLibrary(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	library, err := h.libraryService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, library, "Library updated")
}

func (h *LibraryHandler) DeleteLibrary(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.libraryService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Library deleted")
}
