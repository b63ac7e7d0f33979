package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/middleware"
	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

// LibrarianHandler exposes staff management for the caller's own library.
type LibrarianHandler struct {
	librarianService *services.LibrarianService
}

func NewLibrarianHandler(librarianService *services.LibrarianService) *LibrarianHandler {
	return &LibrarianHandler{
		librarianService: librarianService,
	}
}

func (h *LibrarianHandler) CreateLibrarian(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	var req models.CreateLibrarianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	librarian, err := h.librarianService.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, librarian, "Librarian created")
}

func (h *LibrarianHandler) ListLibrarians(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	librarians, err := h.librarianService.List(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, librarians, "")
}

func (h *LibrarianHandler) GetLibrarian(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	librarian, err := h.librarianService.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, librarian, "")
}

func (h *LibrarianHandler) UpdateLibrarian(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateLibrarianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	librarian, err := h.librarianService.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, librarian, "Librarian updated")
}

func (h *LibrarianHandler) DeleteLibrarian(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.librarianService.Delete(c.Request.Context(), caller, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Librarian deleted")
}
