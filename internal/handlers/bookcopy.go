package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/middleware"
	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

// BookCopyHandler exposes the admin inventory endpoints. All of them act on
// the authenticated admin's own library.
type BookCopyHandler struct {
	bookCopyService *services.BookCopyService
}

func NewBookCopyHandler(bookCopyService *services.BookCopyService) *BookCopyHandler {
	return &BookCopyHandler{
		bookCopyService: bookCopyService,
	}
}

func (h *BookCopyHandler) CreateBookCopy(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	var req models.CreateBookCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	copies, err := h.bookCopyService.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, copies, "Book copies created")
}

func (h *BookCopyHandler) ListBookCopies(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	copies, err := h.bookCopyService.List(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, copies, "")
}

func (h *BookCopyHandler) GetBookCopy(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	copyResp, err := h.bookCopyService.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, copyResp, "")
}

func (h *BookCopyHandler) UpdateBookCopy(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	copyResp, err := h.bookCopyService.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, copyResp, "Book copy updated")
}

func (h *BookCopyHandler) DeleteBookCopy(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.bookCopyService.Delete(c.Request.Context(), caller, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Book copy deleted")
}
