package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

// BookHandler exposes the shared catalog. Search and detail are public;
// create, update and delete sit behind the admin routes.
type BookHandler struct {
	bookService *services.BookService
	uploadDir   string
}

func NewBookHandler(bookService *services.BookService, uploadDir string) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		uploadDir:   uploadDir,
	}
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, book, "Book created")
}

func (h *BookHandler) SearchBooks(c *gin.Context) {
	var req models.BookSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.bookService.Search(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result, "")
}

func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	book, err := h.bookService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, book, "")
}

func (h *BookHandler) ListCategories(c *gin.Context) {
	categories, err := h.bookService.Categories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, categories, "")
}

func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// A replaced cover image leaves its old file behind; remember it so it
	// can be removed once the update lands.
	var oldImage string
	if req.ImageURL != nil {
		if current, err := h.bookService.Get(c.Request.Context(), id); err == nil && current.ImageURL != nil {
			oldImage = *current.ImageURL
		}
	}

	book, err := h.bookService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if oldImage != "" && (book.ImageURL == nil || *book.ImageURL != oldImage) {
		removeUploadedImage(h.uploadDir, oldImage)
	}

	respondSuccess(c, http.StatusOK, book, "Book updated")
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var oldImage string
	if current, err := h.bookService.Get(c.Request.Context(), id); err == nil && current.ImageURL != nil {
		oldImage = *current.ImageURL
	}

	if err := h.bookService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	if oldImage != "" {
		removeUploadedImage(h.uploadDir, oldImage)
	}

	respondSuccess(c, http.StatusOK, nil, "Book deleted")
}

// paramID parses a path parameter as an int32 id, answering the request
// itself when the value is malformed.
func paramID(c *gin.Context, name string) (int32, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || value <= 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name+" parameter")
		return 0, false
	}
	return int32(value), true
}
