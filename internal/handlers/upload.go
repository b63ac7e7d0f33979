package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize caps image uploads at 5 MB.
const maxUploadSize = 5 << 20

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedUploadEntities = map[string]bool{
	"books":      true,
	"members":    true,
	"librarians": true,
}

// UploadHandler stores entity images on local disk under a per-entity folder
// with a generated filename, and returns the public path for the image_url
// field of the owning record.
type UploadHandler struct {
	uploadDir string
}

func NewUploadHandler(uploadDir string) *UploadHandler {
	return &UploadHandler{
		uploadDir: uploadDir,
	}
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	entity := c.Param("entity")
	if !allowedUploadEntities[entity] {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown upload target")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file uploaded or invalid file")
		return
	}
	defer file.Close()

	ext, err := validateImageFile(header)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	dir := filepath.Join(h.uploadDir, entity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create upload directory")
		return
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create destination file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadSize)); err != nil {
		os.Remove(path)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save uploaded file")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"image_url": fmt.Sprintf("/uploads/%s/%s", entity, filename),
	}, "Image uploaded")
}

// removeUploadedImage deletes a previously stored upload given its public
// path. Anything outside the upload tree is ignored.
func removeUploadedImage(uploadDir, imageURL string) {
	rel, ok := strings.CutPrefix(imageURL, "/uploads/")
	if !ok {
		return
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	os.Remove(filepath.Join(uploadDir, rel))
}

// validateImageFile checks size and extension and returns the normalized
// extension.
func validateImageFile(header *multipart.FileHeader) (string, error) {
	if header.Size > maxUploadSize {
		return "", errors.New("file exceeds the 5 MB limit")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return "", errors.New("only .jpg, .jpeg, .png and .webp files are allowed")
	}

	return ext, nil
}
