package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mediarelay/internal/config"
	"mediarelay/internal/domain"
	"mediarelay/internal/service"
)

// FilesField is the multipart field carrying uploaded parts.
const FilesField = "files"

// DeleteRequest is the body of POST /delete.
type DeleteRequest struct {
	URL string `json:"url" example:"https://res.cloudinary.com/demo/image/upload/v1712345678/uploads/cat.jpg"`
}

// RelayHandler handles the upload and delete relay endpoints.
type RelayHandler struct {
	relay      service.RelayService
	maxMemory  int64
	maxRequest int64
	log        *zap.Logger
}

// NewRelayHandler creates a new RelayHandler. Parts larger than cfg.MaxMemoryMB are
// spooled to disk by the multipart reader; request bodies over cfg.MaxRequestBytes are
// cut off while they are read.
func NewRelayHandler(relay service.RelayService, cfg *config.UploadConfig, log *zap.Logger) *RelayHandler {
	maxMemory := cfg.MaxMemoryMB << 20
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	return &RelayHandler{
		relay:      relay,
		maxMemory:  maxMemory,
		maxRequest: cfg.MaxRequestBytes(),
		log:        log,
	}
}

// Upload handles POST /upload
// @Summary Upload files
// @Description Stage one or more files and forward them to the media store. The response lists one reference per file, in input order.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload (repeat the field for several files)"
// @Success 200 {array} domain.StoredAsset "Stored asset references"
// @Failure 400 {object} ErrorResponseBody "No files uploaded"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Router /upload [post]
func (h *RelayHandler) Upload(c *gin.Context) {
	if h.maxRequest > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequest)
	}
	if err := c.Request.ParseMultipartForm(h.maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			HandleError(c, h.log, domain.ErrNoFilesProvided)
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, h.log, fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrFileTooLarge, tooLarge.Limit))
			return
		}
		HandleError(c, h.log, domain.NewStoreError(domain.ErrUploadFailed, err))
		return
	}
	form := c.Request.MultipartForm
	defer func() { _ = form.RemoveAll() }()

	assets, err := h.relay.Upload(c.Request.Context(), form.File[FilesField])
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, assets)
}

// Delete handles POST /delete
// @Summary Delete a stored asset
// @Description Derive the store identifier from a previously issued URL and destroy the asset. The store's result is returned unchanged.
// @Tags media
// @Accept json
// @Produce json
// @Param request body DeleteRequest true "Asset URL"
// @Success 200 {object} domain.DestroyResult "Store destroy result"
// @Failure 400 {object} ErrorResponseBody "No URL provided"
// @Failure 500 {object} ErrorResponseBody "Delete failed"
// @Router /delete [post]
func (h *RelayHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, h.log, domain.ErrNoURLProvided)
		return
	}

	result, err := h.relay.Delete(c.Request.Context(), req.URL)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
