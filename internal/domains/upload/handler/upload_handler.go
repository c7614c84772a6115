package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"connect-digitals-backend/internal/domains/upload"
	"connect-digitals-backend/internal/shared/response"
	"connect-digitals-backend/pkg/logger"
)

// UploadHandler handles multipart image uploads.
type UploadHandler struct {
	service upload.Service
}

func NewUploadHandler(service upload.Service) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadImage handles POST /api/upload/image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	data, ok := h.readFile(c, "image")
	if !ok {
		return
	}

	result, err := h.service.UploadPostImage(c.Request.Context(), data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Image uploaded", result)
}

// UploadImages handles POST /api/upload/images
func (h *UploadHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "Invalid multipart form")
		return
	}

	fileHeaders := form.File["images"]
	if len(fileHeaders) == 0 {
		response.BadRequest(c, "No files provided")
		return
	}

	files := make([][]byte, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readFileHeader(fh)
		if err != nil {
			response.BadRequest(c, "Cannot read uploaded file")
			return
		}
		files = append(files, data)
	}

	results, err := h.service.UploadPostImages(c.Request.Context(), files)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Images uploaded", results)
}

// UploadAvatar handles POST /api/upload/avatar
func (h *UploadHandler) UploadAvatar(c *gin.Context) {
	data, ok := h.readFile(c, "avatar")
	if !ok {
		return
	}

	result, err := h.service.UploadAvatar(c.Request.Context(), data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Avatar uploaded", result)
}

// DeleteImage handles DELETE /api/upload/image/:id
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	publicID := c.Param("id")
	if publicID == "" {
		response.BadRequest(c, "Missing image ID")
		return
	}

	if err := h.service.DeletePostImage(c.Request.Context(), publicID); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Image deleted", nil)
}

// Stats handles GET /api/upload/stats
func (h *UploadHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

func (h *UploadHandler) readFile(c *gin.Context, field string) ([]byte, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, "No file provided")
		return nil, false
	}

	data, err := readFileHeader(fh)
	if err != nil {
		response.BadRequest(c, "Cannot read uploaded file")
		return nil, false
	}

	return data, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (h *UploadHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, upload.ErrInvalidImage),
		errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrTooManyFiles):
		response.BadRequest(c, err.Error())

	case errors.Is(err, upload.ErrImageNotFound):
		response.NotFound(c, err.Error())

	default:
		logger.Error("upload handler: unexpected error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
