package documents

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/liliang-cn/doclens/internal/api/middleware"
	"github.com/liliang-cn/doclens/internal/domain"
	"github.com/liliang-cn/doclens/internal/service"
)

// Limits bounds list paging parameters
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// Handler handles document API requests
type Handler struct {
	svc    *service.DocumentService
	logger *zap.Logger
	limits Limits
}

// NewHandler creates a new documents handler
func NewHandler(svc *service.DocumentService, logger *zap.Logger, limits Limits) *Handler {
	if limits.DefaultLimit < 1 {
		limits.DefaultLimit = 10
	}
	if limits.MaxLimit < limits.DefaultLimit {
		limits.MaxLimit = limits.DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger, limits: limits}
}

// RegisterRoutes registers document routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	documents := r.Group("/documents")
	{
		documents.GET("", h.ListDocuments)
		documents.POST("", h.UploadDocument)
		documents.GET("/:id", h.GetDocument)
		documents.GET("/:id/details", h.GetDocumentDetails)
		documents.GET("/:id/sections/:section", h.GetSection)
	}
}

func (h *Handler) ListDocuments(c *gin.Context) {
	page, ok := positiveQuery(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := boundedQuery(c, "limit", h.limits.DefaultLimit, h.limits.MaxLimit)
	if !ok {
		return
	}

	result, err := h.svc.ListDocuments(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err, "failed to list documents")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.svc.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to get document")
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) GetDocumentDetails(c *gin.Context) {
	page, ok := positiveQuery(c, "page", 1)
	if !ok {
		return
	}

	result, err := h.svc.GetDocumentDetails(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		h.respondError(c, err, "failed to get document details")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetSection(c *gin.Context) {
	section, err := domain.ParseSection(c.Param("section"))
	if err != nil {
		h.respondError(c, err, "invalid section")
		return
	}
	page, ok := positiveQuery(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := boundedQuery(c, "page_size", h.svc.SectionPageSize(), h.limits.MaxLimit)
	if !ok {
		return
	}

	result, err := h.svc.GetSection(c.Request.Context(), c.Param("id"), section, page, pageSize)
	if err != nil {
		h.respondError(c, err, "failed to get section")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	doc, err := h.svc.Upload(c.Request.Context(), domain.FileDescriptor{
		Name: file.Filename,
		Size: file.Size,
		Type: file.Header.Get("Content-Type"),
	})
	if err != nil {
		h.respondError(c, err, "failed to upload document")
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// positiveQuery reads an optional positive integer query parameter and
// writes a 400 when it is malformed.
func positiveQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be a positive integer"})
		return 0, false
	}
	return n, true
}

// boundedQuery is positiveQuery with an upper bound.
func boundedQuery(c *gin.Context, key string, def, limit int) (int, bool) {
	n, ok := positiveQuery(c, key, def)
	if !ok {
		return 0, false
	}
	if n > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be at most %d", key, limit)})
		return 0, false
	}
	return n, true
}

func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	requestID := middleware.GetRequestID(c)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error(), "request_id": requestID})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID})
	case errors.Is(err, domain.ErrUploadFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      domain.ErrUploadFailed.Error(),
			"retryable":  true,
			"request_id": requestID,
		})
	default:
		h.logger.Error(msg, zap.String("request_id", requestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "request_id": requestID})
	}
}
