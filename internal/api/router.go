package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/liliang-cn/doclens/internal/api/documents"
	"github.com/liliang-cn/doclens/internal/api/middleware"
	"github.com/liliang-cn/doclens/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
	DefaultLimit int
	MaxLimit     int
}

// SetupRouter sets up the Gin router
func SetupRouter(docService *service.DocumentService, logger *zap.Logger, cfg RouterConfig) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := documents.NewHandler(docService, logger, documents.Limits{
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
	})
	handler.RegisterRoutes(r.Group("/api"))

	return r
}
