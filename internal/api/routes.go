package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"reportpress/internal/assets"
	"reportpress/internal/extract"
	"reportpress/internal/jobs"
	"reportpress/internal/storage"
)

// RegisterRoutes registers the /v1 API surface.
func RegisterRoutes(
	router *gin.Engine,
	hydrator *assets.Hydrator,
	asynqClient *asynq.Client,
	jobStore *jobs.Store,
	storageClient *storage.Client,
	extractor *extract.FieldExtractor,
	clamdAddr string,
	maxBodyBytes int64,
) {
	renderHandler := NewRenderHandler(hydrator, asynqClient, jobStore)
	jobsHandler := NewJobsHandler(jobStore, storageClient)
	uploadHandler := NewUploadHandler(storageClient, clamdAddr)

	v1 := router.Group("/v1")
	v1.Use(bodyLimit(maxBodyBytes))
	{
		v1.POST("/render", renderHandler.Preview)
		v1.POST("/render.pdf", renderHandler.RenderPDF)
		v1.POST("/render.pdf/async", renderHandler.EnqueuePDF)
		v1.GET("/jobs/:id", jobsHandler.Get)
		v1.GET("/jobs/:id/download", jobsHandler.Download)

		extractGroup := v1.Group("/extract")
		{
			if extractor != nil {
				extractHandler := NewExtractHandler(extractor)
				extractGroup.POST("/fields", extractHandler.Fields)
				extractGroup.POST("/selective", extractHandler.Selective)
			} else {
				extractGroup.POST("/fields", extractionUnavailable)
				extractGroup.POST("/selective", extractionUnavailable)
			}
		}

		assetGroup := v1.Group("/assets")
		{
			assetGroup.POST("/upload", uploadHandler.Upload)
		}
	}
}

// bodyLimit caps request body size before any handler reads it.
func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func extractionUnavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, "field extraction is not configured")
}
