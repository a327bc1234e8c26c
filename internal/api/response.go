package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reportpress/internal/report"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// ValidationFailed returns the structured field errors verbatim; no
// partial render is attempted once any field is rejected.
func ValidationFailed(c *gin.Context, issues []report.FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "issues": issues})
}

// UpstreamFailed reports a collaborator failure with the upstream message,
// outside the document-rendering error taxonomy.
func UpstreamFailed(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service failed", "detail": err.Error()})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }
