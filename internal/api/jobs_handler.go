package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reportpress/internal/api/middleware"
	"reportpress/internal/jobs"
	"reportpress/internal/storage"
)

const downloadLinkTTL = 15 * time.Minute

// JobsHandler exposes polling for asynchronous renders.
type JobsHandler struct {
	Jobs    *jobs.Store
	Storage *storage.Client
}

func NewJobsHandler(jobStore *jobs.Store, storageClient *storage.Client) *JobsHandler {
	return &JobsHandler{Jobs: jobStore, Storage: storageClient}
}

// Get returns the current job state. Completed jobs also carry a
// time-limited download link for the stored artifact.
func (h *JobsHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "job id is required")
		return
	}

	job, err := h.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			NotFound(c, "job not found")
			return
		}
		middleware.LoggerFromContext(c).Error("load job failed", slog.Any("error", err))
		Internal(c, "failed to load job")
		return
	}

	resp := gin.H{
		"jobId":     job.ID,
		"status":    job.Status,
		"errorCode": job.ErrorCode,
		"createdAt": job.CreatedAt,
		"updatedAt": job.UpdatedAt,
	}
	if job.ErrorMessage != "" {
		resp["errorMessage"] = job.ErrorMessage
	}
	if len(job.MissingRefs) > 0 {
		resp["missingRefs"] = job.MissingRefs
	}
	if job.Status == jobs.StatusCompleted && job.ObjectKey != "" {
		url, err := h.Storage.GeneratePresignedURL(c.Request.Context(), job.ObjectKey, downloadLinkTTL)
		if err != nil {
			middleware.LoggerFromContext(c).Error("presign download url failed", slog.Any("error", err))
			Internal(c, "failed to build download url")
			return
		}
		resp["filename"] = job.Filename
		resp["downloadUrl"] = url
	}

	c.JSON(http.StatusOK, resp)
}

// Download streams the generated PDF directly, for callers that cannot
// follow a presigned link.
func (h *JobsHandler) Download(c *gin.Context) {
	id := c.Param("id")
	log := middleware.LoggerFromContext(c)

	job, err := h.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			NotFound(c, "job not found")
			return
		}
		log.Error("load job failed", slog.Any("error", err))
		Internal(c, "failed to load job")
		return
	}
	if job.Status != jobs.StatusCompleted || job.ObjectKey == "" {
		Error(c, http.StatusConflict, "job has no artifact yet")
		return
	}

	obj, err := h.Storage.GetObject(c.Request.Context(), job.ObjectKey)
	if err != nil {
		log.Error("load artifact failed", slog.Any("error", err))
		Internal(c, "failed to load artifact")
		return
	}
	defer func() {
		_ = obj.Close()
	}()

	stat, err := obj.Stat()
	if err != nil {
		if storage.IsNoSuchKey(err) {
			NotFound(c, "artifact no longer exists")
			return
		}
		log.Error("stat artifact failed", slog.Any("error", err))
		Internal(c, "failed to load artifact")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.Filename))
	c.DataFromReader(http.StatusOK, stat.Size, "application/pdf", obj, nil)
}
