package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"reportpress/internal/api/middleware"
	"reportpress/internal/assets"
	"reportpress/internal/errcode"
	"reportpress/internal/jobs"
	"reportpress/internal/pdf"
	"reportpress/internal/report"
	"reportpress/internal/tasks"
)

// RenderHandler serves the synchronous render paths and enqueues the
// asynchronous one.
type RenderHandler struct {
	Hydrator    *assets.Hydrator
	AsynqClient *asynq.Client
	Jobs        *jobs.Store
}

// NewRenderHandler returns a RenderHandler.
func NewRenderHandler(hydrator *assets.Hydrator, asynqClient *asynq.Client, jobStore *jobs.Store) *RenderHandler {
	return &RenderHandler{
		Hydrator:    hydrator,
		AsynqClient: asynqClient,
		Jobs:        jobStore,
	}
}

// parseReport reads the body and validates the document. Responses for
// both failure modes are written here; a nil return means the request is
// already answered.
func (h *RenderHandler) parseReport(c *gin.Context) (*report.Report, []byte) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "unable to read request body")
		return nil, nil
	}
	doc, issues := report.Parse(body)
	if issues != nil {
		ValidationFailed(c, issues)
		return nil, nil
	}
	return doc, body
}

// Preview renders the single-flow HTML preview.
func (h *RenderHandler) Preview(c *gin.Context) {
	doc, _ := h.parseReport(c)
	if doc == nil {
		return
	}

	log := middleware.LoggerFromContext(c)
	if missing := h.Hydrator.Hydrate(c.Request.Context(), doc); len(missing) > 0 {
		log.Warn("preview rendered with missing assets", slog.Any("missing_refs", missing))
	}

	html := report.HTMLShell(report.RenderHead(doc), report.RenderBody(doc))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// RenderPDF renders the paginated artifact inline. The print path layers
// print-only CSS over the same head fragment and hands the overlay
// fragments to the engine; the in-document fixed overlays are suppressed
// so they do not double with the engine's repeating ones.
func (h *RenderHandler) RenderPDF(c *gin.Context) {
	doc, _ := h.parseReport(c)
	if doc == nil {
		return
	}

	log := middleware.LoggerFromContext(c)
	if missing := h.Hydrator.Hydrate(c.Request.Context(), doc); len(missing) > 0 {
		log.Warn("pdf rendered with missing assets", slog.Any("missing_refs", missing))
	}

	html := report.HTMLShell(report.RenderHead(doc)+report.PrintOnlyCSS, report.RenderBody(doc))
	pdfBytes, err := pdf.Generate(c.Request.Context(), html, pdf.Options{
		Size:        doc.Configs.Page.Size,
		Orientation: doc.Configs.Page.Orientation,
		HeaderHTML:  report.HeaderOverlay(doc),
		FooterHTML:  report.FooterOverlay(doc),
	})
	if err != nil {
		log.Error("pdf render failed", slog.Any("error", err))
		Internal(c, "pdf render failed")
		return
	}

	filename := report.PDFFilename(doc) + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// EnqueuePDF validates the document, records a queued job and hands the
// payload to the worker queue. The response carries the job ID to poll.
func (h *RenderHandler) EnqueuePDF(c *gin.Context) {
	doc, body := h.parseReport(c)
	if doc == nil {
		return
	}

	log := middleware.LoggerFromContext(c)
	correlationID := middleware.GetCorrelationID(c)

	job := &jobs.Job{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Status:        jobs.StatusQueued,
		ErrorCode:     errcode.OK,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Jobs.Put(c.Request.Context(), job); err != nil {
		log.Error("store queued job failed", slog.Any("error", err))
		Internal(c, "failed to queue render job")
		return
	}

	task, err := tasks.NewRenderPDFTask(job.ID, correlationID, json.RawMessage(body))
	if err != nil {
		log.Error("build render task failed", slog.Any("error", err))
		Internal(c, "failed to queue render job")
		return
	}
	if _, err := h.AsynqClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Error("enqueue render task failed", slog.Any("error", err))
		Internal(c, "failed to queue render job")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"jobId": job.ID, "status": job.Status})
}
