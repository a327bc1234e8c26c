package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"reportpress/internal/assets"
	"reportpress/internal/errcode"
	"reportpress/internal/jobs"
	"reportpress/internal/pdf"
	"reportpress/internal/report"
	"reportpress/internal/storage"
	"reportpress/internal/tasks"
)

// RenderTaskHandler consumes queued PDF renders: it re-validates the
// carried document, hydrates assets, renders through the engine and
// uploads the result, then publishes the job transition.
type RenderTaskHandler struct {
	storage  *storage.Client
	jobs     *jobs.Store
	hydrator *assets.Hydrator
	logger   *slog.Logger
}

// NewRenderTaskHandler creates the task handler.
func NewRenderTaskHandler(storageClient *storage.Client, jobStore *jobs.Store, hydrator *assets.Hydrator, logger *slog.Logger) *RenderTaskHandler {
	return &RenderTaskHandler{
		storage:  storageClient,
		jobs:     jobStore,
		hydrator: hydrator,
		logger:   logger,
	}
}

// ProcessTask implements asynq.Handler.
func (h *RenderTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	var payload tasks.RenderPDFPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("job_id", payload.JobID),
	)
	log.Info("starting queued pdf render")

	job, err := h.jobs.Get(ctx, payload.JobID)
	if err != nil {
		if err == jobs.ErrNotFound {
			log.Warn("job state missing, skipping task")
			return nil
		}
		log.Error("load job failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAttempt(ctx) {
			return
		}
		job.Status = jobs.StatusFailed
		job.ErrorCode = errcode.SystemError
		job.ErrorMessage = strings.TrimSpace(retErr.Error())
		if err := h.jobs.Put(ctx, job); err != nil {
			log.Error("store failed job state", slog.Any("error", err))
		}
		if err := h.jobs.Publish(ctx, job); err != nil {
			log.Error("publish failed job event", slog.Any("error", err))
		}
	}()

	job.Status = jobs.StatusProcessing
	if err := h.jobs.Put(ctx, job); err != nil {
		log.Error("store processing job state", slog.Any("error", err))
		return err
	}

	// payloads come from the API pre-validated; a decode failure here
	// means the task itself is corrupt, which retrying will not fix
	doc, issues := report.Parse(payload.Report)
	if issues != nil {
		job.Status = jobs.StatusFailed
		job.ErrorCode = errcode.SystemError
		job.ErrorMessage = "task carried an invalid document"
		if err := h.jobs.Put(ctx, job); err != nil {
			log.Error("store failed job state", slog.Any("error", err))
		}
		if err := h.jobs.Publish(ctx, job); err != nil {
			log.Error("publish failed job event", slog.Any("error", err))
		}
		return nil
	}

	missing := h.hydrator.Hydrate(ctx, doc)

	html := report.HTMLShell(report.RenderHead(doc)+report.PrintOnlyCSS, report.RenderBody(doc))
	pdfBytes, err := pdf.Generate(ctx, html, pdf.Options{
		Size:        doc.Configs.Page.Size,
		Orientation: doc.Configs.Page.Orientation,
		HeaderHTML:  report.HeaderOverlay(doc),
		FooterHTML:  report.FooterOverlay(doc),
	})
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		return err
	}

	objectKey := fmt.Sprintf("generated-reports/%s.pdf", job.ID)
	if _, err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf failed", slog.Any("error", err))
		return err
	}

	job.Status = jobs.StatusCompleted
	job.ObjectKey = objectKey
	job.Filename = report.PDFFilename(doc) + ".pdf"
	job.ErrorCode = errcode.OK
	job.ErrorMessage = ""
	if len(missing) > 0 {
		job.ErrorCode = errcode.ResourceMissing
		job.ErrorMessage = "some image references could not be resolved and were skipped"
		job.MissingRefs = missing
		log.Warn("pdf generated with missing assets",
			slog.Int("missing_count", len(missing)),
			slog.Any("missing_refs", missing),
		)
	}
	if err := h.jobs.Put(ctx, job); err != nil {
		log.Error("store completed job state", slog.Any("error", err))
		return err
	}
	if err := h.jobs.Publish(ctx, job); err != nil {
		log.Error("publish completed job event", slog.Any("error", err))
		return err
	}

	log.Info("queued pdf render completed", slog.String("object_key", objectKey))
	return nil
}

// isFinalAttempt reports whether asynq will not retry this task again.
func isFinalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
