package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants shared by the queue producer and consumer.
const (
	TypeRenderPDF = "render:pdf"
)

// RenderPDFPayload carries everything the worker needs: the job identity
// and the already-validated report payload. The document itself travels in
// the task, so the worker needs no database.
type RenderPDFPayload struct {
	JobID         string          `json:"job_id"`
	CorrelationID string          `json:"correlation_id"`
	Report        json.RawMessage `json:"report"`
}

// NewRenderPDFTask builds a render task for the queue.
func NewRenderPDFTask(jobID, correlationID string, reportPayload json.RawMessage) (*asynq.Task, error) {
	payload, err := json.Marshal(RenderPDFPayload{
		JobID:         jobID,
		CorrelationID: correlationID,
		Report:        reportPayload,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRenderPDF, payload), nil
}
