package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Job statuses as seen by pollers.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrNotFound means no job exists under the requested ID (or it expired).
var ErrNotFound = errors.New("job not found")

// Job is the ephemeral state of one asynchronous render. Jobs live only in
// redis with a TTL; the service keeps no durable records.
type Job struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Status        string    `json:"status"`
	ObjectKey     string    `json:"object_key,omitempty"`
	Filename      string    `json:"filename,omitempty"`
	ErrorCode     int       `json:"error_code"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	MissingRefs   []string  `json:"missing_refs,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	jobKeyPrefix  = "renderjob:"
	notifyChannel = "renderjob:events"
	jobTTL        = 24 * time.Hour
)

// Store keeps job state in redis and publishes status transitions on a
// pub/sub channel for interested listeners.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Put writes the job state, stamping UpdatedAt.
func (s *Store) Put(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads a job by ID.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// Publish announces a status transition. Listeners are best-effort; a
// publish failure does not fail the job.
func (s *Store) Publish(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job event %s: %w", job.ID, err)
	}
	if err := s.client.Publish(ctx, notifyChannel, data).Err(); err != nil {
		return fmt.Errorf("publish job event %s: %w", job.ID, err)
	}
	return nil
}
