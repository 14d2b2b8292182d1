package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// ErrJobNotFound is returned by JobStatus for unknown or expired jobs
var ErrJobNotFound = errors.New("job not found")

// JobStatus is the state of an enqueued analysis job
type JobStatus struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Queue       string          `json:"queue"`
	State       string          `json:"state"`
	Retried     int             `json:"retried"`
	MaxRetry    int             `json:"max_retry"`
	LastError   string          `json:"last_error,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Client wraps the Asynq client for enqueueing jobs and the inspector for
// reading them back
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// ClientConfig contains configuration for the queue client
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	return &Client{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
	}
}

// EnqueueArticle enqueues an article analysis job and returns its ID
func (c *Client) EnqueueArticle(ctx context.Context, jobID, title string, detailed bool) (string, error) {
	task, err := NewAnalyzeArticleTask(ctx, jobID, title, detailed)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue article analysis task: %w", err)
	}
	return info.ID, nil
}

// EnqueueText enqueues a free text analysis job and returns its ID
func (c *Client) EnqueueText(ctx context.Context, jobID, text string, detailed bool) (string, error) {
	task, err := NewAnalyzeTextTask(ctx, jobID, text, detailed)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue text analysis task: %w", err)
	}
	return info.ID, nil
}

// JobStatus looks a job up in every analysis queue
func (c *Client) JobStatus(id string) (*JobStatus, error) {
	for queue := range queuePriorities {
		info, err := c.inspector.GetTaskInfo(queue, id)
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to inspect job %s: %w", id, err)
		}
		return jobStatusFromInfo(info), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

func jobStatusFromInfo(info *asynq.TaskInfo) *JobStatus {
	status := &JobStatus{
		ID:        info.ID,
		Type:      info.Type,
		Queue:     info.Queue,
		State:     info.State.String(),
		Retried:   info.Retried,
		MaxRetry:  info.MaxRetry,
		LastError: info.LastErr,
	}
	if !info.CompletedAt.IsZero() {
		completed := info.CompletedAt
		status.CompletedAt = &completed
	}
	if len(info.Result) > 0 && json.Valid(info.Result) {
		status.Result = json.RawMessage(info.Result)
	}
	return status
}

// Close closes the client and inspector connections
func (c *Client) Close() error {
	return errors.Join(c.client.Close(), c.inspector.Close())
}
