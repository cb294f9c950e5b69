package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// Sender delivers an external action to its destination. Implementations
// return a short response description for the audit record.
type Sender interface {
	Send(ctx context.Context, action *core.ExternalAction) (string, error)
}

// ActionDispatcher records and delivers external actions asynchronously.
// Delivery is fire-and-forget: no guarantee is implied, and the outcome is
// only visible through the persisted action record.
type ActionDispatcher struct {
	workflows storage.WorkflowRepository
	senders   map[core.ActionType]Sender
	pool      *ants.Pool
	logger    *slog.Logger
}

// DispatcherOption configures an ActionDispatcher.
type DispatcherOption func(*ActionDispatcher) error

// WithDispatcherPoolSize sets the delivery worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithDispatcherPoolSize(size int) DispatcherOption {
	return func(d *ActionDispatcher) error {
		if size < 1 {
			size = 1
		}

		if d.pool != nil {
			d.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		d.pool = pool
		return nil
	}
}

// WithDispatcherLogger sets a custom logger.
// Default is slog.Default().
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *ActionDispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewActionDispatcher creates a dispatcher over the given workflow
// repository. Senders are registered per action type via Register; action
// types without a sender are recorded as failed.
func NewActionDispatcher(workflows storage.WorkflowRepository, opts ...DispatcherOption) (*ActionDispatcher, error) {
	if workflows == nil {
		return nil, ErrWorkflowRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	d := &ActionDispatcher{
		workflows: workflows,
		senders:   make(map[core.ActionType]Sender),
		pool:      pool,
		logger:    slog.Default().With("component", "actions"),
	}

	for _, opt := range opts {
		if optErr := opt(d); optErr != nil {
			d.Release()
			return nil, optErr
		}
	}

	return d, nil
}

// Register wires a sender for an action type, replacing any previous one.
func (d *ActionDispatcher) Register(actionType core.ActionType, sender Sender) {
	d.senders[actionType] = sender
}

// Dispatch records a pending action and submits it for delivery. The
// returned record reflects the pending state; delivery updates it to sent
// or failed in the background.
func (d *ActionDispatcher) Dispatch(ctx context.Context, workflowId string, actionType core.ActionType, payload map[string]string) (*core.ExternalAction, error) {
	action, err := d.workflows.AddAction(ctx, &core.ExternalAction{
		WorkflowId: workflowId,
		Type:       actionType,
		Payload:    payload,
		Status:     core.ActionPending,
	})
	if err != nil {
		return nil, err
	}

	// Deliver a copy so the returned pending record is not mutated by the
	// background worker.
	queued := *action
	if submitErr := d.pool.Submit(func() { d.deliver(&queued) }); submitErr != nil {
		d.logger.Error("error submitting action delivery", "action", action.Id, "err", submitErr)
		d.deliver(&queued)
	}

	return action, nil
}

// deliver runs the sender and records the outcome. Errors are logged,
// never propagated.
func (d *ActionDispatcher) deliver(action *core.ExternalAction) {
	ctx := context.Background()

	sender, ok := d.senders[action.Type]
	if !ok {
		action.Status = core.ActionFailed
		action.Response = "no sender registered"
	} else {
		response, err := sender.Send(ctx, action)
		if err != nil {
			d.logger.Warn("action delivery failed", "action", action.Id, "type", action.Type, "err", err)
			action.Status = core.ActionFailed
			action.Response = err.Error()
		} else {
			action.Status = core.ActionSent
			action.Response = response
		}
	}
	action.ExecutedAt = time.Now().UTC()

	if _, err := d.workflows.UpdateAction(ctx, action); err != nil {
		d.logger.Error("error recording action outcome", "action", action.Id, "err", err)
	}
}

// Release releases the delivery worker pool.
// The dispatcher should not be used after calling Release.
func (d *ActionDispatcher) Release() {
	if d.pool != nil {
		d.pool.Release()
	}
}

// WebhookSender delivers actions as JSON POST requests to a fixed URL.
type WebhookSender struct {
	url    string
	client *http.Client
}

var _ Sender = (*WebhookSender)(nil)

// NewWebhookSender creates a webhook sender targeting url.
func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the action payload as JSON and returns the HTTP status.
func (s *WebhookSender) Send(ctx context.Context, action *core.ExternalAction) (string, error) {
	body, err := json.Marshal(action.Payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("webhook returned %s", resp.Status)
	}
	return resp.Status, nil
}

// LogSender records actions to the log instead of delivering them. It
// stands in for integrations that are not configured, so workflows behave
// the same with or without live credentials.
type LogSender struct {
	logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With("component", "actions")}
}

// Send logs the action and reports success.
func (s *LogSender) Send(_ context.Context, action *core.ExternalAction) (string, error) {
	s.logger.Info("external action (log only)",
		"type", action.Type, "workflow", action.WorkflowId, "payload", action.Payload)
	return "logged", nil
}
