package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/ingestion"
	"github.com/poiesic/docsift/search"
	"github.com/poiesic/docsift/storage"
)

// Workflow names as persisted in execution records.
const (
	WorkflowDocumentProcessing = "document_processing"
	WorkflowSearchAndAnalyze   = "search_and_analyze"
)

// defaultWaitTimeout bounds how long RunDocumentProcessing waits for the
// ingestion pipeline to settle a document.
const defaultWaitTimeout = 2 * time.Minute

// ProcessingConfig controls the optional stages of a document processing
// workflow.
type ProcessingConfig struct {
	// Analyze runs AI analysis over the extracted content.
	Analyze bool

	// Notify dispatches a notification action once processing finishes.
	Notify bool

	// WaitTimeout bounds the wait for the document to reach a terminal
	// status. Defaults to two minutes.
	WaitTimeout time.Duration
}

// DefaultProcessingConfig enables analysis without notifications.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{Analyze: true, WaitTimeout: defaultWaitTimeout}
}

// SearchAnalysisConfig controls a search-and-analyze workflow.
type SearchAnalysisConfig struct {
	// Options are passed through to the search engine.
	Options search.Options

	// Notify dispatches a notification action with the analysis digest.
	Notify bool
}

// Orchestrator runs multi-stage workflows over the ingestion pipeline and
// the search engine, recording each execution and the external actions it
// triggers.
type Orchestrator struct {
	pipeline   *ingestion.Pipeline
	engine     *search.Engine
	documents  storage.DocumentRepository
	workflows  storage.WorkflowRepository
	analyzer   ai.Analyzer
	dispatcher *ActionDispatcher
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a workflow orchestrator.
func NewOrchestrator(
	pipeline *ingestion.Pipeline,
	engine *search.Engine,
	documents storage.DocumentRepository,
	workflows storage.WorkflowRepository,
	analyzer ai.Analyzer,
	dispatcher *ActionDispatcher,
	opts ...Option,
) (*Orchestrator, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if workflows == nil {
		return nil, ErrWorkflowRepositoryRequired
	}
	if analyzer == nil {
		return nil, ErrAnalyzerRequired
	}
	if dispatcher == nil {
		return nil, ErrDispatcherRequired
	}

	o := &Orchestrator{
		pipeline:   pipeline,
		engine:     engine,
		documents:  documents,
		workflows:  workflows,
		analyzer:   analyzer,
		dispatcher: dispatcher,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// RunDocumentProcessing ingests an upload, waits for processing to settle,
// optionally analyzes the content, and optionally dispatches a notification.
// The returned execution record carries the outcome; on failure it is
// returned alongside the error.
func (o *Orchestrator) RunDocumentProcessing(ctx context.Context, filename string, data []byte, cfg ProcessingConfig) (*core.WorkflowExecution, error) {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}

	wf, err := o.start(ctx, WorkflowDocumentProcessing)
	if err != nil {
		return nil, err
	}

	doc, _, err := o.pipeline.Ingest(ctx, filename, data)
	if err != nil {
		return o.fail(ctx, wf, err), err
	}
	wf.DocumentId = doc.Id

	status, err := o.pipeline.WaitForDocument(ctx, doc.Id, cfg.WaitTimeout)
	if err != nil {
		return o.fail(ctx, wf, err), err
	}
	if status == core.StatusFailed {
		err := fmt.Errorf("document %d processing failed", doc.Id)
		return o.fail(ctx, wf, err), err
	}

	output := map[string]string{
		"document_id": strconv.FormatUint(uint64(doc.Id), 10),
		"status":      string(status),
	}

	if cfg.Analyze && doc.HasContent {
		stored, err := o.documents.GetDocument(ctx, doc.Id)
		if err != nil {
			return o.fail(ctx, wf, err), err
		}
		analysis, err := o.analyzer.AnalyzeDocument(ctx, stored.Content)
		if err != nil {
			return o.fail(ctx, wf, err), err
		}
		output["summary"] = analysis.Summary
		output["document_type"] = analysis.DocumentKind
		output["topics"] = strings.Join(analysis.Topics, ", ")
	}

	if cfg.Notify {
		message := fmt.Sprintf("New document processed: %s", filename)
		if summary := output["summary"]; summary != "" {
			message = fmt.Sprintf("New document processed: %s\n\nSummary: %s", filename, summary)
		}
		o.notify(ctx, wf.Id, map[string]string{"message": message})
	}

	return o.complete(ctx, wf, output), nil
}

// RunSearchAnalysis executes a search, extracts insights from the results,
// and optionally dispatches a notification with the digest.
func (o *Orchestrator) RunSearchAnalysis(ctx context.Context, query string, mode core.SearchMode, cfg SearchAnalysisConfig) (*core.WorkflowExecution, error) {
	wf, err := o.start(ctx, WorkflowSearchAndAnalyze)
	if err != nil {
		return nil, err
	}

	results, err := o.engine.Search(ctx, query, mode, cfg.Options)
	if err != nil {
		return o.fail(ctx, wf, err), err
	}

	output := map[string]string{
		"query":        query,
		"mode":         string(mode),
		"result_count": strconv.Itoa(len(results)),
	}

	if len(results) > 0 {
		snippets := make([]ai.ScoredSnippet, len(results))
		for i, r := range results {
			score := r.Similarity
			if mode == core.ModeFullText {
				score = r.Relevance
			}
			snippets[i] = ai.ScoredSnippet{Score: score, Content: r.Content}
		}

		insights, err := o.analyzer.ExtractInsights(ctx, snippets)
		if err != nil {
			return o.fail(ctx, wf, err), err
		}
		output["patterns"] = strings.Join(insights.Patterns, "; ")
		output["assessment"] = insights.Assessment
		output["takeaways"] = strings.Join(insights.Takeaways, "; ")
	}

	if cfg.Notify {
		message := fmt.Sprintf("Search analysis for %q returned %d results", query, len(results))
		o.notify(ctx, wf.Id, map[string]string{"message": message})
	}

	return o.complete(ctx, wf, output), nil
}

// start records a running execution.
func (o *Orchestrator) start(ctx context.Context, name string) (*core.WorkflowExecution, error) {
	return o.workflows.AddWorkflow(ctx, &core.WorkflowExecution{
		Name:   name,
		Status: core.WorkflowRunning,
	})
}

// notify dispatches a notification action. Dispatch failure never fails
// the workflow.
func (o *Orchestrator) notify(ctx context.Context, workflowId string, payload map[string]string) {
	if _, err := o.dispatcher.Dispatch(ctx, workflowId, core.ActionSlackNotification, payload); err != nil {
		o.logger.Warn("error dispatching notification", "workflow", workflowId, "err", err)
	}
}

// complete records a successful execution with its output.
func (o *Orchestrator) complete(ctx context.Context, wf *core.WorkflowExecution, output map[string]string) *core.WorkflowExecution {
	wf.Status = core.WorkflowCompleted
	wf.Output = output
	return o.record(ctx, wf)
}

// fail records a failed execution with its error.
func (o *Orchestrator) fail(ctx context.Context, wf *core.WorkflowExecution, cause error) *core.WorkflowExecution {
	wf.Status = core.WorkflowFailed
	wf.Error = cause.Error()
	return o.record(ctx, wf)
}

func (o *Orchestrator) record(ctx context.Context, wf *core.WorkflowExecution) *core.WorkflowExecution {
	wf.CompletedAt = time.Now().UTC()
	wf.DurationMS = wf.CompletedAt.Sub(wf.StartedAt).Milliseconds()

	updated, err := o.workflows.UpdateWorkflow(ctx, wf)
	if err != nil {
		o.logger.Error("error recording workflow outcome", "workflow", wf.Id, "err", err)
		return wf
	}
	return updated
}
