// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/docsift"
	"github.com/poiesic/docsift/ai"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/reembed"
	"github.com/poiesic/docsift/search"
	"github.com/poiesic/docsift/workflow"
	"github.com/urfave/cli/v2"
)

func main() {
	dbFlag := &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
	aiFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "analyzer-host",
			Usage: "Analyzer service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "analyzer-model",
			Usage: "Analyzer model name",
			Value: "qwen2.5:3b",
		},
	}

	app := &cli.App{
		Name:  "docsift",
		Usage: "Document ingestion and hybrid retrieval system",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Upload documents and wait for processing to settle",
				ArgsUsage: "<file> [<file> ...]",
				Action:    ingestCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.DurationFlag{
						Name:  "wait",
						Usage: "How long to wait for each document to finish processing",
						Value: 2 * time.Minute,
					},
				}, aiFlags...),
			},
			{
				Name:      "search",
				Usage:     "Search stored documents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode (vector, fulltext, hybrid)",
						Value:   "hybrid",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Maximum cosine distance for vector matches",
						Value: 0.7,
					},
					&cli.StringFlag{
						Name:  "types",
						Usage: "Comma-separated file types to include (pdf, txt, png, jpg, jpeg)",
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Only match documents created on or after this date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Only match documents created before this date (YYYY-MM-DD)",
					},
				}, aiFlags...),
			},
			{
				Name:      "similar",
				Usage:     "Find documents similar to a stored document",
				ArgsUsage: "<document-id>",
				Action:    similarCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Maximum cosine distance for vector matches",
						Value: 0.7,
					},
				}, aiFlags...),
			},
			{
				Name:      "status",
				Usage:     "Show the processing status of a document",
				ArgsUsage: "<document-id>",
				Action:    statusCommand,
				Flags:     []cli.Flag{dbFlag},
			},
			{
				Name:      "wait",
				Usage:     "Wait for a document to reach a terminal status",
				ArgsUsage: "<document-id>",
				Action:    waitCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait before giving up",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:      "analyze",
				Usage:     "Run the document processing workflow over a file",
				ArgsUsage: "<file>",
				Action:    analyzeCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.BoolFlag{
						Name:  "skip-analysis",
						Usage: "Skip content analysis after ingestion",
					},
					&cli.BoolFlag{
						Name:  "notify",
						Usage: "Send a notification when processing completes",
					},
					&cli.StringFlag{
						Name:  "webhook-url",
						Usage: "Deliver notifications to this webhook instead of the log",
					},
					&cli.DurationFlag{
						Name:  "wait",
						Usage: "How long to wait for the document to finish processing",
						Value: 2 * time.Minute,
					},
				}, aiFlags...),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all documents with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiConfigFromFlags builds an AI configuration from the shared service
// flags. Commands without AI flags fall through to the defaults.
func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	var opts []ai.ConfigOption
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if host := c.String("analyzer-host"); host != "" {
		opts = append(opts, ai.WithAnalyzerHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("analyzer-model"); model != "" {
		opts = append(opts, ai.WithAnalyzerModel(model))
	}

	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func openDatabase(c *cli.Context) (*docsift.Database, error) {
	config, err := aiConfigFromFlags(c)
	if err != nil {
		return nil, err
	}

	db, err := docsift.NewDatabase(c.String("db"), docsift.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one file argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	waitTimeout := c.Duration("wait")

	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		doc, _, err := pipeline.Ingest(ctx, filepath.Base(path), data)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		status, err := pipeline.WaitForDocument(ctx, doc.Id, waitTimeout)
		if err != nil {
			return fmt.Errorf("failed waiting for %s: %w", path, err)
		}

		fmt.Printf("%d: %s (%s, %d bytes) %s\n", doc.Id, doc.Filename, doc.FileType, doc.FileSize, status)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("a query argument is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	mode := core.SearchMode(strings.ToLower(c.String("mode")))
	if !mode.Valid() {
		return fmt.Errorf("invalid search mode %q: must be one of vector, fulltext, hybrid", c.String("mode"))
	}

	opts, err := searchOptionsFromFlags(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	results, err := engine.Search(context.Background(), query, mode, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(results)
	return nil
}

func similarCommand(c *cli.Context) error {
	id, err := documentIDArg(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	opts := search.Options{
		Limit:     c.Int("limit"),
		Threshold: c.Float64("threshold"),
	}
	results, err := engine.SimilarToDocument(context.Background(), id, opts)
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	printResults(results)
	return nil
}

func statusCommand(c *cli.Context) error {
	id, err := documentIDArg(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	doc, err := db.DocumentRepository().GetDocument(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to look up document %d: %w", id, err)
	}

	fmt.Printf("Document:  %d\n", doc.Id)
	fmt.Printf("Filename:  %s\n", doc.Filename)
	fmt.Printf("Type:      %s\n", doc.FileType)
	fmt.Printf("Size:      %d bytes\n", doc.FileSize)
	fmt.Printf("Status:    %s\n", doc.Status)
	fmt.Printf("Content:   %v\n", doc.HasContent)
	fmt.Printf("Created:   %s\n", doc.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:   %s\n", doc.UpdatedAt.Format(time.RFC3339))
	return nil
}

func waitCommand(c *cli.Context) error {
	id, err := documentIDArg(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	status, err := pipeline.WaitForDocument(context.Background(), id, c.Duration("timeout"))
	if err != nil {
		return fmt.Errorf("failed waiting for document %d: %w", id, err)
	}

	fmt.Printf("%d: %s\n", id, status)
	return nil
}

func analyzeCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file argument is required")
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	dispatcher, err := db.NewActionDispatcher()
	if err != nil {
		return fmt.Errorf("failed to create action dispatcher: %w", err)
	}
	defer dispatcher.Release()

	if url := c.String("webhook-url"); url != "" {
		dispatcher.Register(core.ActionSlackNotification, workflow.NewWebhookSender(url))
	} else {
		dispatcher.Register(core.ActionSlackNotification, workflow.NewLogSender(slog.Default()))
	}

	orchestrator, err := db.NewOrchestrator(pipeline, engine, dispatcher)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	cfg := workflow.ProcessingConfig{
		Analyze:     !c.Bool("skip-analysis"),
		Notify:      c.Bool("notify"),
		WaitTimeout: c.Duration("wait"),
	}
	wf, err := orchestrator.RunDocumentProcessing(context.Background(), filepath.Base(path), data, cfg)
	if wf != nil {
		fmt.Printf("Workflow:  %s\n", wf.Id)
		fmt.Printf("Status:    %s\n", wf.Status)
		fmt.Printf("Duration:  %dms\n", wf.DurationMS)
		keys := make([]string, 0, len(wf.Output))
		for k := range wf.Output {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, wf.Output[k])
		}
	}
	if err != nil {
		return fmt.Errorf("workflow failed: %w", err)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		// Analyzer is not used during reembedding
		ai.WithAnalyzerHost(c.String("embedding-host")),
		ai.WithAnalyzerModel("unused"),
	)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := docsift.NewDatabase(c.String("db"), docsift.WithAIConfig(config))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reembedder := db.NewReembedder(reembedConfig, os.Stderr)
	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func documentIDArg(c *cli.Context) (core.ID, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("exactly one document id argument is required")
	}
	raw, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", c.Args().First())
	}
	return core.ID(raw), nil
}

func searchOptionsFromFlags(c *cli.Context) (search.Options, error) {
	opts := search.Options{
		Limit:     c.Int("limit"),
		Threshold: c.Float64("threshold"),
	}

	if types := c.String("types"); types != "" {
		for _, raw := range strings.Split(types, ",") {
			ft := core.FileType(strings.ToLower(strings.TrimSpace(raw)))
			if !ft.Valid() {
				return opts, fmt.Errorf("invalid file type %q", raw)
			}
			opts.FileTypes = append(opts.FileTypes, ft)
		}
	}

	var err error
	if opts.From, err = parseDateFlag(c.String("from")); err != nil {
		return opts, err
	}
	if opts.To, err = parseDateFlag(c.String("to")); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", value)
}

func printResults(results []*core.SearchResult) {
	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %s (%d)[%0.3f]\n", i, hit.Filename, hit.DocumentId, hit.Similarity)
		if hit.Content != "" {
			fmt.Printf("   %s\n", hit.Content)
		}
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
