// Command ingest loads the product catalog into the vector index: it reads
// the CSV dataset, embeds every record and upserts them in batches. Safe to
// re-run; entries are replaced by id.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/furnilabs/furnireco/internal/catalog"
	"github.com/furnilabs/furnireco/internal/config"
	dbRedis "github.com/furnilabs/furnireco/internal/db/redis"
	logpkg "github.com/furnilabs/furnireco/internal/logger"
	"github.com/furnilabs/furnireco/internal/metrics"
	productrepo "github.com/furnilabs/furnireco/internal/repository/product"
	openaiProv "github.com/furnilabs/furnireco/internal/transport/openai"
	ingestuc "github.com/furnilabs/furnireco/internal/usecase/ingest"
	"github.com/furnilabs/furnireco/internal/version"
)

func main() {
	var (
		datasetPath string
		batchSize   int
		showErrors  bool
		recreate    bool
	)

	cmd := &cobra.Command{
		Use:     "ingest",
		Short:   "Embed the product catalog and load it into the vector index",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), datasetPath, batchSize, showErrors, recreate)
		},
	}
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to the catalog CSV (default: catalog.path from config)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "upsert batch size (default: index.batch_size from config)")
	cmd.Flags().BoolVar(&showErrors, "show-errors", false, "print every skipped row at the end")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop and recreate the index before ingesting (use after changing the embedding model)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, datasetPath string, batchSize int, showErrors, recreate bool) error {
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if datasetPath == "" {
		datasetPath = cfg.Catalog.Path
	}
	if batchSize <= 0 {
		batchSize = cfg.Index.BatchSize
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}

	metrics.Register()

	embedder := openaiProv.NewEmbedder(&openaiProv.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	repo := productrepo.New(store, cfg.Index.Name, cfg.Embedding.Dimensions).
		WithHNSW(productrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})

	if recreate {
		// Vectors from different embedding models must never share an index.
		if err := repo.RecreateIndex(ctx); err != nil {
			return fmt.Errorf("recreate index: %w", err)
		}
		logger.Info("Index recreated", zap.String("index", cfg.Index.Name))
	}

	records, err := catalog.NewReader(datasetPath, logger).Read()
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	logger.Info("Catalog loaded",
		zap.String("path", datasetPath),
		zap.Int("records", len(records)),
	)

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	svc := ingestuc.New(repo, embedder, logger).
		WithBatchSize(batchSize).
		WithProgress(func(done int) { _ = bar.Set(done) })

	start := time.Now()
	report, err := svc.Run(ctx, records)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}

	fmt.Printf("Indexed %d of %d records in %s (%d batches, %d skipped)\n",
		report.Indexed, len(records), time.Since(start).Round(time.Second),
		report.Batches, report.Skipped,
	)
	if showErrors {
		for _, re := range report.Errors {
			fmt.Printf("  skipped: %v\n", re)
		}
	} else if len(report.Errors) > 0 {
		fmt.Printf("Run with --show-errors to list the %d skipped rows\n", len(report.Errors))
	}
	return nil
}
