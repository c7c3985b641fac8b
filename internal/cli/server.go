package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mbti-test-service/internal/app"
	"mbti-test-service/internal/config"
	"mbti-test-service/internal/domain"
	"mbti-test-service/internal/infra/memory"
	pgstore "mbti-test-service/internal/infra/postgres"
	redisstore "mbti-test-service/internal/infra/redis"
	transport "mbti-test-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the test server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	snapshotTTL := config.TTLDuration(cfg.Snapshot.TTL, domain.SnapshotMaxAge)
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalogs())
	if pool != nil {
		loader = pgstore.NewCatalogLoader(pool)
	}

	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisstore.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var snapshots app.SnapshotStore
	if redisClient != nil {
		snapshots = redisstore.NewSnapshotStore(redisClient, snapshotTTL)
	} else {
		snapshots = memory.NewSnapshotStore()
	}

	var results app.ResultStore = memory.NewResultStore()
	var reports app.ReportStore = memory.NewReportStore(sampleReports())
	if pool != nil {
		results = pgstore.NewResultStore(openBun(cfg.Postgres.URL))
		reports = pgstore.NewReportStore(pool)
	}

	service := app.NewTestService(catalogs, snapshots, results, reports)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting mbti test service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalogs provides a minimal question set for running without
// Postgres; seed the real catalogs with the seed subcommand in production.
func sampleCatalogs() map[domain.Variant]domain.Catalog {
	groups := []struct {
		group         string
		first, second string
	}{
		{"EI", "E", "I"},
		{"SN", "S", "N"},
		{"TF", "T", "F"},
		{"JP", "J", "P"},
	}
	var questions []domain.Question
	id := 0
	for _, g := range groups {
		for i := 0; i < 2; i++ {
			id++
			questions = append(questions, domain.Question{
				ID:      id,
				Text:    "Which describes you better?",
				Group:   g.group,
				Variant: domain.VariantSimple,
				Options: []domain.Option{
					{Label: "A", Text: "first option", Dimension: g.first, Weight: 1},
					{Label: "B", Text: "second option", Dimension: g.second, Weight: 1},
				},
			})
		}
	}
	return map[domain.Variant]domain.Catalog{
		domain.VariantSimple: {Variant: domain.VariantSimple, Questions: questions},
	}
}

func sampleReports() map[string]domain.Report {
	return map[string]domain.Report{
		"INTJ": {
			TypeCode:    "INTJ",
			Nickname:    "Architect",
			Title:       "Strategic thinker",
			Category:    "Analysts",
			Description: "Imaginative and strategic, with a plan for everything.",
		},
		"ENFP": {
			TypeCode:    "ENFP",
			Nickname:    "Campaigner",
			Title:       "Enthusiastic creator",
			Category:    "Diplomats",
			Description: "Warm, creative and sociable free spirits.",
		},
	}
}
