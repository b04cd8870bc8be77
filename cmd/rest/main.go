package main

import (
	"context"
	"log"
	"strings"

	"hybrid-rag-be/internal/bootstrap"
	"hybrid-rag-be/internal/config"
	"hybrid-rag-be/internal/pkg/logger"
	"hybrid-rag-be/internal/server"
	"hybrid-rag-be/internal/tracer"
	"hybrid-rag-be/pkg/engine/hybrid"
	"hybrid-rag-be/pkg/llm/groq"
	"hybrid-rag-be/pkg/retrieval/llamacloud"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.Init("hybrid-rag-backend")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if missing := config.MissingRequired(); len(missing) > 0 {
		log.Panicf("Missing required settings: %s", strings.Join(missing, ", "))
	}

	// 2. Initialize Engine
	engineLogger := logger.NewFileLogger(cfg.App.EngineLogFilePath)
	llmClient := groq.NewClient(cfg.Keys.Groq, cfg.Engine.GroqBaseURL, cfg.Engine.GroqModel)
	indexClient := llamacloud.NewClient(cfg.Keys.LlamaCloud, cfg.Engine.LlamaCloudBaseURL)
	eng := hybrid.NewEngine(llmClient, indexClient, hybrid.Config{
		IndexName:      cfg.Engine.IndexName,
		ProjectName:    cfg.Engine.ProjectName,
		OrganizationID: cfg.Engine.OrganizationID,
		TopK:           cfg.Engine.RetrievalTopK,
	}, engineLogger)

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg, eng, engineLogger)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// Warm the pipeline so the first query does not pay the setup cost.
	// Not fatal on failure; the first query retries initialization.
	go func() {
		if _, err := container.HandleCache.Get(context.Background()); err != nil {
			log.Printf("[WARN] Pipeline warmup failed: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
