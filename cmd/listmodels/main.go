package main

import (
	"context"
	"os"
	"time"

	"hybrid-rag-be/internal/config"
	"hybrid-rag-be/pkg/llm/groq"

	"github.com/fatih/color"
)

// Lists the models visible to the configured Groq key. Handy for checking
// credentials and picking a model before starting the server.
func main() {
	cfg := config.Load()
	if cfg.Keys.Groq == "" {
		color.Red("GROQ_API_KEY is not set")
		os.Exit(1)
	}

	client := groq.NewClient(cfg.Keys.Groq, cfg.Engine.GroqBaseURL, cfg.Engine.GroqModel)

	color.Cyan("🚀 Fetching models from %s\n", cfg.Engine.GroqBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	color.Green("Found %d models", len(models))
	for _, m := range models {
		if m.ID == cfg.Engine.GroqModel {
			color.Yellow("* %s (owned by %s, context %d) <- configured", m.ID, m.OwnedBy, m.ContextWindow)
			continue
		}
		color.White("  %s (owned by %s, context %d)", m.ID, m.OwnedBy, m.ContextWindow)
	}
}
