package hybrid

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"hybrid-rag-be/pkg/engine"
	"hybrid-rag-be/pkg/llm"
	"hybrid-rag-be/pkg/llm/groq"
	"hybrid-rag-be/pkg/retrieval/llamacloud"
	"hybrid-rag-be/pkg/utils"
)

const answerPromptTemplate = `You are a helpful assistant answering questions about US cities.
Use only the context below to answer. If the context does not contain the answer, say so briefly.

Context:
%s

Question: %s

Answer:`

// Per-chunk budget keeps the grounded prompt inside the model context.
const contextChunkLimit = 1500

// Config carries the index coordinates the engine resolves at setup time.
type Config struct {
	IndexName      string
	ProjectName    string
	OrganizationID string
	TopK           int
}

// Engine is the production collaborator: document retrieval through a
// LlamaCloud pipeline, answer completion through Groq. Setup validates both
// remotes and pins the pipeline id; Query runs the retrieve-then-complete
// round trip.
type Engine struct {
	llmClient   *groq.Client
	indexClient *llamacloud.Client
	cfg         Config
	log         *log.Logger
}

// Ensure Engine implements the engine contract
var _ engine.Engine = &Engine{}

func NewEngine(llmClient *groq.Client, indexClient *llamacloud.Client, cfg Config, logger *log.Logger) *Engine {
	return &Engine{
		llmClient:   llmClient,
		indexClient: indexClient,
		cfg:         cfg,
		log:         logger,
	}
}

// pipelineHandle is the opaque value Setup produces. Holders pass it back
// to Query unchanged.
type pipelineHandle struct {
	pipelineID string
	model      string
	readyAt    time.Time
}

func (e *Engine) Setup(ctx context.Context) (engine.Handle, error) {
	// 1. Probe LLM credentials (model listing is the cheapest authenticated call)
	models, err := e.llmClient.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify llm credentials: %w", err)
	}
	e.log.Printf("[INFO] Groq credentials verified (%d models visible)", len(models))

	// 2. Resolve the retrieval pipeline by name
	pipelineID, err := e.indexClient.ResolvePipeline(ctx, e.cfg.IndexName, e.cfg.ProjectName, e.cfg.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("resolve retrieval pipeline: %w", err)
	}
	e.log.Printf("[INFO] Retrieval pipeline resolved: %s -> %s", e.cfg.IndexName, pipelineID)

	return &pipelineHandle{
		pipelineID: pipelineID,
		model:      e.llmClient.ModelName,
		readyAt:    time.Now(),
	}, nil
}

func (e *Engine) Query(ctx context.Context, handle engine.Handle, query string) (interface{}, error) {
	ph, ok := handle.(*pipelineHandle)
	if !ok {
		return nil, fmt.Errorf("handle was not produced by this engine")
	}

	// 1. Retrieve documents
	nodes, err := e.indexClient.Retrieve(ctx, ph.pipelineID, query, e.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}
	e.log.Printf("[INFO] Retrieved %d nodes for query: %s", len(nodes), utils.Preview(query, 120))

	// 2. Build the grounded prompt
	prompt := fmt.Sprintf(answerPromptTemplate, contextBlock(nodes), query)

	// 3. Complete
	answerText, err := e.llmClient.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	// 4. Assemble the result record
	sources := make([]interface{}, 0, len(nodes))
	for _, node := range nodes {
		source := map[string]interface{}{
			"snippet": utils.Truncate(node.Text, 300),
			"score":   node.Score,
		}
		if title := metadataText(node.Metadata, "file_name", "title"); title != "" {
			source["title"] = title
		}
		if link := metadataText(node.Metadata, "url"); link != "" {
			source["url"] = link
		}
		sources = append(sources, source)
	}

	return map[string]interface{}{
		"answer":  answerText,
		"sources": sources,
	}, nil
}

// contextBlock lays the retrieved chunks out as a numbered context section.
func contextBlock(nodes []llamacloud.RetrievedNode) string {
	if len(nodes) == 0 {
		return "(no documents retrieved)"
	}

	var b strings.Builder
	for i, node := range nodes {
		if title := metadataText(node.Metadata, "file_name", "title"); title != "" {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, title)
		} else {
			fmt.Fprintf(&b, "[%d]\n", i+1)
		}
		b.WriteString(utils.Truncate(node.Text, contextChunkLimit))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// metadataText returns the first present non-empty string among the keys.
func metadataText(metadata map[string]interface{}, keys ...string) string {
	if metadata == nil {
		return ""
	}
	for _, key := range keys {
		if value, ok := metadata[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
