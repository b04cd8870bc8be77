package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"hybrid-rag-be/internal/constant"
	"hybrid-rag-be/internal/dto"
	"hybrid-rag-be/internal/pkg/logger"
	"hybrid-rag-be/internal/repository/memory"
	"hybrid-rag-be/pkg/answer"
	"hybrid-rag-be/pkg/engine"
	"hybrid-rag-be/pkg/events"
	"hybrid-rag-be/pkg/pipeline"
	"hybrid-rag-be/pkg/store"
	"hybrid-rag-be/pkg/utils"

	"github.com/google/uuid"
)

// IChatService defines the conversational surface over the hybrid engine
type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	HandleQuery(ctx context.Context, request *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error)
	ClearHistory(ctx context.Context, sessionId uuid.UUID) error
	ExportTranscript(ctx context.Context, sessionId uuid.UUID) (string, error)
	ExampleQueries(ctx context.Context) (*dto.ExampleQueriesResponse, error)
}

// chatService owns the transcript lifecycle around each engine round trip.
// Engine failures never surface as request errors: once the user turn is
// accepted the reply slot is always filled, with the fallback answer when
// the query could not be served.
type chatService struct {
	conversationRepo *memory.ConversationRepository
	handleCache      *pipeline.HandleCache
	eng              engine.Engine
	publisherService IPublisherService
	logger           logger.ILogger
	engineLogger     *log.Logger
}

func NewChatService(
	conversationRepo *memory.ConversationRepository,
	handleCache *pipeline.HandleCache,
	eng engine.Engine,
	publisherService IPublisherService,
	logger logger.ILogger,
	engineLogger *log.Logger,
) IChatService {
	return &chatService{
		conversationRepo: conversationRepo,
		handleCache:      handleCache,
		eng:              eng,
		publisherService: publisherService,
		logger:           logger,
		engineLogger:     engineLogger,
	}
}

var _ IChatService = &chatService{}

// CreateSession mints a session id and registers an empty conversation so
// the inactivity TTL starts counting from creation.
func (cs *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	sessionId := uuid.New()
	cs.conversationRepo.LoadOrCreate(sessionId.String())

	cs.logger.Info("ChatService", "Session created", map[string]interface{}{
		"session_id": sessionId.String(),
	})

	return &dto.CreateSessionResponse{Id: sessionId}, nil
}

// HandleQuery runs one full turn: record the question, query the engine,
// record the reply. The response carries both persisted turns plus the
// rendered sections for the caller's display layer.
func (cs *chatService) HandleQuery(ctx context.Context, request *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	sessionId := request.SessionId.String()
	conversation := cs.conversationRepo.LoadOrCreate(sessionId)

	// 1. The user turn is committed before any engine work, so a crash or
	// failure mid-query still leaves the question in the transcript.
	sent := conversation.Append(store.RoleUser, request.Query)
	cs.conversationRepo.Save(conversation)
	publishEvent(ctx, cs.publisherService, cs.logger, events.NewQueryAccepted(sessionId, request.Query))

	// 2. Execute the query. Elapsed time is measured around the whole
	// engine round trip, failures included.
	start := time.Now()
	payload, queryErr := cs.runQuery(ctx, request.Query)
	elapsedMs := time.Since(start).Milliseconds()

	if queryErr != nil {
		cs.engineLogger.Printf("[ERROR] Query failed after %dms: %v", elapsedMs, queryErr)
		cs.logger.Error("ChatService", "Query failed, replying with fallback", map[string]interface{}{
			"session_id": sessionId,
			"query":      utils.Preview(request.Query, 80),
			"elapsed_ms": elapsedMs,
			"error":      queryErr.Error(),
		})
		payload = answer.Payload{Answer: constant.FallbackAnswer}
	}

	// 3. Render display sections from the normalized payload. Only the
	// answer text is persisted; sections are derived per request.
	sections := answer.Render(payload)

	// 4. Commit the assistant turn.
	reply := conversation.Append(store.RoleAssistant, payload.Answer)
	cs.conversationRepo.Save(conversation)

	// 5. Notify live viewers.
	if queryErr != nil {
		publishEvent(ctx, cs.publisherService, cs.logger, events.NewQueryFailed(sessionId, queryErr.Error(), elapsedMs))
	} else {
		publishEvent(ctx, cs.publisherService, cs.logger, events.NewAnswerReady(sessionId, elapsedMs))
		cs.engineLogger.Printf("[QUERY] Answered in %dms: %s", elapsedMs, utils.Preview(request.Query, 80))
	}

	return &dto.ChatQueryResponse{
		SessionId: request.SessionId,
		Sent:      turnToDTO(sent),
		Reply:     turnToDTO(reply),
		Sections:  sections,
		ElapsedMs: elapsedMs,
	}, nil
}

// runQuery resolves the cached pipeline handle and executes one engine
// round trip. The first query after a restart (or an Invalidate) pays the
// initialization cost here.
func (cs *chatService) runQuery(ctx context.Context, query string) (answer.Payload, error) {
	handle, err := cs.handleCache.Get(ctx)
	if err != nil {
		return answer.Payload{}, fmt.Errorf("get pipeline handle: %w", err)
	}

	raw, err := cs.eng.Query(ctx, handle, query)
	if err != nil {
		return answer.Payload{}, err
	}

	return answer.Normalize(raw), nil
}

// GetHistory returns the full transcript in insertion order.
func (cs *chatService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error) {
	conversation := cs.conversationRepo.LoadOrCreate(sessionId.String())

	turns := conversation.Replay()
	response := make([]dto.ChatTurnDTO, 0, len(turns))
	for _, turn := range turns {
		response = append(response, *turnToDTO(turn))
	}

	return &dto.GetChatHistoryResponse{
		SessionId: sessionId,
		Turns:     response,
	}, nil
}

// ClearHistory drops the conversation entirely. The session id stays
// usable; the next query starts a fresh transcript.
func (cs *chatService) ClearHistory(ctx context.Context, sessionId uuid.UUID) error {
	cs.conversationRepo.Delete(sessionId.String())

	cs.logger.Info("ChatService", "Conversation cleared", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}

// ExportTranscript renders the conversation as a markdown document.
func (cs *chatService) ExportTranscript(ctx context.Context, sessionId uuid.UUID) (string, error) {
	conversation := cs.conversationRepo.LoadOrCreate(sessionId.String())
	return conversation.Export(), nil
}

// ExampleQueries lists the canned prompts offered to new sessions.
func (cs *chatService) ExampleQueries(ctx context.Context) (*dto.ExampleQueriesResponse, error) {
	return &dto.ExampleQueriesResponse{Queries: constant.ExampleQueries}, nil
}

func turnToDTO(turn store.Turn) *dto.ChatTurnDTO {
	return &dto.ChatTurnDTO{
		Role:      turn.Role,
		Content:   turn.Content,
		CreatedAt: turn.CreatedAt,
	}
}
