package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"hybrid-rag-be/internal/constant"
	"hybrid-rag-be/internal/dto"
	"hybrid-rag-be/internal/repository/memory"
	"hybrid-rag-be/pkg/answer"
	"hybrid-rag-be/pkg/engine"
	"hybrid-rag-be/pkg/pipeline"
	"hybrid-rag-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type stubEngine struct {
	mu         sync.Mutex
	setupErr   error
	queryRaw   interface{}
	queryErr   error
	setupCalls int
	queries    []string
}

func (s *stubEngine) Setup(ctx context.Context) (engine.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setupCalls++
	if s.setupErr != nil {
		return nil, s.setupErr
	}
	return "handle", nil
}

func (s *stubEngine) Query(ctx context.Context, handle engine.Handle, query string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.queryRaw, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newChatService(eng engine.Engine, publisher IPublisherService) (IChatService, *memory.ConversationRepository) {
	repo := memory.NewConversationRepository(time.Hour)
	handleCache := pipeline.NewHandleCache(eng, nopLogger{})
	engineLogger := log.New(io.Discard, "", 0)
	return NewChatService(repo, handleCache, eng, publisher, nopLogger{}, engineLogger), repo
}

func TestHandleQuery_PersistsBothTurns(t *testing.T) {
	eng := &stubEngine{queryRaw: map[string]interface{}{
		"answer": "New York City has the highest population.",
		"sql":    "SELECT city FROM city_stats ORDER BY population DESC LIMIT 1",
	}}
	svc, repo := newChatService(eng, nil)
	sessionId := uuid.New()

	resp, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{
		SessionId: sessionId,
		Query:     "Which city has the highest population?",
	})
	if err != nil {
		t.Fatalf("HandleQuery returned error: %v", err)
	}

	if resp.Sent.Role != store.RoleUser || resp.Sent.Content != "Which city has the highest population?" {
		t.Errorf("unexpected sent turn: %+v", resp.Sent)
	}
	if resp.Reply.Role != store.RoleAssistant || resp.Reply.Content != "New York City has the highest population." {
		t.Errorf("unexpected reply turn: %+v", resp.Reply)
	}
	if resp.ElapsedMs < 0 {
		t.Errorf("elapsed must be non-negative, got %d", resp.ElapsedMs)
	}
	if len(resp.Sections) != 2 {
		t.Fatalf("expected answer + sql sections, got %d", len(resp.Sections))
	}
	if resp.Sections[0].Kind != answer.SectionAnswer || resp.Sections[1].Kind != answer.SectionSQL {
		t.Errorf("unexpected section kinds: %s, %s", resp.Sections[0].Kind, resp.Sections[1].Kind)
	}

	conversation, found := repo.Get(sessionId.String())
	if !found {
		t.Fatal("conversation was not persisted")
	}
	turns := conversation.Replay()
	if len(turns) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(turns))
	}
	if turns[0].Role != store.RoleUser || turns[1].Role != store.RoleAssistant {
		t.Errorf("turns out of order: %s, %s", turns[0].Role, turns[1].Role)
	}
}

func TestHandleQuery_EngineFailureFallsBack(t *testing.T) {
	eng := &stubEngine{queryErr: errors.New("groq: status 503")}
	svc, repo := newChatService(eng, nil)
	sessionId := uuid.New()

	resp, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{
		SessionId: sessionId,
		Query:     "Where is the Space Needle located?",
	})
	if err != nil {
		t.Fatalf("engine failure must not surface as request error, got: %v", err)
	}

	if resp.Reply.Content != constant.FallbackAnswer {
		t.Errorf("expected fallback answer, got %q", resp.Reply.Content)
	}
	if len(resp.Sections) != 1 || resp.Sections[0].Kind != answer.SectionAnswer {
		t.Errorf("fallback must render a lone answer section, got %+v", resp.Sections)
	}
	if resp.Sections[0].Text != constant.FallbackAnswer {
		t.Errorf("unexpected section text: %q", resp.Sections[0].Text)
	}

	conversation, _ := repo.Get(sessionId.String())
	turns := conversation.Replay()
	if len(turns) != 2 || turns[1].Content != constant.FallbackAnswer {
		t.Errorf("fallback answer must be persisted, got %+v", turns)
	}
}

func TestHandleQuery_SetupFailureFallsBack(t *testing.T) {
	eng := &stubEngine{setupErr: errors.New("resolve retrieval pipeline: not found")}
	svc, _ := newChatService(eng, nil)

	resp, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{
		SessionId: uuid.New(),
		Query:     "List places to visit in Miami.",
	})
	if err != nil {
		t.Fatalf("setup failure must not surface as request error, got: %v", err)
	}
	if resp.Reply.Content != constant.FallbackAnswer {
		t.Errorf("expected fallback answer, got %q", resp.Reply.Content)
	}
	if len(eng.queries) != 0 {
		t.Errorf("engine must not be queried without a handle, got %d queries", len(eng.queries))
	}
	if eng.setupCalls != 1 {
		t.Errorf("expected exactly 1 setup attempt, got %d", eng.setupCalls)
	}
}

func receiveEvent(t *testing.T, messages <-chan *message.Message) dto.ChatEventMessage {
	t.Helper()
	select {
	case msg := <-messages:
		var event dto.ChatEventMessage
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		msg.Ack()
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return dto.ChatEventMessage{}
}

func TestHandleQuery_EmitsLifecycleEvents(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), "CHAT_EVENTS")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	eng := &stubEngine{queryRaw: "Houston is located in Texas."}
	svc, _ := newChatService(eng, NewPublisherService("CHAT_EVENTS", pubSub))
	sessionId := uuid.New()

	if _, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{
		SessionId: sessionId,
		Query:     "What state is Houston located in?",
	}); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	accepted := receiveEvent(t, messages)
	if accepted.Type != "QUERY_ACCEPTED" {
		t.Errorf("expected QUERY_ACCEPTED first, got %s", accepted.Type)
	}
	if accepted.Data["session_id"] != sessionId.String() {
		t.Errorf("event must carry session_id, got %v", accepted.Data)
	}

	ready := receiveEvent(t, messages)
	if ready.Type != "ANSWER_READY" {
		t.Errorf("expected ANSWER_READY second, got %s", ready.Type)
	}
}

func TestHandleQuery_EmitsFailureEvent(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), "CHAT_EVENTS")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	eng := &stubEngine{queryErr: errors.New("retrieve: status 500")}
	svc, _ := newChatService(eng, NewPublisherService("CHAT_EVENTS", pubSub))
	sessionId := uuid.New()

	if _, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{
		SessionId: sessionId,
		Query:     "How do people in Chicago get around?",
	}); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	if accepted := receiveEvent(t, messages); accepted.Type != "QUERY_ACCEPTED" {
		t.Errorf("expected QUERY_ACCEPTED first, got %s", accepted.Type)
	}
	failed := receiveEvent(t, messages)
	if failed.Type != "QUERY_FAILED" {
		t.Errorf("expected QUERY_FAILED, got %s", failed.Type)
	}
	if failed.Data["reason"] == nil || failed.Data["reason"] == "" {
		t.Errorf("failure event must carry a reason, got %v", failed.Data)
	}
}

func TestGetHistory_ReplaysInsertionOrder(t *testing.T) {
	eng := &stubEngine{queryRaw: "An answer."}
	svc, _ := newChatService(eng, nil)
	sessionId := uuid.New()

	for _, query := range []string{"First question?", "Second question?"} {
		if _, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{SessionId: sessionId, Query: query}); err != nil {
			t.Fatalf("HandleQuery: %v", err)
		}
	}

	history, err := svc.GetHistory(context.Background(), sessionId)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history.Turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(history.Turns))
	}
	wantRoles := []string{store.RoleUser, store.RoleAssistant, store.RoleUser, store.RoleAssistant}
	for i, turn := range history.Turns {
		if turn.Role != wantRoles[i] {
			t.Errorf("turn %d: expected role %s, got %s", i, wantRoles[i], turn.Role)
		}
	}
	if history.Turns[2].Content != "Second question?" {
		t.Errorf("unexpected content at turn 2: %q", history.Turns[2].Content)
	}
}

func TestGetHistory_UnknownSessionIsEmpty(t *testing.T) {
	svc, _ := newChatService(&stubEngine{}, nil)

	history, err := svc.GetHistory(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history.Turns) != 0 {
		t.Errorf("expected empty history, got %d turns", len(history.Turns))
	}
}

func TestClearHistory_ResetsTranscript(t *testing.T) {
	eng := &stubEngine{queryRaw: "An answer."}
	svc, repo := newChatService(eng, nil)
	sessionId := uuid.New()

	if _, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{SessionId: sessionId, Query: "A question?"}); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if err := svc.ClearHistory(context.Background(), sessionId); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	if _, found := repo.Get(sessionId.String()); found {
		t.Error("conversation must be dropped after clear")
	}

	history, err := svc.GetHistory(context.Background(), sessionId)
	if err != nil {
		t.Fatalf("GetHistory after clear: %v", err)
	}
	if len(history.Turns) != 0 {
		t.Errorf("expected empty history after clear, got %d turns", len(history.Turns))
	}
}

func TestExportTranscript_Format(t *testing.T) {
	eng := &stubEngine{queryRaw: "New York City."}
	svc, _ := newChatService(eng, nil)
	sessionId := uuid.New()

	if _, err := svc.HandleQuery(context.Background(), &dto.ChatQueryRequest{
		SessionId: sessionId,
		Query:     "Which city has the highest population?",
	}); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	transcript, err := svc.ExportTranscript(context.Background(), sessionId)
	if err != nil {
		t.Fatalf("ExportTranscript: %v", err)
	}

	want := "**You:**\n\nWhich city has the highest population?\n" +
		"\n---\n" +
		"**Assistant:**\n\nNew York City.\n"
	if transcript != want {
		t.Errorf("transcript mismatch:\ngot:  %q\nwant: %q", transcript, want)
	}
}

func TestExportTranscript_EmptySession(t *testing.T) {
	svc, _ := newChatService(&stubEngine{}, nil)

	transcript, err := svc.ExportTranscript(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ExportTranscript: %v", err)
	}
	if transcript != "" {
		t.Errorf("expected empty transcript, got %q", transcript)
	}
}

func TestCreateSession_RegistersConversation(t *testing.T) {
	svc, repo := newChatService(&stubEngine{}, nil)

	resp, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if resp.Id == uuid.Nil {
		t.Fatal("expected a minted session id")
	}
	if _, found := repo.Get(resp.Id.String()); !found {
		t.Error("conversation must exist right after session creation")
	}
}

func TestExampleQueries_ReturnsCannedPrompts(t *testing.T) {
	svc, _ := newChatService(&stubEngine{}, nil)

	resp, err := svc.ExampleQueries(context.Background())
	if err != nil {
		t.Fatalf("ExampleQueries: %v", err)
	}
	if len(resp.Queries) != len(constant.ExampleQueries) {
		t.Fatalf("expected %d queries, got %d", len(constant.ExampleQueries), len(resp.Queries))
	}
	if resp.Queries[0] != "Which city has the highest population?" {
		t.Errorf("unexpected first example: %q", resp.Queries[0])
	}
}
