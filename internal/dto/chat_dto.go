package dto

import (
	"time"

	"hybrid-rag-be/pkg/answer"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type ChatQueryRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Query     string    `json:"query" validate:"required"`
}

type ChatTurnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatQueryResponse struct {
	SessionId uuid.UUID        `json:"session_id"`
	Sent      *ChatTurnDTO     `json:"sent"`
	Reply     *ChatTurnDTO     `json:"reply"`
	Sections  []answer.Section `json:"sections"`
	ElapsedMs int64            `json:"elapsed_ms"`
}

type GetChatHistoryResponse struct {
	SessionId uuid.UUID     `json:"session_id"`
	Turns     []ChatTurnDTO `json:"turns"`
}

type ExampleQueriesResponse struct {
	Queries []string `json:"queries"`
}

// ChatEventMessage is the bus envelope for chat lifecycle events.
type ChatEventMessage struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
