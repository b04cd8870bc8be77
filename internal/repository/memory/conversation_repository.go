package memory

import (
	"time"

	"hybrid-rag-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository(ttl time.Duration) *ConversationRepository {
	// Conversations expire after the inactivity TTL; expired entries are
	// purged every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

// LoadOrCreate returns the live conversation for a session, creating an
// empty one when none exists (first visit or expired). Safe for concurrent
// callers; two racing creators converge on the same conversation.
func (r *ConversationRepository) LoadOrCreate(sessionID string) *store.Conversation {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Conversation)
	}

	conversation := store.NewConversation(sessionID)
	if err := r.cache.Add(sessionID, conversation, cache.DefaultExpiration); err != nil {
		// Lost the creation race; use the winner's conversation.
		if x, found := r.cache.Get(sessionID); found {
			return x.(*store.Conversation)
		}
	}
	return conversation
}

func (r *ConversationRepository) Get(sessionID string) (*store.Conversation, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Conversation), true
	}
	return nil, false
}

// Save refreshes the inactivity TTL for a session.
func (r *ConversationRepository) Save(conversation *store.Conversation) {
	r.cache.Set(conversation.ID, conversation, cache.DefaultExpiration)
}

func (r *ConversationRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
