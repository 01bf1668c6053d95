package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ttl mirrors original_source maqro_rag/memory.py MemoryStore.save (timedelta(days=7)).
const ttl = 7 * 24 * time.Hour

// Store persists ConversationMemory in Redis with an in-process fallback,
// following the teacher's pkg/redis.RedisService key/value conventions.
type Store struct {
	client   *redis.Client
	fallback map[string]*ConversationMemory
	mu       sync.RWMutex
}

// NewStore builds a memory store. client may be nil, in which case the store
// runs entirely out of the in-process fallback map.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client:   client,
		fallback: make(map[string]*ConversationMemory),
	}
}

func (s *Store) key(conversationID string) string {
	return fmt.Sprintf("conv_mem:%s", conversationID)
}

// Load fetches memory for a conversation, creating an empty one if absent.
func (s *Store) Load(ctx context.Context, conversationID string) (*ConversationMemory, error) {
	key := s.key(conversationID)

	if s.client != nil {
		val, err := s.client.Get(ctx, key).Result()
		switch {
		case err == nil:
			var mem ConversationMemory
			if jsonErr := json.Unmarshal([]byte(val), &mem); jsonErr != nil {
				return nil, fmt.Errorf("failed to unmarshal conversation memory: %w", jsonErr)
			}
			mem.ConversationID = conversationID
			return &mem, nil
		case err != redis.Nil:
			logger.Base().Error("error loading conversation memory from redis", zap.Error(err))
		}
	}

	s.mu.RLock()
	mem, ok := s.fallback[key]
	s.mu.RUnlock()
	if ok {
		return mem, nil
	}
	return NewConversationMemory(conversationID), nil
}

// Save persists memory, writing to Redis (with TTL) and the fallback map.
func (s *Store) Save(ctx context.Context, mem *ConversationMemory) error {
	key := s.key(mem.ConversationID)

	if s.client != nil {
		data, err := json.Marshal(mem)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation memory: %w", err)
		}
		if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
			logger.Base().Error("error saving conversation memory to redis", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.fallback[key] = mem
	s.mu.Unlock()
	return nil
}

// Delete removes memory for a conversation from both tiers.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	key := s.key(conversationID)

	if s.client != nil {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			logger.Base().Error("error deleting conversation memory from redis", zap.Error(err))
		}
	}

	s.mu.Lock()
	delete(s.fallback, key)
	s.mu.Unlock()
	return nil
}
