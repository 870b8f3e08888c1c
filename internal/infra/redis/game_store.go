package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"worksheet-quiz/internal/app"
)

// GameStore is a Redis-aware implementation of app.GameRepository.
// Games stay in a local map so subscriptions keep working in-process; Redis
// holds a liveness key per player so other instances can see who is playing.
type GameStore struct {
	client  *redis.Client
	ttl     time.Duration
	factory app.GameFactory

	mu    sync.RWMutex
	games map[string]*app.Game
}

func NewGameStore(client *redis.Client, ttl time.Duration, factory app.GameFactory) *GameStore {
	return &GameStore{
		client:  client,
		ttl:     ttl,
		factory: factory,
		games:   make(map[string]*app.Game),
	}
}

func (s *GameStore) GetOrCreate(playerID string) *app.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[playerID]
	if !ok {
		game = s.factory(playerID)
		s.games[playerID] = game
	}
	// best-effort liveness marker, refreshed on every reconnect
	_ = s.client.Set(context.Background(), s.key(playerID), game.ID(), s.ttl).Err()
	return game
}

func (s *GameStore) Delete(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, playerID)
	_ = s.client.Del(context.Background(), s.key(playerID)).Err()
}

func (s *GameStore) key(playerID string) string {
	return "worksheet:game:" + playerID
}
