package memory

import (
	"sync"

	"worksheet-quiz/internal/app"
)

// GameStore is an in-memory implementation of app.GameRepository.
type GameStore struct {
	factory app.GameFactory

	mu    sync.RWMutex
	games map[string]*app.Game
}

func NewGameStore(factory app.GameFactory) *GameStore {
	return &GameStore{
		factory: factory,
		games:   make(map[string]*app.Game),
	}
}

func (s *GameStore) GetOrCreate(playerID string) *app.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[playerID]; ok {
		return game
	}
	game := s.factory(playerID)
	s.games[playerID] = game
	return game
}

func (s *GameStore) Delete(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, playerID)
}
