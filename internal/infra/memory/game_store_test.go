package memory

import (
	"testing"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/logger"
)

func TestGameStoreLifecycle(t *testing.T) {
	created := 0
	store := NewGameStore(func(playerID string) *app.Game {
		created++
		repo := app.NewRepository(NewBlobStore(), logger.Discard(), nil)
		return app.NewGame(playerID, repo, logger.Discard(), nil, nil)
	})

	game := store.GetOrCreate("player-1")
	if game == nil || game.ID() != "player-1" {
		t.Fatalf("expected game for player-1, got %v", game)
	}
	if again := store.GetOrCreate("player-1"); again != game {
		t.Fatalf("expected the same game on reconnect")
	}
	if created != 1 {
		t.Fatalf("expected one game created, got %d", created)
	}

	store.Delete("player-1")
	if fresh := store.GetOrCreate("player-1"); fresh == game {
		t.Fatalf("expected a new game after delete")
	}
	if created != 2 {
		t.Fatalf("expected a second game created, got %d", created)
	}
}
