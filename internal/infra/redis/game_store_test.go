package redis

import (
	"testing"
	"time"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/infra/memory"
	"worksheet-quiz/internal/logger"
)

func TestGameStoreSetsAndClearsKeys(t *testing.T) {
	mr := runMiniredis(t)
	repo := app.NewRepository(memory.NewBlobStore(), logger.Discard(), nil)
	store := NewGameStore(newClient(mr), time.Minute, func(playerID string) *app.Game {
		return app.NewGame(playerID, repo, logger.Discard(), nil, nil)
	})

	game := store.GetOrCreate("player-1")
	if !mr.Exists("worksheet:game:player-1") {
		t.Fatalf("expected redis key to be set")
	}
	if again := store.GetOrCreate("player-1"); again != game {
		t.Fatalf("expected the same game on reconnect")
	}

	store.Delete("player-1")
	if mr.Exists("worksheet:game:player-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if fresh := store.GetOrCreate("player-1"); fresh == game {
		t.Fatalf("expected a new game after delete")
	}
}
