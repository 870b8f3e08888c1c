package app_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/domain"
	"worksheet-quiz/internal/logger"
)

// identitySeed finds a seed whose first permutation of n keeps the document order.
func identitySeed(t *testing.T, n int) int64 {
	t.Helper()
	for seed := int64(1); seed < 10000; seed++ {
		perm := rand.New(rand.NewSource(seed)).Perm(n)
		identity := true
		for i, v := range perm {
			if i != v {
				identity = false
				break
			}
		}
		if identity {
			return seed
		}
	}
	t.Fatalf("no identity permutation seed for n=%d", n)
	return 0
}

func worksheet(code string, points ...float64) domain.Worksheet {
	ws := domain.Worksheet{
		Code:    code,
		Title:   "Fractions",
		Subject: "Mathematics",
		Level:   "Beginner",
	}
	for i, p := range points {
		ws.Questions = append(ws.Questions, domain.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
			Points:        p,
		})
	}
	return ws
}

func documentJSON(code string, questions string) []byte {
	return []byte(fmt.Sprintf(`{
		"code": %q,
		"title": "Fractions",
		"subject": "Mathematics",
		"level": "Beginner",
		"topic": "Adding fractions",
		"questions": %s
	}`, code, questions))
}

const twoQuestions = `[
	{"id": 1, "question": "1/2 + 1/2?", "options": ["1", "2", "1/4", "0"], "correctAnswer": 0, "points": 10},
	{"id": "q2", "question": "1/4 + 1/4?", "options": ["1/8", "1/2", "2/4", "1"], "correctAnswer": 1, "points": 20}
]`

type fakeBlobStore struct {
	mu      sync.Mutex
	data    []byte
	present bool
	saves   int
	loadErr error
}

func (f *fakeBlobStore) Load(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if !f.present {
		return nil, domain.ErrBlobNotFound
	}
	return append([]byte(nil), f.data...), nil
}

func (f *fakeBlobStore) Save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append([]byte(nil), data...)
	f.present = true
	f.saves++
	return nil
}

func newTestRepository(store app.BlobStore) *app.Repository {
	if store == nil {
		store = &fakeBlobStore{}
	}
	return app.NewRepository(store, logger.Discard(), nil)
}
