package redis

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/domain"
)

// BlobStore keeps the worksheet table under a single Redis key:
// SET worksheets:{namespace} <json>
//
// With a backing store Redis acts as a read-through cache that expires after
// ttl; without one it is the primary store and the key never expires.
type BlobStore struct {
	client  *redis.Client
	key     string
	backing app.BlobStore
	ttl     time.Duration
	sf      singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBlobStore(client *redis.Client, namespace string, backing app.BlobStore, ttl time.Duration) *BlobStore {
	return &BlobStore{
		client:  client,
		key:     "worksheets:" + namespace,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *BlobStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == nil {
		return data, nil
	}
	if s.backing == nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, err
	}

	result, err, _ := s.sf.Do(s.key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if data, err := s.client.Get(ctx, s.key).Bytes(); err == nil {
			return data, nil
		}
		data, err := s.backing.Load(ctx)
		if err != nil {
			return nil, err
		}
		_ = s.client.Set(ctx, s.key, data, s.ttlWithJitter()).Err()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (s *BlobStore) Save(ctx context.Context, data []byte) error {
	if s.backing == nil {
		return s.client.Set(ctx, s.key, data, 0).Err()
	}
	if err := s.backing.Save(ctx, data); err != nil {
		return err
	}
	// the backing store is authoritative, a stale cache entry is dropped instead
	if err := s.client.Set(ctx, s.key, data, s.ttlWithJitter()).Err(); err != nil {
		_ = s.client.Del(ctx, s.key).Err()
	}
	return nil
}

func (s *BlobStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
