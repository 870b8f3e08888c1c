package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/domain"
)

// BlobStore keeps the serialized worksheet table in process memory. Built with
// NewCachedBlobStore it fronts another store and refreshes after a TTL.
type BlobStore struct {
	backing app.BlobStore
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	mu        sync.Mutex
	rnd       *rand.Rand
	data      []byte
	present   bool
	expiresAt time.Time
}

// NewBlobStore returns a standalone store; contents live as long as the process.
func NewBlobStore() *BlobStore {
	return &BlobStore{clock: time.Now}
}

// NewCachedBlobStore caches backing for ttl (plus up to 10% jitter). A zero
// ttl reads through on every Load.
func NewCachedBlobStore(backing app.BlobStore, ttl time.Duration) *BlobStore {
	return &BlobStore{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *BlobStore) Load(ctx context.Context) ([]byte, error) {
	if data, ok := s.cached(); ok {
		return data, nil
	}
	if s.backing == nil {
		return nil, domain.ErrBlobNotFound
	}

	result, err, _ := s.sf.Do("blob", func() (interface{}, error) {
		if data, ok := s.cached(); ok {
			return data, nil
		}
		data, err := s.backing.Load(ctx)
		if err != nil {
			return nil, err
		}
		s.store(data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(result.([]byte)), nil
}

func (s *BlobStore) Save(ctx context.Context, data []byte) error {
	if s.backing != nil {
		if err := s.backing.Save(ctx, data); err != nil {
			return err
		}
	}
	s.store(data)
	return nil
}

func (s *BlobStore) cached() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return nil, false
	}
	if s.backing != nil && !s.expiresAt.After(s.clock()) {
		return nil, false
	}
	return clone(s.data), true
}

func (s *BlobStore) store(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = clone(data)
	s.present = true
	if s.backing != nil {
		s.expiresAt = s.clock().Add(s.ttlWithJitterLocked())
	}
}

func (s *BlobStore) ttlWithJitterLocked() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
