package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"worksheet-quiz/internal/domain"
	"worksheet-quiz/internal/metrics"
)

// BlobStore persists the serialized worksheet table under a fixed key
// (in-memory, Redis, Postgres).
type BlobStore interface {
	// Load returns domain.ErrBlobNotFound when nothing has been saved.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// BatchResult aggregates the outcome of ingesting several documents.
type BatchResult struct {
	Succeeded  int
	Failed     int
	Worksheets []domain.Worksheet
	Errors     []error
}

// Repository holds every known worksheet keyed by code. Each player owns one
// over its own blob key; the server keeps another as the seed library.
type Repository struct {
	store   BlobStore
	log     logrus.FieldLogger
	metrics *metrics.Metrics

	mu         sync.RWMutex
	worksheets map[string]domain.Worksheet
}

func NewRepository(store BlobStore, log logrus.FieldLogger, m *metrics.Metrics) *Repository {
	return &Repository{
		store:      store,
		log:        log,
		metrics:    m,
		worksheets: make(map[string]domain.Worksheet),
	}
}

// Ingest validates one document and stores it, replacing any worksheet with the same code.
func (r *Repository) Ingest(name string, raw []byte) (domain.Worksheet, error) {
	ws, err := ParseDocument(name, raw)
	if err != nil {
		r.metrics.ObserveDocument("rejected")
		return domain.Worksheet{}, err
	}

	r.mu.Lock()
	_, replaced := r.worksheets[ws.Code]
	r.worksheets[ws.Code] = ws
	r.mu.Unlock()

	r.metrics.ObserveDocument("accepted")
	r.log.WithFields(logrus.Fields{
		"document":  name,
		"code":      ws.Code,
		"questions": len(ws.Questions),
		"replaced":  replaced,
	}).Info("worksheet ingested")
	return ws, nil
}

// IngestBatch ingests each document independently; a failing document never
// blocks the others.
func (r *Repository) IngestBatch(docs []Document) BatchResult {
	var result BatchResult
	for _, doc := range docs {
		if doc.Err != nil {
			r.metrics.ObserveDocument("unreadable")
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("%s: read: %w", doc.Name, doc.Err))
			continue
		}
		ws, err := r.Ingest(doc.Name, doc.Data)
		if err != nil {
			r.log.WithField("document", doc.Name).WithError(err).Warn("worksheet rejected")
			result.Failed++
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Succeeded++
		result.Worksheets = append(result.Worksheets, ws)
	}
	return result
}

// Get returns the worksheet stored under code.
func (r *Repository) Get(code string) (domain.Worksheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.worksheets[code]
	if !ok {
		return domain.Worksheet{}, domain.ErrWorksheetNotFound
	}
	return ws, nil
}

func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.worksheets)
}

// TotalQuestions sums the question counts of all worksheets.
func (r *Repository) TotalQuestions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, ws := range r.worksheets {
		total += len(ws.Questions)
	}
	return total
}

// Codes lists the stored codes in ascending order.
func (r *Repository) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.worksheets))
	for code := range r.worksheets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Load replaces the table with the stored blob. A missing or corrupt blob
// leaves the table empty and is only logged; the returned error is reserved
// for a store that could not be reached.
func (r *Repository) Load(ctx context.Context) error {
	_, err := r.load(ctx)
	return err
}

// LoadOrSeed is Load for a player library: when nothing has ever been stored
// the table starts as a copy of seed. A stored empty table stays empty.
func (r *Repository) LoadOrSeed(ctx context.Context, seed *Repository) error {
	found, err := r.load(ctx)
	if err != nil || found || seed == nil {
		return err
	}

	seed.mu.RLock()
	table := make(map[string]domain.Worksheet, len(seed.worksheets))
	for code, ws := range seed.worksheets {
		table[code] = ws
	}
	seed.mu.RUnlock()

	r.mu.Lock()
	r.worksheets = table
	r.mu.Unlock()
	r.log.WithField("worksheets", len(table)).Debug("library seeded")
	return nil
}

// load reports whether a blob was present, corrupt or not.
func (r *Repository) load(ctx context.Context) (bool, error) {
	table := make(map[string]domain.Worksheet)
	defer func() {
		r.mu.Lock()
		r.worksheets = table
		r.mu.Unlock()
	}()

	data, err := r.store.Load(ctx)
	if errors.Is(err, domain.ErrBlobNotFound) {
		r.log.Info("no stored worksheets")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load worksheets: %w", err)
	}

	var stored map[string]json.RawMessage
	if err := json.Unmarshal(data, &stored); err != nil {
		r.log.WithError(fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)).Warn("discarding stored worksheets")
		return true, nil
	}

	for key, raw := range stored {
		ws, err := ParseDocument(key, raw)
		if err != nil {
			r.log.WithField("code", key).WithError(err).Warn("dropping stored worksheet")
			continue
		}
		table[ws.Code] = ws
	}
	r.log.WithField("worksheets", len(table)).Info("worksheets loaded")
	return true, nil
}

// Save writes the whole table to the blob store.
func (r *Repository) Save(ctx context.Context) error {
	r.mu.RLock()
	data, err := json.Marshal(r.worksheets)
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode worksheets: %w", err)
	}
	if err := r.store.Save(ctx, data); err != nil {
		return fmt.Errorf("save worksheets: %w", err)
	}
	return nil
}

// Clear forgets every worksheet and persists the empty table.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	r.worksheets = make(map[string]domain.Worksheet)
	r.mu.Unlock()
	return r.Save(ctx)
}
