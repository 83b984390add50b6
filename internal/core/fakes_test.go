// ABOUTME: In-memory fakes for the pipeline ports used by core tests
// ABOUTME: keywordEmbedder maps each keyword to one vector dimension
package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/harper/carrierfit/internal/models"
	"github.com/harper/carrierfit/internal/util"
)

var testKeywords = []string{
	"issue ages", "build chart", "tobacco", "cannabis", "diabetes",
	"cardiac", "cancer", "avocation", "accelerated", "financial",
}

type keywordEmbedder struct {
	keywords []string
	failOn   string
	calls    atomic.Int64
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: testKeywords}
}

func (k *keywordEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	k.calls.Add(1)
	lower := strings.ToLower(text)
	if k.failOn != "" && strings.Contains(lower, k.failOn) {
		return nil, errors.New("embedding service error")
	}
	vec := make([]float64, len(k.keywords))
	for i, kw := range k.keywords {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	return vec, nil
}

type memEntry struct {
	vector []float64
	meta   models.VectorMetadata
}

type memIndex struct {
	mu       sync.Mutex
	entries  map[string]memEntry
	queryErr error
	queries  atomic.Int64
}

func newMemIndex() *memIndex {
	return &memIndex{entries: make(map[string]memEntry)}
}

func (m *memIndex) Upsert(ctx context.Context, id string, vector []float64, meta models.VectorMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memEntry{vector: vector, meta: meta}
	return nil
}

func (m *memIndex) Query(ctx context.Context, vector []float64, topK int, filter models.VectorFilter) ([]models.VectorSearchResult, error) {
	m.queries.Add(1)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.VectorSearchResult
	for id, e := range m.entries {
		if !filter.Matches(e.meta) {
			continue
		}
		out = append(out, models.VectorSearchResult{
			ChunkID:         id,
			Metadata:        e.meta,
			SimilarityScore: models.ClampScore(util.CosineSimilarity(vector, e.vector)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SimilarityScore != out[j].SimilarityScore {
			return out[i].SimilarityScore > out[j].SimilarityScore
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (m *memIndex) DeleteDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.meta.DocumentID == documentID {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *memIndex) Count(ctx context.Context, filter models.VectorFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if filter.Matches(e.meta) {
			n++
		}
	}
	return n, nil
}

type memStore struct {
	mu           sync.Mutex
	carriers     map[string]models.Carrier
	docs         map[string]models.Document
	chunks       map[string]models.Chunk
	citationsErr error
	countErr     error
}

func newMemStore(carriers ...models.Carrier) *memStore {
	s := &memStore{
		carriers: make(map[string]models.Carrier),
		docs:     make(map[string]models.Document),
		chunks:   make(map[string]models.Chunk),
	}
	for _, c := range carriers {
		s.carriers[c.ID] = c
	}
	return s
}

func (s *memStore) GetCarrier(ctx context.Context, id string) (*models.Carrier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carriers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (s *memStore) ListCarriers(ctx context.Context) ([]models.Carrier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Carrier
	for _, c := range s.carriers {
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) LatestDocument(ctx context.Context, carrierID, title string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Document
	for _, d := range s.docs {
		if d.CarrierID == carrierID && d.Title == title && (latest == nil || d.Version > latest.Version) {
			d := d
			latest = &d
		}
	}
	return latest, nil
}

func (s *memStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &d, nil
}

func (s *memStore) SaveDocument(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *doc
	d.SupersededBy = ""
	s.docs[doc.ID] = d
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

func (s *memStore) MarkSuperseded(ctx context.Context, documentID, supersededBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[documentID]
	if !ok {
		return models.ErrNotFound
	}
	d.SupersededBy = supersededBy
	s.docs[documentID] = d
	return nil
}

func (s *memStore) CountDocuments(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs), nil
}

func (s *memStore) CitationSources(ctx context.Context, chunkIDs []string) (map[string]models.CitationSource, error) {
	if s.citationsErr != nil {
		return nil, s.citationsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.CitationSource)
	for _, id := range chunkIDs {
		c, ok := s.chunks[id]
		if !ok {
			continue
		}
		d := s.docs[c.DocumentID]
		out[id] = models.CitationSource{
			ChunkID:       id,
			Body:          c.Body(),
			Section:       c.Section,
			DocumentTitle: d.Title,
			EffectiveDate: d.EffectiveDate,
		}
	}
	return out, nil
}

type memCache struct {
	mu    sync.Mutex
	evals map[string]*models.Evaluation
	err   error
}

func newMemCache() *memCache {
	return &memCache{evals: make(map[string]*models.Evaluation)}
}

func (c *memCache) SaveEvaluation(ctx context.Context, eval *models.Evaluation) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evals[eval.Fingerprint] = eval
	return nil
}

func (c *memCache) GetEvaluation(ctx context.Context, fingerprint string) (*models.Evaluation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.evals[fingerprint]
	if !ok {
		return nil, models.ErrNotFound
	}
	return e, nil
}

type stubAdvisor struct {
	raw string
	err error
}

func (a stubAdvisor) Advise(ctx context.Context, req models.AdviceRequest) (string, error) {
	return a.raw, a.err
}
