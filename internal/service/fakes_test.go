package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/domain"
	"github.com/arturoeanton/go-knowledge-engine-ollama/internal/port"
)

// fakeEventStore is an in-memory port.EventStore.
type fakeEventStore struct {
	mu        sync.Mutex
	events    []domain.KnowledgeEvent
	insertErr error
	nextID    int
}

func (f *fakeEventStore) InsertEvent(_ context.Context, e *domain.KnowledgeEvent) (*domain.KnowledgeEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	cp := *e
	cp.ID = fmt.Sprintf("evt-%d", f.nextID)
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now()
	}
	cp.CreatedAt = time.Now()
	f.events = append(f.events, cp)
	return &cp, nil
}

func (f *fakeEventStore) GetEventByID(_ context.Context, id string) (*domain.KnowledgeEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			cp := f.events[i]
			return &cp, nil
		}
	}
	return nil, port.ErrEventNotFound
}

func (f *fakeEventStore) ListEventsSince(_ context.Context, userID string, since time.Time) ([]domain.KnowledgeEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.KnowledgeEvent
	for _, e := range f.events {
		if e.UserID == userID && !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeEventStore) ListUserIDsWithEvents(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, e := range f.events {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			ids = append(ids, e.UserID)
		}
	}
	return ids, nil
}

// fakeVectorIndex is an in-memory port.VectorIndex that mirrors the SQL
// semantics: unembedded selection newest-first, upsert, and brute-force
// same-user cosine search excluding the anchor.
type fakeVectorIndex struct {
	events    *fakeEventStore
	mu        sync.Mutex
	vectors   map[string][]float32
	upserts   int
	upsertErr error
}

func newFakeVectorIndex(events *fakeEventStore) *fakeVectorIndex {
	return &fakeVectorIndex{events: events, vectors: make(map[string][]float32)}
}

func (f *fakeVectorIndex) ListUnembedded(_ context.Context, limit int) ([]domain.KnowledgeEvent, error) {
	f.events.mu.Lock()
	all := append([]domain.KnowledgeEvent(nil), f.events.events...)
	f.events.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.KnowledgeEvent
	for _, e := range all {
		if _, ok := f.vectors[e.ID]; !ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeVectorIndex) UpsertEmbedding(_ context.Context, eventID string, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.vectors[eventID] = vector
	f.upserts++
	return nil
}

func (f *fakeVectorIndex) SearchNearest(ctx context.Context, userID, anchorEventID string, k int) ([]domain.Neighbor, error) {
	f.mu.Lock()
	anchorVec, embedded := f.vectors[anchorEventID]
	f.mu.Unlock()
	if !embedded {
		return nil, nil
	}

	anchor, err := f.events.GetEventByID(ctx, anchorEventID)
	if err != nil || anchor.UserID != userID {
		return nil, nil
	}

	f.events.mu.Lock()
	all := append([]domain.KnowledgeEvent(nil), f.events.events...)
	f.events.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Neighbor
	for _, e := range all {
		if e.ID == anchorEventID || e.UserID != userID {
			continue
		}
		vec, ok := f.vectors[e.ID]
		if !ok {
			continue
		}
		out = append(out, domain.Neighbor{KnowledgeEvent: e, Distance: cosineDistance(anchorVec, vec)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeVectorIndex) CountEmbeddings(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.vectors), nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// fakeInsightStore is an in-memory port.InsightStore.
type fakeInsightStore struct {
	mu        sync.Mutex
	insights  []domain.Insight
	insertErr error
	nextID    int
}

func (f *fakeInsightStore) InsertInsight(_ context.Context, i *domain.Insight) (*domain.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	cp := *i
	cp.ID = fmt.Sprintf("ins-%d", f.nextID)
	cp.CreatedAt = time.Now()
	f.insights = append(f.insights, cp)
	return &cp, nil
}

func (f *fakeInsightStore) HasRecentInsight(_ context.Context, userID, scope, pattern string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.insights {
		p, _ := i.Meta["pattern"].(string)
		if i.UserID == userID && i.Scope == scope && p == pattern &&
			i.DismissedAt == nil && !i.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInsightStore) ListActiveInsights(_ context.Context, userID string, limit int) ([]domain.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Insight
	for _, i := range f.insights {
		if i.UserID == userID && i.Active() {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Confidence != out[b].Confidence {
			return out[a].Confidence > out[b].Confidence
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInsightStore) MarkSeen(_ context.Context, id string) error {
	return f.update(id, func(i *domain.Insight) {
		if i.SeenAt == nil {
			now := time.Now()
			i.SeenAt = &now
		}
	})
}

func (f *fakeInsightStore) Dismiss(_ context.Context, id string) error {
	return f.update(id, func(i *domain.Insight) {
		now := time.Now()
		i.DismissedAt = &now
	})
}

func (f *fakeInsightStore) Mute(_ context.Context, id string) error {
	return f.update(id, func(i *domain.Insight) { i.Muted = true })
}

func (f *fakeInsightStore) update(id string, fn func(*domain.Insight)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx := range f.insights {
		if f.insights[idx].ID == id {
			fn(&f.insights[idx])
			return nil
		}
	}
	return port.ErrInsightNotFound
}

// fakeProvider is a scripted port.EmbeddingProvider: errs are consumed one
// per call, then deterministic vectors derived from text length are
// produced. short, when set, drops one vector from the response.
type fakeProvider struct {
	mu    sync.Mutex
	calls int
	errs  []error
	short bool
}

func (f *fakeProvider) ModelName() string { return "fake-embed" }
func (f *fakeProvider) Dimension() int    { return 3 }

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}

	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	vectors := make([][]float32, n)
	for i := 0; i < n; i++ {
		l := float32(len(texts[i]))
		vectors[i] = []float32{l, l / 2, 1}
	}
	return vectors, nil
}
