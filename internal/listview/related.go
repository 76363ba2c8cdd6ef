package listview

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// RelatedFetcher loads the children of an owner record.
type RelatedFetcher[O, C any] func(ctx context.Context, token string, owner O) ([]C, error)

// RelatedView is a snapshot of a related-records modal.
type RelatedView[O, C any] struct {
	Open    bool
	Loading bool
	Owner   O
	Items   []C
}

// RelatedModal is a read-only modal listing the records related to one
// owner. Its contents are never kept beyond one opening.
type RelatedModal[O, C any] struct {
	mu         sync.Mutex
	fetch      RelatedFetcher[O, C]
	tokens     TokenSource
	logger     *zap.Logger
	generation uint64
	view       RelatedView[O, C]
}

// NewRelatedModal constructs a closed modal.
func NewRelatedModal[O, C any](fetch RelatedFetcher[O, C], tokens TokenSource, logger *zap.Logger) *RelatedModal[O, C] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelatedModal[O, C]{fetch: fetch, tokens: tokens, logger: logger}
}

// Open shows the modal for owner and loads its related records. Any failure
// leaves the modal open with an empty list.
func (m *RelatedModal[O, C]) Open(ctx context.Context, owner O) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.view = RelatedView[O, C]{Open: true, Loading: true, Owner: owner}
	m.mu.Unlock()

	token := ""
	if m.tokens != nil {
		token = m.tokens.Token()
	}
	items, err := m.fetch(ctx, token, owner)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return
	}
	if err != nil {
		m.logger.Warn("related load failed", zap.Error(err))
		items = nil
	}
	m.view.Loading = false
	m.view.Items = items
}

// Close hides the modal and drops its contents.
func (m *RelatedModal[O, C]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.view = RelatedView[O, C]{}
}

// View returns a snapshot of the modal.
func (m *RelatedModal[O, C]) View() RelatedView[O, C] {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.view
	v.Items = append([]C(nil), m.view.Items...)
	return v
}
