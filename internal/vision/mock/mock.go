// Package mock provides a fake vision provider for testing orchestrators
// and HTTP handlers without AWS.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/vision"
)

// SearchResult pairs a canned search outcome with its error.
type SearchResult struct {
	Match *vision.FaceMatch
	Err   error
}

// Provider is an in-memory implementation of vision.Provider. Detection
// results and per-crop search outcomes are scripted by tests; indexed faces
// accumulate so ListEnrolledIDs reflects enrollment calls.
type Provider struct {
	mu sync.Mutex

	// Scripted outcomes
	Boxes         []vision.BoundingBox
	SearchResults []SearchResult // consumed in order; when exhausted: no match

	// Error injection
	DetectError error
	IndexError  error
	IndexErrors []error // per-call outcomes, consumed in order; nil entry = success
	ListError   error
	EnsureError error

	// Recorded calls
	DetectCalls   int
	SearchCalls   int
	EnsureCalls   int
	IndexedIDs    []string // one entry per successful IndexFace call
	searchConsume int
	indexConsume  int
}

// NewProvider creates an empty fake provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]vision.BoundingBox, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DetectCalls++
	if p.DetectError != nil {
		return nil, p.DetectError
	}
	return p.Boxes, nil
}

func (p *Provider) SearchFace(ctx context.Context, crop []byte, minSimilarity float32) (*vision.FaceMatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SearchCalls++
	if p.searchConsume >= len(p.SearchResults) {
		return nil, nil
	}
	result := p.SearchResults[p.searchConsume]
	p.searchConsume++
	if result.Err != nil {
		return nil, result.Err
	}
	if result.Match != nil && result.Match.Similarity < minSimilarity {
		return nil, nil
	}
	return result.Match, nil
}

func (p *Provider) IndexFace(ctx context.Context, image []byte, externalID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.indexConsume < len(p.IndexErrors) {
		err := p.IndexErrors[p.indexConsume]
		p.indexConsume++
		if err != nil {
			return err
		}
	} else if p.IndexError != nil {
		return p.IndexError
	}
	p.IndexedIDs = append(p.IndexedIDs, externalID)
	return nil
}

func (p *Provider) ListEnrolledIDs(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ListError != nil {
		return nil, p.ListError
	}
	seen := make(map[string]struct{}, len(p.IndexedIDs))
	for _, id := range p.IndexedIDs {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *Provider) EnsureCollection(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.EnsureCalls++
	return p.EnsureError
}
