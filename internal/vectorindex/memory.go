package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine-similarity index held in process
// memory. It backs local development and tests; the persistence layout
// matches the pgvector backend record for record.
type MemoryIndex struct {
	mu      sync.RWMutex
	vectors map[string]Vector
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{vectors: make(map[string]Vector)}
}

func (s *MemoryIndex) Upsert(ctx context.Context, vectors []Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		s.vectors[v.ID] = v
	}
	return nil
}

func (s *MemoryIndex) Query(ctx context.Context, embedding []float32, topK int, fileID string) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, v := range s.vectors {
		if fileID != "" && v.Metadata.FileID != fileID {
			continue
		}
		matches = append(matches, Match{
			ID:       v.ID,
			Score:    cosine(embedding, v.Values),
			Text:     v.Metadata.Text,
			Metadata: v.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryIndex) DeleteByFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.vectors {
		if v.Metadata.FileID == fileID {
			delete(s.vectors, id)
		}
	}
	return nil
}

// Len reports the number of stored vectors.
func (s *MemoryIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
