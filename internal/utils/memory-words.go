package utils

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/scythe504/taboo-backend/internal"
)

// MemoryWordSource serves random words from an in-memory corpus.
type MemoryWordSource struct {
	mu    sync.Mutex
	words []internal.SecretWord
	rng   *rand.Rand
}

func NewMemoryWordSource(words []internal.SecretWord, rng *rand.Rand) *MemoryWordSource {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	corpus := make([]internal.SecretWord, len(words))
	copy(corpus, words)
	return &MemoryWordSource{words: corpus, rng: rng}
}

// GetRandomWords returns up to count distinct words in random order.
func (s *MemoryWordSource) GetRandomWords(ctx context.Context, count int) ([]internal.SecretWord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return []internal.SecretWord{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.rng.Perm(len(s.words))
	n := min(count, len(idx))
	out := make([]internal.SecretWord, 0, n)
	for _, i := range idx[:n] {
		out = append(out, s.words[i])
	}
	return out, nil
}
