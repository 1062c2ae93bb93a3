package ports

import (
	"context"

	"github.com/scythe504/taboo-backend/internal"
)

// WordSource supplies randomized secret words.
type WordSource interface {
	// GetRandomWords returns up to count distinct words. Returning fewer than
	// requested is not an error; callers decide whether the list is usable.
	GetRandomWords(ctx context.Context, count int) ([]internal.SecretWord, error)
}
