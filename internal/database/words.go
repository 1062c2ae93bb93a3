package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
)

// GetRandomWords returns up to count distinct random words from secret_words.
func (s *service) GetRandomWords(ctx context.Context, count int) ([]internal.SecretWord, error) {
	words := make([]internal.SecretWord, 0, max(count, 0))
	if count <= 0 {
		return words, nil
	}

	q := s.sb.Select("word_es", "word_en", "description_es", "description_en").
		From("secret_words").
		OrderBy("RANDOM()").
		Limit(uint64(count))

	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("random words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w internal.SecretWord
		if err := rows.Scan(&w.WordES, &w.WordEN, &w.DescriptionES, &w.DescriptionEN); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *service) WordCount(ctx context.Context) (int, error) {
	var n int
	if err := qRow(ctx, s.db, s.sb.Select("COUNT(*)").From("secret_words")).Scan(&n); err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return n, nil
}

func (s *service) SeedWords(ctx context.Context, words []internal.SecretWord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, w := range words {
		q := s.sb.Insert("secret_words").
			Columns("id", "word_es", "word_en", "description_es", "description_en").
			Values(uuid.NewString(), w.WordES, w.WordEN, w.DescriptionES, w.DescriptionEN).
			Suffix("ON CONFLICT (word_es, word_en) DO NOTHING")
		res, err := qExec(ctx, tx, q)
		if err != nil {
			return 0, fmt.Errorf("seed word %q: %w", w.WordEN, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed transaction: %w", err)
	}
	log.Infof("[SeedWords] Added %d of %d words", added, len(words))
	return added, nil
}
