package utils

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/taboo-backend/internal"
)

func TestGenerateMatchCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		code := GenerateMatchCode()
		require.Len(t, code, MatchCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(matchCodeChars, r), "unexpected %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestGuessMatches(t *testing.T) {
	tests := []struct {
		guess string
		want  bool
	}{
		{"dog", true},
		{"DOG", true},
		{"  Perro ", true},
		{"PERRO", true},
		{"dogs", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GuessMatches(tt.guess, "perro", "dog"), "guess %q", tt.guess)
	}

	assert.True(t, GuessMatches("ÁRBOL", "árbol", "tree"))
	assert.True(t, GuessMatches("ice  cream", "helado", "Ice Cream"))
	assert.False(t, GuessMatches("x", "", ""))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\n"))
	assert.False(t, IsBlank(" a "))
}

func TestReadWords(t *testing.T) {
	input := `word_es,word_en,description_es,description_en
perro, dog ,animal que ladra,animal that barks
"broken"
,,,
gato,cat,"animal que maúlla, a veces","animal that meows"
`
	words, err := ReadWords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, internal.SecretWord{
		WordES: "perro", WordEN: "dog",
		DescriptionES: "animal que ladra", DescriptionEN: "animal that barks",
	}, words[0])
	assert.Equal(t, "animal que maúlla, a veces", words[1].DescriptionES)
}

func TestReadCsvFile(t *testing.T) {
	_, err := ReadCsvFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte("sol,sun,estrella,star\n"), 0o600))
	words, err := ReadCsvFile(path)
	require.NoError(t, err)
	assert.Len(t, words, 1)
}

func TestBundledCorpus(t *testing.T) {
	words, err := ReadCsvFile("../../data/words.csv")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(words), 10)
	for _, w := range words {
		assert.NotEmpty(t, w.WordEN)
		assert.NotEmpty(t, w.DescriptionEN)
	}
}

func TestMemoryWordSource(t *testing.T) {
	corpus := []internal.SecretWord{{WordEN: "a"}, {WordEN: "b"}, {WordEN: "c"}, {WordEN: "d"}}
	src := NewMemoryWordSource(corpus, rand.New(rand.NewPCG(1, 2)))
	ctx := context.Background()

	got, err := src.GetRandomWords(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	distinct := map[string]bool{}
	for _, w := range got {
		distinct[w.WordEN] = true
	}
	assert.Len(t, distinct, 3)

	got, err = src.GetRandomWords(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, corpus, got, "a short corpus returns what it has")

	got, err = src.GetRandomWords(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.GetRandomWords(cancelled, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
