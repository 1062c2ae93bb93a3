package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
)

// ReadCsvFile loads a word corpus. Each record is
// word_es,word_en,description_es,description_en; a header row starting with
// "word_es" is skipped.
func ReadCsvFile(filePath string) ([]internal.SecretWord, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadWords(f)
}

func ReadWords(r io.Reader) ([]internal.SecretWord, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	var words []internal.SecretWord
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse word corpus as CSV: %w", err)
		}
		if len(record) < 4 {
			log.Warnf("[ReadWords] Skipping invalid record: %v", record)
			continue
		}
		if strings.EqualFold(strings.TrimSpace(record[0]), "word_es") {
			continue
		}

		word := internal.SecretWord{
			WordES:        strings.TrimSpace(record[0]),
			WordEN:        strings.TrimSpace(record[1]),
			DescriptionES: strings.TrimSpace(record[2]),
			DescriptionEN: strings.TrimSpace(record[3]),
		}
		if word.WordES == "" && word.WordEN == "" {
			log.Warnf("[ReadWords] Skipping record without word text: %v", record)
			continue
		}
		words = append(words, word)
	}

	return words, nil
}
