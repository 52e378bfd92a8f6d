// Package data loads external word lists, letting large search vocabularies
// live in their own files instead of inline profile JSON.
package data

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadTerms reads a term list from a CSV or JSON file. CSV files use the
// first column, skipping a "term" header row when present; JSON files must
// be an array of strings. Relative paths resolve against baseDir.
func LoadTerms(path, baseDir string) ([]string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var terms []string
	var err error

	switch ext {
	case ".csv":
		terms, err = loadCSVTerms(path)
	case ".json":
		terms, err = loadJSONTerms(path)
	default:
		return nil, fmt.Errorf("unsupported term file format %q (use .csv or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("term file %s is empty", path)
	}
	return terms, nil
}

func loadCSVTerms(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var terms []string
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		term := strings.TrimSpace(record[0])
		if term == "" {
			continue
		}
		if i == 0 && strings.EqualFold(term, "term") {
			continue
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func loadJSONTerms(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var terms []string
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, fmt.Errorf("JSON must be an array of strings: %w", err)
	}

	out := terms[:0]
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
