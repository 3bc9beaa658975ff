// Package vocab builds and persists token vocabularies: frequency
// counting over a corpus, rank truncation to a configured size, and
// dense token→ID assignment with reserved tokens at the top of the ID
// range.
package vocab

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"varnamer/corpus"
	"varnamer/internal/progress"
)

const (
	// PadToken fills sequence positions that have no real context
	// token. Always reserved in input vocabularies.
	PadToken = "0PAD"
	// MidToken marks the placeholder position whose name is being
	// predicted. Never counted and never a vocabulary entry.
	MidToken = "0MID"
	// UnknownToken stands in for any token outside the vocabulary.
	UnknownToken = "UNK"
)

// rankedBase is the ID of the most frequent ranked token. Reserved
// tokens always follow the ranked block, so they hold the highest IDs.
const rankedBase = 0

// Vocabulary maps token text to its integer ID.
type Vocabulary map[string]int

// ID looks up a token's ID.
func (v Vocabulary) ID(token string) (int, bool) {
	id, ok := v[token]
	return id, ok
}

// UnknownID returns the ID input tokens fall back to.
func (v Vocabulary) UnknownID() int {
	return v[UnknownToken]
}

// PadID returns the padding token's ID.
func (v Vocabulary) PadID() int {
	return v[PadToken]
}

func (v Vocabulary) Size() int {
	return len(v)
}

// Save writes the vocabulary as an indented JSON object of
// token → ID.
func (v Vocabulary) Save(path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a vocabulary previously written by Save.
func Load(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	return v, nil
}

// CountInputTokens tallies every token across every input sequence of
// every example. The padding and placeholder tokens carry no signal
// and are excluded from counting; the padding token is still reserved
// in the final vocabulary.
func CountInputTokens(r *corpus.Reader, bar *progress.Bar) (map[string]int, error) {
	counts := make(map[string]int)
	for {
		ex, err := r.Next()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return nil, err
		}
		for _, sequence := range ex.Input {
			for _, token := range sequence {
				if token == PadToken || token == MidToken {
					continue
				}
				counts[token]++
			}
		}
		bar.Add(1)
	}
}

// CountOutputTokens tallies each example's single label token.
func CountOutputTokens(r *corpus.Reader, bar *progress.Bar) (map[string]int, error) {
	counts := make(map[string]int)
	for {
		ex, err := r.Next()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return nil, err
		}
		counts[ex.Output]++
		bar.Add(1)
	}
}

// Build converts token counts into a rank-truncated vocabulary. Tokens
// are ranked by descending count, ties broken by ascending token text,
// and only the top size tokens are kept; IDs are assigned densely in
// ranked order. Reserved tokens are appended after the ranked block,
// each taking the next sequential ID, regardless of whether they were
// observed. A corpus with fewer than size distinct tokens just yields
// a smaller vocabulary.
func Build(counts map[string]int, size int, reserved ...string) Vocabulary {
	skip := make(map[string]bool, len(reserved))
	for _, token := range reserved {
		skip[token] = true
	}

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		if skip[token] {
			continue
		}
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > size {
		tokens = tokens[:size]
	}

	v := make(Vocabulary, len(tokens)+len(reserved))
	id := rankedBase
	for _, token := range tokens {
		v[token] = id
		id++
	}
	for _, token := range reserved {
		v[token] = id
		id++
	}
	return v
}
