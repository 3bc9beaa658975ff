// Package process normalizes raw examples into fixed-shape processed
// examples: a fixed count of fixed-width sequences, token text
// replaced by vocabulary IDs, and the centered placeholder position
// removed.
package process

import (
	"fmt"
	"io"
	"os"

	"varnamer/corpus"
	"varnamer/internal/progress"
	"varnamer/vocab"
)

// Normalizer rewrites examples against a pair of vocabularies.
// ContextSize is the number of tokens on each side of the placeholder,
// so every well-formed input sequence is 2*ContextSize+1 wide with the
// placeholder at offset ContextSize exactly.
type Normalizer struct {
	Input         vocab.Vocabulary
	Output        vocab.Vocabulary
	SequenceCount int
	ContextSize   int
}

// Width returns the expected input sequence width.
func (n *Normalizer) Width() int {
	return 2*n.ContextSize + 1
}

// Normalize produces one fixed-shape processed example. Each output
// sequence has exactly 2*ContextSize entries: the placeholder is
// removed positionally at offset ContextSize after ID substitution.
// Examples with fewer than SequenceCount sequences get synthesized
// all-padding sequences for the missing trailing slots; extra
// sequences are dropped. Input tokens outside the vocabulary map to
// the unknown ID; an output token outside the output vocabulary is an
// error.
func (n *Normalizer) Normalize(ex corpus.Example) (corpus.Processed, error) {
	width := n.Width()
	center := n.ContextSize
	padID := n.Input.PadID()
	unknownID := n.Input.UnknownID()

	out := corpus.Processed{Input: make([][]int, n.SequenceCount)}
	for i := 0; i < n.SequenceCount; i++ {
		if i >= len(ex.Input) {
			// Missing slot: all padding, placeholder position already
			// accounted for by emitting width-1 entries.
			ids := make([]int, width-1)
			for j := range ids {
				ids[j] = padID
			}
			out.Input[i] = ids
			continue
		}
		sequence := ex.Input[i]
		if len(sequence) != width {
			return corpus.Processed{}, fmt.Errorf(
				"sequence %d has %d tokens, want %d", i, len(sequence), width)
		}
		ids := make([]int, 0, width-1)
		for j, token := range sequence {
			if j == center {
				continue
			}
			id, ok := n.Input.ID(token)
			if !ok {
				id = unknownID
			}
			ids = append(ids, id)
		}
		out.Input[i] = ids
	}

	id, ok := n.Output.ID(ex.Output)
	if !ok {
		return corpus.Processed{}, fmt.Errorf(
			"output token %q not in output vocabulary", ex.Output)
	}
	out.Output = id
	return out, nil
}

// File streams dataPath through the normalizer into outPath, writing
// one processed example per line as it goes.
func (n *Normalizer) File(dataPath, outPath string, bar *progress.Bar) error {
	in, err := os.Open(dataPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	reader := corpus.NewReader(in)
	writer := corpus.NewWriter(out)
	for {
		ex, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		processed, err := n.Normalize(ex)
		if err != nil {
			return err
		}
		if err := writer.Write(processed); err != nil {
			return err
		}
		bar.Add(1)
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return nil
}
