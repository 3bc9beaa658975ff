package process

import (
	"bufio"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"varnamer/corpus"
	"varnamer/vocab"
)

func testNormalizer() *Normalizer {
	return &Normalizer{
		Input:         vocab.Vocabulary{"a": 0, "b": 1, vocab.PadToken: 2, vocab.UnknownToken: 3},
		Output:        vocab.Vocabulary{"x": 0, vocab.UnknownToken: 1},
		SequenceCount: 2,
		ContextSize:   1,
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		example  corpus.Example
		expected corpus.Processed
	}{
		{
			name:     "substitutes IDs and removes the center position",
			example:  corpus.Example{Input: [][]string{{"a", "0MID", "b"}, {"b", "0MID", "a"}}, Output: "x"},
			expected: corpus.Processed{Input: [][]int{{0, 1}, {1, 0}}, Output: 0},
		},
		{
			name:     "unknown tokens fall back to the UNK ID",
			example:  corpus.Example{Input: [][]string{{"mystery", "0MID", "b"}, {"a", "0MID", "a"}}, Output: "x"},
			expected: corpus.Processed{Input: [][]int{{3, 1}, {0, 0}}, Output: 0},
		},
		{
			name:     "missing trailing sequences are synthesized from padding",
			example:  corpus.Example{Input: [][]string{{"a", "0MID", "b"}}, Output: "x"},
			expected: corpus.Processed{Input: [][]int{{0, 1}, {2, 2}}, Output: 0},
		},
		{
			name: "extra sequences are dropped",
			example: corpus.Example{
				Input:  [][]string{{"a", "0MID", "b"}, {"b", "0MID", "b"}, {"a", "0MID", "a"}},
				Output: "x",
			},
			expected: corpus.Processed{Input: [][]int{{0, 1}, {1, 1}}, Output: 0},
		},
	}

	n := testNormalizer()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := n.Normalize(tc.example)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Normalize() = %v; expected %v", got, tc.expected)
			}
		})
	}
}

func TestNormalizeOutputShape(t *testing.T) {
	n := &Normalizer{
		Input:         vocab.Vocabulary{vocab.PadToken: 0, vocab.UnknownToken: 1},
		Output:        vocab.Vocabulary{"x": 0, vocab.UnknownToken: 1},
		SequenceCount: 3,
		ContextSize:   2,
	}
	ex := corpus.Example{Input: [][]string{{"p", "q", "0MID", "r", "s"}}, Output: "x"}
	got, err := n.Normalize(ex)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(got.Input) != n.SequenceCount {
		t.Fatalf("output has %d sequences; expected %d", len(got.Input), n.SequenceCount)
	}
	for i, sequence := range got.Input {
		if len(sequence) != 2*n.ContextSize {
			t.Errorf("sequence %d has %d entries; expected %d", i, len(sequence), 2*n.ContextSize)
		}
	}
}

func TestNormalizeWrongWidth(t *testing.T) {
	n := testNormalizer()
	ex := corpus.Example{Input: [][]string{{"a", "0MID", "b", "b"}}, Output: "x"}
	if _, err := n.Normalize(ex); err == nil {
		t.Error("expected an error for a sequence of the wrong width")
	}
}

func TestNormalizeUnknownLabel(t *testing.T) {
	n := testNormalizer()
	ex := corpus.Example{Input: [][]string{{"a", "0MID", "b"}}, Output: "never_seen"}
	if _, err := n.Normalize(ex); err == nil {
		t.Error("expected an error for a label outside the output vocabulary")
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "examples.txt")
	lines := `{"input":[["a","0MID","b"]],"output":"x"}` + "\n" +
		`{"input":[["b","0MID","b"],["a","0MID","a"]],"output":"x"}` + "\n"
	if err := os.WriteFile(dataPath, []byte(lines), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	outPath := filepath.Join(dir, "examples_processed.txt")
	n := testNormalizer()
	if err := n.File(dataPath, outPath, nil); err != nil {
		t.Fatalf("File failed: %v", err)
	}

	out, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer out.Close()

	var outLines []string
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		outLines = append(outLines, scanner.Text())
	}
	if len(outLines) != 2 {
		t.Fatalf("output has %d lines; expected 2", len(outLines))
	}
	if !strings.Contains(outLines[0], `"output":0`) {
		t.Errorf("first output line %q does not carry the label ID", outLines[0])
	}
}

func TestFileUnknownLabelIsFatal(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "examples.txt")
	line := `{"input":[["a","0MID","b"]],"output":"never_seen"}` + "\n"
	if err := os.WriteFile(dataPath, []byte(line), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	n := testNormalizer()
	if err := n.File(dataPath, filepath.Join(dir, "out.txt"), nil); err == nil {
		t.Error("expected an error for an example with an unknown label")
	}
}
