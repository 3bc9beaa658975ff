// Package corpus reads and writes line-delimited training examples.
// Each line of a corpus file is one JSON object: a list of context
// token sequences under "input" and a single label token under
// "output".
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Example is one raw training record: context sequences of token text
// plus the output token whose name the model should predict.
type Example struct {
	Input  [][]string `json:"input"`
	Output string     `json:"output"`
}

// Processed mirrors Example after vocabulary substitution: sequences
// hold vocabulary IDs (placeholder position removed) and the output is
// an output-vocabulary ID.
type Processed struct {
	Input  [][]int `json:"input"`
	Output int     `json:"output"`
}

// Corpus lines hold whole context windows, so they can get long.
const maxLineBytes = 4 * 1024 * 1024

// Reader streams examples off a corpus file one line at a time.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scanner: s}
}

func (r *Reader) nextLine() ([]byte, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	r.line++
	return r.scanner.Bytes(), nil
}

// Next returns the next example. io.EOF signals a clean end of the
// stream; malformed lines are errors.
func (r *Reader) Next() (Example, error) {
	line, err := r.nextLine()
	if err != nil {
		return Example{}, err
	}
	var ex Example
	if err := json.Unmarshal(line, &ex); err != nil {
		return Example{}, fmt.Errorf("line %d: %w", r.line, err)
	}
	if ex.Input == nil {
		return Example{}, fmt.Errorf("line %d: missing \"input\" field", r.line)
	}
	if ex.Output == "" {
		return Example{}, fmt.Errorf("line %d: missing \"output\" field", r.line)
	}
	return ex, nil
}

// NextProcessed returns the next processed example from an
// already-normalized corpus file.
func (r *Reader) NextProcessed() (Processed, error) {
	line, err := r.nextLine()
	if err != nil {
		return Processed{}, err
	}
	var ex Processed
	if err := json.Unmarshal(line, &ex); err != nil {
		return Processed{}, fmt.Errorf("line %d: %w", r.line, err)
	}
	if ex.Input == nil {
		return Processed{}, fmt.Errorf("line %d: missing \"input\" field", r.line)
	}
	return ex, nil
}

// Writer emits one JSON object per line.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

// CountLines reports the number of lines in a file. Used for split
// sizing and for reporting dataset sizes before training.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	count := 0
	for s.Scan() {
		count++
	}
	if err := s.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
