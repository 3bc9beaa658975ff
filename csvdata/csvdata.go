// Package csvdata flattens processed examples into the trainer's CSV
// layout and reads them back. Each row is one integer label column
// followed by a fixed count of integer feature columns, one per
// (sequence, side, position) triple.
package csvdata

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/exp/rand"

	"varnamer/corpus"
	"varnamer/internal/progress"
)

// Missing is the sentinel written for feature columns that have no
// value and assumed for empty cells when reading.
const Missing = -1

// Columns returns the trainer row width: one label column plus
// 2*contextSize feature columns for each of sequences sequences.
func Columns(sequences, contextSize int) int {
	return 2*contextSize*sequences + 1
}

// Row flattens a processed example into label-first CSV fields. Rows
// shorter than columns are completed with the Missing sentinel; extra
// feature values beyond columns are dropped.
func Row(ex corpus.Processed, columns int) []string {
	fields := make([]string, 0, columns)
	fields = append(fields, strconv.Itoa(ex.Output))
	for _, sequence := range ex.Input {
		for _, id := range sequence {
			if len(fields) == columns {
				return fields
			}
			fields = append(fields, strconv.Itoa(id))
		}
	}
	for len(fields) < columns {
		fields = append(fields, strconv.Itoa(Missing))
	}
	return fields
}

// ExportFile converts a processed corpus file to trainer CSV rows.
// With shuffle set, all rows are permuted in memory before writing;
// otherwise rows stream out one at a time.
func ExportFile(dataPath, outPath string, sequences, contextSize int, shuffle bool, bar *progress.Bar) error {
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

	columns := Columns(sequences, contextSize)
	reader := corpus.NewReader(in)
	writer := csv.NewWriter(out)

	var rows [][]string
	for {
		ex, err := reader.NextProcessed()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		row := Row(ex, columns)
		if shuffle {
			rows = append(rows, row)
		} else if err := writer.Write(row); err != nil {
			return err
		}
		bar.Add(1)
	}

	if shuffle {
		rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		for _, row := range rows {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// Reader parses trainer CSV rows back into labels and feature IDs.
type Reader struct {
	csv *csv.Reader
}

// NewReader wraps r, enforcing the expected column count on every row.
func NewReader(r io.Reader, columns int) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = columns
	return &Reader{csv: cr}
}

// Next returns the next row's label and features. io.EOF marks the end
// of the file. Empty cells parse as the Missing sentinel.
func (r *Reader) Next() (label int, features []int, err error) {
	record, err := r.csv.Read()
	if err != nil {
		return 0, nil, err
	}
	label, err = parseField(record[0])
	if err != nil {
		return 0, nil, err
	}
	features = make([]int, len(record)-1)
	for i, field := range record[1:] {
		features[i], err = parseField(field)
		if err != nil {
			return 0, nil, err
		}
	}
	return label, features, nil
}

func parseField(field string) (int, error) {
	if field == "" {
		return Missing, nil
	}
	return strconv.Atoi(field)
}
