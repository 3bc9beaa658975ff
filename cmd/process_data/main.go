// Rewrites a corpus file to use vocabulary IDs instead of token text,
// normalizing every example to a fixed count of fixed-width sequences
// and removing the centered placeholder position. Output goes to
// <output_directory>/<input_basename>_processed.txt.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"varnamer/internal/progress"
	"varnamer/process"
	"varnamer/vocab"
)

var (
	outputDirectory  = flag.String("d", "processed", "Path to directory where output should be saved")
	inputVocabPath   = flag.String("input-vocabulary", filepath.Join("processed", "input_vocabulary.json"), "Path to the input vocabulary")
	outputVocabPath  = flag.String("output-vocabulary", filepath.Join("processed", "output_vocabulary.json"), "Path to the output vocabulary")
	sequencesPerItem = flag.Int("s", 5, "The number of sequences expected in each example")
	contextSize      = flag.Int("c", 3, "The number of tokens on each side of the placeholder")
	showProgress     = flag.Bool("p", false, "Whether to show progress while processing")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: process_data [flags] <data_file>")
	}
	dataPath := flag.Arg(0)

	if err := os.MkdirAll(*outputDirectory, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	inputVocab, err := vocab.Load(*inputVocabPath)
	if err != nil {
		log.Fatalf("Failed to load input vocabulary: %v", err)
	}
	outputVocab, err := vocab.Load(*outputVocabPath)
	if err != nil {
		log.Fatalf("Failed to load output vocabulary: %v", err)
	}

	normalizer := &process.Normalizer{
		Input:         inputVocab,
		Output:        outputVocab,
		SequenceCount: *sequencesPerItem,
		ContextSize:   *contextSize,
	}

	base := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))
	outPath := filepath.Join(*outputDirectory, base+"_processed.txt")

	bar := progress.NewLines(-1, "processing examples", *showProgress)
	if err := normalizer.File(dataPath, outPath, bar); err != nil {
		log.Fatalf("Failed to process %s: %v", dataPath, err)
	}
	bar.Finish()

	fmt.Printf("processed data -> %s\n", outPath)
}
