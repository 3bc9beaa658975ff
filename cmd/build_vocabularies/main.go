// Builds the input and output token vocabularies for a training
// corpus and saves them as:
//   - <output_directory>/input_vocabulary.json
//   - <output_directory>/output_vocabulary.json
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"varnamer/corpus"
	"varnamer/internal/progress"
	"varnamer/vocab"
)

var (
	outputDirectory = flag.String("d", "processed", "Path to directory where output should be saved")
	inputVocabSize  = flag.Int("i", 4096, "Size of input vocabulary, before reserved tokens")
	outputVocabSize = flag.Int("o", 60000, "Size of output vocabulary, before reserved tokens")
	showProgress    = flag.Bool("p", false, "Whether to show progress while counting tokens")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: build_vocabularies [flags] <training_file>")
	}
	trainingPath := flag.Arg(0)

	if err := os.MkdirAll(*outputDirectory, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	inputVocab, err := buildInputVocabulary(trainingPath, *inputVocabSize)
	if err != nil {
		log.Fatalf("Failed to build input vocabulary: %v", err)
	}
	inputPath := filepath.Join(*outputDirectory, "input_vocabulary.json")
	if err := inputVocab.Save(inputPath); err != nil {
		log.Fatalf("Failed to save input vocabulary: %v", err)
	}

	outputVocab, err := buildOutputVocabulary(trainingPath, *outputVocabSize)
	if err != nil {
		log.Fatalf("Failed to build output vocabulary: %v", err)
	}
	outputPath := filepath.Join(*outputDirectory, "output_vocabulary.json")
	if err := outputVocab.Save(outputPath); err != nil {
		log.Fatalf("Failed to save output vocabulary: %v", err)
	}

	fmt.Printf("input vocabulary: %d tokens -> %s\n", inputVocab.Size(), inputPath)
	fmt.Printf("output vocabulary: %d tokens -> %s\n", outputVocab.Size(), outputPath)
}

func buildInputVocabulary(trainingPath string, size int) (vocab.Vocabulary, error) {
	file, err := os.Open(trainingPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	bar := progress.NewLines(-1, "counting input tokens", *showProgress)
	counts, err := vocab.CountInputTokens(corpus.NewReader(file), bar)
	bar.Finish()
	if err != nil {
		return nil, err
	}
	return vocab.Build(counts, size, vocab.PadToken, vocab.UnknownToken), nil
}

func buildOutputVocabulary(trainingPath string, size int) (vocab.Vocabulary, error) {
	file, err := os.Open(trainingPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	bar := progress.NewLines(-1, "counting output tokens", *showProgress)
	counts, err := vocab.CountOutputTokens(corpus.NewReader(file), bar)
	bar.Finish()
	if err != nil {
		return nil, err
	}
	return vocab.Build(counts, size, vocab.UnknownToken), nil
}
