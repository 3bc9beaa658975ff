// Trains a classifier to predict variable names from their tokenized
// context windows. Consumes the CSV files produced by export_csv and
// saves the model and its metadata under the model directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"varnamer/neural/train"
)

var (
	trainingFile        = flag.String("t", "processed/training.csv", "Path to file containing training data (CSV)")
	validationFile      = flag.String("v", "processed/validation.csv", "Path to file containing validation data (CSV)")
	modelDirectory      = flag.String("m", "models", "Path to directory where the model should be saved")
	sequencesPerExample = flag.Int("s", 5, "The number of sequences expected in each example")
	contextSize         = flag.Int("c", 3, "The number of tokens on each side of the output token, in each sequence")
	batchSize           = flag.Int("b", 32, "Training batch size")
	inputVocabSize      = flag.Int("i", 4098, "Number of tokens in the input vocabulary, including reserved tokens")
	outputVocabSize     = flag.Int("o", 60001, "Number of tokens in the output vocabulary, including reserved tokens")
	embeddingDims       = flag.Int("e", 8, "Number of dimensions for embedding input tokens")
	hiddenUnits         = flag.String("u", "512", "Comma-separated dense hidden layer widths")
	epochs              = flag.Int("n", 100, "Number of epochs (rounds of training on the full dataset)")
	learningRate        = flag.Float64("l", 0.01, "Learning rate")
	logFile             = flag.String("logFile", "", "Optional path to a log file")
)

func main() {
	flag.Parse()

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	units, err := parseHiddenUnits(*hiddenUnits)
	if err != nil {
		log.Fatalf("Invalid hidden units %q: %v", *hiddenUnits, err)
	}

	cfg := train.Config{
		SequencesPerExample: *sequencesPerExample,
		ContextSize:         *contextSize,
		InputVocabSize:      *inputVocabSize,
		OutputVocabSize:     *outputVocabSize,
		EmbeddingDimensions: *embeddingDims,
		HiddenUnits:         units,
		BatchSize:           *batchSize,
		Epochs:              *epochs,
		LearningRate:        *learningRate,
		ModelDirectory:      *modelDirectory,
	}

	log.Printf("Starting training with epochs=%d, batchSize=%d, learningRate=%f",
		cfg.Epochs, cfg.BatchSize, cfg.LearningRate)
	if _, err := train.Train(cfg, *trainingFile, *validationFile); err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelDirectory)
}

func parseHiddenUnits(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	units := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("layer width %d is not positive", n)
		}
		units = append(units, n)
	}
	return units, nil
}
