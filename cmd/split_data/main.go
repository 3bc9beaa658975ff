// Splits a data file into a training and a validation file, one
// example per line:
//   - <output_directory>/training.<ext>
//   - <output_directory>/validation.<ext>
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"varnamer/corpus"
	"varnamer/internal/progress"
	"varnamer/split"
)

var (
	outputDirectory = flag.String("d", "processed", "Path to directory where output should be saved")
	validationRatio = flag.Float64("r", 0.2, "Ratio of data saved for the validation set")
	showProgress    = flag.Bool("p", false, "Whether to show progress while splitting")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: split_data [flags] <data_file>")
	}
	dataPath := flag.Arg(0)

	if err := os.MkdirAll(*outputDirectory, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	total, err := corpus.CountLines(dataPath)
	if err != nil {
		log.Fatalf("Failed to count examples: %v", err)
	}

	bar := progress.NewLines(int64(total), "splitting data file", *showProgress)
	trainingPath, validationPath, err := split.File(dataPath, *outputDirectory, *validationRatio, bar)
	if err != nil {
		log.Fatalf("Failed to split %s: %v", dataPath, err)
	}
	bar.Finish()

	fmt.Printf("training data -> %s\n", trainingPath)
	fmt.Printf("validation data -> %s\n", validationPath)
}
