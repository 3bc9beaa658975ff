// Flattens a processed corpus file into the trainer's CSV layout: one
// integer label column followed by 2*context_size feature columns per
// sequence. Output goes to <output_directory>/<input_basename>.csv.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"varnamer/csvdata"
	"varnamer/internal/progress"
)

var (
	outputDirectory  = flag.String("d", "processed", "Path to directory where output should be saved")
	sequencesPerItem = flag.Int("s", 5, "The number of sequences expected in each example")
	contextSize      = flag.Int("c", 3, "The number of tokens on each side of the placeholder")
	shuffle          = flag.Bool("shuffle", false, "Whether to shuffle rows before writing (loads the file into memory)")
	showProgress     = flag.Bool("p", false, "Whether to show progress while exporting")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: export_csv [flags] <processed_file>")
	}
	dataPath := flag.Arg(0)

	if err := os.MkdirAll(*outputDirectory, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	base := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))
	outPath := filepath.Join(*outputDirectory, base+".csv")

	bar := progress.NewLines(-1, "exporting rows", *showProgress)
	err := csvdata.ExportFile(dataPath, outPath, *sequencesPerItem, *contextSize, *shuffle, bar)
	if err != nil {
		log.Fatalf("Failed to export %s: %v", dataPath, err)
	}
	bar.Finish()

	fmt.Printf("trainer data -> %s\n", outPath)
}
